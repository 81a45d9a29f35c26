package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/effects"
	"github.com/ivlev/drillanim/internal/logging"
	"github.com/ivlev/drillanim/internal/renderer"
	"github.com/ivlev/drillanim/internal/system"
	"github.com/ivlev/drillanim/internal/video"
)

var ErrExportInFlight = errors.New("an animation export is already running")

// Artifact is an encoded looping animation.
type Artifact struct {
	Revision uint64
	Samples  int
	Data     []byte
}

type ExportOptions struct {
	Width      int
	Steps      int
	Easing     effects.Easing
	Workers    int
	Background image.Image
}

// Stats counts the expensive operations an Exporter has performed.
type Stats struct {
	Encodes    int64
	Thumbnails int64
	CacheHits  int64
}

// Exporter renders drill snapshots into looping animations. At most one
// export runs at a time and the last artifact is kept until the drill
// revision changes.
type Exporter struct {
	encoder video.AnimationEncoder
	opts    ExportOptions
	logger  *log.Logger

	inFlight atomic.Bool

	mu    sync.Mutex
	cache *Artifact

	encodes    atomic.Int64
	thumbnails atomic.Int64
	hits       atomic.Int64
}

func NewExporter(enc video.AnimationEncoder, opts ExportOptions, logger *log.Logger) *Exporter {
	if opts.Width <= 0 {
		opts.Width = drill.CanvasWidth
	}
	if opts.Steps <= 0 {
		opts.Steps = renderer.DefaultSteps
	}
	if opts.Easing == nil {
		opts.Easing = effects.Linear{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{encoder: enc, opts: opts, logger: logger}
}

func (e *Exporter) Stats() Stats {
	return Stats{Encodes: e.encodes.Load(), Thumbnails: e.thumbnails.Load(), CacheHits: e.hits.Load()}
}

// Invalidate drops the cached artifact.
func (e *Exporter) Invalidate() {
	e.mu.Lock()
	e.cache = nil
	e.mu.Unlock()
}

func (e *Exporter) cached(rev uint64) (Artifact, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cache != nil && e.cache.Revision == rev {
		return *e.cache, true
	}
	return Artifact{}, false
}

// Export returns the animation for snap, from cache when the revision matches.
// A call made while another export runs fails with ErrExportInFlight.
func (e *Exporter) Export(ctx context.Context, snap drill.Snapshot) (Artifact, error) {
	if art, ok := e.cached(snap.Revision); ok {
		e.hits.Add(1)
		e.logger.Debug("animation cache hit", "revision", snap.Revision)
		return art, nil
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return Artifact{}, ErrExportInFlight
	}
	defer e.inFlight.Store(false)

	progress := logging.NewProgress(e.logger)
	samples := renderer.BuildSequence(snap.Frames, snap.Speed.Delay(), e.opts.Steps, e.opts.Easing)
	stills, err := e.render(ctx, samples)
	defer release(stills)
	if err != nil {
		return Artifact{}, err
	}

	e.encodes.Add(1)
	data, err := e.encoder.Encode(ctx, stills)
	if err != nil {
		return Artifact{}, fmt.Errorf("encode animation: %w", err)
	}

	art := Artifact{Revision: snap.Revision, Samples: len(samples), Data: data}
	e.mu.Lock()
	e.cache = &art
	e.mu.Unlock()
	progress.Done("exported animation", "samples", len(samples), "bytes", len(data), "revision", snap.Revision)
	return art, nil
}

// render rasterizes samples in parallel, keeping their order.
func (e *Exporter) render(ctx context.Context, samples []renderer.Sample) ([]video.Still, error) {
	raster, err := renderer.NewRaster(renderer.Options{Width: e.opts.Width, Background: e.opts.Background, Pooled: true})
	if err != nil {
		return nil, err
	}
	b := raster.Bounds()
	workers := system.Workers(e.opts.Workers, uint64(b.Dx()*b.Dy()*4), len(samples))
	e.logger.Debug("rendering samples", "samples", len(samples), "workers", workers, "size", b.Size())

	stills := make([]video.Still, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := raster.Render(s.Frame)
			if err != nil {
				return fmt.Errorf("render sample %d: %w", i, err)
			}
			stills[i] = video.Still{Image: img, Duration: s.Duration}
			return nil
		})
	}
	return stills, g.Wait()
}

func release(stills []video.Still) {
	for _, s := range stills {
		if img, ok := s.Image.(*image.RGBA); ok {
			system.PutImage(img)
		}
	}
}

// Thumbnail renders one frame as a PNG scaled down to width.
func (e *Exporter) Thumbnail(f drill.Frame, width int) ([]byte, error) {
	e.thumbnails.Add(1)
	raster, err := renderer.NewRaster(renderer.Options{Width: e.opts.Width, Background: e.opts.Background})
	if err != nil {
		return nil, err
	}
	full, err := raster.Render(f)
	if err != nil {
		return nil, err
	}
	var out image.Image = full
	if width > 0 && width < full.Bounds().Dx() {
		height := full.Bounds().Dy() * width / full.Bounds().Dx()
		small := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(small, small.Bounds(), full, full.Bounds(), xdraw.Src, nil)
		out = small
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
