package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ivlev/drillanim/internal/api"
	"github.com/ivlev/drillanim/internal/director"
	"github.com/ivlev/drillanim/internal/document"
	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/editor"
	"github.com/ivlev/drillanim/internal/persist"
	"github.com/ivlev/drillanim/internal/source"
	"github.com/ivlev/drillanim/internal/toolbox"
)

var (
	ErrNotLoaded = errors.New("no drill loaded")
	ErrNoBackend = errors.New("no backend configured")
	ErrNotSaved  = errors.New("drill has not been saved yet")
)

// State tracks whether the project holds a usable drill.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadFailed:
		return "load-failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Backend stores drill records. *api.Client implements it.
type Backend interface {
	CreateDrill(ctx context.Context, rec persist.DrillRecord) (persist.DrillView, error)
	UpdateDrill(ctx context.Context, id int64, rec persist.DrillRecord) (persist.DrillView, error)
	FetchDrill(ctx context.Context, id int64) (persist.DrillView, error)
}

type ProjectOptions struct {
	Backend Backend
	// Poller watches the remote transcode; nil disables WatchTranscode.
	Poller         *api.Poller
	ThumbnailWidth int
	Document       document.Options
	// ShareURL builds the link printed on document pages; nil prints none.
	ShareURL   func(id int64) string
	Background image.Image
	IDs        drill.IDSource
	Toolbox    *toolbox.Toolbox
}

// ExportResult is delivered by ExportAnimationAsync.
type ExportResult struct {
	Artifact Artifact
	Err      error
}

// Project ties one drill to its exporter and its backend record.
type Project struct {
	exporter *Exporter
	opts     ProjectOptions
	logger   *log.Logger

	mu       sync.Mutex
	state    State
	loadErr  error
	editor   *editor.Editor
	remoteID int64
	// baseline is what the backend last stored, nil if nothing was stored.
	baseline []drill.Frame
	// baselineSpeed is the speed the stored animation was encoded at.
	baselineSpeed drill.Speed

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
}

func NewProject(exporter *Exporter, opts ProjectOptions, logger *log.Logger) *Project {
	if logger == nil {
		logger = log.Default()
	}
	if opts.IDs == nil {
		opts.IDs = drill.UUIDSource{}
	}
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = 300
	}
	return &Project{exporter: exporter, opts: opts, logger: logger}
}

func (p *Project) open(d *drill.Drill, remoteID int64, baseline []drill.Frame) *editor.Editor {
	p.exporter.Invalidate()
	ed := editor.New(d, p.opts.Toolbox, p.logger)
	p.mu.Lock()
	p.state, p.loadErr = StateReady, nil
	p.editor, p.remoteID, p.baseline = ed, remoteID, baseline
	p.baselineSpeed = d.Speed()
	p.mu.Unlock()
	return ed
}

func (p *Project) fail(err error) error {
	p.mu.Lock()
	p.state, p.loadErr, p.editor = StateLoadFailed, err, nil
	p.mu.Unlock()
	p.logger.Error("load failed", "err", err)
	return err
}

// NewDrill starts an unsaved drill with a single empty frame.
func (p *Project) NewDrill(title string) *editor.Editor {
	d := drill.New(p.opts.IDs)
	d.Meta.Title = title
	return p.open(d, 0, nil)
}

// LoadFile opens a scenario file. The drill is new to the backend.
func (p *Project) LoadFile(path string) (*editor.Editor, error) {
	p.setLoading()
	s, err := director.ReadScenario(path)
	if err != nil {
		return nil, p.fail(err)
	}
	d, err := s.ToDrill(p.opts.IDs)
	if err != nil {
		return nil, p.fail(fmt.Errorf("scenario %s: %w", path, err))
	}
	p.logger.Info("loaded scenario", "path", path, "frames", d.Len())
	return p.open(d, 0, nil), nil
}

// Load fetches a stored drill. On failure the project stays in
// StateLoadFailed and exposes no frames.
func (p *Project) Load(ctx context.Context, id int64) (*editor.Editor, error) {
	if p.opts.Backend == nil {
		return nil, p.fail(ErrNoBackend)
	}
	p.setLoading()
	view, err := p.opts.Backend.FetchDrill(ctx, id)
	if err != nil {
		return nil, p.fail(fmt.Errorf("fetch drill %d: %w", id, err))
	}
	d, err := persist.FromRecord(view)
	if err != nil {
		return nil, p.fail(fmt.Errorf("decode drill %d: %w", id, err))
	}
	p.logger.Info("loaded drill", "id", id, "frames", d.Len(), "video", view.AnimationVideoStatus)
	return p.open(d, id, d.Frames()), nil
}

func (p *Project) setLoading() {
	p.mu.Lock()
	p.state, p.loadErr, p.editor = StateLoading, nil, nil
	p.mu.Unlock()
}

func (p *Project) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LoadErr is the reason of the last failed load.
func (p *Project) LoadErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadErr
}

// Editor returns nil unless a drill is loaded.
func (p *Project) Editor() *editor.Editor {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateReady {
		return nil
	}
	return p.editor
}

// RemoteID is the backend id, 0 while unsaved.
func (p *Project) RemoteID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteID
}

func (p *Project) Exporter() *Exporter { return p.exporter }

func (p *Project) ready() (*editor.Editor, error) {
	ed := p.Editor()
	if ed == nil {
		return nil, ErrNotLoaded
	}
	return ed, nil
}

// ExportAnimation renders the current drill. The editor is not modified.
func (p *Project) ExportAnimation(ctx context.Context) (Artifact, error) {
	ed, err := p.ready()
	if err != nil {
		return Artifact{}, err
	}
	return p.exporter.Export(ctx, ed.Snapshot())
}

// ExportAnimationAsync snapshots the drill now and exports it in the background.
func (p *Project) ExportAnimationAsync(ctx context.Context) <-chan ExportResult {
	out := make(chan ExportResult, 1)
	ed, err := p.ready()
	if err != nil {
		out <- ExportResult{Err: err}
		close(out)
		return out
	}
	snap := ed.Snapshot()
	go func() {
		defer close(out)
		art, err := p.exporter.Export(ctx, snap)
		out <- ExportResult{Artifact: art, Err: err}
	}()
	return out
}

// ExportDocument writes every frame as a PDF page.
func (p *Project) ExportDocument(ctx context.Context, w io.Writer) error {
	ed, err := p.ready()
	if err != nil {
		return err
	}
	opts := p.opts.Document
	if opts.Title == "" {
		opts.Title = ed.Drill().Meta.Title
	}
	if id := p.RemoteID(); id != 0 && p.opts.ShareURL != nil {
		opts.ShareURL = p.opts.ShareURL(id)
	}
	src := source.NewDrillSource(ed.Snapshot().Frames, p.opts.Background)
	defer src.Close()
	return document.Export(ctx, src, w, opts, p.logger)
}

// Thumbnail renders the first frame as a PNG.
func (p *Project) Thumbnail() ([]byte, error) {
	ed, err := p.ready()
	if err != nil {
		return nil, err
	}
	f, err := ed.Drill().Frame(0)
	if err != nil {
		return nil, err
	}
	return p.exporter.Thumbnail(f, p.opts.ThumbnailWidth)
}

// Save stores the drill. The thumbnail is always recomputed; the animation
// only when the frames differ from what the backend last stored. Any
// rendering failure aborts before a request is made.
func (p *Project) Save(ctx context.Context) (persist.DrillView, error) {
	ed, err := p.ready()
	if err != nil {
		return persist.DrillView{}, err
	}
	if p.opts.Backend == nil {
		return persist.DrillView{}, ErrNoBackend
	}
	d := ed.Drill()
	snap := ed.Snapshot()

	p.mu.Lock()
	remoteID, baseline, baselineSpeed := p.remoteID, p.baseline, p.baselineSpeed
	p.mu.Unlock()

	thumb, err := p.exporter.Thumbnail(snap.Frames[0], p.opts.ThumbnailWidth)
	if err != nil {
		return persist.DrillView{}, fmt.Errorf("render thumbnail: %w", err)
	}
	rec := persist.ToRecord(d.Meta, snap.Speed, snap.Frames)
	rec.ThumbnailBase64 = persist.EncodeArtifact(thumb)

	// Keyframe delays are baked into the GIF, so a speed change alone also
	// invalidates the stored animation.
	if baseline == nil || baselineSpeed != snap.Speed || persist.Diff(baseline, snap.Frames) {
		art, err := p.exporter.Export(ctx, snap)
		if err != nil {
			return persist.DrillView{}, fmt.Errorf("regenerate animation: %w", err)
		}
		rec.AnimationGIF = persist.EncodeArtifact(art.Data)
	} else {
		p.logger.Debug("frames unchanged, keeping stored animation", "id", remoteID)
	}

	var view persist.DrillView
	if remoteID == 0 {
		view, err = p.opts.Backend.CreateDrill(ctx, rec)
	} else {
		view, err = p.opts.Backend.UpdateDrill(ctx, remoteID, rec)
	}
	if err != nil {
		return persist.DrillView{}, fmt.Errorf("save drill: %w", err)
	}

	p.mu.Lock()
	p.remoteID, p.baseline, p.baselineSpeed = view.ID, snap.Frames, snap.Speed
	p.mu.Unlock()
	p.logger.Info("saved drill", "id", view.ID, "animation", rec.AnimationGIF != "", "video", view.AnimationVideoStatus)
	return view, nil
}

// WatchTranscode polls the remote video conversion until it resolves.
// Only one watch runs per project; Close cancels it.
func (p *Project) WatchTranscode(ctx context.Context) (persist.StatusView, error) {
	if p.opts.Poller == nil {
		return persist.StatusView{}, ErrNoBackend
	}
	id := p.RemoteID()
	if id == 0 {
		return persist.StatusView{}, ErrNotSaved
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.pollMu.Lock()
	if p.pollCancel != nil {
		p.pollMu.Unlock()
		return persist.StatusView{}, api.ErrPollActive
	}
	p.pollCancel = cancel
	p.pollMu.Unlock()
	defer func() {
		p.pollMu.Lock()
		p.pollCancel = nil
		p.pollMu.Unlock()
	}()
	return p.opts.Poller.Poll(ctx, id)
}

// Close stops any running transcode poll.
func (p *Project) Close() {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()
	// The running watch clears its own registration when Poll returns.
	if p.pollCancel != nil {
		p.pollCancel()
	}
}
