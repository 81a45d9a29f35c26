package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"time"

	xdraw "golang.org/x/image/draw"
)

var ErrNoStills = errors.New("no stills to encode")

// GIFEncoder writes stills as an animated GIF that loops forever.
type GIFEncoder struct {
	// Dither enables Floyd-Steinberg error diffusion when mapping to the palette.
	Dither bool
}

func (e *GIFEncoder) Encode(ctx context.Context, stills []Still) ([]byte, error) {
	if len(stills) == 0 {
		return nil, ErrNoStills
	}
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(stills)),
		Delay:     make([]int, 0, len(stills)),
		LoopCount: 0,
	}
	var drawer xdraw.Drawer = xdraw.Src
	if e.Dither {
		drawer = xdraw.FloydSteinberg
	}
	for i, s := range stills {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := s.Image.Bounds()
		p := image.NewPaletted(b, palette.Plan9)
		drawer.Draw(p, b, s.Image, b.Min)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delayOf(s.Duration))
		if i == 0 {
			anim.Config = image.Config{ColorModel: p.Palette, Width: b.Dx(), Height: b.Dy()}
		}
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("gif encode: %w", err)
	}
	return buf.Bytes(), nil
}

// delayOf converts a duration to GIF hundredths of a second, at least one.
func delayOf(d time.Duration) int {
	cs := int((d + 5*time.Millisecond) / (10 * time.Millisecond))
	return max(cs, 1)
}
