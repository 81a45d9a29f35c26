package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/system"
)

// Options controls how frames are rasterized.
type Options struct {
	// Width of the output in pixels. Height follows the 3:2 canvas.
	Width int
	// Background, when set, replaces the drawn pitch.
	Background image.Image
	// Pooled makes Render draw into buffers from system.GetImage. The caller
	// returns them with system.PutImage.
	Pooled bool
}

var (
	pitchGreen = color.RGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	pitchLine  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc0}

	fontOnce sync.Once
	fontData *opentype.Font
	fontErr  error
)

func parsedFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(goregular.TTF)
	})
	return fontData, fontErr
}

// Raster draws drill frames onto RGBA images. It is safe for concurrent use.
type Raster struct {
	opts  Options
	scale float64
	rect  image.Rectangle
	bg    *image.RGBA
}

func NewRaster(opts Options) (*Raster, error) {
	if opts.Width <= 0 {
		opts.Width = drill.CanvasWidth
	}
	if _, err := parsedFont(); err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}
	scale := float64(opts.Width) / drill.CanvasWidth
	height := int(math.Round(drill.CanvasHeight * scale))
	r := &Raster{
		opts:  opts,
		scale: scale,
		rect:  image.Rect(0, 0, opts.Width, height),
	}
	r.bg = r.background()
	return r, nil
}

// Bounds is the size of every image Render returns.
func (r *Raster) Bounds() image.Rectangle { return r.rect }

func (r *Raster) background() *image.RGBA {
	bg := image.NewRGBA(r.rect)
	if r.opts.Background != nil {
		xdraw.CatmullRom.Scale(bg, r.rect, r.opts.Background, r.opts.Background.Bounds(), xdraw.Src, nil)
		return bg
	}
	dc := gg.NewContextForRGBA(bg)
	dc.Scale(r.scale, r.scale)
	dc.SetColor(pitchGreen)
	dc.Clear()

	w, h := float64(drill.CanvasWidth), float64(drill.CanvasHeight)
	dc.SetColor(pitchLine)
	dc.SetLineWidth(2)
	dc.DrawRectangle(20, 20, w-40, h-40)
	dc.Stroke()
	dc.DrawLine(w/2, 20, w/2, h-20)
	dc.Stroke()
	dc.DrawCircle(w/2, h/2, 60)
	dc.Stroke()
	dc.DrawRectangle(20, h/2-110, 110, 220)
	dc.Stroke()
	dc.DrawRectangle(w-130, h/2-110, 110, 220)
	dc.Stroke()
	return bg
}

// Render rasterizes one frame.
func (r *Raster) Render(f drill.Frame) (*image.RGBA, error) {
	var img *image.RGBA
	if r.opts.Pooled {
		img = system.GetImage(r.rect)
	} else {
		img = image.NewRGBA(r.rect)
	}
	copy(img.Pix, r.bg.Pix)

	// font.Face keeps glyph caches and is not safe to share across goroutines.
	face, err := opentype.NewFace(fontData, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("create label face: %w", err)
	}
	defer face.Close()

	dc := gg.NewContextForRGBA(img)
	dc.Scale(r.scale, r.scale)
	dc.SetFontFace(face)
	for _, e := range f.Elements {
		dc.Push()
		dc.RotateAbout(gg.Radians(e.Rotation), e.X, e.Y)
		drawElement(dc, e)
		dc.Pop()
	}
	return img, nil
}

func drawElement(dc *gg.Context, e drill.Element) {
	size := e.Size
	if size <= 0 {
		size = 1
	}
	fill := parseColor(e.Color, color.White)

	switch e.Kind {
	case drill.KindPlayer:
		drawPlayer(dc, e, size, fill)
	case drill.KindEquipment:
		drawEquipment(dc, e, size, fill)
	case drill.KindMovement:
		drawMovement(dc, e, size, fill)
	case drill.KindText:
		dc.SetColor(fill)
		dc.DrawStringAnchored(e.Text, e.X, e.Y, 0.5, 0.5)
	}
}

func drawPlayer(dc *gg.Context, e drill.Element, size float64, fill color.Color) {
	r := 14 * size
	dc.DrawCircle(e.X, e.Y, r)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(color.Black)
	dc.SetLineWidth(2)
	dc.Stroke()
	if e.Subtype == drill.PlayerGoalkeeper {
		dc.DrawCircle(e.X, e.Y, r+4)
		dc.SetColor(fill)
		dc.Stroke()
	}
	label := e.Text
	if e.Subtype == drill.PlayerCoach && label == "" {
		label = "C"
	}
	if label != "" {
		dc.SetColor(contrast(fill))
		dc.DrawStringAnchored(label, e.X, e.Y, 0.5, 0.35)
	}
}

func drawEquipment(dc *gg.Context, e drill.Element, size float64, fill color.Color) {
	x, y := e.X, e.Y
	dc.SetColor(fill)
	dc.SetLineWidth(2)
	switch e.Subtype {
	case drill.EquipmentCone, drill.EquipmentConeOrange, drill.EquipmentConeBlue:
		s := 12 * size
		dc.MoveTo(x, y-s)
		dc.LineTo(x+s, y+s)
		dc.LineTo(x-s, y+s)
		dc.ClosePath()
		dc.Fill()
	case drill.EquipmentCircle:
		dc.DrawCircle(x, y, 10*size)
		dc.Stroke()
	case drill.EquipmentSquare:
		s := 10 * size
		dc.DrawRectangle(x-s, y-s, 2*s, 2*s)
		dc.Stroke()
	case drill.EquipmentBall:
		dc.DrawCircle(x, y, 6*size)
		dc.FillPreserve()
		dc.SetColor(color.Black)
		dc.SetLineWidth(1)
		dc.Stroke()
	case drill.EquipmentGoal:
		w, h := 60*size, 20*size
		dc.MoveTo(x-w/2, y+h/2)
		dc.LineTo(x-w/2, y-h/2)
		dc.LineTo(x+w/2, y-h/2)
		dc.LineTo(x+w/2, y+h/2)
		dc.SetLineWidth(3)
		dc.Stroke()
	case drill.EquipmentLadder:
		w, h := 20*size, 80*size
		dc.DrawRectangle(x-w/2, y-h/2, w, h)
		dc.Stroke()
		for i := 1; i < 6; i++ {
			yy := y - h/2 + h*float64(i)/6
			dc.DrawLine(x-w/2, yy, x+w/2, yy)
			dc.Stroke()
		}
	case drill.EquipmentHurdle:
		w := 24 * size
		dc.SetLineWidth(4)
		dc.DrawLine(x-w/2, y, x+w/2, y)
		dc.Stroke()
		dc.SetLineWidth(2)
		dc.DrawLine(x-w/2, y-6*size, x-w/2, y+6*size)
		dc.DrawLine(x+w/2, y-6*size, x+w/2, y+6*size)
		dc.Stroke()
	case drill.EquipmentPole:
		dc.DrawCircle(x, y, 4*size)
		dc.Fill()
		dc.SetLineWidth(3)
		dc.DrawLine(x, y, x, y-30*size)
		dc.Stroke()
	}
}

// drawMovement draws an arrow centred on the anchor and pointing right;
// rotation turns it.
func drawMovement(dc *gg.Context, e drill.Element, size float64, fill color.Color) {
	half := 40 * size
	x0, x1, y := e.X-half, e.X+half, e.Y
	dc.SetColor(fill)
	dc.SetLineWidth(2)
	switch e.Subtype {
	case drill.MovementArrow:
		dc.DrawLine(x0, y, x1, y)
		dc.Stroke()
	case drill.MovementPass:
		dc.SetDash(8, 6)
		dc.DrawLine(x0, y, x1, y)
		dc.Stroke()
		dc.SetDash()
	case drill.MovementDribble:
		steps := 8
		dc.MoveTo(x0, y)
		for i := 1; i <= steps; i++ {
			dy := 6.0
			if i%2 == 0 {
				dy = -6
			}
			if i == steps {
				dy = 0
			}
			dc.LineTo(x0+(x1-x0)*float64(i)/float64(steps), y+dy)
		}
		dc.Stroke()
	case drill.MovementShot:
		dc.SetLineWidth(4)
		dc.DrawLine(x0, y, x1, y)
		dc.Stroke()
	}
	head := 10 * size
	dc.MoveTo(x1+2, y)
	dc.LineTo(x1-head, y-head/2)
	dc.LineTo(x1-head, y+head/2)
	dc.ClosePath()
	dc.Fill()
}

// parseColor accepts "#rgb", "#rrggbb" or an SVG color name.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return fallback
	}
	if c, ok := colornames.Map[s]; ok {
		return c
	}
	hex := strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(hex) {
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return fallback
		}
	case 3:
		if _, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b); err != nil {
			return fallback
		}
		r, g, b = r*17, g*17, b*17
	default:
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// contrast picks black or white text for a fill.
func contrast(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
	if lum > 150 {
		return color.Black
	}
	return color.White
}
