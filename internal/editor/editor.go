// Package editor turns pointer and keyboard input into mutations of the
// current frame of a drill. It owns the selection, the active gesture, the
// current frame pointer and the playback flag. An Editor is not safe for
// concurrent use; director.Director serializes access to it.
package editor

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/toolbox"
)

var ErrNoTransform = errors.New("no transform handle attached")

// Point is a canvas position in pixels.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle spanned by two corners in any order.
type Rect struct {
	A, B Point
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	minX, maxX := math.Min(r.A.X, r.B.X), math.Max(r.A.X, r.B.X)
	minY, maxY := math.Min(r.A.Y, r.B.Y), math.Max(r.A.Y, r.B.Y)
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

// Modifiers are the keyboard modifiers held during a pointer or key event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Meta  bool
}

func (m Modifiers) toggle() bool { return m.Ctrl || m.Meta }

func (m Modifiers) any() bool { return m.Shift || m.Ctrl || m.Meta }

type Editor struct {
	drill   *drill.Drill
	toolbox *toolbox.Toolbox
	logger  *log.Logger

	current   int
	selection []string
	gesture   gesture
	transform transform
	playing   bool
}

func New(d *drill.Drill, tb *toolbox.Toolbox, logger *log.Logger) *Editor {
	if tb == nil {
		tb = toolbox.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Editor{drill: d, toolbox: tb, logger: logger}
}

func (e *Editor) Drill() *drill.Drill { return e.drill }

func (e *Editor) Toolbox() *toolbox.Toolbox { return e.toolbox }

// Current returns the index of the frame being edited.
func (e *Editor) Current() int { return e.current }

// CurrentFrame returns a copy of the frame being edited.
func (e *Editor) CurrentFrame() drill.Frame {
	f, _ := e.drill.Frame(e.current)
	return f
}

// Selection returns the selected ids in selection order.
func (e *Editor) Selection() []string {
	return append([]string(nil), e.selection...)
}

func (e *Editor) IsSelected(id string) bool {
	for _, s := range e.selection {
		if s == id {
			return true
		}
	}
	return false
}

// Snapshot captures the drill state for export without touching the editor.
func (e *Editor) Snapshot() drill.Snapshot { return e.drill.Snapshot() }

func (e *Editor) setSelection(ids []string) {
	if equalIDs(ids, e.selection) {
		return
	}
	e.selection = ids
	e.transform = transform{}
}

func (e *Editor) clearSelection() { e.setSelection(nil) }

// pruneSelection drops ids that no longer exist on the current frame.
func (e *Editor) pruneSelection() {
	f := e.CurrentFrame()
	kept := make([]string, 0, len(e.selection))
	for _, id := range e.selection {
		if f.Index(id) >= 0 {
			kept = append(kept, id)
		}
	}
	e.setSelection(kept)
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HitTest returns the topmost element whose footprint covers p.
func (e *Editor) HitTest(p Point) (string, bool) {
	f := e.CurrentFrame()
	for i := len(f.Elements) - 1; i >= 0; i-- {
		el := f.Elements[i]
		if math.Hypot(el.X-p.X, el.Y-p.Y) <= drill.Footprint(el) {
			return el.ID, true
		}
	}
	return "", false
}

// DropElement places a toolbox item on the current frame. The drop point is
// clamped to the canvas.
func (e *Editor) DropElement(k drill.Kind, subtype string, p Point) (drill.Element, error) {
	x := clamp(p.X, 0, drill.CanvasWidth)
	y := clamp(p.Y, 0, drill.CanvasHeight)
	partial, err := e.toolbox.Prepare(k, subtype, x, y)
	if err != nil {
		return drill.Element{}, err
	}
	el, err := e.drill.AddElement(e.current, partial)
	if err != nil {
		return drill.Element{}, fmt.Errorf("drop %s: %w", drill.IconPath(k, subtype), err)
	}
	e.logger.Debug("dropped element", "id", el.ID, "icon", drill.IconPath(k, subtype), "frame", e.current)
	return el, nil
}

// SetText edits the label of an element on the current frame.
func (e *Editor) SetText(id, text string) error {
	_, err := e.drill.UpdateElement(e.current, id, drill.Patch{Text: &text})
	return err
}

// SetColor recolors every selected element.
func (e *Editor) SetColor(color string) error {
	for _, id := range e.selection {
		if _, err := e.drill.UpdateElement(e.current, id, drill.Patch{Color: &color}); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
