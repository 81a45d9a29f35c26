package editor

import (
	"math"

	"github.com/ivlev/drillanim/internal/drill"
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureMarquee
)

type gesture struct {
	kind gestureKind

	// drag
	grab      Point
	anchor    Point
	anchorSet bool

	// marquee
	rect     Rect
	additive bool
}

// Key identifies the keys the editor reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyDelete
	KeyBackspace
	KeyEscape
)

// Click applies click selection rules to id. An empty id is a click on bare
// canvas and clears the selection when no modifier is held.
func (e *Editor) Click(id string, mods Modifiers) {
	if id == "" {
		if !mods.any() {
			e.clearSelection()
		}
		return
	}
	switch {
	case mods.toggle():
		if e.IsSelected(id) {
			kept := make([]string, 0, len(e.selection))
			for _, s := range e.selection {
				if s != id {
					kept = append(kept, s)
				}
			}
			e.setSelection(kept)
		} else {
			e.setSelection(append(e.Selection(), id))
		}
	case mods.Shift:
		if !e.IsSelected(id) {
			e.setSelection(append(e.Selection(), id))
		}
	default:
		if !e.IsSelected(id) {
			e.setSelection([]string{id})
		}
	}
}

// PointerDown starts a drag when p hits an element that ends up selected, or a
// marquee when p is on bare canvas.
func (e *Editor) PointerDown(p Point, mods Modifiers) {
	id, hit := e.HitTest(p)
	if !hit {
		e.gesture = gesture{kind: gestureMarquee, rect: Rect{A: p, B: p}, additive: mods.Shift}
		return
	}
	e.Click(id, mods)
	if !e.IsSelected(id) {
		e.gesture = gesture{}
		return
	}
	f := e.CurrentFrame()
	el := f.Elements[f.Index(id)]
	e.gesture = gesture{kind: gestureDrag, grab: Point{X: p.X - el.X, Y: p.Y - el.Y}}
}

// PointerMove advances the active gesture. A failed move ends the drag.
func (e *Editor) PointerMove(p Point) error {
	switch e.gesture.kind {
	case gestureMarquee:
		e.gesture.rect.B = p
	case gestureDrag:
		if err := e.drag(p); err != nil {
			e.logger.Debug("drag aborted", "frame", e.current, "err", err)
			e.gesture = gesture{}
			return err
		}
	case gestureNone:
	}
	return nil
}

func (e *Editor) drag(p Point) error {
	if len(e.selection) == 1 {
		x := math.Max(0, p.X-e.gesture.grab.X)
		y := math.Max(0, p.Y-e.gesture.grab.Y)
		_, err := e.drill.UpdateElement(e.current, e.selection[0], drill.Patch{X: &x, Y: &y})
		return err
	}
	if !e.gesture.anchorSet {
		e.gesture.anchor = p
		e.gesture.anchorSet = true
		return nil
	}
	dx, dy := p.X-e.gesture.anchor.X, p.Y-e.gesture.anchor.Y
	e.gesture.anchor = p
	return e.moveSelection(dx, dy)
}

func (e *Editor) moveSelection(dx, dy float64) error {
	if dx == 0 && dy == 0 {
		return nil
	}
	f := e.CurrentFrame()
	for _, id := range e.selection {
		i := f.Index(id)
		if i < 0 {
			continue
		}
		x := math.Max(0, f.Elements[i].X+dx)
		y := math.Max(0, f.Elements[i].Y+dy)
		if _, err := e.drill.UpdateElement(e.current, id, drill.Patch{X: &x, Y: &y}); err != nil {
			return err
		}
	}
	return nil
}

// PointerUp finishes the active gesture. A marquee selects the elements whose
// anchor point lies inside the rectangle.
func (e *Editor) PointerUp(p Point) {
	g := e.gesture
	e.gesture = gesture{}
	if g.kind != gestureMarquee {
		return
	}
	g.rect.B = p
	var picked []string
	if g.additive {
		picked = e.Selection()
	}
	for _, el := range e.CurrentFrame().Elements {
		if !g.rect.Contains(Point{X: el.X, Y: el.Y}) {
			continue
		}
		dup := false
		for _, s := range picked {
			if s == el.ID {
				dup = true
				break
			}
		}
		if !dup {
			picked = append(picked, el.ID)
		}
	}
	e.setSelection(picked)
}

// Marquee reports the in-progress marquee rectangle, if any.
func (e *Editor) Marquee() (Rect, bool) {
	return e.gesture.rect, e.gesture.kind == gestureMarquee
}

// KeyDown handles nudging, deletion and clearing the selection.
func (e *Editor) KeyDown(k Key, mods Modifiers) error {
	step := 1.0
	if mods.Shift {
		step = 10
	}
	switch k {
	case KeyLeft:
		return e.moveSelection(-step, 0)
	case KeyRight:
		return e.moveSelection(step, 0)
	case KeyUp:
		return e.moveSelection(0, -step)
	case KeyDown:
		return e.moveSelection(0, step)
	case KeyDelete, KeyBackspace:
		return e.DeleteSelection()
	case KeyEscape:
		e.clearSelection()
	case KeyUnknown:
	}
	return nil
}

// DeleteSelection removes every selected element from the current frame and
// all later frames.
func (e *Editor) DeleteSelection() error {
	for _, id := range e.selection {
		if err := e.drill.RemoveElement(e.current, id); err != nil {
			return err
		}
	}
	if len(e.selection) > 0 {
		e.logger.Debug("deleted elements", "count", len(e.selection), "frame", e.current)
	}
	e.clearSelection()
	return nil
}
