package editor

import (
	"github.com/ivlev/drillanim/internal/drill"
)

type transform struct {
	attached bool
}

// TransformCapabilities describes what the attached handle may do.
type TransformCapabilities struct {
	Attached  bool
	CanResize bool
	CanRotate bool
}

// DoubleClick selects id and attaches the resize/rotate handle when at least
// one selected element is eligible.
func (e *Editor) DoubleClick(id string) {
	e.Click(id, Modifiers{})
	if e.eligible() > 0 {
		e.transform.attached = true
	}
}

func (e *Editor) eligible() int {
	f := e.CurrentFrame()
	n := 0
	for _, id := range e.selection {
		if i := f.Index(id); i >= 0 && drill.Transformable(f.Elements[i].Kind, f.Elements[i].Subtype) {
			n++
		}
	}
	return n
}

// rotateOnly reports whether every selected element is cone-family
// equipment, which disables resizing for the whole batch.
func (e *Editor) rotateOnly() bool {
	f := e.CurrentFrame()
	if len(e.selection) == 0 {
		return false
	}
	for _, id := range e.selection {
		i := f.Index(id)
		if i < 0 {
			continue
		}
		el := f.Elements[i]
		if el.Kind != drill.KindEquipment || !drill.IsConeFamily(el.Subtype) {
			return false
		}
	}
	return true
}

func (e *Editor) TransformCapabilities() TransformCapabilities {
	if !e.transform.attached {
		return TransformCapabilities{}
	}
	return TransformCapabilities{Attached: true, CanResize: !e.rotateOnly(), CanRotate: true}
}

// CommitTransform multiplies size by scale and sets rotation to degrees on
// every eligible selected element.
func (e *Editor) CommitTransform(scale, degrees float64) error {
	if !e.transform.attached {
		return ErrNoTransform
	}
	resize := !e.rotateOnly()
	f := e.CurrentFrame()
	for _, id := range e.selection {
		i := f.Index(id)
		if i < 0 {
			continue
		}
		el := f.Elements[i]
		if !drill.Transformable(el.Kind, el.Subtype) {
			continue
		}
		p := drill.Patch{Rotation: &degrees}
		if resize {
			size := el.Size * scale
			p.Size = &size
		}
		if _, err := e.drill.UpdateElement(e.current, id, p); err != nil {
			return err
		}
	}
	return nil
}
