package drill

// Element is a single positioned drawable on a frame.
type Element struct {
	ID       string  `json:"id" yaml:"id"`
	Kind     Kind    `json:"kind" yaml:"kind"`
	Subtype  string  `json:"subtype" yaml:"subtype"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Color    string  `json:"color,omitempty" yaml:"color,omitempty"`
	Text     string  `json:"text,omitempty" yaml:"text,omitempty"`
	Size     float64 `json:"size" yaml:"size"`
	Rotation float64 `json:"rotation" yaml:"rotation"`
}

// Patch carries optional field updates for UpdateElement. Nil fields are left alone.
type Patch struct {
	X        *float64
	Y        *float64
	Color    *string
	Text     *string
	Size     *float64
	Rotation *float64
}

// minSize keeps elements from collapsing to an invisible point.
const minSize = 0.1

func (e Element) apply(p Patch) Element {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Text != nil {
		e.Text = *p.Text
	}
	if p.Size != nil {
		e.Size = max(*p.Size, minSize)
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	return e
}

// Frame is one keyframe: an ordered snapshot of elements.
type Frame struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	out := Frame{ID: f.ID, Name: f.Name, Elements: make([]Element, len(f.Elements))}
	copy(out.Elements, f.Elements)
	return out
}

// Index returns the position of the element with id, or -1.
func (f Frame) Index(id string) int {
	for i, e := range f.Elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Lookup builds an id-indexed view of the frame's elements.
func (f Frame) Lookup() map[string]Element {
	m := make(map[string]Element, len(f.Elements))
	for _, e := range f.Elements {
		m[e.ID] = e
	}
	return m
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T { return &v }
