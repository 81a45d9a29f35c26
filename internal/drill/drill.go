package drill

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrFrameIndex     = errors.New("frame index out of range")
	ErrUnknownElement = errors.New("unknown element")
	ErrInvalidKind    = errors.New("invalid element kind")
	ErrNoFrames       = errors.New("drill must have at least one frame")
	ErrDuplicateID    = errors.New("duplicate element id in frame")
)

// Meta is descriptive data that travels with a drill but plays no part in editing.
type Meta struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Coach       string   `json:"coach,omitempty" yaml:"coach,omitempty"`
	Categories  []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

type counterKey struct {
	frameID string
	subtype string
}

// Drill is the ordered list of frames plus the per-(frame, subtype) player
// counters. Elements sharing an id across frames are the same tracked entity
// for interpolation purposes.
//
// A Drill is not safe for concurrent use; mutations are expected to be
// serialized by the caller.
type Drill struct {
	Meta Meta

	frames   []Frame
	counters map[counterKey]int
	speed    Speed
	ids      IDSource
	revision uint64
}

// New returns a drill holding one empty frame.
func New(ids IDSource) *Drill {
	if ids == nil {
		ids = UUIDSource{}
	}
	d := &Drill{
		counters: make(map[counterKey]int),
		speed:    SpeedRegular,
		ids:      ids,
	}
	d.frames = []Frame{d.newFrame()}
	return d
}

// Restore builds a drill from previously persisted frames. Counters are
// rebuilt from the highest numeric label per (frame, subtype).
func Restore(meta Meta, speed Speed, frames []Frame, ids IDSource) (*Drill, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if ids == nil {
		ids = UUIDSource{}
	}
	if speed == "" {
		speed = SpeedRegular
	}
	d := &Drill{
		Meta:     meta,
		counters: make(map[counterKey]int),
		speed:    speed,
		ids:      ids,
		frames:   make([]Frame, 0, len(frames)),
	}
	for i, f := range frames {
		f = f.Clone()
		if f.ID == "" {
			f.ID = ids.NewID()
		}
		if f.Name == "" {
			f.Name = fmt.Sprintf("Frame %d", i+1)
		}
		seen := make(map[string]bool, len(f.Elements))
		for j, e := range f.Elements {
			if !e.Kind.Valid() || !e.Kind.ValidSubtype(e.Subtype) {
				return nil, fmt.Errorf("frame %d: %w: %s/%s", i, ErrInvalidKind, e.Kind, e.Subtype)
			}
			if e.ID == "" {
				e.ID = ids.NewID()
			}
			if seen[e.ID] {
				return nil, fmt.Errorf("frame %d: %w: %s", i, ErrDuplicateID, e.ID)
			}
			seen[e.ID] = true
			if e.Size <= 0 {
				e.Size = 1
			}
			f.Elements[j] = e
		}
		d.frames = append(d.frames, f)
	}
	d.RebuildCounters()
	return d, nil
}

func (d *Drill) newFrame() Frame {
	return Frame{
		ID:       d.ids.NewID(),
		Name:     fmt.Sprintf("Frame %d", len(d.frames)+1),
		Elements: []Element{},
	}
}

func (d *Drill) touch() { d.revision++ }

func (d *Drill) checkIndex(i int) error {
	if i < 0 || i >= len(d.frames) {
		return fmt.Errorf("%w: %d (have %d)", ErrFrameIndex, i, len(d.frames))
	}
	return nil
}

// Revision increases on every mutation.
func (d *Drill) Revision() uint64 { return d.revision }

func (d *Drill) Speed() Speed { return d.speed }

func (d *Drill) SetSpeed(s Speed) {
	if s == d.speed {
		return
	}
	d.speed = s
	d.touch()
}

func (d *Drill) Len() int { return len(d.frames) }

// Frame returns a copy of frame i.
func (d *Drill) Frame(i int) (Frame, error) {
	if err := d.checkIndex(i); err != nil {
		return Frame{}, err
	}
	return d.frames[i].Clone(), nil
}

// Frames returns a deep copy of the frame list.
func (d *Drill) Frames() []Frame {
	out := make([]Frame, len(d.frames))
	for i, f := range d.frames {
		out[i] = f.Clone()
	}
	return out
}

// Counter reports the running player counter for a frame and subtype.
func (d *Drill) Counter(frameIndex int, subtype string) int {
	if d.checkIndex(frameIndex) != nil {
		return 0
	}
	return d.counters[counterKey{d.frames[frameIndex].ID, subtype}]
}

// RebuildCounters resets every counter to the highest numeric label present.
func (d *Drill) RebuildCounters() {
	d.counters = make(map[counterKey]int)
	for _, f := range d.frames {
		for _, e := range f.Elements {
			if !IsNumbered(e.Kind, e.Subtype) {
				continue
			}
			n, err := strconv.Atoi(e.Text)
			if err != nil {
				continue
			}
			k := counterKey{f.ID, e.Subtype}
			if n > d.counters[k] {
				d.counters[k] = n
			}
		}
	}
}

// AddElement inserts e into frame frameIndex with a fresh id. Cone-family
// equipment copies color, size and rotation from the most recent element of
// the same subtype in that frame; non-coach players get the next number for
// their subtype.
func (d *Drill) AddElement(frameIndex int, e Element) (Element, error) {
	if err := d.checkIndex(frameIndex); err != nil {
		return Element{}, err
	}
	if !e.Kind.Valid() || !e.Kind.ValidSubtype(e.Subtype) {
		return Element{}, fmt.Errorf("%w: %s/%s", ErrInvalidKind, e.Kind, e.Subtype)
	}
	f := &d.frames[frameIndex]
	e.ID = d.ids.NewID()
	if e.Size <= 0 {
		e.Size = 1
	}

	switch e.Kind {
	case KindEquipment:
		if !IsConeFamily(e.Subtype) {
			break
		}
		for i := len(f.Elements) - 1; i >= 0; i-- {
			prev := f.Elements[i]
			if prev.Kind == KindEquipment && prev.Subtype == e.Subtype {
				e.Color, e.Size, e.Rotation = prev.Color, prev.Size, prev.Rotation
				break
			}
		}
	case KindPlayer:
		if IsNumbered(e.Kind, e.Subtype) {
			k := counterKey{f.ID, e.Subtype}
			d.counters[k]++
			e.Text = strconv.Itoa(d.counters[k])
		}
	case KindMovement, KindText:
	}

	f.Elements = append(f.Elements, e)
	d.touch()
	return e, nil
}

// RemoveElement deletes the element from frame frameIndex and from every later
// frame. Earlier frames keep their copy. A numbered player decrements its
// counter only when it carried the highest label.
func (d *Drill) RemoveElement(frameIndex int, id string) error {
	if err := d.checkIndex(frameIndex); err != nil {
		return err
	}
	f := d.frames[frameIndex]
	idx := f.Index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	e := f.Elements[idx]
	if IsNumbered(e.Kind, e.Subtype) {
		k := counterKey{f.ID, e.Subtype}
		if n, err := strconv.Atoi(e.Text); err == nil && n == d.counters[k] && n > 0 {
			d.counters[k]--
		}
	}
	for i := frameIndex; i < len(d.frames); i++ {
		d.frames[i].Elements = removeByID(d.frames[i].Elements, id)
	}
	d.touch()
	return nil
}

func removeByID(elems []Element, id string) []Element {
	out := elems[:0]
	for _, e := range elems {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// UpdateElement merges p into the element. Only frame frameIndex is touched.
func (d *Drill) UpdateElement(frameIndex int, id string, p Patch) (Element, error) {
	if err := d.checkIndex(frameIndex); err != nil {
		return Element{}, err
	}
	f := &d.frames[frameIndex]
	idx := f.Index(id)
	if idx < 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	updated := f.Elements[idx].apply(p)
	if updated == f.Elements[idx] {
		return updated, nil
	}
	f.Elements[idx] = updated
	d.touch()
	return updated, nil
}

// AddFrame appends an empty frame and returns its index.
func (d *Drill) AddFrame() int {
	d.frames = append(d.frames, d.newFrame())
	d.touch()
	return len(d.frames) - 1
}

// DuplicateFrame appends a copy of frame i that keeps every element id, so
// the copy interpolates against its source. Counters carry over.
func (d *Drill) DuplicateFrame(i int) (int, error) {
	if err := d.checkIndex(i); err != nil {
		return 0, err
	}
	src := d.frames[i]
	dup := src.Clone()
	dup.ID = d.ids.NewID()
	dup.Name = src.Name + " Copy"
	for k, v := range d.counters {
		if k.frameID == src.ID {
			d.counters[counterKey{dup.ID, k.subtype}] = v
		}
	}
	d.frames = append(d.frames, dup)
	d.touch()
	return len(d.frames) - 1, nil
}

// RemoveFrame deletes frame i. It is a no-op returning false when i is the
// only frame left.
func (d *Drill) RemoveFrame(i int) (bool, error) {
	if err := d.checkIndex(i); err != nil {
		return false, err
	}
	if len(d.frames) == 1 {
		return false, nil
	}
	id := d.frames[i].ID
	for k := range d.counters {
		if k.frameID == id {
			delete(d.counters, k)
		}
	}
	d.frames = append(d.frames[:i], d.frames[i+1:]...)
	d.touch()
	return true, nil
}

func (d *Drill) RenameFrame(i int, name string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if d.frames[i].Name == name {
		return nil
	}
	d.frames[i].Name = name
	d.touch()
	return nil
}

// Clone returns an independent deep copy sharing only the id source.
func (d *Drill) Clone() *Drill {
	c := &Drill{
		Meta:     d.Meta,
		frames:   d.Frames(),
		counters: make(map[counterKey]int, len(d.counters)),
		speed:    d.speed,
		ids:      d.ids,
		revision: d.revision,
	}
	c.Meta.Categories = append([]string(nil), d.Meta.Categories...)
	for k, v := range d.counters {
		c.counters[k] = v
	}
	return c
}

// Snapshot is an immutable view of what an export needs.
type Snapshot struct {
	Frames   []Frame
	Speed    Speed
	Revision uint64
}

func (d *Drill) Snapshot() Snapshot {
	return Snapshot{Frames: d.Frames(), Speed: d.speed, Revision: d.revision}
}
