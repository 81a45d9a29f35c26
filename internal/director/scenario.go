package director

import (
	"fmt"

	"github.com/ivlev/drillanim/internal/drill"
)

const ScenarioVersion = "1.0"

// Scenario is a drill stored as a YAML document.
type Scenario struct {
	Version     string          `yaml:"version"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description,omitempty"`
	Coach       string          `yaml:"coach,omitempty"`
	Categories  []string        `yaml:"categories,omitempty"`
	Speed       string          `yaml:"speed,omitempty"`
	Frames      []ScenarioFrame `yaml:"frames"`
}

// ScenarioFrame is one keyframe of a scenario.
type ScenarioFrame struct {
	Name     string            `yaml:"name"`
	Elements []ScenarioElement `yaml:"elements"`
}

// ScenarioElement uses the same "<kind>/<subtype>" icon path as the backend.
// Elements sharing an id across frames are tweened into each other; elements
// without one get a fresh id.
type ScenarioElement struct {
	ID       string  `yaml:"id,omitempty"`
	Icon     string  `yaml:"icon"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Text     string  `yaml:"text,omitempty"`
	Color    string  `yaml:"color,omitempty"`
	Size     float64 `yaml:"size,omitempty"`
	Rotation float64 `yaml:"rotation,omitempty"`
}

// ToDrill validates the scenario and builds a drill from it.
func (s *Scenario) ToDrill(ids drill.IDSource) (*drill.Drill, error) {
	speed, err := drill.ParseSpeed(s.Speed)
	if err != nil {
		return nil, err
	}
	frames := make([]drill.Frame, len(s.Frames))
	for i, sf := range s.Frames {
		f := drill.Frame{Name: sf.Name, Elements: make([]drill.Element, len(sf.Elements))}
		for j, se := range sf.Elements {
			kind, subtype, err := drill.ParseIconPath(se.Icon)
			if err != nil {
				return nil, fmt.Errorf("frame %q element %d: %w", sf.Name, j, err)
			}
			f.Elements[j] = drill.Element{
				ID:       se.ID,
				Kind:     kind,
				Subtype:  subtype,
				X:        se.X,
				Y:        se.Y,
				Text:     se.Text,
				Color:    se.Color,
				Size:     se.Size,
				Rotation: se.Rotation,
			}
		}
		frames[i] = f
	}
	meta := drill.Meta{Title: s.Title, Description: s.Description, Coach: s.Coach, Categories: s.Categories}
	return drill.Restore(meta, speed, frames, ids)
}

// FromDrill captures the current state of d as a scenario.
func FromDrill(d *drill.Drill) *Scenario {
	s := &Scenario{
		Version:     ScenarioVersion,
		Title:       d.Meta.Title,
		Description: d.Meta.Description,
		Coach:       d.Meta.Coach,
		Categories:  d.Meta.Categories,
		Speed:       string(d.Speed()),
	}
	for _, f := range d.Frames() {
		sf := ScenarioFrame{Name: f.Name, Elements: make([]ScenarioElement, len(f.Elements))}
		for j, e := range f.Elements {
			sf.Elements[j] = ScenarioElement{
				ID:       e.ID,
				Icon:     drill.IconPath(e.Kind, e.Subtype),
				X:        e.X,
				Y:        e.Y,
				Text:     e.Text,
				Color:    e.Color,
				Size:     e.Size,
				Rotation: e.Rotation,
			}
		}
		s.Frames = append(s.Frames, sf)
	}
	return s
}
