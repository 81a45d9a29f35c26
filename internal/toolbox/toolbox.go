// Package toolbox provides the default color and size presets used when an
// element is dropped onto the canvas.
package toolbox

import (
	"fmt"

	"github.com/ivlev/drillanim/internal/drill"
)

// Preset is the starting appearance for one kind/subtype.
type Preset struct {
	Kind    drill.Kind
	Subtype string
	Color   string
	Size    float64
}

var presets = map[string]Preset{}

func register(k drill.Kind, subtype, color string, size float64) {
	presets[drill.IconPath(k, subtype)] = Preset{Kind: k, Subtype: subtype, Color: color, Size: size}
}

func init() {
	register(drill.KindPlayer, drill.PlayerTeam1, "#1e88e5", 1)
	register(drill.KindPlayer, drill.PlayerTeam2, "#e53935", 1)
	register(drill.KindPlayer, drill.PlayerGoalkeeper, "#fdd835", 1)
	register(drill.KindPlayer, drill.PlayerCoach, "#212121", 1)

	register(drill.KindEquipment, drill.EquipmentCone, "#ffeb3b", 1)
	register(drill.KindEquipment, drill.EquipmentConeOrange, "#fb8c00", 1)
	register(drill.KindEquipment, drill.EquipmentConeBlue, "#1565c0", 1)
	register(drill.KindEquipment, drill.EquipmentCircle, "#ffffff", 1)
	register(drill.KindEquipment, drill.EquipmentSquare, "#ffffff", 1)
	register(drill.KindEquipment, drill.EquipmentBall, "#ffffff", 1)
	register(drill.KindEquipment, drill.EquipmentGoal, "#ffffff", 1)
	register(drill.KindEquipment, drill.EquipmentLadder, "#ffeb3b", 1)
	register(drill.KindEquipment, drill.EquipmentHurdle, "#f4511e", 1)
	register(drill.KindEquipment, drill.EquipmentPole, "#ffeb3b", 1)

	register(drill.KindMovement, drill.MovementArrow, "#ffffff", 1)
	register(drill.KindMovement, drill.MovementPass, "#ffffff", 1)
	register(drill.KindMovement, drill.MovementDribble, "#ffffff", 1)
	register(drill.KindMovement, drill.MovementShot, "#ffeb3b", 1)

	register(drill.KindText, drill.TextLabel, "#ffffff", 1)
}

// Lookup returns the built-in preset for a kind/subtype.
func Lookup(k drill.Kind, subtype string) (Preset, bool) {
	p, ok := presets[drill.IconPath(k, subtype)]
	return p, ok
}

// Toolbox holds the user's current color/size override, applied on top of
// the built-in presets for the next drop.
type Toolbox struct {
	color string
	size  float64
}

func New() *Toolbox {
	return &Toolbox{}
}

// SetColor overrides the preset color. An empty string restores the preset.
func (t *Toolbox) SetColor(c string) { t.color = c }

// SetSize overrides the preset size. Zero restores the preset.
func (t *Toolbox) SetSize(s float64) {
	if s < 0 {
		s = 0
	}
	t.size = s
}

// Prepare builds the partial element for a drop at (x, y). The model still
// applies its own inheritance and numbering rules on insert.
func (t *Toolbox) Prepare(k drill.Kind, subtype string, x, y float64) (drill.Element, error) {
	p, ok := Lookup(k, subtype)
	if !ok {
		return drill.Element{}, fmt.Errorf("%w: %s", drill.ErrInvalidKind, drill.IconPath(k, subtype))
	}
	e := drill.Element{
		Kind:    k,
		Subtype: subtype,
		X:       x,
		Y:       y,
		Color:   p.Color,
		Size:    p.Size,
	}
	if t.color != "" {
		e.Color = t.color
	}
	if t.size > 0 {
		e.Size = t.size
	}
	if k == drill.KindText {
		e.Text = "Text"
	}
	return e, nil
}
