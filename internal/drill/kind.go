package drill

import (
	"fmt"
	"strings"
)

// Canvas is the fixed logical drawing surface in pixels.
const (
	CanvasWidth  = 900
	CanvasHeight = 600
)

// Kind is the closed set of drawable element kinds.
type Kind string

const (
	KindPlayer    Kind = "player"
	KindEquipment Kind = "equipment"
	KindMovement  Kind = "movement"
	KindText      Kind = "text"
)

// Player subtypes.
const (
	PlayerTeam1      = "team1"
	PlayerTeam2      = "team2"
	PlayerGoalkeeper = "goalkeeper"
	PlayerCoach      = "coach"
)

// Equipment subtypes.
const (
	EquipmentCone       = "cone"
	EquipmentConeOrange = "cone-orange"
	EquipmentConeBlue   = "cone-blue"
	EquipmentCircle     = "circle"
	EquipmentSquare     = "square"
	EquipmentBall       = "ball"
	EquipmentGoal       = "goal"
	EquipmentLadder     = "ladder"
	EquipmentHurdle     = "hurdle"
	EquipmentPole       = "pole"
)

// Movement subtypes.
const (
	MovementArrow   = "arrow"
	MovementPass    = "pass"
	MovementDribble = "dribble"
	MovementShot    = "shot"
)

// TextLabel is the only text subtype.
const TextLabel = "label"

var subtypes = map[Kind][]string{
	KindPlayer:    {PlayerTeam1, PlayerTeam2, PlayerGoalkeeper, PlayerCoach},
	KindEquipment: {EquipmentCone, EquipmentConeOrange, EquipmentConeBlue, EquipmentCircle, EquipmentSquare, EquipmentBall, EquipmentGoal, EquipmentLadder, EquipmentHurdle, EquipmentPole},
	KindMovement:  {MovementArrow, MovementPass, MovementDribble, MovementShot},
	KindText:      {TextLabel},
}

// Kinds returns every kind in display order.
func Kinds() []Kind {
	return []Kind{KindPlayer, KindEquipment, KindMovement, KindText}
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPlayer, KindEquipment, KindMovement, KindText:
		return true
	}
	return false
}

// Subtypes returns the subtypes that belong to k.
func (k Kind) Subtypes() []string {
	out := make([]string, len(subtypes[k]))
	copy(out, subtypes[k])
	return out
}

// ValidSubtype reports whether subtype belongs to k.
func (k Kind) ValidSubtype(subtype string) bool {
	for _, s := range subtypes[k] {
		if s == subtype {
			return true
		}
	}
	return false
}

// IconPath joins kind and subtype into the persisted "<kind>/<subtype>" form.
func IconPath(k Kind, subtype string) string {
	return string(k) + "/" + subtype
}

// ParseIconPath splits a "<kind>/<subtype>" path and validates both halves.
func ParseIconPath(path string) (Kind, string, error) {
	kind, subtype, ok := strings.Cut(path, "/")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKind, path)
	}
	k := Kind(kind)
	if !k.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKind, path)
	}
	if !k.ValidSubtype(subtype) {
		return "", "", fmt.Errorf("%w: subtype %q for %s", ErrInvalidKind, subtype, k)
	}
	return k, subtype, nil
}

// IsNumbered reports whether elements of this kind/subtype get auto-numbered labels.
func IsNumbered(k Kind, subtype string) bool {
	return k == KindPlayer && subtype != PlayerCoach
}

// IsConeFamily reports whether an equipment subtype belongs to the
// rotate-only subset {cone*, circle, square}.
func IsConeFamily(subtype string) bool {
	switch subtype {
	case EquipmentCone, EquipmentConeOrange, EquipmentConeBlue, EquipmentCircle, EquipmentSquare:
		return true
	}
	return false
}

// Transformable reports whether an element may receive a resize/rotate handle.
func Transformable(k Kind, subtype string) bool {
	switch k {
	case KindPlayer, KindMovement:
		return true
	case KindEquipment:
		return IsConeFamily(subtype)
	case KindText:
		return false
	}
	return false
}

// Footprint is the radius in canvas pixels used for hit-testing and layout.
func Footprint(e Element) float64 {
	size := e.Size
	if size <= 0 {
		size = 1
	}
	var base float64
	switch e.Kind {
	case KindPlayer:
		base = 16
	case KindEquipment:
		switch e.Subtype {
		case EquipmentGoal, EquipmentLadder:
			base = 40
		case EquipmentBall:
			base = 8
		default:
			base = 14
		}
	case KindMovement:
		base = 40
	case KindText:
		base = 6 * float64(max(len(e.Text), 2))
	}
	return base * size
}
