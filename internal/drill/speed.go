package drill

import (
	"fmt"
	"time"
)

// Speed is the animation preset controlling how long each keyframe is held.
type Speed string

const (
	SpeedSlow    Speed = "slow"
	SpeedRegular Speed = "regular"
	SpeedFast    Speed = "fast"
)

// Delay returns the per-keyframe display duration.
func (s Speed) Delay() time.Duration {
	switch s {
	case SpeedSlow:
		return 1200 * time.Millisecond
	case SpeedFast:
		return 400 * time.Millisecond
	default:
		return 800 * time.Millisecond
	}
}

// ParseSpeed validates a preset name. An empty name means regular.
func ParseSpeed(s string) (Speed, error) {
	switch Speed(s) {
	case SpeedSlow, SpeedRegular, SpeedFast:
		return Speed(s), nil
	case "":
		return SpeedRegular, nil
	}
	return "", fmt.Errorf("unknown speed preset %q", s)
}
