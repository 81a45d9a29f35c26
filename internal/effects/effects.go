// Package effects holds the easing curves applied to tween progress.
package effects

import (
	"fmt"
	"sort"
	"strings"
)

// Easing maps linear progress t in [0,1] to eased progress.
type Easing interface {
	Ease(t float64) float64
}

// Linear leaves progress untouched, giving plain a + (b-a)*t tweens.
type Linear struct{}

func (Linear) Ease(t float64) float64 { return t }

// EaseInOutCubic accelerates into the middle of a tween and decelerates out of it.
type EaseInOutCubic struct{}

func (EaseInOutCubic) Ease(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

var registry = map[string]Easing{
	"linear":      Linear{},
	"ease-in-out": EaseInOutCubic{},
}

// NewEasing returns the easing registered under name. Empty means linear.
func NewEasing(name string) (Easing, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Linear{}, nil
	}
	if e, ok := registry[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("unknown easing %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the registered easings.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
