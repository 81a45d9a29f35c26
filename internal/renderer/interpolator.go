package renderer

import (
	"time"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/effects"
)

// DefaultSteps is the number of tween intervals between two keyframes.
const DefaultSteps = 10

// Sample is one entry of the render sequence: a frame to rasterize and how
// long it stays on screen.
type Sample struct {
	Frame    drill.Frame
	Duration time.Duration
	// Key is true for samples that show a keyframe as authored.
	Key bool
}

// BuildSequence expands keyframes into the ordered sample list. Every
// keyframe is held for delay, and steps-1 tweens of delay/steps each are
// inserted between consecutive keyframes.
func BuildSequence(frames []drill.Frame, delay time.Duration, steps int, easing effects.Easing) []Sample {
	if len(frames) == 0 {
		return nil
	}
	if steps < 1 {
		steps = DefaultSteps
	}
	if easing == nil {
		easing = effects.Linear{}
	}
	tweenDelay := delay / time.Duration(steps)

	samples := make([]Sample, 0, len(frames)+(len(frames)-1)*(steps-1))
	for i := 0; i < len(frames)-1; i++ {
		from, to := frames[i], frames[i+1]
		samples = append(samples, Sample{Frame: from.Clone(), Duration: delay, Key: true})
		next := to.Lookup()
		for s := 1; s < steps; s++ {
			t := easing.Ease(float64(s) / float64(steps))
			samples = append(samples, Sample{Frame: Tween(from, next, t), Duration: tweenDelay})
		}
	}
	samples = append(samples, Sample{Frame: frames[len(frames)-1].Clone(), Duration: delay, Key: true})
	return samples
}

// Tween builds the synthetic frame between from and its successor at
// progress t. Elements without a counterpart in next hold still; elements
// only present in next do not appear.
func Tween(from drill.Frame, next map[string]drill.Element, t float64) drill.Frame {
	out := drill.Frame{ID: from.ID, Name: from.Name, Elements: make([]drill.Element, len(from.Elements))}
	for i, e := range from.Elements {
		other, ok := next[e.ID]
		if !ok {
			other = e
		}
		e.X = lerp(e.X, other.X, t)
		e.Y = lerp(e.Y, other.Y, t)
		e.Rotation = lerp(e.Rotation, other.Rotation, t)
		e.Size = lerp(e.Size, other.Size, t)
		out.Elements[i] = e
	}
	return out
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
