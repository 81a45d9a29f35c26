package persist

import (
	"math"

	"github.com/ivlev/drillanim/internal/drill"
)

// Tolerance is the largest numeric difference (px, degrees, scale) still
// treated as equal by Diff.
const Tolerance = 1e-3

// Diff reports whether two frame lists differ structurally: frame count,
// element count per frame, or any rendered field of an element in order.
// Ids and frame names do not take part.
func Diff(a, b []drill.Frame) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if len(a[i].Elements) != len(b[i].Elements) {
			return true
		}
		for j := range a[i].Elements {
			if elementChanged(a[i].Elements[j], b[i].Elements[j]) {
				return true
			}
		}
	}
	return false
}

func elementChanged(x, y drill.Element) bool {
	return x.Kind != y.Kind ||
		x.Subtype != y.Subtype ||
		x.Text != y.Text ||
		x.Color != y.Color ||
		!near(x.X, y.X) ||
		!near(x.Y, y.Y) ||
		!near(x.Rotation, y.Rotation) ||
		!near(x.Size, y.Size)
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}
