package renderer

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/effects"
)

func twoFrameDrill(t *testing.T) (*drill.Drill, string) {
	t.Helper()
	d := drill.New(&drill.SequenceSource{Prefix: "c"})
	cone, err := d.AddElement(0, drill.Element{Kind: drill.KindEquipment, Subtype: drill.EquipmentCone, X: 200, Y: 100})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.DuplicateFrame(0); err != nil {
		t.Fatal(err)
	}
	return d, cone.ID
}

func TestBuildSequenceInterpolationArithmetic(t *testing.T) {
	d, id := twoFrameDrill(t)
	if _, err := d.UpdateElement(1, id, drill.Patch{X: drill.Ptr(400.0)}); err != nil {
		t.Fatal(err)
	}

	samples := BuildSequence(d.Frames(), 800*time.Millisecond, DefaultSteps, effects.Linear{})

	// keyframe, 9 tweens, final keyframe
	if len(samples) != 11 {
		t.Fatalf("Expected 11 samples, got %d", len(samples))
	}
	s9 := samples[9].Frame.Elements[0]
	if math.Abs(s9.X-380) > 1e-9 {
		t.Errorf("At s=9 expected x=380, got %v", s9.X)
	}
	if samples[0].Duration != 800*time.Millisecond || samples[10].Duration != 800*time.Millisecond {
		t.Errorf("Keyframes should be held for the full delay")
	}
	for i := 1; i < 10; i++ {
		if samples[i].Duration != 80*time.Millisecond {
			t.Errorf("Tween %d: expected 80ms, got %v", i, samples[i].Duration)
		}
		if samples[i].Key {
			t.Errorf("Tween %d flagged as keyframe", i)
		}
	}
}

func TestDuplicationIdentityHasZeroDelta(t *testing.T) {
	d, _ := twoFrameDrill(t)
	d.AddElement(0, drill.Element{Kind: drill.KindPlayer, Subtype: drill.PlayerTeam1, X: 50, Y: 60, Rotation: 15})
	d.DuplicateFrame(0)
	frames := d.Frames()

	samples := BuildSequence([]drill.Frame{frames[0], frames[2]}, time.Second, DefaultSteps, effects.Linear{})
	orig := frames[0].Lookup()
	for i, s := range samples {
		for _, e := range s.Frame.Elements {
			o := orig[e.ID]
			if e.X != o.X || e.Y != o.Y || e.Rotation != o.Rotation || e.Size != o.Size {
				t.Errorf("sample %d: element %s moved: %+v vs %+v", i, e.ID, e, o)
			}
		}
	}
}

func TestTweenMissingCounterpartHolds(t *testing.T) {
	from := drill.Frame{ID: "a", Elements: []drill.Element{
		{ID: "x", Kind: drill.KindPlayer, Subtype: drill.PlayerTeam1, X: 10, Y: 10, Size: 1},
	}}
	got := Tween(from, map[string]drill.Element{}, 0.5)
	if got.Elements[0].X != 10 || got.Elements[0].Size != 1 {
		t.Errorf("Expected static hold, got %+v", got.Elements[0])
	}
}

func TestBuildSequenceSingleFrame(t *testing.T) {
	frames := []drill.Frame{{ID: "only"}}
	samples := BuildSequence(frames, 400*time.Millisecond, DefaultSteps, nil)
	if len(samples) != 1 || samples[0].Duration != 400*time.Millisecond {
		t.Errorf("Expected one held sample, got %+v", samples)
	}
}

func TestEasingChangesTweens(t *testing.T) {
	d, id := twoFrameDrill(t)
	d.UpdateElement(1, id, drill.Patch{X: drill.Ptr(400.0)})
	linear := BuildSequence(d.Frames(), time.Second, DefaultSteps, effects.Linear{})
	eased := BuildSequence(d.Frames(), time.Second, DefaultSteps, effects.EaseInOutCubic{})
	if eased[2].Frame.Elements[0].X >= linear[2].Frame.Elements[0].X {
		t.Errorf("Expected ease-in to lag linear early on")
	}
	if eased[5].Frame.Elements[0].X != linear[5].Frame.Elements[0].X {
		t.Errorf("Expected both curves to meet at the midpoint")
	}
}

