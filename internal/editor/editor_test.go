package editor

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/toolbox"
)

func newTestEditor() *Editor {
	return New(drill.New(&drill.SequenceSource{Prefix: "e"}), toolbox.New(), log.New(io.Discard))
}

func drop(t *testing.T, ed *Editor, k drill.Kind, subtype string, x, y float64) drill.Element {
	t.Helper()
	el, err := ed.DropElement(k, subtype, Point{X: x, Y: y})
	if err != nil {
		t.Fatalf("DropElement failed: %v", err)
	}
	return el
}

func position(t *testing.T, ed *Editor, id string) Point {
	t.Helper()
	f := ed.CurrentFrame()
	i := f.Index(id)
	if i < 0 {
		t.Fatalf("element %s not on current frame", id)
	}
	return Point{X: f.Elements[i].X, Y: f.Elements[i].Y}
}

func TestClickModifiers(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 100, 100)
	b := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 300, 300)

	ed.Click(a.ID, Modifiers{})
	ed.Click(b.ID, Modifiers{Shift: true})
	if got := ed.Selection(); len(got) != 2 {
		t.Fatalf("Shift-click should add, got %v", got)
	}

	ed.Click(a.ID, Modifiers{})
	if got := ed.Selection(); len(got) != 2 {
		t.Errorf("Plain click on a selected element must keep the selection, got %v", got)
	}

	ed.Click(a.ID, Modifiers{Ctrl: true})
	if got := ed.Selection(); len(got) != 1 || got[0] != b.ID {
		t.Errorf("Ctrl-click should toggle off, got %v", got)
	}
	ed.Click(a.ID, Modifiers{Meta: true})
	if got := ed.Selection(); len(got) != 2 {
		t.Errorf("Cmd-click should toggle on, got %v", got)
	}

	ed.Click("", Modifiers{})
	if got := ed.Selection(); len(got) != 0 {
		t.Errorf("Click on canvas should clear, got %v", got)
	}
}

func TestMarqueeUsesAnchorPoint(t *testing.T) {
	ed := newTestEditor()
	near := drop(t, ed, drill.KindEquipment, drill.EquipmentCone, 50, 50)
	drop(t, ed, drill.KindEquipment, drill.EquipmentCone, 500, 500)
	big := drop(t, ed, drill.KindEquipment, drill.EquipmentGoal, 600, 580)
	// A huge goal visually reaches into the marquee but its anchor is outside.
	ed.drill.UpdateElement(0, big.ID, drill.Patch{Size: drill.Ptr(20.0)})

	ed.PointerDown(Point{X: 0, Y: 0}, Modifiers{})
	ed.PointerMove(Point{X: 60, Y: 60})
	if _, ok := ed.Marquee(); !ok {
		t.Fatal("Expected an active marquee")
	}
	ed.PointerUp(Point{X: 100, Y: 100})

	got := ed.Selection()
	if len(got) != 1 || got[0] != near.ID {
		t.Errorf("Expected only %s selected, got %v", near.ID, got)
	}
}

func TestMarqueeAdditive(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 700, 500)
	b := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 50, 50)
	ed.Click(a.ID, Modifiers{})

	ed.PointerDown(Point{X: 100, Y: 100}, Modifiers{Shift: true})
	ed.PointerUp(Point{X: 0, Y: 0})

	got := ed.Selection()
	if len(got) != 2 || got[0] != a.ID || got[1] != b.ID {
		t.Errorf("Expected additive selection [%s %s], got %v", a.ID, b.ID, got)
	}

	ed.PointerDown(Point{X: 100, Y: 100}, Modifiers{})
	ed.PointerUp(Point{X: 0, Y: 0})
	if got := ed.Selection(); len(got) != 1 {
		t.Errorf("Plain marquee should replace, got %v", got)
	}
}

func TestDragSingleClampsAtZero(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 100, 100)

	ed.PointerDown(Point{X: 105, Y: 95}, Modifiers{})
	ed.PointerMove(Point{X: 205, Y: 195})
	if p := position(t, ed, a.ID); p != (Point{X: 200, Y: 200}) {
		t.Errorf("Expected grab offset preserved at (200,200), got %v", p)
	}
	ed.PointerMove(Point{X: -50, Y: 5})
	if p := position(t, ed, a.ID); p != (Point{X: 0, Y: 10}) {
		t.Errorf("Expected clamp to (0,10), got %v", p)
	}
	ed.PointerUp(Point{X: -50, Y: 5})
}

func TestDragOfRemovedElementFails(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 100, 100)

	ed.PointerDown(Point{X: 100, Y: 100}, Modifiers{})
	if err := ed.Drill().RemoveElement(0, a.ID); err != nil {
		t.Fatal(err)
	}
	err := ed.PointerMove(Point{X: 150, Y: 150})
	if !errors.Is(err, drill.ErrUnknownElement) {
		t.Fatalf("Expected ErrUnknownElement, got %v", err)
	}
	// The gesture is over; further moves are no-ops.
	if err := ed.PointerMove(Point{X: 200, Y: 200}); err != nil {
		t.Errorf("Expected no error after aborted drag, got %v", err)
	}
}

func TestDragGroupPreservesOffsets(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 100, 100)
	b := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 20, 300)
	ed.Click(a.ID, Modifiers{})
	ed.Click(b.ID, Modifiers{Shift: true})

	ed.PointerDown(Point{X: 100, Y: 100}, Modifiers{})
	ed.PointerMove(Point{X: 110, Y: 110}) // anchor only
	if p := position(t, ed, a.ID); p != (Point{X: 100, Y: 100}) {
		t.Errorf("First move should only set the anchor, got %v", p)
	}
	ed.PointerMove(Point{X: 140, Y: 120})
	if p := position(t, ed, a.ID); p != (Point{X: 130, Y: 110}) {
		t.Errorf("Expected a at (130,110), got %v", p)
	}
	if p := position(t, ed, b.ID); p != (Point{X: 50, Y: 310}) {
		t.Errorf("Expected b at (50,310), got %v", p)
	}
	ed.PointerMove(Point{X: 40, Y: 120})
	if p := position(t, ed, b.ID); p != (Point{X: 0, Y: 310}) {
		t.Errorf("Expected b clamped to (0,310), got %v", p)
	}
	if p := position(t, ed, a.ID); p != (Point{X: 30, Y: 110}) {
		t.Errorf("Expected a at (30,110), got %v", p)
	}
}

func TestKeyboardNudge(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 5, 100)
	ed.Click(a.ID, Modifiers{})

	tests := []struct {
		key  Key
		mods Modifiers
		want Point
	}{
		{KeyRight, Modifiers{}, Point{X: 6, Y: 100}},
		{KeyDown, Modifiers{Shift: true}, Point{X: 6, Y: 110}},
		{KeyUp, Modifiers{}, Point{X: 6, Y: 109}},
		{KeyLeft, Modifiers{Shift: true}, Point{X: 0, Y: 109}},
	}
	for _, tt := range tests {
		if err := ed.KeyDown(tt.key, tt.mods); err != nil {
			t.Fatal(err)
		}
		if p := position(t, ed, a.ID); p != tt.want {
			t.Errorf("key %d: expected %v, got %v", tt.key, tt.want, p)
		}
	}

	ed.KeyDown(KeyEscape, Modifiers{})
	if len(ed.Selection()) != 0 {
		t.Error("Escape should clear the selection")
	}
}

func TestDeleteKeyPropagatesForward(t *testing.T) {
	ed := newTestEditor()
	p := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 100, 100)
	ed.DuplicateFrame()
	ed.DuplicateFrame()
	ed.SetCurrentFrame(1)
	ed.Click(p.ID, Modifiers{})

	if err := ed.KeyDown(KeyDelete, Modifiers{}); err != nil {
		t.Fatal(err)
	}
	frames := ed.Drill().Frames()
	if frames[0].Index(p.ID) < 0 {
		t.Error("Frame 1 must keep the player")
	}
	if frames[1].Index(p.ID) >= 0 || frames[2].Index(p.ID) >= 0 {
		t.Error("Frames 2 and 3 must lose the player")
	}
	if len(ed.Selection()) != 0 {
		t.Error("Selection should be empty after delete")
	}
}

func TestTransformRequiresDoubleClick(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 100, 100)

	ed.Click(a.ID, Modifiers{})
	if ed.TransformCapabilities().Attached {
		t.Fatal("Single click must not attach the handle")
	}
	if err := ed.CommitTransform(2, 90); err != ErrNoTransform {
		t.Errorf("Expected ErrNoTransform, got %v", err)
	}

	ed.DoubleClick(a.ID)
	caps := ed.TransformCapabilities()
	if !caps.Attached || !caps.CanResize || !caps.CanRotate {
		t.Fatalf("Expected full transform, got %+v", caps)
	}
	if err := ed.CommitTransform(2, 90); err != nil {
		t.Fatal(err)
	}
	el := ed.CurrentFrame().Elements[0]
	if el.Size != 2 || el.Rotation != 90 {
		t.Errorf("Expected size 2 rotation 90, got %v %v", el.Size, el.Rotation)
	}

	ed.Click("", Modifiers{})
	if ed.TransformCapabilities().Attached {
		t.Error("Changing the selection should drop the handle")
	}
}

func TestTransformConeFamilyRotatesOnly(t *testing.T) {
	ed := newTestEditor()
	c1 := drop(t, ed, drill.KindEquipment, drill.EquipmentCone, 100, 100)
	c2 := drop(t, ed, drill.KindEquipment, drill.EquipmentSquare, 300, 100)
	ed.Click(c1.ID, Modifiers{})
	ed.Click(c2.ID, Modifiers{Shift: true})
	ed.DoubleClick(c1.ID)

	if caps := ed.TransformCapabilities(); caps.CanResize {
		t.Fatal("Cone-family batch must not resize")
	}
	ed.CommitTransform(3, 30)
	for _, el := range ed.CurrentFrame().Elements {
		if el.Size != 1 || el.Rotation != 30 {
			t.Errorf("%s: expected size 1 rotation 30, got %v %v", el.ID, el.Size, el.Rotation)
		}
	}

	p := drop(t, ed, drill.KindPlayer, drill.PlayerTeam2, 500, 100)
	ed.Click(p.ID, Modifiers{Shift: true})
	ed.DoubleClick(p.ID)
	if caps := ed.TransformCapabilities(); !caps.CanResize {
		t.Error("Mixed batch should resize")
	}
}

func TestTransformIneligibleKind(t *testing.T) {
	ed := newTestEditor()
	ball := drop(t, ed, drill.KindEquipment, drill.EquipmentBall, 100, 100)
	ed.DoubleClick(ball.ID)
	if ed.TransformCapabilities().Attached {
		t.Error("Ball should not get a transform handle")
	}
}

func TestRemoveFrameRepointsCurrent(t *testing.T) {
	tests := []struct {
		name    string
		frames  int
		current int
		remove  int
		want    int
	}{
		{"before current", 3, 2, 0, 1},
		{"current is last", 3, 2, 2, 1},
		{"after current", 3, 0, 2, 0},
		{"current in middle", 3, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := newTestEditor()
			for i := 1; i < tt.frames; i++ {
				ed.AddFrame()
			}
			ed.SetCurrentFrame(tt.current)
			ok, err := ed.RemoveFrame(tt.remove)
			if err != nil || !ok {
				t.Fatalf("RemoveFrame failed: ok=%v err=%v", ok, err)
			}
			if ed.Current() != tt.want {
				t.Errorf("Expected current %d, got %d", tt.want, ed.Current())
			}
		})
	}

	ed := newTestEditor()
	if ok, _ := ed.RemoveFrame(0); ok {
		t.Error("Removing the only frame must be a no-op")
	}
}

func TestSetCurrentFrameClearsSelection(t *testing.T) {
	ed := newTestEditor()
	a := drop(t, ed, drill.KindPlayer, drill.PlayerTeam1, 100, 100)
	ed.DuplicateFrame()
	ed.Click(a.ID, Modifiers{})
	ed.SetCurrentFrame(0)
	if len(ed.Selection()) != 0 {
		t.Error("Expected selection cleared")
	}
}

func TestPlaybackStopsAfterOneCycle(t *testing.T) {
	ed := newTestEditor()
	ed.AddFrame()
	ed.AddFrame()
	ed.SetCurrentFrame(0)

	if !ed.Play() {
		t.Fatal("Play should start playback")
	}
	var visited []int
	for ed.AdvancePlayback() {
		visited = append(visited, ed.Current())
	}
	visited = append(visited, ed.Current())
	want := []int{1, 2, 0}
	if len(visited) != len(want) {
		t.Fatalf("Expected %v, got %v", want, visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, visited)
		}
	}
	if ed.Playing() {
		t.Error("Playback should have stopped at frame 0")
	}

	ed.Play()
	if ed.Play() {
		t.Error("Second Play call should stop playback")
	}
}

func TestDropClampsToCanvas(t *testing.T) {
	ed := newTestEditor()
	el := drop(t, ed, drill.KindText, drill.TextLabel, 1000, -20)
	if el.X != drill.CanvasWidth || el.Y != 0 {
		t.Errorf("Expected (900,0), got (%v,%v)", el.X, el.Y)
	}
}
