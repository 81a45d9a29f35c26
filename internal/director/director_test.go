package director

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ivlev/drillanim/internal/drill"
	"github.com/ivlev/drillanim/internal/editor"
)

func newTestDirector(t *testing.T, frames int, ticks chan time.Time) (*Director, *editor.Editor) {
	t.Helper()
	d := drill.New(&drill.SequenceSource{Prefix: "e"})
	for i := 1; i < frames; i++ {
		d.AddFrame()
	}
	ed := editor.New(d, nil, log.New(io.Discard))
	dir := New(ed, time.Hour, WithTicks(ticks), WithLogger(log.New(io.Discard)))
	dir.Start()
	t.Cleanup(dir.Stop)
	return dir, ed
}

func TestDirectorSerializesCommands(t *testing.T) {
	dir, _ := newTestDirector(t, 1, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := dir.Do(func(ed *editor.Editor) error {
				_, err := ed.DropElement(drill.KindPlayer, drill.PlayerTeam1, editor.Point{X: float64(i * 10), Y: 100})
				return err
			})
			if err != nil {
				t.Errorf("Do failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var n, counter int
	dir.Do(func(ed *editor.Editor) error {
		n = len(ed.CurrentFrame().Elements)
		counter = ed.Drill().Counter(0, drill.PlayerTeam1)
		return nil
	})
	if n != 20 || counter != 20 {
		t.Errorf("elements = %d counter = %d, want 20 and 20", n, counter)
	}
}

func TestDirectorReturnsCommandError(t *testing.T) {
	dir, _ := newTestDirector(t, 1, nil)
	boom := errors.New("boom")
	if err := dir.Do(func(*editor.Editor) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestDirectorPlayback(t *testing.T) {
	ticks := make(chan time.Time)
	dir, _ := newTestDirector(t, 3, ticks)

	advanced := make(chan int, 8)
	dir.Do(func(*editor.Editor) error {
		dir.OnAdvance = func(frame int, _ bool) { advanced <- frame }
		return nil
	})

	// Ticks are ignored while stopped.
	select {
	case ticks <- time.Now():
		t.Fatal("tick consumed while not playing")
	case <-time.After(20 * time.Millisecond):
	}

	dir.Do(func(ed *editor.Editor) error {
		ed.Play()
		return nil
	})

	for _, want := range []int{1, 2, 0} {
		ticks <- time.Now()
		if got := <-advanced; got != want {
			t.Fatalf("advanced to %d, want %d", got, want)
		}
	}

	var playing bool
	dir.Do(func(ed *editor.Editor) error {
		playing = ed.Playing()
		return nil
	})
	if playing {
		t.Error("playback should stop after wrapping to the first frame")
	}
}

func TestDirectorStop(t *testing.T) {
	d := drill.New(&drill.SequenceSource{})
	dir := New(editor.New(d, nil, log.New(io.Discard)), 0)
	dir.Start()
	dir.Stop()

	if err := dir.Do(func(*editor.Editor) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("err = %v, want ErrStopped", err)
	}
}
