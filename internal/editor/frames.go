package editor

import (
	"github.com/ivlev/drillanim/internal/drill"
)

// AddFrame appends an empty frame and makes it current.
func (e *Editor) AddFrame() int {
	idx := e.drill.AddFrame()
	e.SetCurrentFrame(idx)
	e.logger.Debug("added frame", "index", idx)
	return idx
}

// DuplicateFrame copies the current frame, keeping element ids, and makes the
// copy current.
func (e *Editor) DuplicateFrame() (int, error) {
	idx, err := e.drill.DuplicateFrame(e.current)
	if err != nil {
		return 0, err
	}
	e.SetCurrentFrame(idx)
	e.logger.Debug("duplicated frame", "index", idx)
	return idx, nil
}

// RemoveFrame deletes frame i unless it is the last one, then re-points the
// current index.
func (e *Editor) RemoveFrame(i int) (bool, error) {
	ok, err := e.drill.RemoveFrame(i)
	if err != nil || !ok {
		return ok, err
	}
	switch {
	case i < e.current:
		e.current--
	case e.current >= e.drill.Len():
		e.current = e.drill.Len() - 1
	}
	e.gesture = gesture{}
	e.pruneSelection()
	e.logger.Debug("removed frame", "index", i, "current", e.current)
	return true, nil
}

func (e *Editor) RenameFrame(i int, name string) error {
	return e.drill.RenameFrame(i, name)
}

// SetCurrentFrame switches the edited frame and clears the selection.
func (e *Editor) SetCurrentFrame(i int) error {
	if i < 0 || i >= e.drill.Len() {
		return drill.ErrFrameIndex
	}
	e.current = i
	e.gesture = gesture{}
	e.clearSelection()
	return nil
}

func (e *Editor) SetSpeed(s drill.Speed) { e.drill.SetSpeed(s) }

// Play toggles playback and reports whether it is now running.
func (e *Editor) Play() bool {
	e.playing = !e.playing
	return e.playing
}

func (e *Editor) Playing() bool { return e.playing }

// AdvancePlayback moves to the next frame. Playback stops by itself once it
// wraps back to frame 0. It reports whether playback is still running.
func (e *Editor) AdvancePlayback() bool {
	if !e.playing {
		return false
	}
	next := (e.current + 1) % e.drill.Len()
	e.SetCurrentFrame(next)
	if next == 0 {
		e.playing = false
	}
	return e.playing
}
