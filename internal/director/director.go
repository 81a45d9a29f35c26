// Package director runs the editor on a single goroutine. Every mutation is
// submitted as a command to the inbox and executed in order; the same loop
// drives frame playback.
package director

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ivlev/drillanim/internal/editor"
)

var ErrStopped = errors.New("director stopped")

// Command is a unit of work run on the loop goroutine.
type Command func(ed *editor.Editor) error

type request struct {
	cmd   Command
	reply chan error
}

// Director owns an editor and serializes access to it.
type Director struct {
	inbox chan request

	editor   *editor.Editor
	interval time.Duration
	ticks    <-chan time.Time
	logger   *log.Logger

	// OnAdvance, when set, is called on the loop after playback moves.
	OnAdvance func(frame int, playing bool)

	quit chan struct{}
	done chan struct{}
}

type Option func(*Director)

// WithTicks replaces the playback ticker, mainly for tests.
func WithTicks(ch <-chan time.Time) Option {
	return func(d *Director) { d.ticks = ch }
}

func WithLogger(l *log.Logger) Option {
	return func(d *Director) { d.logger = l }
}

func New(ed *editor.Editor, interval time.Duration, opts ...Option) *Director {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	d := &Director{
		inbox:    make(chan request),
		editor:   ed,
		interval: interval,
		logger:   log.Default(),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Start runs the loop in its own goroutine.
func (d *Director) Start() { go d.Run() }

// Run processes commands and playback ticks until Stop.
func (d *Director) Run() {
	defer close(d.done)

	var ticker *time.Ticker
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}
	defer stopTicker()

	for {
		var tickC <-chan time.Time
		if d.editor.Playing() {
			switch {
			case d.ticks != nil:
				tickC = d.ticks
			case ticker == nil:
				ticker = time.NewTicker(d.interval)
				tickC = ticker.C
			default:
				tickC = ticker.C
			}
		} else {
			stopTicker()
		}

		select {
		case <-d.quit:
			return
		case req := <-d.inbox:
			req.reply <- req.cmd(d.editor)
		case <-tickC:
			playing := d.editor.AdvancePlayback()
			d.logger.Debug("playback advanced", "frame", d.editor.Current(), "playing", playing)
			if d.OnAdvance != nil {
				d.OnAdvance(d.editor.Current(), playing)
			}
		}
	}
}

// Do runs cmd on the loop and waits for its result.
func (d *Director) Do(cmd Command) error {
	req := request{cmd: cmd, reply: make(chan error, 1)}
	select {
	case d.inbox <- req:
	case <-d.done:
		return ErrStopped
	}
	return <-req.reply
}

// Stop ends the loop and its playback ticker. It is safe to call once.
func (d *Director) Stop() {
	close(d.quit)
	<-d.done
}
