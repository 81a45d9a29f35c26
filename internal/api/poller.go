package api

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ivlev/drillanim/internal/persist"
)

var (
	ErrPollExhausted = errors.New("transcode still pending after max attempts")
	ErrPollActive    = errors.New("a transcode poll is already running")
)

// StatusFetcher is the part of Client the poller needs.
type StatusFetcher interface {
	TranscodeStatus(ctx context.Context, id int64) (persist.StatusView, error)
}

// Poller checks the transcode status at a fixed interval until it resolves,
// the attempt budget runs out, or the context is cancelled. Only one poll may
// run at a time.
type Poller struct {
	fetcher     StatusFetcher
	interval    time.Duration
	maxAttempts int
	logger      *log.Logger
	active      atomic.Bool
}

func NewPoller(f StatusFetcher, interval time.Duration, maxAttempts int, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{fetcher: f, interval: interval, maxAttempts: max(maxAttempts, 1), logger: logger}
}

// Active reports whether a poll is running.
func (p *Poller) Active() bool { return p.active.Load() }

// Poll checks immediately, then once per interval. Transient errors count as
// an attempt and polling continues; other errors end it.
func (p *Poller) Poll(ctx context.Context, id int64) (persist.StatusView, error) {
	if !p.active.CompareAndSwap(false, true) {
		return persist.StatusView{}, ErrPollActive
	}
	defer p.active.Store(false)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last persist.StatusView
	for attempt := 1; ; attempt++ {
		st, err := p.fetcher.TranscodeStatus(ctx, id)
		switch {
		case err == nil:
			last = st
			if st.AnimationVideoStatus.Resolved() {
				p.logger.Info("transcode resolved", "drill", id, "status", st.AnimationVideoStatus, "attempts", attempt)
				return st, nil
			}
			p.logger.Debug("transcode pending", "drill", id, "attempt", attempt)
		case ctx.Err() != nil:
			return last, ctx.Err()
		case IsRetryable(err):
			p.logger.Warn("transcode status check failed", "drill", id, "attempt", attempt, "err", err)
		default:
			return last, fmt.Errorf("poll transcode status: %w", err)
		}

		if attempt >= p.maxAttempts {
			return last, fmt.Errorf("drill %d: %w (%d)", id, ErrPollExhausted, p.maxAttempts)
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}
