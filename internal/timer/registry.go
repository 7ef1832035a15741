package timer

import (
	"context"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"log/slog"
	"sync"
	"time"
)

// Registry owns the trackers of all interviews of the process.
type Registry struct {
	recorder Recorder
	interval time.Duration
	logger   *slog.Logger
	opts     []Option

	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewRegistry(recorder Recorder, interval time.Duration, logger *slog.Logger, opts ...Option) *Registry {
	return &Registry{
		recorder: recorder,
		interval: interval,
		logger:   logger,
		opts:     opts,
		trackers: map[string]*Tracker{},
	}
}

// Tracker returns the tracker of the interview, creating it on first use.
func (r *Registry) Tracker(interviewID string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[interviewID]
	if !ok {
		t = NewTracker(interviewID, r.recorder, r.interval, r.logger, r.opts...)
		r.trackers[interviewID] = t
	}
	return t
}

// Release stops the interview's tracker and forgets it.
func (r *Registry) Release(ctx context.Context, interviewID string) error {
	r.mu.Lock()
	t, ok := r.trackers[interviewID]
	delete(r.trackers, interviewID)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return t.Stop(ctx)
}

// StopAll stops every tracker, e.g. on shutdown.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	trackers := make([]*Tracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		trackers = append(trackers, t)
	}
	r.mu.Unlock()

	var errs []error
	for _, t := range trackers {
		if err := t.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
