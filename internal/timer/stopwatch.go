// Package timer tracks the time spent on interview questions and sections.
//
// Stopwatch and Countdown are pure values: every transition takes the current instant and returns the next state, so
// the accounting can be tested without waiting on a wall clock. Tracker drives them from a ticker goroutine and
// reports the elapsed time back to the interview record.
package timer

import (
	"time"
)

// Stopwatch accumulates running time across start and stop cycles.
//
// The zero value is a stopped stopwatch with nothing accumulated.
type Stopwatch struct {
	accumulated time.Duration
	start       time.Time
	running     bool
}

// NewStopwatch returns a stopped stopwatch that already accumulated d.
func NewStopwatch(d time.Duration) Stopwatch {
	return Stopwatch{accumulated: d}
}

// Start begins a running window at now. Starting a running stopwatch changes nothing.
func (s Stopwatch) Start(now time.Time) Stopwatch {
	if s.running {
		return s
	}
	s.start = now
	s.running = true
	return s
}

// Stop folds the running window into the accumulated time and clears the start marker.
// Stopping a stopped stopwatch changes nothing.
func (s Stopwatch) Stop(now time.Time) Stopwatch {
	if !s.running {
		return s
	}
	s.accumulated += window(s.start, now)
	s.start = time.Time{}
	s.running = false
	return s
}

// Elapsed is the accumulated time plus the current running window.
func (s Stopwatch) Elapsed(now time.Time) time.Duration {
	if !s.running {
		return s.accumulated
	}
	return s.accumulated + window(s.start, now)
}

func (s Stopwatch) Running() bool {
	return s.running
}

// window never goes negative when the clock steps backwards.
func window(start, now time.Time) time.Duration {
	if d := now.Sub(start); d > 0 {
		return d
	}
	return 0
}

// Countdown is the time budget of a section.
type Countdown struct {
	Budget time.Duration
	watch  Stopwatch
}

// NewCountdown returns a paused countdown with the full budget remaining.
func NewCountdown(budget time.Duration) Countdown {
	return Countdown{Budget: budget}
}

func (c Countdown) Start(now time.Time) Countdown {
	c.watch = c.watch.Start(now)
	return c
}

func (c Countdown) Stop(now time.Time) Countdown {
	c.watch = c.watch.Stop(now)
	return c
}

// Remaining is the budget minus the whole seconds spent, never below zero.
func (c Countdown) Remaining(now time.Time) time.Duration {
	remaining := c.Budget - c.watch.Elapsed(now).Truncate(time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the budget is used up. A countdown without a budget never expires.
func (c Countdown) Expired(now time.Time) bool {
	return c.Budget > 0 && c.Remaining(now) == 0
}

// MinutesLeft rounds the remaining time up to whole minutes.
func (c Countdown) MinutesLeft(now time.Time) int {
	remaining := c.Remaining(now)
	minutes := remaining / time.Minute
	if remaining%time.Minute != 0 {
		minutes++
	}
	return int(minutes)
}
