package timer

import (
	"context"
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNoSelection = errors.NewSentinel("no question selected")
	ErrTimeUp      = errors.NewSentinel("section time is up")
)

// WarningMinutes are the remaining minutes at which a section warns once.
var WarningMinutes = []int{5, 1} //nolint:gochecknoglobals // constant list

// Recorder persists the tracked time into the interview record.
type Recorder interface {
	UpdateQuestionTime(ctx context.Context, interviewID, sessionID, qid string, elapsed time.Duration) error
	UpdateSessionTime(ctx context.Context, interviewID, sessionID string, actual time.Duration) error
	PauseInterview(ctx context.Context, interviewID string) error
	ResumeInterview(ctx context.Context, interviewID string) error
}

// Selection is the question the operator is looking at.
type Selection struct {
	SessionID  string
	QuestionID string
	// SectionBudget is the planned duration of the session.
	SectionBudget time.Duration
	// QuestionElapsed is the time already recorded for the question.
	QuestionElapsed time.Duration
	// SessionElapsed is the time already recorded for the session, including QuestionElapsed.
	SessionElapsed time.Duration
}

// Status is a point in time view of a tracker.
type Status struct {
	Running         bool
	SessionID       string
	QuestionID      string
	QuestionElapsed time.Duration
	SessionElapsed  time.Duration
	Remaining       time.Duration
	TimeUp          bool
	// Warnings lists the minute marks that already fired in the current section.
	Warnings []int
}

// MarshalJSON encodes durations in milliseconds.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Running           bool   `json:"running"`
		SessionID         string `json:"sessionId,omitempty"`
		QuestionID        string `json:"questionId,omitempty"`
		QuestionElapsedMs int64  `json:"questionElapsedMs"`
		SessionElapsedMs  int64  `json:"sessionElapsedMs"`
		RemainingMs       int64  `json:"remainingMs"`
		TimeUp            bool   `json:"timeUp"`
		Warnings          []int  `json:"warnings"`
	}{
		Running:           s.Running,
		SessionID:         s.SessionID,
		QuestionID:        s.QuestionID,
		QuestionElapsedMs: s.QuestionElapsed.Milliseconds(),
		SessionElapsedMs:  s.SessionElapsed.Milliseconds(),
		RemainingMs:       s.Remaining.Milliseconds(),
		TimeUp:            s.TimeUp,
		Warnings:          s.Warnings,
	})
}

// Events are invoked from the tracker without holding its lock.
type Events struct {
	OnWarning func(ctx context.Context, interviewID string, minutesLeft int)
	OnTimeUp  func(ctx context.Context, interviewID string)
}

// Tracker times the selected question of one interview.
//
// While running, a goroutine ticks every interval and writes the question's elapsed time and the session's total
// through the Recorder. Stop cancels the goroutine, waits for it and then records the final delta exactly once.
type Tracker struct {
	interviewID string
	recorder    Recorder
	events      Events
	logger      *slog.Logger
	now         func() time.Time
	interval    time.Duration

	// op serializes Select, Start and Stop so that at most one tick goroutine exists.
	op          sync.Mutex
	mu          sync.Mutex
	selection   Selection
	selected    bool
	sessionBase time.Duration
	question    Stopwatch
	section     Countdown
	warned      map[int]bool
	timeUp      bool
	cancel      context.CancelFunc
	done        chan struct{}
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithEvents registers warning and time-up callbacks.
func WithEvents(events Events) Option {
	return func(t *Tracker) { t.events = events }
}

// NewTracker creates a paused tracker without a selection.
func NewTracker(interviewID string, recorder Recorder, interval time.Duration, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		interviewID: interviewID,
		recorder:    recorder,
		logger:      logger.With("source", "timer", "interview_id", interviewID),
		now:         time.Now,
		interval:    interval,
		warned:      map[int]bool{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Select switches to another question. The running question is stopped and recorded first.
// Moving to a different session resets the section countdown to sel.SectionBudget.
func (t *Tracker) Select(ctx context.Context, sel Selection) error {
	t.op.Lock()
	defer t.op.Unlock()
	if err := t.stop(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.selected || t.selection.SessionID != sel.SessionID {
		t.section = NewCountdown(sel.SectionBudget)
		t.warned = map[int]bool{}
		t.timeUp = false
	}
	t.selection = sel
	t.selected = true
	t.question = NewStopwatch(sel.QuestionElapsed)
	t.sessionBase = sel.SessionElapsed - sel.QuestionElapsed
	if t.sessionBase < 0 {
		t.sessionBase = 0
	}
	return nil
}

// Start resumes the interview and begins timing the selected question.
func (t *Tracker) Start(ctx context.Context) error {
	t.op.Lock()
	defer t.op.Unlock()

	t.mu.Lock()
	running := t.question.Running()
	t.mu.Unlock()
	if running {
		return nil
	}
	// A loop that exited on time-up still has to be joined.
	t.stopLoop()

	t.mu.Lock()
	if !t.selected {
		t.mu.Unlock()
		return ErrNoSelection
	}
	now := t.now()
	if t.section.Expired(now) {
		t.mu.Unlock()
		return errors.Wrap(ErrTimeUp, "start timer", slog.String("session_id", t.selection.SessionID))
	}
	t.mu.Unlock()

	if err := t.recorder.ResumeInterview(ctx, t.interviewID); err != nil {
		return errors.Wrap(err, "resume interview")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	now = t.now()
	t.question = t.question.Start(now)
	t.section = t.section.Start(now)

	// The loop outlives the request that started it.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(loopCtx, t.done)
	t.logger.LogAttrs(ctx, slog.LevelDebug, "timer started",
		slog.String("session_id", t.selection.SessionID), slog.String("qid", t.selection.QuestionID))
	return nil
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Stop pauses timing and the interview. Stopping a stopped tracker records nothing.
func (t *Tracker) Stop(ctx context.Context) error {
	t.op.Lock()
	defer t.op.Unlock()
	return t.stop(ctx)
}

func (t *Tracker) stop(ctx context.Context) error {
	t.stopLoop()

	t.mu.Lock()
	if !t.question.Running() {
		t.mu.Unlock()
		return nil
	}
	now := t.now()
	t.question = t.question.Stop(now)
	t.section = t.section.Stop(now)
	t.record(ctx, now)
	t.mu.Unlock()

	if err := t.recorder.PauseInterview(ctx, t.interviewID); err != nil {
		return errors.Wrap(err, "pause interview")
	}
	return nil
}

// stopLoop cancels the tick goroutine and waits until it has returned.
func (t *Tracker) stopLoop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Tick records the running time and fires warnings and the time-up event.
// It is called by the tick goroutine and can be called directly to drive the tracker with a fake clock.
func (t *Tracker) Tick(ctx context.Context) {
	t.mu.Lock()
	if !t.question.Running() {
		t.mu.Unlock()
		return
	}
	now := t.now()
	t.record(ctx, now)

	var warnings []int
	minutesLeft := t.section.MinutesLeft(now)
	for _, m := range WarningMinutes {
		if t.section.Budget > 0 && minutesLeft == m && !t.warned[m] {
			t.warned[m] = true
			warnings = append(warnings, m)
		}
	}

	expired := t.section.Expired(now)
	if expired {
		t.question = t.question.Stop(now)
		t.section = t.section.Stop(now)
		t.timeUp = true
		if t.cancel != nil {
			// The loop exits on its own. Stop or Start joins it later.
			t.cancel()
		}
	}
	t.mu.Unlock()

	for _, m := range warnings {
		t.logger.LogAttrs(ctx, slog.LevelInfo, "section time warning", slog.Int("minutes_left", m))
		if t.events.OnWarning != nil {
			t.events.OnWarning(ctx, t.interviewID, m)
		}
	}
	if !expired {
		return
	}
	t.logger.LogAttrs(ctx, slog.LevelInfo, "section time is up")
	if err := t.recorder.PauseInterview(ctx, t.interviewID); err != nil {
		t.logger.LogAttrs(ctx, slog.LevelError, "failed to pause interview", errors.SlogError(err))
	}
	if t.events.OnTimeUp != nil {
		t.events.OnTimeUp(ctx, t.interviewID)
	}
}

// record writes the current totals. Callers hold t.mu.
func (t *Tracker) record(ctx context.Context, now time.Time) {
	elapsed := t.question.Elapsed(now)
	sel := t.selection
	ctx = logging.WithAttrs(ctx, slog.String("session_id", sel.SessionID), slog.String("qid", sel.QuestionID))
	if err := t.recorder.UpdateQuestionTime(ctx, t.interviewID, sel.SessionID, sel.QuestionID, elapsed); err != nil {
		t.logger.LogAttrs(ctx, slog.LevelError, "failed to record question time", errors.SlogError(err))
	}
	if err := t.recorder.UpdateSessionTime(ctx, t.interviewID, sel.SessionID, t.sessionBase+elapsed); err != nil {
		t.logger.LogAttrs(ctx, slog.LevelError, "failed to record session time", errors.SlogError(err))
	}
}

// Status reports the tracker state at the current instant.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	elapsed := t.question.Elapsed(now)
	warnings := make([]int, 0, len(t.warned))
	for _, m := range WarningMinutes {
		if t.warned[m] {
			warnings = append(warnings, m)
		}
	}
	return Status{
		Running:         t.question.Running(),
		SessionID:       t.selection.SessionID,
		QuestionID:      t.selection.QuestionID,
		QuestionElapsed: elapsed,
		SessionElapsed:  t.sessionBase + elapsed,
		Remaining:       t.section.Remaining(now),
		TimeUp:          t.timeUp,
		Warnings:        warnings,
	}
}
