package state

import (
	"cmp"
	"context"
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/google/uuid"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	ErrInterviewNotFound     = errors.NewSentinel("interview not found")
	ErrQuestionnaireNotFound = errors.NewSentinel("questionnaire not found")
	ErrInterviewFinished     = errors.NewSentinel("interview is finished")
)

// Persister stores the serialized state under a named slot.
type Persister interface {
	// Load returns false when nothing has been saved under slot yet.
	Load(ctx context.Context, slot string) ([]byte, bool, error)
	Save(ctx context.Context, slot string, payload []byte) error
}

// Store is the single owner of the process state.
type Store struct {
	persister Persister
	slot      string
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	mu    sync.Mutex
	state State
	// documents caches decoded questionnaires by hash.
	documents map[string]questionnaire.Document
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random interview ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithPersister saves every committed mutation to p and restores the state from it on creation.
func WithPersister(p Persister, slot string) Option {
	return func(s *Store) {
		s.persister = p
		s.slot = slot
	}
}

// New creates a store and restores the last saved snapshot.
//
// A snapshot that cannot be read or decoded is logged and the store starts empty.
func New(ctx context.Context, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		logger: logger.With("source", "state"),
		now:    time.Now,
		newID:  uuid.NewString,
		state:  newState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	if s.persister == nil {
		return
	}
	ctx = logging.WithAttrs(ctx, slog.String("slot", s.slot))
	payload, ok, err := s.persister.Load(ctx, s.slot)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to load snapshot", errors.SlogError(err))
		return
	}
	if !ok {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "no snapshot found, starting empty")
		return
	}
	restored := newState()
	if err = json.Unmarshal(payload, &restored); err != nil {
		err = errors.Wrap(err, "decode snapshot")
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to restore snapshot", errors.SlogError(err))
		return
	}
	restored.normalize()
	s.state = restored
	s.logger.LogAttrs(ctx, slog.LevelInfo, "restored snapshot",
		slog.Int("questionnaires", len(restored.Questionnaires)),
		slog.Int("interviews", len(restored.Interviews)))
}

// apply runs mutate against a copy of the state and commits the copy when mutate succeeds.
//
// The copy is shallow: mutate must replace, not modify, the interviews it changes. Interview data has to be cloned
// first, which mutateInterview does.
func (s *Store) apply(ctx context.Context, op string, mutate func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := State{
		Questionnaires:     make(map[string]models.Questionnaire, len(s.state.Questionnaires)),
		Interviews:         make(map[string]models.Interview, len(s.state.Interviews)),
		CurrentInterviewID: s.state.CurrentInterviewID,
		DarkMode:           s.state.DarkMode,
	}
	for hash, q := range s.state.Questionnaires {
		next.Questionnaires[hash] = q
	}
	for id, iv := range s.state.Interviews {
		next.Interviews[id] = iv
	}

	if err := mutate(&next); err != nil {
		return err
	}
	s.state = next
	s.persist(ctx, op)
	return nil
}

// persist saves the committed state. Failures are logged and never fail the mutation. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, op string) {
	if s.persister == nil {
		return
	}
	payload, err := json.Marshal(s.state)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to encode snapshot",
			slog.String("op", op), errors.SlogError(errors.Wrap(err, "encode snapshot")))
		return
	}
	if err = s.persister.Save(ctx, s.slot, payload); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to save snapshot",
			slog.String("op", op), errors.SlogError(err))
	}
}

// mutateInterview applies fn to a copy of the interview and stamps lastSaved.
func (s *Store) mutateInterview(ctx context.Context, op, id string, fn func(st *State, iv *models.Interview) error) error {
	ctx = logging.WithAttrs(ctx, slog.String("interview_id", id))
	return s.apply(ctx, op, func(st *State) error {
		current, ok := st.Interviews[id]
		if !ok {
			return errors.Wrap(ErrInterviewNotFound, op, slog.String("interview_id", id))
		}
		iv := current.Clone()
		if iv.Sessions == nil {
			iv.Sessions = map[string]*models.SessionData{}
		}
		if err := fn(st, &iv); err != nil {
			return err
		}
		now := s.now().UTC()
		iv.LastSaved = &now
		st.Interviews[id] = iv
		return nil
	})
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// AddQuestionnaire validates and stores a JSON or YAML questionnaire document.
//
// Re-uploading a document with the same canonical form returns the entry stored first.
// Documents failing validation return *questionnaire.ValidationError and leave the store unchanged.
func (s *Store) AddQuestionnaire(ctx context.Context, raw []byte) (models.Questionnaire, error) {
	q, err := questionnaire.Load(raw, s.now())
	if err != nil {
		return models.Questionnaire{}, errors.Wrap(err, "load questionnaire")
	}

	var stored models.Questionnaire
	err = s.apply(ctx, "add questionnaire", func(st *State) error {
		if existing, ok := st.Questionnaires[q.Hash]; ok {
			stored = existing
			return nil
		}
		st.Questionnaires[q.Hash] = q
		stored = q
		return nil
	})
	if err != nil {
		return models.Questionnaire{}, err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "stored questionnaire",
		slog.String("hash", stored.Hash), slog.String("name", stored.Name))
	return stored.Clone(), nil
}

// Questionnaire looks up a questionnaire by hash.
func (s *Store) Questionnaire(hash string) (models.Questionnaire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.state.Questionnaires[hash]
	if !ok {
		return models.Questionnaire{}, errors.Wrap(ErrQuestionnaireNotFound, "get questionnaire",
			slog.String("hash", hash))
	}
	return q.Clone(), nil
}

// Questionnaires lists every questionnaire, newest first.
func (s *Store) Questionnaires() []models.Questionnaire {
	s.mu.Lock()
	out := make([]models.Questionnaire, 0, len(s.state.Questionnaires))
	for _, q := range s.state.Questionnaires {
		out = append(out, q.Clone())
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b models.Questionnaire) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
	return out
}

// CreateInterview starts an interview against a questionnaire and makes it the current one.
//
// The questionnaire does not have to exist. Reading an interview with a dangling hash reports
// ErrQuestionnaireNotFound.
func (s *Store) CreateInterview(ctx context.Context, questionnaireHash string, candidate models.Candidate) (
	models.Interview, error) {
	if err := candidate.Validate(); err != nil {
		return models.Interview{}, err
	}
	iv := models.Interview{
		ID:                s.newID(),
		QuestionnaireHash: questionnaireHash,
		Candidate:         candidate,
		StartedAt:         s.now().UTC(),
		IsPaused:          false,
		Sessions:          map[string]*models.SessionData{},
	}
	err := s.apply(ctx, "create interview", func(st *State) error {
		st.Interviews[iv.ID] = iv
		id := iv.ID
		st.CurrentInterviewID = &id
		return nil
	})
	if err != nil {
		return models.Interview{}, err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "created interview",
		slog.String("interview_id", iv.ID), slog.String("hash", questionnaireHash))
	return iv.Clone(), nil
}

// Interview looks up an interview by id.
func (s *Store) Interview(id string) (models.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.state.Interviews[id]
	if !ok {
		return models.Interview{}, errors.Wrap(ErrInterviewNotFound, "get interview", slog.String("interview_id", id))
	}
	return iv.Clone(), nil
}

// InterviewWithQuestionnaire looks up an interview together with the questionnaire it runs.
func (s *Store) InterviewWithQuestionnaire(id string) (models.Interview, models.Questionnaire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.state.Interviews[id]
	if !ok {
		return models.Interview{}, models.Questionnaire{}, errors.Wrap(ErrInterviewNotFound, "get interview",
			slog.String("interview_id", id))
	}
	q, ok := s.state.Questionnaires[iv.QuestionnaireHash]
	if !ok {
		return models.Interview{}, models.Questionnaire{}, errors.Wrap(ErrQuestionnaireNotFound,
			"get interview questionnaire", slog.String("interview_id", id), slog.String("hash", iv.QuestionnaireHash))
	}
	return iv.Clone(), q.Clone(), nil
}

// Status filters interviews by completion.
type Status string

const (
	StatusAll      Status = ""
	StatusOpen     Status = "open"
	StatusFinished Status = "finished"
)

// Filter selects interviews for listing.
type Filter struct {
	// Query matches case-insensitively against the candidate's name, title and department and the questionnaire name.
	Query  string
	Status Status
}

// Interviews lists the interviews matching filter, most recently started first.
func (s *Store) Interviews(filter Filter) []models.Interview {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	s.mu.Lock()
	out := make([]models.Interview, 0, len(s.state.Interviews))
	for _, iv := range s.state.Interviews {
		switch filter.Status {
		case StatusOpen:
			if iv.Finished() {
				continue
			}
		case StatusFinished:
			if !iv.Finished() {
				continue
			}
		case StatusAll:
		}
		if query != "" && !matches(query, iv, s.state.Questionnaires[iv.QuestionnaireHash].Name) {
			continue
		}
		out = append(out, iv.Clone())
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b models.Interview) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func matches(query string, iv models.Interview, questionnaireName string) bool {
	for _, field := range []string{iv.Candidate.Name, iv.Candidate.Title, iv.Candidate.Dept, questionnaireName} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// PauseInterview marks the interview as paused.
func (s *Store) PauseInterview(ctx context.Context, id string) error {
	return s.mutateInterview(ctx, "pause interview", id, func(_ *State, iv *models.Interview) error {
		iv.IsPaused = true
		return nil
	})
}

// ResumeInterview marks the interview as running. Finished interviews cannot be resumed.
func (s *Store) ResumeInterview(ctx context.Context, id string) error {
	return s.mutateInterview(ctx, "resume interview", id, func(_ *State, iv *models.Interview) error {
		if iv.Finished() {
			return errors.Wrap(ErrInterviewFinished, "resume interview", slog.String("interview_id", id))
		}
		iv.IsPaused = false
		return nil
	})
}

// CompleteInterview finishes and pauses the interview. Completing a finished interview keeps the first finish time.
func (s *Store) CompleteInterview(ctx context.Context, id string) (models.Interview, error) {
	var completed models.Interview
	err := s.mutateInterview(ctx, "complete interview", id, func(_ *State, iv *models.Interview) error {
		if iv.FinishedAt == nil {
			now := s.now().UTC()
			iv.FinishedAt = &now
		}
		iv.IsPaused = true
		completed = *iv
		return nil
	})
	if err != nil {
		return models.Interview{}, err
	}
	return completed.Clone(), nil
}

// UpdateAnswer records the answer and makes the question the interview's current one.
func (s *Store) UpdateAnswer(ctx context.Context, id, sessionID, qid string, answer any) error {
	return s.mutateInterview(ctx, "update answer", id, func(st *State, iv *models.Interview) error {
		q := s.touchQuestion(st, iv, sessionID, qid, s.now().UTC())
		q.Answer = answer
		iv.CurrentSession = sessionID
		iv.CurrentQuestion = qid
		return nil
	})
}

// UpdateNotes records the interviewer's notes on a question.
func (s *Store) UpdateNotes(ctx context.Context, id, sessionID, qid, notes string) error {
	return s.mutateInterview(ctx, "update notes", id, func(st *State, iv *models.Interview) error {
		q := s.touchQuestion(st, iv, sessionID, qid, s.now().UTC())
		q.Notes = notes
		return nil
	})
}

// UpdateQuestionTime records the total time spent on a question.
func (s *Store) UpdateQuestionTime(ctx context.Context, id, sessionID, qid string, elapsed time.Duration) error {
	return s.mutateInterview(ctx, "update question time", id, func(st *State, iv *models.Interview) error {
		q := s.touchQuestion(st, iv, sessionID, qid, s.now().UTC())
		q.ElapsedMs = clampMs(elapsed)
		return nil
	})
}

// UpdateSessionTime records the total time spent in a session.
func (s *Store) UpdateSessionTime(ctx context.Context, id, sessionID string, actual time.Duration) error {
	return s.mutateInterview(ctx, "update session time", id, func(st *State, iv *models.Interview) error {
		session := s.sessionData(st, iv, sessionID)
		session.ActualMs = clampMs(actual)
		return nil
	})
}

// clampMs drops negative durations, which a misbehaving clock could produce.
func clampMs(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

// Patch lists the interview fields to replace. Nil fields are left alone.
type Patch struct {
	Candidate       *models.Candidate
	Review          *models.Review
	IsPaused        *bool
	CurrentSession  *string
	CurrentQuestion *string
}

// UpdateInterview merges patch into the interview.
func (s *Store) UpdateInterview(ctx context.Context, id string, patch Patch) error {
	if patch.Review != nil {
		if err := patch.Review.Validate(); err != nil {
			return err
		}
	}
	if patch.Candidate != nil {
		if err := patch.Candidate.Validate(); err != nil {
			return err
		}
	}
	return s.mutateInterview(ctx, "update interview", id, func(_ *State, iv *models.Interview) error {
		if patch.Candidate != nil {
			iv.Candidate = *patch.Candidate
		}
		if patch.Review != nil {
			review := patch.Review.Clone()
			iv.Review = &review
		}
		if patch.IsPaused != nil {
			if !*patch.IsPaused && iv.Finished() {
				return errors.Wrap(ErrInterviewFinished, "update interview", slog.String("interview_id", id))
			}
			iv.IsPaused = *patch.IsPaused
		}
		if patch.CurrentSession != nil {
			iv.CurrentSession = *patch.CurrentSession
		}
		if patch.CurrentQuestion != nil {
			iv.CurrentQuestion = *patch.CurrentQuestion
		}
		return nil
	})
}

// SetReview replaces the interview's review. Ratings outside 0 to 5 return *models.ValidationError.
func (s *Store) SetReview(ctx context.Context, id string, review models.Review) error {
	return s.UpdateInterview(ctx, id, Patch{Review: &review})
}

// SetCurrentInterview moves the current interview pointer. An empty id clears it.
func (s *Store) SetCurrentInterview(ctx context.Context, id string) error {
	return s.apply(ctx, "set current interview", func(st *State) error {
		if id == "" {
			st.CurrentInterviewID = nil
			return nil
		}
		if _, ok := st.Interviews[id]; !ok {
			return errors.Wrap(ErrInterviewNotFound, "set current interview", slog.String("interview_id", id))
		}
		st.CurrentInterviewID = &id
		return nil
	})
}

// CurrentInterviewID returns the current interview pointer, or "" when none is set.
func (s *Store) CurrentInterviewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentInterviewID == nil {
		return ""
	}
	return *s.state.CurrentInterviewID
}

func (s *Store) SetDarkMode(ctx context.Context, dark bool) error {
	return s.apply(ctx, "set dark mode", func(st *State) error {
		st.DarkMode = dark
		return nil
	})
}

func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DarkMode
}
