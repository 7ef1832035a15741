package models

import (
	"time"
)

type Candidate struct {
	Name  string `json:"name" validate:"required"`
	Title string `json:"title,omitempty"`
	Dept  string `json:"dept,omitempty"`
}

// QuestionData is the recorded state of one question in a running interview.
type QuestionData struct {
	// Answer holds any JSON value. Free text answers are strings.
	Answer      any        `json:"answer"`
	Notes       string     `json:"notes"`
	PlannedMin  float64    `json:"plannedMin"`
	ElapsedMs   int64      `json:"elapsedMs"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// SessionData is the recorded state of one questionnaire session in a running interview.
type SessionData struct {
	PlannedMin float64                  `json:"plannedMin"`
	ActualMs   int64                    `json:"actualMs"`
	Questions  map[string]*QuestionData `json:"questions"`
}

// Interview is one timed run of a questionnaire against a candidate.
//
// Sessions and their questions are created on first touch and never removed.
type Interview struct {
	ID                string                  `json:"id"`
	QuestionnaireHash string                  `json:"questionnaireHash"`
	Candidate         Candidate               `json:"candidate"`
	StartedAt         time.Time               `json:"startedAt"`
	FinishedAt        *time.Time              `json:"finishedAt,omitempty"`
	IsPaused          bool                    `json:"isPaused"`
	LastSaved         *time.Time              `json:"lastSaved,omitempty"`
	CurrentSession    string                  `json:"currentSession,omitempty"`
	CurrentQuestion   string                  `json:"currentQuestion,omitempty"`
	Review            *Review                 `json:"review,omitempty"`
	Sessions          map[string]*SessionData `json:"sessions"`
}

// Finished reports whether the interview has been completed.
func (iv Interview) Finished() bool {
	return iv.FinishedAt != nil
}

// Clone returns a deep copy of the interview.
func (iv Interview) Clone() Interview {
	out := iv
	out.FinishedAt = cloneTime(iv.FinishedAt)
	out.LastSaved = cloneTime(iv.LastSaved)
	if iv.Review != nil {
		review := iv.Review.Clone()
		out.Review = &review
	}
	out.Sessions = make(map[string]*SessionData, len(iv.Sessions))
	for id, session := range iv.Sessions {
		if session == nil {
			continue
		}
		s := session.Clone()
		out.Sessions[id] = &s
	}
	return out
}

// Clone returns a deep copy of the session data.
func (s SessionData) Clone() SessionData {
	out := s
	out.Questions = make(map[string]*QuestionData, len(s.Questions))
	for qid, question := range s.Questions {
		if question == nil {
			continue
		}
		q := question.Clone()
		out.Questions[qid] = &q
	}
	return out
}

// Clone returns a deep copy of the question data.
func (q QuestionData) Clone() QuestionData {
	out := q
	out.Answer = cloneValue(q.Answer)
	out.LastUpdated = cloneTime(q.LastUpdated)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// cloneValue copies the container types produced by encoding/json. Scalars are immutable and returned as is.
func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
