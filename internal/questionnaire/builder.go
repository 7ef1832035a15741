package questionnaire

import (
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/google/uuid"
	"log/slog"
)

const (
	DefaultSessionMin  = 30
	DefaultQuestionMin = 2
)

var ErrUnknownSession = errors.NewSentinel("unknown session")

// Builder assembles a new questionnaire document session by session.
type Builder struct {
	doc Document
	// newID generates session and question ids.
	newID func() string
}

// NewBuilder starts an empty questionnaire.
func NewBuilder(name, version string) *Builder {
	return &Builder{
		doc: Document{
			AnalysisName: name,
			Version:      version,
			Sessions:     []Session{},
		},
		newID: uuid.NewString,
	}
}

// AddSession appends a session and returns its id. Zero values fall back to a generic title and 30 minutes.
func (b *Builder) AddSession(title string, plannedMin float64) string {
	if title == "" {
		title = "New Session"
	}
	if plannedMin <= 0 {
		plannedMin = DefaultSessionMin
	}
	id := b.newID()
	b.doc.Sessions = append(b.doc.Sessions, Session{
		SessionID:          id,
		Title:              title,
		PlannedDurationMin: plannedMin,
		Questions:          []Question{},
	})
	return id
}

// AddQuestion appends a question to the session and returns its id.
func (b *Builder) AddQuestion(sessionID, text string, expectedMin float64) (string, error) {
	if expectedMin <= 0 {
		expectedMin = DefaultQuestionMin
	}
	return b.appendQuestion(sessionID, Question{
		Text:                text,
		ExpectedDurationMin: expectedMin,
	})
}

// ImportQuestion copies a question from another questionnaire into the session under a fresh id.
func (b *Builder) ImportQuestion(sessionID string, q Question) (string, error) {
	return b.appendQuestion(sessionID, q)
}

func (b *Builder) appendQuestion(sessionID string, q Question) (string, error) {
	for i := range b.doc.Sessions {
		if b.doc.Sessions[i].SessionID != sessionID {
			continue
		}
		q.QID = b.newID()
		b.doc.Sessions[i].Questions = append(b.doc.Sessions[i].Questions, q)
		return q.QID, nil
	}
	return "", errors.Wrap(ErrUnknownSession, "append question", slog.String("session_id", sessionID))
}

// Build returns the document as JSON after checking it against the questionnaire schema.
func (b *Builder) Build() ([]byte, error) {
	raw, err := json.MarshalIndent(b.doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal questionnaire")
	}
	if err = Validate(raw); err != nil {
		return nil, err
	}
	return raw, nil
}
