package questionnaire

import (
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
)

// Document is the typed view of a questionnaire document.
type Document struct {
	AnalysisName string    `json:"analysis_name"`
	Version      string    `json:"version"`
	Sessions     []Session `json:"sessions"`
}

// Session is a titled, time-boxed group of questions.
type Session struct {
	SessionID          string     `json:"session_id"`
	Title              string     `json:"title"`
	PlannedDurationMin float64    `json:"planned_duration_min"`
	Questions          []Question `json:"questions,omitempty"`
}

type Question struct {
	QID                 string  `json:"qid"`
	Text                string  `json:"text"`
	Desc                string  `json:"desc,omitempty"`
	ExpectedDurationMin float64 `json:"expected_duration_min"`
	SampleAnswer        string  `json:"sample_answer,omitempty"`
}

// Decode returns the typed view of a raw questionnaire document.
func Decode(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, errors.Wrap(err, "decode questionnaire document")
	}
	return doc, nil
}

// TotalDuration sums the planned duration of every session in minutes.
func (d Document) TotalDuration() float64 {
	var total float64
	for _, s := range d.Sessions {
		total += s.PlannedDurationMin
	}
	return total
}

// Session looks up a session by id.
func (d Document) Session(sessionID string) (Session, bool) {
	for _, s := range d.Sessions {
		if s.SessionID == sessionID {
			return s, true
		}
	}
	return Session{}, false
}

// Question looks up a question by id within the session.
func (s Session) Question(qid string) (Question, bool) {
	for _, q := range s.Questions {
		if q.QID == qid {
			return q, true
		}
	}
	return Question{}, false
}

// QuestionCount returns the number of questions across all sessions.
func (d Document) QuestionCount() int {
	var n int
	for _, s := range d.Sessions {
		n += len(s.Questions)
	}
	return n
}
