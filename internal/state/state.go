// Package state owns the questionnaires and interviews of the process.
//
// Every mutation goes through Store.apply: it runs against a copy of the state, is committed only when it succeeds
// and is then persisted as one snapshot. Readers always get deep copies of the committed state.
package state

import (
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
)

// State is everything that survives a restart.
type State struct {
	Questionnaires     map[string]models.Questionnaire `json:"questionnaires"`
	Interviews         map[string]models.Interview     `json:"interviews"`
	CurrentInterviewID *string                         `json:"currentInterviewId"`
	DarkMode           bool                            `json:"darkMode"`
}

func newState() State {
	return State{
		Questionnaires: map[string]models.Questionnaire{},
		Interviews:     map[string]models.Interview{},
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{
		Questionnaires: make(map[string]models.Questionnaire, len(s.Questionnaires)),
		Interviews:     make(map[string]models.Interview, len(s.Interviews)),
		DarkMode:       s.DarkMode,
	}
	for hash, q := range s.Questionnaires {
		out.Questionnaires[hash] = q.Clone()
	}
	for id, iv := range s.Interviews {
		out.Interviews[id] = iv.Clone()
	}
	if s.CurrentInterviewID != nil {
		id := *s.CurrentInterviewID
		out.CurrentInterviewID = &id
	}
	return out
}

// normalize replaces nil maps left by an older or hand edited snapshot.
func (s *State) normalize() {
	if s.Questionnaires == nil {
		s.Questionnaires = map[string]models.Questionnaire{}
	}
	if s.Interviews == nil {
		s.Interviews = map[string]models.Interview{}
	}
	for id, iv := range s.Interviews {
		if iv.Sessions == nil {
			iv.Sessions = map[string]*models.SessionData{}
		}
		for _, session := range iv.Sessions {
			if session != nil && session.Questions == nil {
				session.Questions = map[string]*models.QuestionData{}
			}
		}
		s.Interviews[id] = iv
	}
}
