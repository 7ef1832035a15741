package state

import (
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"time"
)

// sessionData returns the interview's session, inserting the defaults on first touch.
//
// A new session starts with no time spent and the planned duration of the questionnaire session, or 0 when the
// questionnaire or session cannot be found.
func (s *Store) sessionData(st *State, iv *models.Interview, sessionID string) *models.SessionData {
	if session := iv.Sessions[sessionID]; session != nil {
		if session.Questions == nil {
			session.Questions = map[string]*models.QuestionData{}
		}
		return session
	}
	session := &models.SessionData{
		PlannedMin: 0,
		ActualMs:   0,
		Questions:  map[string]*models.QuestionData{},
	}
	if planned, ok := s.lookupSession(st, iv, sessionID); ok {
		session.PlannedMin = planned.PlannedDurationMin
	}
	iv.Sessions[sessionID] = session
	return session
}

// questionData returns the session's question, inserting the defaults on first touch.
//
// A new question has no answer, empty notes, no time spent and the expected duration of the questionnaire question,
// or 0 when it cannot be found.
func (s *Store) questionData(st *State, iv *models.Interview, sessionID, qid string) *models.QuestionData {
	session := s.sessionData(st, iv, sessionID)
	if question := session.Questions[qid]; question != nil {
		return question
	}
	question := &models.QuestionData{
		Answer:     nil,
		Notes:      "",
		PlannedMin: 0,
		ElapsedMs:  0,
	}
	if planned, ok := s.lookupSession(st, iv, sessionID); ok {
		if q, found := planned.Question(qid); found {
			question.PlannedMin = q.ExpectedDurationMin
		}
	}
	session.Questions[qid] = question
	return question
}

// touchQuestion is questionData that also stamps lastUpdated.
func (s *Store) touchQuestion(st *State, iv *models.Interview, sessionID, qid string,
	now time.Time) *models.QuestionData {
	question := s.questionData(st, iv, sessionID, qid)
	question.LastUpdated = &now
	return question
}

func (s *Store) lookupSession(st *State, iv *models.Interview, sessionID string) (questionnaire.Session, bool) {
	doc, ok := s.document(st, iv.QuestionnaireHash)
	if !ok {
		return questionnaire.Session{}, false
	}
	return doc.Session(sessionID)
}

// document returns the decoded questionnaire stored under hash. Callers hold s.mu.
//
// Questionnaires are stored by content hash and never replaced, so a decoded document stays valid for the life of
// the store.
func (s *Store) document(st *State, hash string) (questionnaire.Document, bool) {
	if doc, ok := s.documents[hash]; ok {
		return doc, true
	}
	q, ok := st.Questionnaires[hash]
	if !ok {
		return questionnaire.Document{}, false
	}
	doc, err := questionnaire.Decode(q.Document)
	if err != nil {
		return questionnaire.Document{}, false
	}
	if s.documents == nil {
		s.documents = map[string]questionnaire.Document{}
	}
	s.documents[hash] = doc
	return doc, true
}
