package main

import (
	"context"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"github.com/badgerinator/businessProcessAnalysis/internal/progress"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/badgerinator/businessProcessAnalysis/internal/state"
	"github.com/badgerinator/businessProcessAnalysis/internal/timer"
	"log/slog"
	"net/http"
	"time"
)

type selectRequest struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
}

func (app *application) timerStatus(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	if _, err := app.store.Interview(id); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, app.trackers.Tracker(id).Status())
}

// timerSelect points the interview's timer at a question, continuing from the time already recorded for it.
func (app *application) timerSelect(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	var req selectRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	iv, q, err := app.store.InterviewWithQuestionnaire(id)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	doc, err := questionnaire.Decode(q.Document)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	session, ok := doc.Session(req.SessionID)
	if !ok {
		app.clientError(w, r, http.StatusUnprocessableEntity, "unknown session "+req.SessionID)
		return
	}
	if _, ok = session.Question(req.QuestionID); !ok {
		app.clientError(w, r, http.StatusUnprocessableEntity, "unknown question "+req.QuestionID)
		return
	}

	// The running question records its last delta on stop, read the totals afterwards.
	tracker := app.trackers.Tracker(id)
	if err = tracker.Stop(r.Context()); err != nil {
		app.handleError(w, r, err)
		return
	}
	if iv, err = app.store.Interview(id); err != nil {
		app.handleError(w, r, err)
		return
	}

	sel := timer.Selection{
		SessionID:       req.SessionID,
		QuestionID:      req.QuestionID,
		SectionBudget:   progress.Minutes(session.PlannedDurationMin),
		QuestionElapsed: 0,
		SessionElapsed:  0,
	}
	if data := iv.Sessions[req.SessionID]; data != nil {
		sel.SessionElapsed = time.Duration(data.ActualMs) * time.Millisecond
		if qd := data.Questions[req.QuestionID]; qd != nil {
			sel.QuestionElapsed = time.Duration(qd.ElapsedMs) * time.Millisecond
		}
	}

	if err = tracker.Select(r.Context(), sel); err != nil {
		app.handleError(w, r, err)
		return
	}
	err = app.store.UpdateInterview(r.Context(), id, state.Patch{
		Candidate:       nil,
		Review:          nil,
		IsPaused:        nil,
		CurrentSession:  &req.SessionID,
		CurrentQuestion: &req.QuestionID,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, tracker.Status())
}

func (app *application) timerStart(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	iv, err := app.store.Interview(id)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if iv.Finished() {
		app.clientError(w, r, http.StatusConflict, "interview is finished")
		return
	}
	tracker := app.trackers.Tracker(id)
	if err = tracker.Start(r.Context()); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, tracker.Status())
}

func (app *application) timerStop(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	if _, err := app.store.Interview(id); err != nil {
		app.handleError(w, r, err)
		return
	}
	tracker := app.trackers.Tracker(id)
	if err := tracker.Stop(r.Context()); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, tracker.Status())
}

func (app *application) sectionWarning(ctx context.Context, interviewID string, minutesLeft int) {
	ctx = logging.WithAttrs(ctx, slog.String("interview_id", interviewID))
	app.logger.LogAttrs(ctx, slog.LevelInfo, "section ending soon", slog.Int("minutes_left", minutesLeft))
}

func (app *application) sectionTimeUp(ctx context.Context, interviewID string) {
	ctx = logging.WithAttrs(ctx, slog.String("interview_id", interviewID))
	app.logger.LogAttrs(ctx, slog.LevelWarn, "section time is up, timer paused")
}
