package main

import (
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/progress"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/badgerinator/businessProcessAnalysis/internal/state"
	"github.com/badgerinator/businessProcessAnalysis/internal/timer"
	"github.com/badgerinator/businessProcessAnalysis/internal/transcript"
	"log/slog"
	"net/http"
	"strconv"
)

type interviewListItem struct {
	models.Interview
	QuestionnaireName string `json:"questionnaireName"`
	Percent           int    `json:"percent"`
}

type interviewResponse struct {
	Interview     models.Interview      `json:"interview"`
	Questionnaire questionnaireResponse `json:"questionnaire"`
	Progress      progress.Summary      `json:"progress"`
	Timer         timer.Status          `json:"timer"`
}

type createInterviewRequest struct {
	QuestionnaireHash string           `json:"questionnaireHash"`
	Candidate         models.Candidate `json:"candidate"`
}

// withInterview adds the interview id from the path to the request's log context and returns it.
func withInterview(r *http.Request) (*http.Request, string) {
	id := r.PathValue("id")
	ctx := logging.WithAttrs(r.Context(), slog.String("interview_id", id))
	return r.WithContext(ctx), id
}

func (app *application) listInterviews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := state.Status(query.Get("status"))
	switch status {
	case state.StatusAll, state.StatusOpen, state.StatusFinished:
	default:
		app.clientError(w, r, http.StatusBadRequest, "status must be one of open, finished")
		return
	}

	interviews := app.store.Interviews(state.Filter{Query: query.Get("q"), Status: status})
	out := make([]interviewListItem, 0, len(interviews))
	for _, iv := range interviews {
		name := ""
		if q, err := app.store.Questionnaire(iv.QuestionnaireHash); err == nil {
			name = q.Name
		}
		out = append(out, interviewListItem{Interview: iv, QuestionnaireName: name, Percent: progress.Percent(iv)})
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

func (app *application) createInterview(w http.ResponseWriter, r *http.Request) {
	var req createInterviewRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	iv, err := app.store.CreateInterview(r.Context(), req.QuestionnaireHash, req.Candidate)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "interview created",
		slog.String("interview_id", iv.ID), slog.String("hash", iv.QuestionnaireHash))
	w.Header().Set("Location", "/api/interviews/"+iv.ID)
	app.writeJSON(w, r, http.StatusCreated, iv)
}

func (app *application) getInterview(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
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
	meta, err := newQuestionnaireResponse(q)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, interviewResponse{
		Interview:     iv,
		Questionnaire: meta,
		Progress:      progress.Summarize(iv, doc),
		Timer:         app.trackers.Tracker(id).Status(),
	})
}

func (app *application) putAnswer(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	var req struct {
		Answer any `json:"answer"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}
	err := app.store.UpdateAnswer(r.Context(), id, r.PathValue("sessionID"), r.PathValue("qid"), req.Answer)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) putNotes(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	var req struct {
		Notes string `json:"notes"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}
	err := app.store.UpdateNotes(r.Context(), id, r.PathValue("sessionID"), r.PathValue("qid"), req.Notes)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pauseInterview stops a running timer, which records its time, and marks the interview paused.
func (app *application) pauseInterview(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	if _, err := app.store.Interview(id); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.trackers.Tracker(id).Stop(r.Context()); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.store.PauseInterview(r.Context(), id); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resumeInterview clears the paused flag and restarts the timer on the selected question.
// Without a selection, or once the section time is up, only the flag changes.
func (app *application) resumeInterview(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	if _, err := app.store.Interview(id); err != nil {
		app.handleError(w, r, err)
		return
	}
	tracker := app.trackers.Tracker(id)
	if status := tracker.Status(); status.SessionID != "" && !status.TimeUp {
		// Start resumes the interview before timing.
		if err := tracker.Start(r.Context()); err != nil {
			app.handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := app.store.ResumeInterview(r.Context(), id); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) completeInterview(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	if _, err := app.store.Interview(id); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.trackers.Release(r.Context(), id); err != nil {
		app.handleError(w, r, err)
		return
	}
	iv, err := app.store.CompleteInterview(r.Context(), id)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "interview completed")
	app.writeJSON(w, r, http.StatusOK, iv)
}

func (app *application) putReview(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	var review models.Review
	if !app.readJSON(w, r, &review) {
		return
	}
	if err := app.store.SetReview(r.Context(), id, review); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportInterview downloads the interview transcript.
func (app *application) exportInterview(w http.ResponseWriter, r *http.Request) {
	r, id := withInterview(r)
	iv, q, err := app.store.InterviewWithQuestionnaire(id)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	name, data, err := transcript.Export(q, iv, app.now())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "export transcript"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err = w.Write(data); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write transcript", errors.SlogError(err))
	}
}
