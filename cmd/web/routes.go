package main

import (
	"github.com/justinas/alice"
	"net/http"
	"time"
)

func (app *application) routes(timeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.HandleFunc("GET /api/settings", app.getSettings)
	mux.HandleFunc("PUT /api/settings", app.putSettings)

	mux.HandleFunc("GET /api/questionnaires", app.listQuestionnaires)
	mux.HandleFunc("POST /api/questionnaires", app.createQuestionnaire)
	mux.HandleFunc("GET /api/questionnaires/{hash}", app.downloadQuestionnaire)

	mux.HandleFunc("GET /api/interviews", app.listInterviews)
	mux.HandleFunc("POST /api/interviews", app.createInterview)
	mux.HandleFunc("GET /api/interviews/{id}", app.getInterview)
	mux.HandleFunc("PUT /api/interviews/{id}/sessions/{sessionID}/questions/{qid}/answer", app.putAnswer)
	mux.HandleFunc("PUT /api/interviews/{id}/sessions/{sessionID}/questions/{qid}/notes", app.putNotes)
	mux.HandleFunc("POST /api/interviews/{id}/pause", app.pauseInterview)
	mux.HandleFunc("POST /api/interviews/{id}/resume", app.resumeInterview)
	mux.HandleFunc("POST /api/interviews/{id}/complete", app.completeInterview)
	mux.HandleFunc("PUT /api/interviews/{id}/review", app.putReview)
	mux.HandleFunc("GET /api/interviews/{id}/export", app.exportInterview)

	mux.HandleFunc("GET /api/interviews/{id}/timer", app.timerStatus)
	mux.HandleFunc("POST /api/interviews/{id}/timer/select", app.timerSelect)
	mux.HandleFunc("POST /api/interviews/{id}/timer/start", app.timerStart)
	mux.HandleFunc("POST /api/interviews/{id}/timer/stop", app.timerStop)

	mux.HandleFunc("/", app.notFound)

	common := alice.New(app.recoverPanic, app.logRequest, secureHeaders, timeoutMiddleware(timeout))
	return common.Then(mux)
}
