package main

import (
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/badgerinator/businessProcessAnalysis/internal/state"
	"github.com/badgerinator/businessProcessAnalysis/internal/timer"
	"io"
	"log/slog"
	"net/http"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Fields any    `json:"fields,omitempty"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into dst. It responds with 400 and returns false when the body is unusable.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// readBody returns the raw request body. It responds with 413 and returns false for oversized bodies.
func (app *application) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		app.clientError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	return body, true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		errorResponse{Error: http.StatusText(http.StatusInternalServerError), Fields: nil})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), slog.String("reason", msg))
	app.writeJSON(w, r, status, errorResponse{Error: msg, Fields: nil})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// handleError maps domain errors to responses. Anything unknown is a server error.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		questionnaireErr *questionnaire.ValidationError
		modelErr         *models.ValidationError
	)
	switch {
	case errors.As(err, &questionnaireErr):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "rejected questionnaire", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusUnprocessableEntity,
			errorResponse{Error: "questionnaire does not match the schema", Fields: questionnaireErr.Errors})
	case errors.As(err, &modelErr):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "rejected input", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusUnprocessableEntity,
			errorResponse{Error: "validation failed", Fields: modelErr.Errors})
	case errors.Is(err, questionnaire.ErrMalformed):
		app.clientError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, state.ErrInterviewNotFound), errors.Is(err, state.ErrQuestionnaireNotFound):
		app.clientError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, state.ErrInterviewFinished), errors.Is(err, timer.ErrTimeUp),
		errors.Is(err, timer.ErrNoSelection):
		app.clientError(w, r, http.StatusConflict, err.Error())
	default:
		app.serverError(w, r, err)
	}
}
