package main

import (
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"log/slog"
	"net/http"
	"time"
)

type questionnaireResponse struct {
	Hash             string    `json:"hash"`
	Name             string    `json:"name"`
	Version          string    `json:"version"`
	CreatedAt        time.Time `json:"createdAt"`
	Sessions         int       `json:"sessions"`
	Questions        int       `json:"questions"`
	TotalDurationMin float64   `json:"totalDurationMin"`
}

func newQuestionnaireResponse(q models.Questionnaire) (questionnaireResponse, error) {
	doc, err := questionnaire.Decode(q.Document)
	if err != nil {
		return questionnaireResponse{}, err
	}
	return questionnaireResponse{
		Hash:             q.Hash,
		Name:             q.Name,
		Version:          q.Version,
		CreatedAt:        q.CreatedAt,
		Sessions:         len(doc.Sessions),
		Questions:        doc.QuestionCount(),
		TotalDurationMin: doc.TotalDuration(),
	}, nil
}

func (app *application) listQuestionnaires(w http.ResponseWriter, r *http.Request) {
	list := app.store.Questionnaires()
	out := make([]questionnaireResponse, 0, len(list))
	for _, q := range list {
		resp, err := newQuestionnaireResponse(q)
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "describe questionnaire", slog.String("hash", q.Hash)))
			return
		}
		out = append(out, resp)
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

// createQuestionnaire accepts a questionnaire document as JSON or YAML.
func (app *application) createQuestionnaire(w http.ResponseWriter, r *http.Request) {
	body, ok := app.readBody(w, r)
	if !ok {
		return
	}
	q, err := app.store.AddQuestionnaire(r.Context(), body)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp, err := newQuestionnaireResponse(q)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, resp)
}

// downloadQuestionnaire returns the stored questionnaire document.
func (app *application) downloadQuestionnaire(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	ctx := logging.WithAttrs(r.Context(), slog.String("hash", hash))
	r = r.WithContext(ctx)

	q, err := app.store.Questionnaire(hash)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="questionnaire_`+q.Hash[:min(12, len(q.Hash))]+`.json"`)
	if _, err = w.Write(q.Document); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelDebug, "failed to write questionnaire", errors.SlogError(err))
	}
}
