package main

import (
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"net/http"
	"time"
)

type healthResponse struct {
	Status string `json:"status"`
	Slot   string `json:"slot"`
	// SavedAt is the time of the last saved snapshot, absent before the first save.
	SavedAt  *time.Time `json:"savedAt,omitempty"`
	Revision int        `json:"revision"`
}

// healthy responds with a JSON object indicating that the server is healthy and the database is readable.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	info, ok, err := app.snapshots.Info(r.Context(), app.slot)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "read snapshot info"))
		return
	}
	resp := healthResponse{Status: "ok", Slot: app.slot, SavedAt: nil, Revision: 0}
	if ok {
		resp.SavedAt = &info.SavedAt
		resp.Revision = info.Revision
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}
