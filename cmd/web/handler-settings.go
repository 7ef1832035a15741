package main

import (
	"net/http"
)

type settingsResponse struct {
	DarkMode           bool    `json:"darkMode"`
	CurrentInterviewID *string `json:"currentInterviewId"`
}

type settingsRequest struct {
	DarkMode *bool `json:"darkMode"`
	// CurrentInterviewID selects the interview to continue with. The empty string clears it.
	CurrentInterviewID *string `json:"currentInterviewId"`
}

func (app *application) settings() settingsResponse {
	resp := settingsResponse{DarkMode: app.store.DarkMode(), CurrentInterviewID: nil}
	if id := app.store.CurrentInterviewID(); id != "" {
		resp.CurrentInterviewID = &id
	}
	return resp
}

func (app *application) getSettings(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.settings())
}

func (app *application) putSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	if req.DarkMode != nil {
		if err := app.store.SetDarkMode(r.Context(), *req.DarkMode); err != nil {
			app.handleError(w, r, err)
			return
		}
	}
	if req.CurrentInterviewID != nil {
		if err := app.store.SetCurrentInterview(r.Context(), *req.CurrentInterviewID); err != nil {
			app.handleError(w, r, err)
			return
		}
	}
	app.writeJSON(w, r, http.StatusOK, app.settings())
}
