package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Messages returned to browser clients.
const (
	msgPromptRequired   = "Prompt is required"
	msgMethodNotAllowed = "Method not allowed"
	msgNoAPIKey         = "API key not configured. Please set CLAUDE_API_KEY or GOOGLE_API_KEY in the server environment"
)

// ErrNoStore is reported when snapshot endpoints are used without a store.
var ErrNoStore = errors.New("snapshot storage is not configured")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	app.Logger.Debug("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", resp.Error)
	writeJSON(w, status, resp)
}

func (app *Application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func (app *Application) badJSONRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid JSON body: %v", err)})
}

func (app *Application) requirePostMethod(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost+", "+http.MethodOptions)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, ErrorResponse{Error: msgMethodNotAllowed})
}

func (app *Application) notFound(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, ErrorResponse{Error: err.Error()})
}

func (app *Application) serviceUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
}

func (app *Application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.Logger.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Message: err.Error()})
}
