package server

import (
	"net/http"
	"slices"
	"strings"
	"time"
)

const (
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Requested-With"
)

// Routes returns the complete handler: routing wrapped in CORS handling and
// request logging.
func (app *Application) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", app.home)
	mux.HandleFunc("/api/generate-poem", app.generatePoem)
	mux.HandleFunc("/api/palette/analyze", app.analyzePalette)
	mux.HandleFunc("/api/chime", app.chime)

	mux.HandleFunc("GET /api/snapshots", app.listSnapshots)
	mux.HandleFunc("GET /api/snapshots/{key}", app.getSnapshot)
	mux.HandleFunc("PUT /api/snapshots/{key}", app.putSnapshot)
	mux.HandleFunc("DELETE /api/snapshots/{key}", app.deleteSnapshot)

	return app.logRequests(app.cors(mux))
}

func cleanOrigin(origin string) string {
	cleaned := strings.TrimPrefix(origin, "https://")
	cleaned = strings.TrimPrefix(cleaned, "http://")
	if idx := strings.Index(cleaned, "/"); idx != -1 {
		cleaned = cleaned[:idx]
	}
	return cleaned
}

func (app *Application) isAllowedOrigin(origin string) bool {
	if slices.Contains(app.Config.AllowedOrigins, "*") {
		return true
	}
	cleaned := cleanOrigin(origin)
	for _, allowed := range app.Config.AllowedOrigins {
		if cleanOrigin(allowed) == cleaned {
			return true
		}
	}
	return false
}

// cors answers preflight requests and rejects origins that are not allowed.
// Requests without an Origin header pass through untouched.
func (app *Application) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !app.isAllowedOrigin(origin) {
			app.errorResponse(w, r, http.StatusForbidden, ErrorResponse{Error: "origin not allowed: " + cleanOrigin(origin)})
			return
		}

		h := w.Header()
		if slices.Contains(app.Config.AllowedOrigins, "*") {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (app *Application) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		app.Logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
