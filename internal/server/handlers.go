package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gensys/chromapoem/internal/audio"
	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/poem"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// HealthResponse is returned by GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AnalyzeResponse is returned by POST /api/palette/analyze.
type AnalyzeResponse struct {
	Palette  colour.Palette  `json:"palette"`
	Swatches []colour.Swatch `json:"swatches"`
	Tone     poem.Tone       `json:"tone"`
	Voices   []audio.Voice   `json:"voices"`
	Prompt   string          `json:"prompt"`
}

// GET /
func (app *Application) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		app.notFound(w, r, fmt.Errorf("no route for %s", r.URL.Path))
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "Server is running",
		Message: "Color Picker Poetry API Proxy",
	})
}

// POST /api/generate-poem
func (app *Application) generatePoem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r)
		return
	}

	var req poem.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}
	if req.Prompt == "" {
		app.errorResponse(w, r, http.StatusBadRequest, ErrorResponse{Error: msgPromptRequired})
		return
	}
	if app.Generator == nil {
		app.Logger.Error("poem requested but no API key is configured")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgNoAPIKey})
		return
	}

	logger := app.Logger.With("prompt_chars", len(req.Prompt))
	if req.ColorData != nil {
		logger = logger.With("palette", req.ColorData.ToHex())
	}
	logger.Info("generating poem for color palette")

	ctx := r.Context()
	if app.Config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.Config.RequestTimeout)
		defer cancel()
	}

	text, err := app.Generator.Generate(ctx, req.Prompt)
	if err != nil {
		var ue *poem.UpstreamError
		switch {
		case errors.As(err, &ue):
			msg := ue.Message
			if msg == "" {
				msg = "Unknown error"
			}
			logger.Warn("upstream API error", "status", ue.Status, "error", msg)
			writeJSON(w, ue.HTTPStatus(), ErrorResponse{Error: fmt.Sprintf("%s API error: %s", app.providerLabel(), msg)})
		case errors.Is(err, poem.ErrNoGenerator):
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgNoAPIKey})
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("poem request timed out", "timeout", app.Config.RequestTimeout)
			writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: "Poem generation timed out"})
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	logger.Info("poem generated successfully", "poem_chars", len(text))
	writeJSON(w, http.StatusOK, poem.Response{Poem: text, Success: true})
}

// readPalette decodes a palette or snapshot body, rejecting out of range
// channels.
func readPalette(w http.ResponseWriter, r *http.Request) (*snapshot.Snapshot, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	return snapshot.Decode(data)
}

// POST /api/palette/analyze
func (app *Application) analyzePalette(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r)
		return
	}
	s, err := readPalette(w, r)
	if err != nil {
		app.badJSONRequest(w, r, err)
		return
	}

	p := s.Palette
	prompt, tone := poem.Compose(p)
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Palette:  p,
		Swatches: p.Swatches(),
		Tone:     tone,
		Voices:   audio.Analyse(p),
		Prompt:   prompt,
	})
}

// POST /api/chime
func (app *Application) chime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r)
		return
	}
	s, err := readPalette(w, r)
	if err != nil {
		app.badJSONRequest(w, r, err)
		return
	}

	data, err := audio.EncodeWAV(s.Palette)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="chime.wav"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GET /api/snapshots
func (app *Application) listSnapshots(w http.ResponseWriter, r *http.Request) {
	if app.Store == nil {
		app.serviceUnavailable(w, r, ErrNoStore)
		return
	}
	keys, err := app.Store.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

// snapshotKey validates the {key} path value.
func (app *Application) snapshotKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	if app.Store == nil {
		app.serviceUnavailable(w, r, ErrNoStore)
		return "", false
	}
	key := r.PathValue("key")
	if err := snapshot.ValidateKey(key); err != nil {
		app.badRequest(w, r, err)
		return "", false
	}
	return key, true
}

func (app *Application) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, snapshot.ErrNotFound) {
		app.notFound(w, r, err)
		return
	}
	app.internalServerError(w, r, err)
}

// GET /api/snapshots/{key}
func (app *Application) getSnapshot(w http.ResponseWriter, r *http.Request) {
	key, ok := app.snapshotKey(w, r)
	if !ok {
		return
	}
	s, err := app.Store.Load(r.Context(), key)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// PUT /api/snapshots/{key}
func (app *Application) putSnapshot(w http.ResponseWriter, r *http.Request) {
	key, ok := app.snapshotKey(w, r)
	if !ok {
		return
	}
	s, err := readPalette(w, r)
	if err != nil {
		app.badJSONRequest(w, r, err)
		return
	}
	if err := app.Store.Save(r.Context(), key, s); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.Logger.Info("saved snapshot", "key", key, "id", s.ID)
	writeJSON(w, http.StatusOK, s)
}

// DELETE /api/snapshots/{key}
func (app *Application) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	key, ok := app.snapshotKey(w, r)
	if !ok {
		return
	}
	if err := app.Store.Delete(r.Context(), key); err != nil {
		app.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
