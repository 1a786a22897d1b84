// Package server implements the HTTP proxy that forwards poem prompts to the
// text generation service and exposes palette analysis, chimes and snapshots.
package server

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/gensys/chromapoem/internal/poem"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// Config holds the server settings.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig listens on :3000 and allows every origin.
func DefaultConfig() Config {
	return Config{
		Addr:            ":3000",
		AllowedOrigins:  []string{"*"},
		RequestTimeout:  60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Application carries the dependencies of every handler. Generator and Store
// may be nil; the endpoints that need them then report an error.
type Application struct {
	Config    Config
	Generator poem.Generator
	Store     snapshot.Store
	Logger    hclog.Logger
}

// New returns an application with a null logger when logger is nil.
func New(cfg Config, gen poem.Generator, store snapshot.Store, logger hclog.Logger) *Application {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Application{
		Config:    cfg,
		Generator: gen,
		Store:     store,
		Logger:    logger,
	}
}

// providerLabel names the upstream service in error messages.
func (app *Application) providerLabel() string {
	switch app.Generator.(type) {
	case *poem.Anthropic:
		return "Claude"
	case *poem.GenAI:
		return "Gemini"
	default:
		return "Upstream"
	}
}
