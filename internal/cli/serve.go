package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/config"
	"github.com/gensys/chromapoem/internal/poem"
	"github.com/gensys/chromapoem/internal/server"
	"github.com/gensys/chromapoem/internal/snapshot"
)

type serveOptions struct {
	addr     string
	origins  []string
	provider string
	model    string
	noStore  bool
	storeDir string
	logJSON  bool
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the poem proxy server",
		Long: `Run the HTTP proxy that forwards poem prompts to the configured text
generation service so the API key never reaches the browser.

Configuration is read from the environment (and an optional .env file):
  CLAUDE_API_KEY       Anthropic key (provider anthropic, the default)
  GOOGLE_API_KEY       Gemini key (provider genai)
  PORT                 listen port (default 3000)
  CHROMAPOEM_*         every other setting, see the README

Endpoints:
  GET  /                         health check
  POST /api/generate-poem        {prompt, colorData} -> {poem, success}
  POST /api/palette/analyze      palette -> swatches, tone, voices, prompt
  POST /api/chime                palette -> audio/wav
  GET  /api/snapshots            stored snapshot keys
  GET|PUT|DELETE /api/snapshots/{key}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return o.run(ctx, cmd, opts)
		},
	}
	cmd.Flags().StringVar(&o.addr, "addr", "", "listen address (default from PORT or :3000)")
	cmd.Flags().StringSliceVar(&o.origins, "allow-origin", nil, "allowed CORS origins (default *)")
	cmd.Flags().StringVar(&o.provider, "provider", "", "poem provider (anthropic, genai)")
	cmd.Flags().StringVar(&o.model, "model", "", "model name for the poem provider")
	cmd.Flags().BoolVar(&o.noStore, "no-store", false, "disable the snapshot endpoints")
	cmd.Flags().StringVar(&o.storeDir, "store-dir", "", "snapshot directory (overrides the configured store)")
	cmd.Flags().BoolVar(&o.logJSON, "log-json", false, "write logs as JSON")
	return cmd
}

func (o *serveOptions) run(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	cfg := opts.cfg
	if o.addr != "" {
		cfg.ListenAddr = o.addr
	}
	if len(o.origins) > 0 {
		cfg.AllowedOrigins = o.origins
	}
	if o.provider != "" {
		cfg.Provider = o.provider
	}
	if o.model != "" {
		cfg.Model = o.model
	}
	if o.storeDir != "" {
		cfg.Store = config.StoreFile
		cfg.StorePath = o.storeDir
	}
	if o.logJSON {
		cfg.LogJSON = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Logger("chromapoem", cmd.ErrOrStderr())

	gen, err := cfg.Generator(ctx)
	switch {
	case errors.Is(err, poem.ErrNoGenerator):
		logger.Warn("no API key configured, poem requests will fail", "provider", cfg.Provider, "error", err)
		gen = nil
	case err != nil:
		return fmt.Errorf("failed to create poem generator: %w", err)
	}

	var store snapshot.Store
	if !o.noStore {
		store, err = cfg.OpenStore(ctx)
		if err != nil {
			return fmt.Errorf("failed to open snapshot store: %w", err)
		}
		defer store.Close()
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.ListenAddr
	srvCfg.AllowedOrigins = cfg.AllowedOrigins
	srvCfg.RequestTimeout = cfg.RequestTimeout

	app := server.New(srvCfg, gen, store, logger.Named("server"))
	return app.Serve(ctx)
}
