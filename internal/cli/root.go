// Package cli provides the command-line interface for chromapoem.
package cli

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/config"
	"github.com/gensys/chromapoem/internal/snapshot"
	"github.com/gensys/chromapoem/internal/version"
)

// rootOptions is shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE before any RunE executes.
type rootOptions struct {
	verbose  bool
	logLevel string

	cfg    config.Config
	logger hclog.Logger
}

// NewRootCmd builds the complete command tree. Each call returns an
// independent tree so tests can run commands in isolation.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "chromapoem",
		Short: "Design four-colour palettes and turn them into chimes and poems",
		Long: `chromapoem is a colour-palette designer built around three nested circles
on a flat or gradient background.

Every palette can be converted between RGB, HSV and CMYK, played as a chime,
rendered as a preview image and described to a language model that writes a
concrete poem about it. The serve command runs the poem proxy that keeps the
model API key off the client.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: opts.load,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConvertCmd(opts),
		newServeCmd(opts),
		newReportCmd(opts),
		newChimeCmd(opts),
		newPreviewCmd(opts),
		newSeedCmd(opts),
		newLayoutCmd(opts),
		newSnapshotCmd(opts),
	)
	return rootCmd
}

// load reads the environment configuration and applies the logging flags.
func (o *rootOptions) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	o.cfg = cfg
	o.logger = cfg.Logger("chromapoem", cmd.ErrOrStderr())
	return nil
}

// openStore opens the configured snapshot store. dir overrides the file
// store directory when set.
func (o *rootOptions) openStore(ctx context.Context, dir string) (snapshot.Store, error) {
	cfg := o.cfg
	if dir != "" {
		cfg.Store = config.StoreFile
		cfg.StorePath = dir
	}
	store, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	o.logger.Debug("opened snapshot store", "store", cfg.Store)
	return store, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
