package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/snapshot"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var storeDir string
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Manage saved palette snapshots",
		Long: `Save, show, list and delete palette snapshots.

Snapshots are stored in the configured store: a directory of JSON files by
default, or PostgreSQL when CHROMAPOEM_STORE=postgres.`,
	}
	cmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "snapshot directory (overrides the configured store)")

	cmd.AddCommand(
		newSnapshotSaveCmd(opts, &storeDir),
		newSnapshotShowCmd(opts, &storeDir),
		newSnapshotListCmd(opts, &storeDir),
		newSnapshotDeleteCmd(opts, &storeDir),
	)
	return cmd
}

func newSnapshotSaveCmd(opts *rootOptions, storeDir *string) *cobra.Command {
	var pf paletteFlags
	cmd := &cobra.Command{
		Use:   "save [key]",
		Short: "Save a palette as a snapshot",
		Long: `Save the palette given by the palette flags. The key defaults to
colorPalette.

Examples:
  chromapoem snapshot save --background '#FFF700' --circle1 '#E8E1D1'
  chromapoem snapshot save sunset --random --seed 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := snapshot.DefaultKey
			if len(args) == 1 {
				key = args[0]
			}
			if err := snapshot.ValidateKey(key); err != nil {
				return err
			}
			if pf.storeDir == "" {
				pf.storeDir = *storeDir
			}
			d, err := pf.designer(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			s, err := saveSnapshot(cmd.Context(), opts, pf.storeDir, key, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", key, s.ID)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func newSnapshotShowCmd(opts *rootOptions, storeDir *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [key]",
		Short: "Show a stored snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := snapshot.DefaultKey
			if len(args) == 1 {
				key = args[0]
			}
			store, err := opts.openStore(cmd.Context(), *storeDir)
			if err != nil {
				return err
			}
			defer store.Close()

			s, err := store.Load(cmd.Context(), key)
			if err != nil {
				return fmt.Errorf("failed to load snapshot %q: %w", key, err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := s.Encode()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "Key:     %s\nID:      %s\n", key, s.ID)
			if !s.CreatedAt.IsZero() {
				fmt.Fprintf(out, "Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprint(out, s.Palette.String())
			if s.Blur != nil {
				fmt.Fprintf(out, "Blur:    circle2 %.1fpx, circle3 %.1fpx\n", s.Blur.Circle2, s.Blur.Circle3)
			}
			if s.Geometry != nil {
				g := s.Geometry
				fmt.Fprintf(out, "Sizes:   %.1f / %.1f / %.1f\n", g.Sizes.Circle1, g.Sizes.Circle2, g.Sizes.Circle3)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON")
	return cmd
}

func newSnapshotListCmd(opts *rootOptions, storeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx, *storeDir)
			if err != nil {
				return err
			}
			defer store.Close()

			keys, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list snapshots: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(out, "No snapshots stored.")
				return nil
			}

			table := NewTable([]string{"Key", "Background", "Circle 1", "Circle 2", "Circle 3", "Gradient"})
			for _, key := range keys {
				s, err := store.Load(ctx, key)
				if err != nil {
					opts.logger.Warn("skipping unreadable snapshot", "key", key, "error", err)
					continue
				}
				gradient := "-"
				if s.Gradient != nil {
					gradient = s.Gradient.Stop1.Hex() + " -> " + s.Gradient.Stop2.Hex()
				}
				table.AddRow([]string{key, s.Background.Hex(), s.Circle1.Hex(), s.Circle2.Hex(), s.Circle3.Hex(), gradient})
			}
			fmt.Fprint(out, table.Render())
			return nil
		},
	}
}

func newSnapshotDeleteCmd(opts *rootOptions, storeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(cmd.Context(), *storeDir)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete snapshot %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
