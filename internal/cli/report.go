package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/poem"
	"github.com/gensys/chromapoem/internal/report"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// configuredProxy is the value of a bare --proxy flag.
const configuredProxy = "configured"

type reportOptions struct {
	palette paletteFlags
	output  string
	format  string
	proxy   string
	noPoem  bool
	noSave  bool
	saveKey string
	width   int
	height  int
	timeout time.Duration
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	o := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report bundle for a palette",
		Long: `Generate everything chromapoem produces for a palette: the colour breakdown,
the chime, the preview image, the waveform and the poem. The result is written
as a .tar.xz bundle and the palette is saved as a snapshot.

The poem is requested once. When no provider is configured or the request
fails, the bundle records the error instead of a poem.

Examples:
  # Report on the default palette using the configured API key
  chromapoem report -o default.tar.xz

  # Ask a running proxy instead of calling the API directly
  chromapoem report --proxy=http://localhost:3000 --circle1 '#E8E1D1'

  # Random palette, no poem, print the text report
  chromapoem report --random --seed 7 --no-poem --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd.Context(), cmd, opts)
		},
	}
	o.palette.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "chromapoem-report.tar.xz", "bundle file to write (- for none)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "summary", "stdout format (summary, text, json)")
	cmd.Flags().StringVar(&o.proxy, "proxy", "", "request the poem from a chromapoem proxy at this URL (bare flag uses the configured proxy URL)")
	cmd.Flags().Lookup("proxy").NoOptDefVal = configuredProxy
	cmd.Flags().BoolVar(&o.noPoem, "no-poem", false, "skip the poem request")
	cmd.Flags().BoolVar(&o.noSave, "no-save", false, "do not save the palette snapshot")
	cmd.Flags().StringVar(&o.saveKey, "key", snapshot.DefaultKey, "snapshot key to save under")
	cmd.Flags().IntVar(&o.width, "width", 1280, "preview width in pixels")
	cmd.Flags().IntVar(&o.height, "height", 800, "preview height in pixels")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "poem request timeout (default from configuration)")

	cmd.AddCommand(newReportInspectCmd())
	return cmd
}

func (o *reportOptions) run(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	d, err := o.palette.designer(ctx, cmd, opts)
	if err != nil {
		return err
	}

	gen, err := o.generator(ctx, opts)
	if err != nil {
		return err
	}

	var store snapshot.Store
	if !o.noSave {
		if store, err = opts.openStore(ctx, o.palette.storeDir); err != nil {
			return err
		}
		defer store.Close()
	}

	b := report.NewBuilder(gen, store, opts.logger.Named("report"))
	b.Key = o.saveKey
	b.Preview.Width = o.width
	b.Preview.Height = o.height

	r, err := b.Build(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if o.output != "" && o.output != "-" {
		if err := writeBundleFile(o.output, r); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", o.output)
	}
	return o.print(cmd, r)
}

// generator picks the poem backend: the proxy when --proxy is set, otherwise
// the configured provider. A missing API key is not an error here.
func (o *reportOptions) generator(ctx context.Context, opts *rootOptions) (poem.Generator, error) {
	if o.noPoem {
		return nil, nil
	}
	timeout := o.timeout
	if timeout <= 0 {
		timeout = opts.cfg.RequestTimeout
	}

	proxy := o.proxy
	if proxy == configuredProxy {
		proxy = opts.cfg.ProxyURL
	}
	if proxy != "" {
		opts.logger.Debug("using poem proxy", "url", proxy)
		return poem.NewClient(proxy, timeout), nil
	}

	cfg := opts.cfg
	cfg.RequestTimeout = timeout
	gen, err := cfg.Generator(ctx)
	if errors.Is(err, poem.ErrNoGenerator) {
		opts.logger.Warn("no poem provider configured, the report will not include a poem", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create poem generator: %w", err)
	}
	return gen, nil
}

func (o *reportOptions) print(cmd *cobra.Command, r *report.Report) error {
	out := cmd.OutOrStdout()
	switch o.format {
	case "text":
		fmt.Fprint(out, r.Text())
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "summary":
		fmt.Fprint(out, r.Palette().String())
		fmt.Fprintf(out, "Tone: %s, %s, %s\n", r.Tone.Intensity, r.Tone.Abstraction, r.Tone.Quality)
		if r.PoemError != "" {
			fmt.Fprintf(out, "Poem unavailable: %s\n", r.PoemError)
		} else {
			fmt.Fprintf(out, "\n%s\n", r.Poem)
		}
	default:
		return fmt.Errorf("unknown format %q (want summary, text or json)", o.format)
	}
	return nil
}

func writeBundleFile(path string, r *report.Report) error {
	f, err := os.Create(path) // #nosec G304 - User-specified output path
	if err != nil {
		return fmt.Errorf("failed to create bundle file: %w", err)
	}
	if err := report.WriteBundle(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close bundle file: %w", err)
	}
	return nil
}

func newReportInspectCmd() *cobra.Command {
	var printEntry string
	cmd := &cobra.Command{
		Use:   "inspect <bundle>",
		Short: "List the contents of a report bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0]) // #nosec G304 - User-specified bundle path
			if err != nil {
				return fmt.Errorf("failed to open bundle: %w", err)
			}
			defer f.Close()

			b, err := report.ReadBundle(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printEntry != "" {
				data, ok := b.File(printEntry)
				if !ok {
					return fmt.Errorf("bundle has no entry %q", printEntry)
				}
				_, err := out.Write(data)
				return err
			}

			table := NewTable([]string{"Name", "Size", "Modified"})
			for _, e := range b.Entries {
				table.AddRow([]string{e.Name, strconv.FormatInt(e.Size, 10), e.ModTime.UTC().Format(time.RFC3339)})
			}
			fmt.Fprint(out, table.Render())

			if s, err := b.Snapshot(); err == nil {
				fmt.Fprintf(out, "\n%s", s.Palette.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&printEntry, "print", "", "write one entry to stdout instead of listing")
	return cmd
}
