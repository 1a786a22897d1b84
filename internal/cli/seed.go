package cli

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/designer"
	"github.com/gensys/chromapoem/internal/image"
	"github.com/gensys/chromapoem/internal/snapshot"
)

type seedOptions struct {
	format   string
	preview  bool
	cache    bool
	cacheDir string
	timeout  time.Duration
	rngSeed  uint64
	save     string
	storeDir string
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	o := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed <image>",
		Short: "Derive a starting palette from an image",
		Long: `Cluster the pixels of an image into four colours with k-means. The most
common colour becomes the background and the others fill circles one to three.

The image may be a local file or an HTTP(S) URL.
Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  chromapoem seed wallpaper.jpg
  chromapoem seed --preview --seed 42 wallpaper.png
  chromapoem seed https://example.com/photo.webp --cache --save fromPhoto`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&o.format, "format", "f", "text", "output format (text, hex, json)")
	cmd.Flags().BoolVar(&o.preview, "preview", false, "show colour previews in terminal")
	cmd.Flags().BoolVar(&o.cache, "cache", false, "keep downloaded images in the local cache")
	cmd.Flags().StringVar(&o.cacheDir, "cache-dir", "", "image cache directory")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 30*time.Second, "download timeout for URLs")
	cmd.Flags().Uint64Var(&o.rngSeed, "seed", 0, "random seed for centroid initialisation (default: time based)")
	cmd.Flags().StringVar(&o.save, "save", "", "save the palette as a snapshot under this key")
	cmd.Flags().StringVar(&o.storeDir, "store-dir", "", "snapshot directory (overrides the configured store)")
	return cmd
}

func (o *seedOptions) run(cmd *cobra.Command, opts *rootOptions, source string) error {
	ctx := cmd.Context()
	if err := image.ValidateImagePath(source); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	loader := image.NewSmartLoader()
	loader.Timeout = o.timeout
	loader.Cache = o.cache
	loader.CacheDir = o.cacheDir

	opts.logger.Debug("loading image", "source", source, "cache", o.cache)
	img, err := loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	bounds := img.Bounds()
	opts.logger.Debug("image loaded", "width", bounds.Dx(), "height", bounds.Dy())

	var rng *rand.Rand
	if cmd.Flags().Changed("seed") {
		rng = rand.New(rand.NewPCG(o.rngSeed, o.rngSeed))
	}
	p, clusters, err := colour.NewSeeder(rng).Seed(img)
	if err != nil {
		return fmt.Errorf("failed to seed palette: %w", err)
	}

	if o.save != "" {
		d := designer.New()
		d.Restore(snapshot.New(p))
		if _, err := saveSnapshot(ctx, opts, o.storeDir, o.save, d); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved palette as %q\n", o.save)
	}

	out := cmd.OutOrStdout()
	switch o.format {
	case "hex":
		fmt.Fprintln(out, strings.Join(p.ToHex(), "\n"))
	case "json":
		data, err := p.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal palette: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "text":
		ansi := o.preview && colour.SupportsANSIColours(os.Stdout)
		for i, role := range colour.Roles {
			c := p.Get(role)
			label := fmt.Sprintf("%s (%.0f%%)", role, clusters[i].Weight*100)
			if ansi {
				fmt.Fprintln(out, colour.FormatColourWithLabel(c, label, 6))
				continue
			}
			fmt.Fprintf(out, "%-20s %s  %s\n", label, c.Hex(), c.String())
		}
	default:
		return fmt.Errorf("unknown format %q (want text, hex or json)", o.format)
	}
	return nil
}
