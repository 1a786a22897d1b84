package cli

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/preview"
	"github.com/gensys/chromapoem/internal/report"
)

type previewOptions struct {
	palette   paletteFlags
	output    string
	width     int
	height    int
	scale     float64
	thumbnail int
	waveform  bool
	flat      bool
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	o := &previewOptions{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the palette as a PNG image",
		Long: `Render the background and the three nested circles, with the blur of
circles two and three, to a PNG file. With --waveform the chime's waveform is
drawn instead.

Examples:
  chromapoem preview -o scene.png
  chromapoem preview --from colorPalette --thumbnail 320 -o thumb.png
  chromapoem preview --waveform -o wave.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := o.palette.designer(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			var img image.Image
			if o.waveform {
				w, h := o.width, o.height
				if !cmd.Flags().Changed("width") {
					w = report.WaveformWidth
				}
				if !cmd.Flags().Changed("height") {
					h = report.WaveformHeight
				}
				img = preview.RenderWaveform(d.Palette(), w, h)
			} else {
				img = preview.RenderScene(d.Palette(), d.Engine().Layout(), preview.Options{
					Width:    o.width,
					Height:   o.height,
					Gradient: !o.flat,
					Scale:    o.scale,
				})
			}
			img = preview.Thumbnail(img, o.thumbnail)

			f, err := os.Create(o.output) // #nosec G304 - User-specified output path
			if err != nil {
				return fmt.Errorf("failed to create preview file: %w", err)
			}
			if err := preview.EncodePNG(f, img); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close preview file: %w", err)
			}
			b := img.Bounds()
			opts.logger.Debug("wrote preview", "path", o.output, "width", b.Dx(), "height", b.Dy())
			fmt.Fprintf(cmd.ErrOrStderr(), "Preview written to %s (%dx%d)\n", o.output, b.Dx(), b.Dy())
			return nil
		},
	}
	o.palette.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "preview.png", "PNG file to write")
	cmd.Flags().IntVar(&o.width, "width", 1280, "canvas width in pixels")
	cmd.Flags().IntVar(&o.height, "height", 800, "canvas height in pixels")
	cmd.Flags().Float64Var(&o.scale, "scale", 1, "scale applied to circle sizes and offsets")
	cmd.Flags().IntVar(&o.thumbnail, "thumbnail", 0, "scale the image so its longest side is at most this many pixels")
	cmd.Flags().BoolVar(&o.waveform, "waveform", false, "render the chime waveform instead of the scene")
	cmd.Flags().BoolVar(&o.flat, "no-gradient", false, "draw the background flat even when the palette has a gradient")
	return cmd
}
