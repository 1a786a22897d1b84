package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/audio"
)

type chimeOptions struct {
	palette paletteFlags
	output  string
	list    bool
}

func newChimeCmd(opts *rootOptions) *cobra.Command {
	o := &chimeOptions{}
	cmd := &cobra.Command{
		Use:   "chime",
		Short: "Render the palette chime as a WAV file",
		Long: `Render the four-voice chime for a palette.

Each colour becomes one voice: hue picks a note on a pentatonic scale, value
picks the octave, saturation the volume, and hue together with saturation the
waveform. Voices start 150ms apart and ring for 2.5 seconds.

Examples:
  chromapoem chime -o palette.wav
  chromapoem chime --list --background '#1B2A4A'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := o.palette.designer(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			p := d.Palette()
			out := cmd.OutOrStdout()

			if o.list {
				voices := audio.Analyse(p)
				for _, v := range voices {
					fmt.Fprintln(out, v)
				}
				fmt.Fprintf(out, "duration %v\n", audio.Duration(voices))
				return nil
			}

			data, err := audio.EncodeWAV(p)
			if err != nil {
				return err
			}
			if o.output == "-" {
				_, err := out.Write(data)
				return err
			}
			if err := os.WriteFile(o.output, data, 0o644); err != nil { // #nosec G306 - Output file is user-facing
				return fmt.Errorf("failed to write chime: %w", err)
			}
			opts.logger.Debug("wrote chime", "path", o.output, "bytes", len(data))
			fmt.Fprintf(cmd.ErrOrStderr(), "Chime written to %s\n", o.output)
			return nil
		},
	}
	o.palette.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "chime.wav", "WAV file to write (- for stdout)")
	cmd.Flags().BoolVar(&o.list, "list", false, "list the voices instead of writing audio")
	return cmd
}
