package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/colour"
)

type convertOptions struct {
	hsv     string
	cmyk    string
	format  string
	preview bool
}

// conversion is the JSON output of the convert command.
type conversion struct {
	colour.Swatch
	HSVExact  colour.HSVf  `json:"hsvExact"`
	CMYKExact colour.CMYKf `json:"cmykExact"`
}

func newConvertCmd(_ *rootOptions) *cobra.Command {
	o := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [colour]",
		Short: "Show a colour in RGB, HSV and CMYK",
		Long: `Convert a colour between the three colour models used by the sliders.

The colour is given as a hex code (#FF0080, FF0080, #F08) or an r,g,b triple.
Alternatively pass --hsv or --cmyk with slider values; hue wraps at 360 and
percentages are clamped to 0-100.

Examples:
  chromapoem convert '#FF0080'
  chromapoem convert 255,0,128 --format json
  chromapoem convert --hsv 330,100,100
  chromapoem convert --cmyk 0,100,50,0 --preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.colour(args)
			if err != nil {
				return err
			}
			return o.print(cmd, c)
		},
	}
	cmd.Flags().StringVar(&o.hsv, "hsv", "", "input as h,s,v (degrees, percent, percent)")
	cmd.Flags().StringVar(&o.cmyk, "cmyk", "", "input as c,m,y,k percentages")
	cmd.Flags().StringVarP(&o.format, "format", "f", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&o.preview, "preview", false, "show an ANSI colour preview")
	return cmd
}

func (o *convertOptions) colour(args []string) (colour.RGB, error) {
	inputs := 0
	if len(args) == 1 {
		inputs++
	}
	if o.hsv != "" {
		inputs++
	}
	if o.cmyk != "" {
		inputs++
	}
	if inputs != 1 {
		return colour.RGB{}, fmt.Errorf("give exactly one of a colour argument, --hsv or --cmyk")
	}

	switch {
	case o.hsv != "":
		v, err := parseInts(o.hsv, 3)
		if err != nil {
			return colour.RGB{}, fmt.Errorf("invalid --hsv: %w", err)
		}
		return colour.HSVToRGB(v[0], v[1], v[2]), nil
	case o.cmyk != "":
		v, err := parseInts(o.cmyk, 4)
		if err != nil {
			return colour.RGB{}, fmt.Errorf("invalid --cmyk: %w", err)
		}
		return colour.CMYKToRGB(v[0], v[1], v[2], v[3]), nil
	default:
		return colour.ParseColour(args[0])
	}
}

func (o *convertOptions) print(cmd *cobra.Command, c colour.RGB) error {
	out := cmd.OutOrStdout()
	exact := colour.RGBToHSVf(c)
	exactCMYK := colour.RGBToCMYKf(c)

	switch o.format {
	case "json":
		data, err := json.MarshalIndent(conversion{
			Swatch:    colour.NewSwatch(c.Hex(), c),
			HSVExact:  exact,
			CMYKExact: exactCMYK,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal colour: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "table":
	default:
		return fmt.Errorf("unknown format %q (want table or json)", o.format)
	}

	if o.preview && colour.SupportsANSIColours(os.Stdout) {
		fmt.Fprintln(out, colour.ColourPreviewWithText(c, c.Hex(), 24))
		fmt.Fprintln(out)
	}

	table := NewTable([]string{"Model", "Value"})
	table.AddRow([]string{"HEX", c.Hex()})
	table.AddRow([]string{"RGB", c.String()})
	table.AddRow([]string{"HSV", c.HSV().String()})
	table.AddRow([]string{"HSV (exact)", fmt.Sprintf("hsv(%.2f°, %.4f, %.4f)", exact.H, exact.S, exact.V)})
	table.AddRow([]string{"CMYK", c.CMYK().String()})
	table.AddRow([]string{"CMYK (exact)", fmt.Sprintf("cmyk(%.4f, %.4f, %.4f, %.4f)", exactCMYK.C, exactCMYK.M, exactCMYK.Y, exactCMYK.K)})
	fmt.Fprint(out, table.Render())
	return nil
}

// parseInts parses exactly n comma separated integers.
func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated values, got %d", n, len(parts))
	}
	values := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("value %q is not an integer", p)
		}
		values[i] = v
	}
	return values, nil
}
