package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gensys/chromapoem/internal/designer"
	"github.com/gensys/chromapoem/internal/geometry"
)

// event is one pointer or control event replayed against the geometry.
type event struct {
	kind    string
	target  geometry.Target
	pointer geometry.Vec
	value   float64
}

// parseEvent parses one event line:
//
//	press <circle> [x,y]
//	move <x,y>
//	release
//	outside
//	wheel <deltaY>
//	resize <circle> <size>
//	blur <circle> <px>
func parseEvent(line string) (event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return event{}, fmt.Errorf("empty event")
	}
	ev := event{kind: strings.ToLower(fields[0])}
	args := fields[1:]

	want := map[string][2]int{
		"press":   {1, 2},
		"move":    {1, 1},
		"release": {0, 0},
		"outside": {0, 0},
		"wheel":   {1, 1},
		"resize":  {2, 2},
		"blur":    {2, 2},
	}
	n, ok := want[ev.kind]
	if !ok {
		return event{}, fmt.Errorf("unknown event %q", fields[0])
	}
	if len(args) < n[0] || len(args) > n[1] {
		return event{}, fmt.Errorf("event %q: wrong number of arguments", line)
	}

	var err error
	switch ev.kind {
	case "press":
		if ev.target, err = geometry.ParseTarget(args[0]); err != nil {
			return event{}, err
		}
		if len(args) == 2 {
			ev.pointer, err = parseVec(args[1])
		}
	case "move":
		ev.pointer, err = parseVec(args[0])
	case "wheel":
		ev.value, err = strconv.ParseFloat(args[0], 64)
	case "resize", "blur":
		if ev.target, err = geometry.ParseTarget(args[0]); err != nil {
			return event{}, err
		}
		ev.value, err = strconv.ParseFloat(args[1], 64)
	}
	if err != nil {
		return event{}, fmt.Errorf("event %q: %w", line, err)
	}
	return ev, nil
}

func parseVec(s string) (geometry.Vec, error) {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Vec{}, fmt.Errorf("point %q: expected x,y", s)
	}
	fx, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
	if err != nil {
		return geometry.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	fy, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
	if err != nil {
		return geometry.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geometry.Vec{X: fx, Y: fy}, nil
}

// apply replays ev on the designer. Pointer moves, releases and wheel
// events go to the selected controller's handle and are dropped when no
// controller is selected.
func (ev event) apply(d *designer.Designer) error {
	e := d.Engine()
	switch ev.kind {
	case "press":
		d.Press(ev.target, ev.pointer)
	case "move", "release", "wheel":
		h, ok := e.SelectedHandle()
		if !ok {
			return nil
		}
		switch ev.kind {
		case "move":
			h.DragMove(ev.pointer)
		case "release":
			h.Release()
		default:
			h.Scroll(ev.value)
		}
	case "outside":
		e.PressOutside()
	case "resize":
		e.Resize(ev.target, ev.value)
	case "blur":
		if err := d.SetBlurTarget(ev.target); err != nil {
			return err
		}
		d.SetBlur(ev.value)
	}
	return nil
}

type layoutOptions struct {
	palette paletteFlags
	file    string
	format  string
	save    string
}

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	o := &layoutOptions{}
	cmd := &cobra.Command{
		Use:   "layout [event...]",
		Short: "Replay pointer events against the circle geometry",
		Long: `Replay controller events and print the resulting circle layout.

Events are given as arguments or read one per line from --file (# starts a
comment):
  press <circle> [x,y]   press a controller; pointer in controller space
  move <x,y>             move the pointer while dragging
  release                end a drag
  outside                press outside every controller
  wheel <deltaY>         scroll; positive shrinks the selected controller
  resize <circle> <px>   set a controller size directly
  blur <circle> <px>     set the blur of circle 2 or 3

Examples:
  chromapoem layout "press 2" "press 2 0,0" "move 30,10" release
  chromapoem layout --from colorPalette "press 1" "wheel 100" --save colorPalette`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, opts, args)
		},
	}
	o.palette.register(cmd)
	cmd.Flags().StringVar(&o.file, "file", "", "read events from a file (- for stdin)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "table", "output format (table, json)")
	cmd.Flags().StringVar(&o.save, "save", "", "save the resulting design under this snapshot key")
	return cmd
}

func (o *layoutOptions) run(cmd *cobra.Command, opts *rootOptions, args []string) error {
	ctx := cmd.Context()
	d, err := o.palette.designer(ctx, cmd, opts)
	if err != nil {
		return err
	}

	lines := args
	if o.file != "" {
		fileLines, err := readEventFile(cmd, o.file)
		if err != nil {
			return err
		}
		lines = append(lines, fileLines...)
	}

	for _, line := range lines {
		ev, err := parseEvent(line)
		if err != nil {
			return err
		}
		if err := ev.apply(d); err != nil {
			return fmt.Errorf("event %q: %w", line, err)
		}
		opts.logger.Trace("applied event", "event", line)
	}

	if o.save != "" {
		if _, err := saveSnapshot(ctx, opts, o.palette.storeDir, o.save, d); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved layout as %q\n", o.save)
	}

	out := cmd.OutOrStdout()
	l := d.Engine().Layout()
	switch o.format {
	case "json":
		data, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal layout: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "table":
		fmt.Fprint(out, layoutTable(d.Engine()).Render())
	default:
		return fmt.Errorf("unknown format %q (want table or json)", o.format)
	}
	return nil
}

func readEventFile(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path) // #nosec G304 - User-specified event file
		if err != nil {
			return nil, fmt.Errorf("failed to open event file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	return lines, nil
}

func layoutTable(e *geometry.Engine) *Table {
	table := NewTable([]string{"Circle", "State", "Controller", "Offset", "Rendered", "Position", "Blur"})
	for _, t := range geometry.Targets {
		c := e.Controller(t)
		r := e.Circle(t)
		table.AddRow([]string{
			t.String(),
			c.State.String(),
			fmt.Sprintf("%.1f", c.Size),
			fmt.Sprintf("%.1f,%.1f", c.Offset.X, c.Offset.Y),
			fmt.Sprintf("%.1f", r.Size),
			fmt.Sprintf("%.1f,%.1f", r.Offset.X, r.Offset.Y),
			fmt.Sprintf("%.1f", r.Blur),
		})
	}
	return table
}
