package cli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/designer"
	"github.com/gensys/chromapoem/internal/geometry"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// colourValue is a pflag.Value holding an RGB colour written as a hex code
// or an r,g,b triple.
type colourValue struct {
	rgb colour.RGB
	set bool
}

var _ pflag.Value = (*colourValue)(nil)

func (v *colourValue) String() string {
	if !v.set {
		return ""
	}
	return v.rgb.Hex()
}

func (v *colourValue) Set(s string) error {
	c, err := colour.ParseColour(s)
	if err != nil {
		return err
	}
	v.rgb = c
	v.set = true
	return nil
}

func (v *colourValue) Type() string {
	return "colour"
}

// paletteFlags selects the palette a command works on.
type paletteFlags struct {
	from     string
	storeDir string
	random   bool
	seed     uint64
	blur2    float64
	blur3    float64
	flatBG   bool
	bg       colourValue
	stop1    colourValue
	stop2    colourValue
	circles  [3]colourValue
}

func (f *paletteFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.from, "from", "", "start from a stored snapshot key")
	fs.StringVar(&f.storeDir, "store-dir", "", "snapshot directory (overrides the configured store)")
	fs.BoolVar(&f.random, "random", false, "randomise the background and circle colours")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed for --random (default: time based)")
	fs.Var(&f.bg, "background", "background colour (#RRGGBB or r,g,b)")
	fs.Var(&f.stop1, "stop1", "first gradient stop; switches to a gradient background")
	fs.Var(&f.stop2, "stop2", "second gradient stop; switches to a gradient background")
	fs.BoolVar(&f.flatBG, "flat", false, "force a flat background")
	fs.Var(&f.circles[0], "circle1", "circle one colour")
	fs.Var(&f.circles[1], "circle2", "circle two colour")
	fs.Var(&f.circles[2], "circle3", "circle three colour")
	fs.Float64Var(&f.blur2, "blur2", 0, "circle two blur in pixels")
	fs.Float64Var(&f.blur3, "blur3", 0, "circle three blur in pixels")
}

// designer builds a designer from the flags in order: stored snapshot,
// randomisation, then explicit colours and blur.
func (f *paletteFlags) designer(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*designer.Designer, error) {
	fs := cmd.Flags()
	d := designer.New()

	if f.from != "" {
		store, err := opts.openStore(ctx, f.storeDir)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		s, err := store.Load(ctx, f.from)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot %q: %w", f.from, err)
		}
		d.Restore(s)
	}

	if f.random {
		var rng *rand.Rand
		if fs.Changed("seed") {
			rng = rand.New(rand.NewPCG(f.seed, f.seed))
		}
		d.Randomize(rng)
	}

	if f.flatBG {
		d.SetBackgroundType(designer.Flat)
	}
	if f.stop1.set || f.stop2.set {
		d.SetBackgroundType(designer.Gradient)
		for i, stop := range []colourValue{f.stop1, f.stop2} {
			if !stop.set {
				continue
			}
			if err := d.SelectGradientStop(i + 1); err != nil {
				return nil, err
			}
			d.SetRGB(designer.BackgroundPanel, stop.rgb)
		}
		if err := d.SelectGradientStop(1); err != nil {
			return nil, err
		}
	}
	if f.bg.set {
		d.SetBackgroundType(designer.Flat)
		d.SetRGB(designer.BackgroundPanel, f.bg.rgb)
	}

	target := d.Target()
	for i, c := range f.circles {
		if !c.set {
			continue
		}
		if err := d.SelectTarget(geometry.Targets[i]); err != nil {
			return nil, err
		}
		d.SetRGB(designer.CirclePanel, c.rgb)
	}
	if err := d.SelectTarget(target); err != nil {
		return nil, err
	}

	if fs.Changed("blur2") {
		d.Engine().SetBlur(geometry.CircleTwo, f.blur2)
	}
	if fs.Changed("blur3") {
		d.Engine().SetBlur(geometry.CircleThree, f.blur3)
	}

	opts.logger.Debug("palette ready", "palette", d.Palette().ToHex())
	return d, nil
}

// saveSnapshot stores the designer's snapshot under key.
func saveSnapshot(ctx context.Context, opts *rootOptions, storeDir, key string, d *designer.Designer) (*snapshot.Snapshot, error) {
	store, err := opts.openStore(ctx, storeDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	s := d.Snapshot()
	if err := store.Save(ctx, key, s); err != nil {
		return nil, fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return s, nil
}
