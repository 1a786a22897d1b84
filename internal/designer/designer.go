// Package designer holds the full state of one palette design: colours,
// background mode, slider modes and circle geometry.
package designer

import (
	"fmt"
	"math/rand/v2"

	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/geometry"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// Panel is one of the two colour control panels.
type Panel int

const (
	BackgroundPanel Panel = iota
	CirclePanel
)

func (p Panel) String() string {
	if p == CirclePanel {
		return "circle"
	}
	return "background"
}

// Mode is the colour model a panel's sliders edit in.
type Mode int

const (
	ModeHSV Mode = iota
	ModeRGB
	ModeCMYK
)

func (m Mode) String() string {
	switch m {
	case ModeRGB:
		return "rgb"
	case ModeCMYK:
		return "cmyk"
	default:
		return "hsv"
	}
}

// MarshalText encodes the mode name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode parses "rgb", "hsv" or "cmyk".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "rgb":
		return ModeRGB, nil
	case "hsv":
		return ModeHSV, nil
	case "cmyk":
		return ModeCMYK, nil
	}
	return 0, fmt.Errorf("unknown colour mode %q (want rgb, hsv or cmyk)", s)
}

// BackgroundType selects a flat or gradient background.
type BackgroundType int

const (
	Flat BackgroundType = iota
	Gradient
)

func (b BackgroundType) String() string {
	if b == Gradient {
		return "gradient"
	}
	return "flat"
}

// Sliders is the slider view of a panel in its current mode.
type Sliders struct {
	Mode   Mode     `json:"mode"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Hex    string   `json:"hex"`
}

// Designer owns all design state. It is not safe for concurrent use.
type Designer struct {
	engine *geometry.Engine

	flat         colour.RGB
	stops        [2]colour.RGB
	bgType       BackgroundType
	gradientStop int

	circles    [3]colour.RGB
	target     geometry.Target
	blurTarget geometry.Target
	modes      [2]Mode
}

// New returns a designer with the default palette, HSV sliders, a flat
// background and circle one selected for colour edits.
func New() *Designer {
	p := colour.DefaultPalette()
	g := colour.DefaultGradient()
	return &Designer{
		engine:       geometry.NewEngine(),
		flat:         p.Background,
		stops:        [2]colour.RGB{g.Stop1, g.Stop2},
		gradientStop: 1,
		circles:      [3]colour.RGB{p.Circle1, p.Circle2, p.Circle3},
		target:       geometry.CircleOne,
		blurTarget:   geometry.CircleTwo,
	}
}

// Engine returns the circle geometry.
func (d *Designer) Engine() *geometry.Engine {
	return d.engine
}

// Target returns the circle receiving colour edits.
func (d *Designer) Target() geometry.Target {
	return d.target
}

// BlurTarget returns the circle the blur control edits.
func (d *Designer) BlurTarget() geometry.Target {
	return d.blurTarget
}

// Press forwards a controller press to the engine. Selecting a controller
// makes it the colour target, and the blur target when it can blur.
func (d *Designer) Press(t geometry.Target, pointer geometry.Vec) geometry.State {
	before := d.engine.State(t)
	state := d.engine.Handle(t).PressStart(pointer)
	if before == geometry.Idle && state == geometry.Active {
		d.SelectTarget(t)
	}
	return state
}

// SelectTarget makes t the circle that colour edits apply to.
func (d *Designer) SelectTarget(t geometry.Target) error {
	if !t.Valid() {
		return fmt.Errorf("invalid circle %d", int(t))
	}
	d.target = t
	if t.Blurrable() {
		d.blurTarget = t
	}
	return nil
}

// SetBlurTarget selects circle two or three for blur edits.
func (d *Designer) SetBlurTarget(t geometry.Target) error {
	if !t.Blurrable() {
		return fmt.Errorf("%v has no blur", t)
	}
	d.blurTarget = t
	return nil
}

// SetBlur sets the blur of the blur target.
func (d *Designer) SetBlur(px float64) {
	d.engine.SetBlur(d.blurTarget, px)
}

// Blur returns the blur of the blur target.
func (d *Designer) Blur() float64 {
	return d.engine.Circle(d.blurTarget).Blur
}

// Mode returns the slider mode of a panel.
func (d *Designer) Mode(p Panel) Mode {
	return d.modes[p]
}

// SetMode switches a panel's slider mode. The colour is unchanged.
func (d *Designer) SetMode(p Panel, m Mode) {
	d.modes[p] = m
}

// Colour returns the colour a panel currently edits: the flat background or
// the selected gradient stop, or the target circle.
func (d *Designer) Colour(p Panel) colour.RGB {
	if p == CirclePanel {
		return d.circles[d.target-1]
	}
	if d.bgType == Gradient {
		return d.stops[d.gradientStop-1]
	}
	return d.flat
}

// SetRGB sets the colour a panel edits.
func (d *Designer) SetRGB(p Panel, c colour.RGB) {
	if p == CirclePanel {
		d.circles[d.target-1] = c
		return
	}
	if d.bgType == Gradient {
		d.stops[d.gradientStop-1] = c
		return
	}
	d.flat = c
}

// SetHSV sets the panel colour from HSV. Out of range values are clamped and
// hue wraps.
func (d *Designer) SetHSV(p Panel, h, s, v int) {
	d.SetRGB(p, colour.HSVToRGB(h, s, v))
}

// SetCMYK sets the panel colour from CMYK. Out of range values are clamped.
func (d *Designer) SetCMYK(p Panel, c, m, y, k int) {
	d.SetRGB(p, colour.CMYKToRGB(c, m, y, k))
}

// SetSliders sets the panel colour from slider values in the panel's mode.
func (d *Designer) SetSliders(p Panel, values ...int) error {
	want := map[Mode]int{ModeRGB: 3, ModeHSV: 3, ModeCMYK: 4}[d.modes[p]]
	if len(values) != want {
		return fmt.Errorf("%s mode takes %d values, got %d", d.modes[p], want, len(values))
	}
	switch d.modes[p] {
	case ModeRGB:
		clampByte := func(v int) uint8 { return uint8(max(0, min(255, v))) }
		d.SetRGB(p, colour.RGB{R: clampByte(values[0]), G: clampByte(values[1]), B: clampByte(values[2])})
	case ModeHSV:
		d.SetHSV(p, values[0], values[1], values[2])
	case ModeCMYK:
		d.SetCMYK(p, values[0], values[1], values[2], values[3])
	}
	return nil
}

// Sliders returns a panel's colour expressed in its current mode.
func (d *Designer) Sliders(p Panel) Sliders {
	c := d.Colour(p)
	s := Sliders{Mode: d.modes[p], Hex: c.Hex()}
	switch d.modes[p] {
	case ModeRGB:
		s.Labels = []string{"R", "G", "B"}
		s.Values = []int{int(c.R), int(c.G), int(c.B)}
	case ModeCMYK:
		k := c.CMYK()
		s.Labels = []string{"C", "M", "Y", "K"}
		s.Values = []int{k.C, k.M, k.Y, k.K}
	default:
		h := c.HSV()
		s.Labels = []string{"H", "S", "V"}
		s.Values = []int{h.H, h.S, h.V}
	}
	return s
}

// BackgroundType returns the background mode.
func (d *Designer) BackgroundType() BackgroundType {
	return d.bgType
}

// SetBackgroundType switches between flat and gradient backgrounds. Leaving
// gradient mode makes the first stop the flat colour.
func (d *Designer) SetBackgroundType(b BackgroundType) {
	if d.bgType == Gradient && b == Flat {
		d.flat = d.stops[0]
	}
	d.bgType = b
}

// GradientStop returns the selected gradient stop, 1 or 2.
func (d *Designer) GradientStop() int {
	return d.gradientStop
}

// SelectGradientStop selects which stop background edits apply to.
func (d *Designer) SelectGradientStop(n int) error {
	if n != 1 && n != 2 {
		return fmt.Errorf("gradient stop must be 1 or 2, got %d", n)
	}
	d.gradientStop = n
	return nil
}

// Palette returns the current palette. In gradient mode the background is
// the first stop and the gradient is attached.
func (d *Designer) Palette() colour.Palette {
	p := colour.Palette{
		Background: d.flat,
		Circle1:    d.circles[0],
		Circle2:    d.circles[1],
		Circle3:    d.circles[2],
	}
	if d.bgType == Gradient {
		p.Background = d.stops[0]
		p.Gradient = &colour.Gradient{Stop1: d.stops[0], Stop2: d.stops[1]}
	}
	return p
}

// Randomize replaces the background (or current gradient stop) and all three
// circle colours with random colours.
func (d *Designer) Randomize(rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	d.SetRGB(BackgroundPanel, colour.Random(rng))
	for i := range d.circles {
		d.circles[i] = colour.Random(rng)
	}
}

// Snapshot captures the palette and layout.
func (d *Designer) Snapshot() *snapshot.Snapshot {
	return snapshot.New(d.Palette()).WithLayout(d.engine.Layout())
}

// Restore loads a snapshot. A gradient switches the background to gradient
// mode; geometry is restored when present.
func (d *Designer) Restore(s *snapshot.Snapshot) {
	d.flat = s.Background
	d.circles = [3]colour.RGB{s.Circle1, s.Circle2, s.Circle3}
	if s.Gradient != nil {
		d.stops = [2]colour.RGB{s.Gradient.Stop1, s.Gradient.Stop2}
		d.bgType = Gradient
	} else {
		d.bgType = Flat
	}
	d.gradientStop = 1
	if l, ok := s.Layout(); ok {
		d.engine.Restore(l)
	}
}
