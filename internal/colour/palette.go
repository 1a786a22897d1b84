package colour

import (
	"encoding/json"
	"fmt"
)

// Role identifies one of the four colours of a design.
type Role int

const (
	RoleBackground Role = iota
	RoleCircleOne
	RoleCircleTwo
	RoleCircleThree
)

// Roles lists every palette role in display order.
var Roles = []Role{RoleBackground, RoleCircleOne, RoleCircleTwo, RoleCircleThree}

// String returns the display name used in reports and prompts.
func (r Role) String() string {
	switch r {
	case RoleBackground:
		return "Background"
	case RoleCircleOne:
		return "Circle One"
	case RoleCircleTwo:
		return "Circle Two"
	case RoleCircleThree:
		return "Circle Three"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Key returns the snapshot field name for the role.
func (r Role) Key() string {
	switch r {
	case RoleBackground:
		return "background"
	case RoleCircleOne:
		return "circle1"
	case RoleCircleTwo:
		return "circle2"
	case RoleCircleThree:
		return "circle3"
	default:
		return ""
	}
}

// Gradient is a two-stop, top-to-bottom background gradient.
type Gradient struct {
	Stop1 RGB `json:"stop1"`
	Stop2 RGB `json:"stop2"`
}

// Palette is the background plus the three circle colours that make up one design.
// When Gradient is set, Background mirrors Gradient.Stop1.
type Palette struct {
	Background RGB       `json:"background"`
	Circle1    RGB       `json:"circle1"`
	Circle2    RGB       `json:"circle2"`
	Circle3    RGB       `json:"circle3"`
	Gradient   *Gradient `json:"gradient,omitempty"`
}

// DefaultPalette returns the palette the designer starts with.
func DefaultPalette() Palette {
	return Palette{
		Background: RGB{R: 255, G: 247, B: 0},
		Circle1:    RGB{R: 232, G: 225, B: 209},
		Circle2:    RGB{R: 245, G: 242, B: 230},
		Circle3:    RGB{R: 255, G: 255, B: 255},
	}
}

// DefaultGradient returns the initial gradient stops.
func DefaultGradient() Gradient {
	return Gradient{
		Stop1: RGB{R: 255, G: 247, B: 0},
		Stop2: RGB{R: 255, G: 255, B: 255},
	}
}

// Get returns the colour for a role.
func (p Palette) Get(role Role) RGB {
	switch role {
	case RoleCircleOne:
		return p.Circle1
	case RoleCircleTwo:
		return p.Circle2
	case RoleCircleThree:
		return p.Circle3
	default:
		return p.Background
	}
}

// Set returns a copy of the palette with the role's colour replaced.
func (p Palette) Set(role Role, c RGB) Palette {
	switch role {
	case RoleCircleOne:
		p.Circle1 = c
	case RoleCircleTwo:
		p.Circle2 = c
	case RoleCircleThree:
		p.Circle3 = c
	default:
		p.Background = c
	}
	return p
}

// Colours returns the four colours in role order.
func (p Palette) Colours() []RGB {
	return []RGB{p.Background, p.Circle1, p.Circle2, p.Circle3}
}

// ToHex converts the palette colours to hex strings in role order.
func (p Palette) ToHex() []string {
	hexColours := make([]string, 0, len(Roles))
	for _, c := range p.Colours() {
		hexColours = append(hexColours, c.Hex())
	}
	return hexColours
}

// All returns an iterator over every role and its colour.
func (p Palette) All() func(func(Role, RGB) bool) {
	return func(yield func(Role, RGB) bool) {
		for _, role := range Roles {
			if !yield(role, p.Get(role)) {
				return
			}
		}
	}
}

// Swatch describes one colour in every supported representation.
type Swatch struct {
	Role string `json:"role"`
	Hex  string `json:"hex"`
	RGB  RGB    `json:"rgb"`
	HSV  HSV    `json:"hsv"`
	CMYK CMYK   `json:"cmyk"`
}

// NewSwatch builds a swatch for a single colour.
func NewSwatch(name string, c RGB) Swatch {
	return Swatch{
		Role: name,
		Hex:  c.Hex(),
		RGB:  c,
		HSV:  c.HSV(),
		CMYK: c.CMYK(),
	}
}

// Swatches returns swatch information for every role.
func (p Palette) Swatches() []Swatch {
	swatches := make([]Swatch, 0, len(Roles))
	for role, c := range p.All() {
		swatches = append(swatches, NewSwatch(role.String(), c))
	}
	return swatches
}

// ToJSON converts the palette swatches to indented JSON.
func (p Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.Swatches(), "", "  ")
}

// String returns a human-readable representation of the palette.
func (p Palette) String() string {
	result := "Palette:\n"
	for role, c := range p.All() {
		result += fmt.Sprintf("  %-12s %s (%s)\n", role.String()+":", c.Hex(), c.String())
	}
	if p.Gradient != nil {
		result += fmt.Sprintf("  %-12s %s -> %s\n", "Gradient:", p.Gradient.Stop1.Hex(), p.Gradient.Stop2.Hex())
	}
	return result
}
