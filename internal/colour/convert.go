// Package colour provides colour-model conversion and palette utilities.
package colour

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB represents a colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSV is hue in degrees [0,360) with saturation and value in percent [0,100].
type HSV struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}

// CMYK holds cyan, magenta, yellow and key (black) in percent [0,100].
type CMYK struct {
	C int `json:"c"`
	M int `json:"m"`
	Y int `json:"y"`
	K int `json:"k"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the colour as an upper-case "#RRGGBB" string.
func (rgb RGB) Hex() string {
	return RGBToHex(rgb)
}

// HSV converts the colour to HSV.
func (rgb RGB) HSV() HSV {
	return RGBToHSV(rgb)
}

// CMYK converts the colour to CMYK.
func (rgb RGB) CMYK() CMYK {
	return RGBToCMYK(rgb)
}

// RGBA implements color.Color.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(rgb.R)
	r |= r << 8
	g = uint32(rgb.G)
	g |= g << 8
	b = uint32(rgb.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// String returns the HSV colour as "hsv(h°, s%, v%)".
func (hsv HSV) String() string {
	return fmt.Sprintf("hsv(%d°, %d%%, %d%%)", hsv.H, hsv.S, hsv.V)
}

// RGB converts the HSV value back to RGB.
func (hsv HSV) RGB() RGB {
	return HSVToRGB(hsv.H, hsv.S, hsv.V)
}

// RGBA implements color.Color.
func (hsv HSV) RGBA() (r, g, b, a uint32) {
	return hsv.RGB().RGBA()
}

// String returns the CMYK colour as "cmyk(c%, m%, y%, k%)".
func (c CMYK) String() string {
	return fmt.Sprintf("cmyk(%d%%, %d%%, %d%%, %d%%)", c.C, c.M, c.Y, c.K)
}

// RGB converts the CMYK value back to RGB.
func (c CMYK) RGB() RGB {
	return CMYKToRGB(c.C, c.M, c.Y, c.K)
}

// RGBA implements color.Color.
func (c CMYK) RGBA() (r, g, b, a uint32) {
	return c.RGB().RGBA()
}

// HSVToRGB converts HSV to RGB using chroma/hue-sector decomposition.
// Hue is wrapped into [0,360) so 360 behaves like 0. Saturation and value are
// clamped to [0,100].
func HSVToRGB(h, s, v int) RGB {
	return HSVf{
		H: float64(WrapHue(h)),
		S: float64(clampPercent(s)) / 100,
		V: float64(clampPercent(v)) / 100,
	}.RGB()
}

// RGBToHSV converts RGB to HSV with hue in degrees and S/V in percent.
func RGBToHSV(rgb RGB) HSV {
	r := float64(rgb.R) / 255
	g := float64(rgb.G) / 255
	b := float64(rgb.B) / 255

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	h := 0
	if delta != 0 {
		var hf float64
		switch maxVal {
		case r:
			hf = math.Mod((g-b)/delta, 6)
		case g:
			hf = (b-r)/delta + 2
		default:
			hf = (r-g)/delta + 4
		}
		h = roundHalfUp(hf * 60)
		if h < 0 {
			h += 360
		}
	}

	s := 0
	if maxVal != 0 {
		s = roundHalfUp(delta / maxVal * 100)
	}

	return HSV{H: h, S: s, V: roundHalfUp(maxVal * 100)}
}

// CMYKToRGB converts CMYK percentages to RGB. Components are clamped to [0,100].
func CMYKToRGB(c, m, y, k int) RGB {
	return CMYKf{
		C: float64(clampPercent(c)) / 100,
		M: float64(clampPercent(m)) / 100,
		Y: float64(clampPercent(y)) / 100,
		K: float64(clampPercent(k)) / 100,
	}.RGB()
}

// RGBToCMYK converts RGB to CMYK percentages. Pure black is reported as
// {0, 0, 0, 100} rather than dividing by zero.
func RGBToCMYK(rgb RGB) CMYK {
	r := float64(rgb.R) / 255
	g := float64(rgb.G) / 255
	b := float64(rgb.B) / 255

	k := 1 - math.Max(r, math.Max(g, b))
	if k == 1 {
		return CMYK{C: 0, M: 0, Y: 0, K: 100}
	}

	return CMYK{
		C: roundHalfUp((1 - r - k) / (1 - k) * 100),
		M: roundHalfUp((1 - g - k) / (1 - k) * 100),
		Y: roundHalfUp((1 - b - k) / (1 - k) * 100),
		K: roundHalfUp(k * 100),
	}
}

// RGBToHex formats a colour as an upper-case, zero-padded "#RRGGBB" string.
func RGBToHex(rgb RGB) string {
	return fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B)
}

// ParseHex parses "#RRGGBB", "RRGGBB", "#RGB" or "RGB" (case-insensitive).
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q: expected 3 or 6 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ParseRGB parses "r,g,b" with each channel in [0,255].
func ParseRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("invalid rgb %q: expected r,g,b", s)
	}

	var ch [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return RGB{}, fmt.Errorf("invalid rgb %q: %w", s, err)
		}
		if n < 0 || n > 255 {
			return RGB{}, fmt.Errorf("invalid rgb %q: channel %d out of range 0-255", s, n)
		}
		ch[i] = uint8(n)
	}

	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// ParseColour accepts either a hex code or an "r,g,b" triple.
func ParseColour(s string) (RGB, error) {
	if strings.Contains(s, ",") {
		return ParseRGB(s)
	}
	return ParseHex(s)
}

// WrapHue maps any integer hue into [0,360).
func WrapHue(h int) int {
	h %= 360
	if h < 0 {
		h += 360
	}
	return h
}

func clampPercent(v int) int {
	return max(0, min(100, v))
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func toByte(v float64) uint8 {
	return uint8(max(0, min(255, roundHalfUp(v))))
}

// HSVf is an unrounded HSV value: hue in degrees, saturation and value in [0,1].
// It round-trips RGB exactly, unlike the integer-percent HSV used for sliders.
type HSVf struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// RGBToHSVf converts RGB to an unrounded HSV value.
func RGBToHSVf(rgb RGB) HSVf {
	r := float64(rgb.R) / 255
	g := float64(rgb.G) / 255
	b := float64(rgb.B) / 255

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	var h, s float64
	if delta != 0 {
		switch maxVal {
		case r:
			h = math.Mod((g-b)/delta, 6)
		case g:
			h = (b-r)/delta + 2
		default:
			h = (r-g)/delta + 4
		}
		h *= 60
		if h < 0 {
			h += 360
		}
	}
	if maxVal != 0 {
		s = delta / maxVal
	}

	return HSVf{H: h, S: s, V: maxVal}
}

// RGB converts the unrounded HSV value to RGB.
func (hsv HSVf) RGB() RGB {
	hue := math.Mod(hsv.H, 360)
	if hue < 0 {
		hue += 360
	}
	s := math.Max(0, math.Min(1, hsv.S))
	v := math.Max(0, math.Min(1, hsv.V))

	c := v * s
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case hue < 60:
		r, g, b = c, x, 0
	case hue < 120:
		r, g, b = x, c, 0
	case hue < 180:
		r, g, b = 0, c, x
	case hue < 240:
		r, g, b = 0, x, c
	case hue < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB{R: toByte((r + m) * 255), G: toByte((g + m) * 255), B: toByte((b + m) * 255)}
}

// CMYKf is an unrounded CMYK value with every component in [0,1]. Integer
// percentages can be off by two channel steps after a round trip; CMYKf
// stays within one.
type CMYKf struct {
	C float64 `json:"c"`
	M float64 `json:"m"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// RGBToCMYKf converts RGB to an unrounded CMYK value. Black is {0, 0, 0, 1}.
func RGBToCMYKf(rgb RGB) CMYKf {
	r := float64(rgb.R) / 255
	g := float64(rgb.G) / 255
	b := float64(rgb.B) / 255

	k := 1 - math.Max(r, math.Max(g, b))
	if k == 1 {
		return CMYKf{K: 1}
	}
	return CMYKf{
		C: (1 - r - k) / (1 - k),
		M: (1 - g - k) / (1 - k),
		Y: (1 - b - k) / (1 - k),
		K: k,
	}
}

// RGB converts the unrounded CMYK value to RGB.
func (c CMYKf) RGB() RGB {
	unit := func(v float64) float64 { return math.Max(0, math.Min(1, v)) }
	k := unit(c.K)
	return RGB{
		R: toByte(255 * (1 - unit(c.C)) * (1 - k)),
		G: toByte(255 * (1 - unit(c.M)) * (1 - k)),
		B: toByte(255 * (1 - unit(c.Y)) * (1 - k)),
	}
}
