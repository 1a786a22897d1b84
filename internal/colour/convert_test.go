package colour

import (
	"image/color"
	"testing"
)

func absDiffUint8(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func maxChannelDiff(a, b RGB) uint8 {
	return max(absDiffUint8(a.R, b.R), absDiffUint8(a.G, b.G), absDiffUint8(a.B, b.B))
}

func TestRGBToHex(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{name: "magenta-ish", rgb: RGB{R: 255, G: 0, B: 128}, want: "#FF0080"},
		{name: "black", rgb: RGB{}, want: "#000000"},
		{name: "white", rgb: RGB{R: 255, G: 255, B: 255}, want: "#FFFFFF"},
		{name: "single digit channels", rgb: RGB{R: 1, G: 10, B: 15}, want: "#010A0F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RGBToHex(tt.rgb); got != tt.want {
				t.Errorf("RGBToHex(%v) = %q, want %q", tt.rgb, got, tt.want)
			}
			if got := tt.rgb.Hex(); got != tt.want {
				t.Errorf("Hex() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultPaletteHex(t *testing.T) {
	want := []string{"#FFF700", "#E8E1D1", "#F5F2E6", "#FFFFFF"}
	got := DefaultPalette().ToHex()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToHex()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	c1 := DefaultPalette().Circle1
	back := RGBToHSV(c1).RGB()
	if d := maxChannelDiff(c1, back); d > 1 {
		t.Errorf("circle1 HSV round trip %v -> %v differs by %d", c1, back, d)
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want HSV
	}{
		{RGB{R: 255, G: 0, B: 0}, HSV{H: 0, S: 100, V: 100}},
		{RGB{R: 0, G: 255, B: 0}, HSV{H: 120, S: 100, V: 100}},
		{RGB{R: 0, G: 0, B: 255}, HSV{H: 240, S: 100, V: 100}},
		{RGB{R: 255, G: 0, B: 128}, HSV{H: 330, S: 100, V: 100}},
		{RGB{R: 232, G: 225, B: 209}, HSV{H: 42, S: 10, V: 91}},
		{RGB{}, HSV{}},
		{RGB{R: 128, G: 128, B: 128}, HSV{H: 0, S: 0, V: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.rgb.Hex(), func(t *testing.T) {
			if got := RGBToHSV(tt.rgb); got != tt.want {
				t.Errorf("RGBToHSV(%v) = %v, want %v", tt.rgb, got, tt.want)
			}
		})
	}
}

func TestHSVToRGBHueWrap(t *testing.T) {
	if a, b := HSVToRGB(360, 100, 100), HSVToRGB(0, 100, 100); a != b {
		t.Errorf("HSVToRGB(360) = %v, HSVToRGB(0) = %v, want equal", a, b)
	}
	if a, b := HSVToRGB(-30, 100, 100), HSVToRGB(330, 100, 100); a != b {
		t.Errorf("HSVToRGB(-30) = %v, HSVToRGB(330) = %v, want equal", a, b)
	}
	if got := HSVToRGB(0, 100, 100); got != (RGB{R: 255}) {
		t.Errorf("HSVToRGB(0,100,100) = %v, want pure red", got)
	}
}

func TestHueWraparoundReencode(t *testing.T) {
	src := RGB{R: 255, G: 0, B: 128}
	hsv := RGBToHSV(src)
	got := HSVToRGB(hsv.H, hsv.S, hsv.V)
	if d := maxChannelDiff(src, got); d > 1 {
		t.Errorf("re-encode of %v via %v = %v, differs by %d", src, hsv, got, d)
	}
}

func TestHSVRoundTrip(t *testing.T) {
	// Integer-percent HSV loses up to three units per channel; the unrounded
	// HSVf path must be exact.
	var worst uint8
	for r := 0; r < 256; r++ {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 3 {
				src := RGB{R: uint8(r), G: uint8(g), B: uint8(b)}

				if got := RGBToHSVf(src).RGB(); maxChannelDiff(src, got) > 1 {
					t.Fatalf("HSVf round trip %v -> %v", src, got)
				}

				hsv := RGBToHSV(src)
				worst = max(worst, maxChannelDiff(src, HSVToRGB(hsv.H, hsv.S, hsv.V)))
			}
		}
	}
	if worst > 3 {
		t.Errorf("integer HSV round trip error = %d, want <= 3", worst)
	}
}

func TestCMYKRoundTrip(t *testing.T) {
	// Integer-percent CMYK loses up to two units per channel; the unrounded
	// CMYKf path must stay within one for every colour.
	var worst uint8
	for r := 0; r < 256; r++ {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b++ {
				src := RGB{R: uint8(r), G: uint8(g), B: uint8(b)}

				if got := RGBToCMYKf(src).RGB(); maxChannelDiff(src, got) > 1 {
					t.Fatalf("CMYKf round trip %v -> %v", src, got)
				}

				c := RGBToCMYK(src)
				worst = max(worst, maxChannelDiff(src, CMYKToRGB(c.C, c.M, c.Y, c.K)))
			}
		}
	}
	if worst > 2 {
		t.Errorf("integer CMYK round trip error = %d, want <= 2", worst)
	}
}

func TestRGBToCMYKfBlack(t *testing.T) {
	got := RGBToCMYKf(RGB{})
	if got != (CMYKf{K: 1}) {
		t.Errorf("RGBToCMYKf(black) = %+v, want {0 0 0 1}", got)
	}
	if rgb := got.RGB(); rgb != (RGB{}) {
		t.Errorf("CMYKf black -> %v", rgb)
	}
}

func TestRGBToCMYK(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want CMYK
	}{
		{name: "black degenerate", rgb: RGB{}, want: CMYK{C: 0, M: 0, Y: 0, K: 100}},
		{name: "white", rgb: RGB{R: 255, G: 255, B: 255}, want: CMYK{}},
		{name: "red", rgb: RGB{R: 255}, want: CMYK{C: 0, M: 100, Y: 100, K: 0}},
		{name: "yellow", rgb: RGB{R: 255, G: 247}, want: CMYK{C: 0, M: 3, Y: 100, K: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RGBToCMYK(tt.rgb); got != tt.want {
				t.Errorf("RGBToCMYK(%v) = %v, want %v", tt.rgb, got, tt.want)
			}
		})
	}
}

func TestCMYKToRGB(t *testing.T) {
	if got := CMYKToRGB(0, 0, 0, 100); got != (RGB{}) {
		t.Errorf("CMYKToRGB(0,0,0,100) = %v, want black", got)
	}
	if got := CMYKToRGB(0, 0, 0, 0); got != (RGB{R: 255, G: 255, B: 255}) {
		t.Errorf("CMYKToRGB(0,0,0,0) = %v, want white", got)
	}
	// Out-of-range components are clamped.
	if got, want := CMYKToRGB(150, -5, 0, 0), CMYKToRGB(100, 0, 0, 0); got != want {
		t.Errorf("CMYKToRGB clamp = %v, want %v", got, want)
	}
}

func TestParseColour(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{in: "#FF0080", want: RGB{R: 255, B: 128}},
		{in: "ff0080", want: RGB{R: 255, B: 128}},
		{in: "#fff", want: RGB{R: 255, G: 255, B: 255}},
		{in: "255, 247, 0", want: RGB{R: 255, G: 247}},
		{in: "#GG0000", wantErr: true},
		{in: "#12345", wantErr: true},
		{in: "256,0,0", wantErr: true},
		{in: "1,2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColour(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColour(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColour(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorInterface(t *testing.T) {
	var _ color.Color = RGB{}
	var _ color.Color = HSV{}
	var _ color.Color = CMYK{}

	r, g, b, a := HSV{H: 120, S: 100, V: 100}.RGBA()
	if r != 0 || g != 0xffff || b != 0 || a != 0xffff {
		t.Errorf("HSV green RGBA() = %d,%d,%d,%d", r, g, b, a)
	}
}
