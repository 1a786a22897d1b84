// Package poem turns a palette into a concrete-poetry prompt and sends it to
// a text generation backend.
package poem

import (
	"gonum.org/v1/gonum/stat"

	"github.com/gensys/chromapoem/internal/colour"
)

// Tone is the emotional reading of a palette.
type Tone struct {
	MeanBrightness float64 `json:"meanBrightness"`
	MeanSaturation float64 `json:"meanSaturation"`
	// HueVariety is the population standard deviation of the four hues.
	HueVariety float64 `json:"hueVariety"`

	Intensity   string `json:"emotionalIntensity"`
	Abstraction string `json:"abstractionLevel"`
	Quality     string `json:"tonalQuality"`
}

// AnalyseTone derives tone descriptors from the palette's HSV statistics.
func AnalyseTone(p colour.Palette) Tone {
	colours := p.Colours()
	hues := make([]float64, len(colours))
	sats := make([]float64, len(colours))
	vals := make([]float64, len(colours))
	for i, c := range colours {
		hsv := colour.RGBToHSV(c)
		hues[i] = float64(hsv.H)
		sats[i] = float64(hsv.S)
		vals[i] = float64(hsv.V)
	}

	t := Tone{
		MeanBrightness: stat.Mean(vals, nil),
		MeanSaturation: stat.Mean(sats, nil),
		HueVariety:     stat.PopStdDev(hues, nil),
	}

	switch {
	case t.MeanSaturation > 60:
		t.Intensity = "intense"
	case t.MeanSaturation > 30:
		t.Intensity = "moderate"
	default:
		t.Intensity = "subdued"
	}

	switch {
	case t.HueVariety > 80:
		t.Abstraction = "highly abstract"
	case t.HueVariety > 40:
		t.Abstraction = "moderately abstract"
	default:
		t.Abstraction = "clear and contemplative"
	}

	switch {
	case t.MeanBrightness > 70:
		t.Quality = "bright and energetic"
	case t.MeanBrightness > 40:
		t.Quality = "balanced and thoughtful"
	default:
		t.Quality = "dark and introspective"
	}
	return t
}
