// Package audio maps palette colours to tones and synthesises the palette chime.
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gensys/chromapoem/internal/colour"
)

// BaseFrequency is the root of the pentatonic scale in Hz.
const BaseFrequency = 220.0

// pentatonic holds the major pentatonic ratios above the root.
var pentatonic = [5]float64{1, 9.0 / 8.0, 5.0 / 4.0, 3.0 / 2.0, 5.0 / 3.0}

// Waveform is an oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Square:
		return "square"
	default:
		return fmt.Sprintf("waveform(%d)", int(w))
	}
}

// MarshalText encodes the waveform name.
func (w Waveform) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// Sample returns the waveform value in [-1, 1] at phase radians.
func (w Waveform) Sample(phase float64) float64 {
	s := math.Sin(phase)
	switch w {
	case Triangle:
		return 2 / math.Pi * math.Asin(s)
	case Square:
		if s >= 0 {
			return 1
		}
		return -1
	default:
		return s
	}
}

// Frequency maps hue to a note of the pentatonic scale. Hue is split into
// twelve degrees, five per octave above BaseFrequency.
func Frequency(rgb colour.RGB) float64 {
	h := float64(colour.RGBToHSV(rgb).H)
	degree := int(math.Floor(h / 360 * 12))
	octave := degree / 5
	note := degree % 5
	return BaseFrequency * pentatonic[note] * math.Pow(2, float64(octave))
}

// Gain maps saturation to a volume in [0.1, 0.4].
func Gain(rgb colour.RGB) float64 {
	return 0.1 + float64(colour.RGBToHSV(rgb).S)/100*0.3
}

// WaveformFor maps brightness to an oscillator shape.
func WaveformFor(rgb colour.RGB) Waveform {
	v := colour.RGBToHSV(rgb).V
	switch {
	case v > 70:
		return Sine
	case v > 40:
		return Triangle
	default:
		return Square
	}
}

// Voice is the tone for one palette colour.
type Voice struct {
	Name      string        `json:"name"`
	Colour    colour.RGB    `json:"color"`
	Frequency float64       `json:"frequency"`
	Gain      float64       `json:"gain"`
	Waveform  Waveform      `json:"waveform"`
	Delay     time.Duration `json:"delay"`
}

// String formats the voice for terminal output.
func (v Voice) String() string {
	return fmt.Sprintf("%-10s %s  %7.2f Hz  gain %.2f  %-8s +%v",
		v.Name, v.Colour.Hex(), v.Frequency, v.Gain, v.Waveform, v.Delay)
}

const (
	// NoteDuration is how long each voice sounds.
	NoteDuration = 2500 * time.Millisecond
	// VoiceStagger separates the start of consecutive voices.
	VoiceStagger = 150 * time.Millisecond
	attack       = 100 * time.Millisecond
	release      = 500 * time.Millisecond
)

var voiceNames = [4]string{"Background", "Circle 1", "Circle 2", "Circle 3"}

// Analyse returns one voice per palette colour, background first.
func Analyse(p colour.Palette) []Voice {
	voices := make([]Voice, 0, len(colour.Roles))
	for i, c := range p.Colours() {
		voices = append(voices, Voice{
			Name:      voiceNames[i],
			Colour:    c,
			Frequency: Frequency(c),
			Gain:      Gain(c),
			Waveform:  WaveformFor(c),
			Delay:     time.Duration(i) * VoiceStagger,
		})
	}
	return voices
}

// Duration is the total length of the chime for voices.
func Duration(voices []Voice) time.Duration {
	var d time.Duration
	for _, v := range voices {
		d = max(d, v.Delay+NoteDuration)
	}
	return d
}
