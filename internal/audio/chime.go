package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/gensys/chromapoem/internal/colour"
)

// SampleRate is the rate used for rendered chimes.
const SampleRate = beep.SampleRate(44100)

// Format is the WAV format written by WriteWAV: mono, 16-bit.
var Format = beep.Format{SampleRate: SampleRate, NumChannels: 1, Precision: 2}

// headroom is the peak level the mixed voices are scaled to.
const headroom = 0.9

// Chime is a beep.Streamer that plays every voice with a linear attack,
// sustain and release envelope, each starting at its delay.
type Chime struct {
	voices []Voice
	rate   beep.SampleRate
	scale  float64
	pos    int
	length int
}

var _ beep.StreamSeeker = (*Chime)(nil)

// NewChime creates a chime for the palette at the given sample rate.
func NewChime(p colour.Palette, rate beep.SampleRate) *Chime {
	return NewVoiceChime(Analyse(p), rate)
}

// NewVoiceChime creates a chime for explicit voices.
func NewVoiceChime(voices []Voice, rate beep.SampleRate) *Chime {
	total := 0.0
	for _, v := range voices {
		total += v.Gain
	}
	scale := 1.0
	if total > headroom {
		scale = headroom / total
	}
	return &Chime{
		voices: voices,
		rate:   rate,
		scale:  scale,
		length: rate.N(Duration(voices)),
	}
}

// Stream fills samples with the mixed voices, copying the value to both
// channels.
func (c *Chime) Stream(samples [][2]float64) (n int, ok bool) {
	if c.pos >= c.length {
		return 0, false
	}
	for i := range samples {
		if c.pos >= c.length {
			break
		}
		v := c.At(c.pos)
		samples[i][0] = v
		samples[i][1] = v
		c.pos++
		n++
	}
	return n, true
}

// Err always returns nil.
func (c *Chime) Err() error {
	return nil
}

// Len returns the total number of samples.
func (c *Chime) Len() int {
	return c.length
}

// Position returns the current sample position.
func (c *Chime) Position() int {
	return c.pos
}

// Seek moves to sample p.
func (c *Chime) Seek(p int) error {
	if p < 0 || p > c.length {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, c.length)
	}
	c.pos = p
	return nil
}

// At returns the mixed mono sample at index i.
func (c *Chime) At(i int) float64 {
	t := float64(i) / float64(c.rate)
	sum := 0.0
	for _, v := range c.voices {
		local := t - v.Delay.Seconds()
		env := envelope(local)
		if env == 0 {
			continue
		}
		sum += v.Gain * env * v.Waveform.Sample(2*math.Pi*v.Frequency*local)
	}
	return sum * c.scale
}

// envelope returns the gain multiplier at t seconds into a note.
func envelope(t float64) float64 {
	d := NoteDuration.Seconds()
	a := attack.Seconds()
	r := release.Seconds()
	switch {
	case t < 0 || t >= d:
		return 0
	case t < a:
		return t / a
	case t > d-r:
		return (d - t) / r
	default:
		return 1
	}
}

// WriteWAV renders the palette chime as a 16-bit mono 44.1 kHz WAV.
func WriteWAV(w io.WriteSeeker, p colour.Palette) error {
	if err := wav.Encode(w, NewChime(p, SampleRate), Format); err != nil {
		return fmt.Errorf("failed to encode chime: %w", err)
	}
	return nil
}

// SampleWindow renders n mono samples of the chime starting at offset. It is
// used for waveform plots.
func SampleWindow(p colour.Palette, offset time.Duration, n int) []float64 {
	c := NewChime(p, SampleRate)
	start := SampleRate.N(offset)
	out := make([]float64, n)
	for i := range out {
		out[i] = c.At(start + i)
	}
	return out
}
