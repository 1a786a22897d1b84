// Package report assembles everything generated for one palette design: the
// colour breakdown, the chime, the rendered preview and the poem.
package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/gensys/chromapoem/internal/audio"
	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/designer"
	"github.com/gensys/chromapoem/internal/poem"
	"github.com/gensys/chromapoem/internal/preview"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// Waveform image dimensions.
const (
	WaveformWidth  = 800
	WaveformHeight = 200
)

// Report is the generated output for one design.
type Report struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Snapshot    *snapshot.Snapshot `json:"snapshot"`
	Swatches    []colour.Swatch    `json:"swatches"`
	Tone        poem.Tone          `json:"tone"`
	Prompt      string             `json:"prompt"`
	Voices      []audio.Voice      `json:"voices"`
	Poem        string             `json:"poem,omitempty"`
	PoemError   string             `json:"poemError,omitempty"`

	PreviewPNG  []byte `json:"-"`
	WaveformPNG []byte `json:"-"`
	ChimeWAV    []byte `json:"-"`
}

// Palette returns the reported palette.
func (r *Report) Palette() colour.Palette {
	return r.Snapshot.Palette
}

// Builder produces reports. Generator and Store are optional: without a
// generator the report carries a poem error, without a store nothing is
// persisted.
type Builder struct {
	Generator poem.Generator
	Store     snapshot.Store
	Key       string
	Preview   preview.Options
	Logger    hclog.Logger
}

// NewBuilder returns a builder that renders gradients on a default sized
// canvas and saves under snapshot.DefaultKey.
func NewBuilder(gen poem.Generator, store snapshot.Store, logger hclog.Logger) *Builder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	opts := preview.DefaultOptions()
	opts.Gradient = true
	return &Builder{
		Generator: gen,
		Store:     store,
		Key:       snapshot.DefaultKey,
		Preview:   opts,
		Logger:    logger,
	}
}

// Build generates the report for the designer's current state. A failed
// poem request is recorded in PoemError and does not fail the build.
func (b *Builder) Build(ctx context.Context, d *designer.Designer) (*Report, error) {
	logger := b.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	snap := d.Snapshot()
	p := snap.Palette
	prompt, tone := poem.Compose(p)

	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Snapshot:    snap,
		Swatches:    p.Swatches(),
		Tone:        tone,
		Prompt:      prompt,
		Voices:      audio.Analyse(p),
	}

	var err error
	scene := preview.RenderScene(p, d.Engine().Layout(), b.previewOptions())
	if r.PreviewPNG, err = encodePNG(scene); err != nil {
		return nil, err
	}
	if r.WaveformPNG, err = encodePNG(preview.RenderWaveform(p, WaveformWidth, WaveformHeight)); err != nil {
		return nil, err
	}
	if r.ChimeWAV, err = audio.EncodeWAV(p); err != nil {
		return nil, err
	}
	logger.Debug("rendered report media", "preview_bytes", len(r.PreviewPNG), "wav_bytes", len(r.ChimeWAV))

	r.Poem, err = b.generate(ctx, prompt, snap)
	if err != nil {
		logger.Warn("poem generation failed", "error", err)
		r.PoemError = err.Error()
	}

	if b.Store != nil {
		key := b.Key
		if key == "" {
			key = snapshot.DefaultKey
		}
		if err := b.Store.Save(ctx, key, snap); err != nil {
			return nil, fmt.Errorf("failed to persist snapshot: %w", err)
		}
		logger.Debug("saved snapshot", "key", key, "id", snap.ID)
	}
	return r, nil
}

// snapshotGenerator is implemented by generators that forward the palette
// alongside the prompt.
type snapshotGenerator interface {
	GenerateFor(ctx context.Context, prompt string, colorData *snapshot.Snapshot) (string, error)
}

func (b *Builder) generate(ctx context.Context, prompt string, snap *snapshot.Snapshot) (string, error) {
	switch g := b.Generator.(type) {
	case nil:
		return "", poem.ErrNoGenerator
	case snapshotGenerator:
		return g.GenerateFor(ctx, prompt, snap)
	default:
		return g.Generate(ctx, prompt)
	}
}

func (b *Builder) previewOptions() preview.Options {
	if b.Preview.Width <= 0 || b.Preview.Height <= 0 {
		return preview.DefaultOptions()
	}
	return b.Preview
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := preview.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Text renders the human readable report.
func (r *Report) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "chromapoem report\nGenerated: %s\n\n", r.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("Colours\n")
	for _, s := range r.Swatches {
		fmt.Fprintf(&sb, "  %-12s %s  rgb(%d, %d, %d)  hsv(%d, %d%%, %d%%)  cmyk(%d%%, %d%%, %d%%, %d%%)\n",
			s.Role+":", s.Hex, s.RGB.R, s.RGB.G, s.RGB.B, s.HSV.H, s.HSV.S, s.HSV.V,
			s.CMYK.C, s.CMYK.M, s.CMYK.Y, s.CMYK.K)
	}
	if g := r.Snapshot.Gradient; g != nil {
		fmt.Fprintf(&sb, "  %-12s %s -> %s\n", "gradient:", g.Stop1.Hex(), g.Stop2.Hex())
	}

	sb.WriteString("\nSound\n")
	for _, v := range r.Voices {
		fmt.Fprintf(&sb, "  %s\n", v)
	}

	fmt.Fprintf(&sb, "\nTone\n  intensity:   %s\n  abstraction: %s\n  quality:     %s\n",
		r.Tone.Intensity, r.Tone.Abstraction, r.Tone.Quality)

	sb.WriteString("\nPoem\n")
	if r.PoemError != "" {
		fmt.Fprintf(&sb, "  unavailable: %s\n", r.PoemError)
	} else {
		sb.WriteString(r.Poem)
		sb.WriteString("\n")
	}
	return sb.String()
}
