// Package snapshot stores palette designs so they can be reopened, reported
// on and shared.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/geometry"
)

// DefaultKey is the key the designer saves under.
const DefaultKey = "colorPalette"

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidateKey rejects keys that are empty, too long or not safe as file names.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid snapshot key %q", key)
	}
	return nil
}

// Sizes holds a value per circle.
type Sizes struct {
	Circle1 float64 `json:"circle1"`
	Circle2 float64 `json:"circle2"`
	Circle3 float64 `json:"circle3"`
}

// Positions holds an offset per circle.
type Positions struct {
	Circle1 geometry.Vec `json:"circle1"`
	Circle2 geometry.Vec `json:"circle2"`
	Circle3 geometry.Vec `json:"circle3"`
}

// Geometry is the rendered circle layout relative to the viewport centre.
type Geometry struct {
	Sizes     Sizes     `json:"sizes"`
	Positions Positions `json:"positions"`
}

// Blur holds the blur radius of the two inner circles.
type Blur struct {
	Circle2 float64 `json:"circle2"`
	Circle3 float64 `json:"circle3"`
}

// Controllers is the controller layout that the rendered geometry derives
// from. Offsets are relative to each parent controller.
type Controllers struct {
	Sizes   Sizes     `json:"sizes"`
	Offsets Positions `json:"offsets"`
}

// Snapshot is a saved design. The embedded palette is flattened into the
// top-level background, circle1, circle2, circle3 and gradient fields.
type Snapshot struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	colour.Palette

	Geometry    *Geometry    `json:"geometry,omitempty"`
	Blur        *Blur        `json:"blur,omitempty"`
	Controllers *Controllers `json:"controllers,omitempty"`
}

// New creates a snapshot with a fresh ID.
func New(p colour.Palette) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Palette:   p,
	}
}

// WithLayout records the circle layout and returns s.
func (s *Snapshot) WithLayout(l geometry.Layout) *Snapshot {
	c, r := l.Controllers, l.Circles
	s.Geometry = &Geometry{
		Sizes:     Sizes{Circle1: r[0].Size, Circle2: r[1].Size, Circle3: r[2].Size},
		Positions: Positions{Circle1: r[0].Offset, Circle2: r[1].Offset, Circle3: r[2].Offset},
	}
	s.Blur = &Blur{Circle2: r[1].Blur, Circle3: r[2].Blur}
	s.Controllers = &Controllers{
		Sizes:   Sizes{Circle1: c[0].Size, Circle2: c[1].Size, Circle3: c[2].Size},
		Offsets: Positions{Circle1: c[0].Offset, Circle2: c[1].Offset, Circle3: c[2].Offset},
	}
	return s
}

// Layout rebuilds the engine layout. ok is false when the snapshot carries no
// controller data, in which case the caller keeps its current layout.
func (s *Snapshot) Layout() (l geometry.Layout, ok bool) {
	if s.Controllers == nil || s.Geometry == nil {
		return l, false
	}
	cs, co := s.Controllers.Sizes, s.Controllers.Offsets
	l.Controllers = [3]geometry.Controller{
		{Size: cs.Circle1, Offset: co.Circle1},
		{Size: cs.Circle2, Offset: co.Circle2},
		{Size: cs.Circle3, Offset: co.Circle3},
	}
	gs := s.Geometry.Sizes
	l.Circles = [3]geometry.Circle{{Size: gs.Circle1}, {Size: gs.Circle2}, {Size: gs.Circle3}}
	if s.Blur != nil {
		l.Circles[1].Blur = s.Blur.Circle2
		l.Circles[2].Blur = s.Blur.Circle3
	}
	return l, true
}

// Encode returns the snapshot as JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot. Channel values outside 0-255 are rejected.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}
