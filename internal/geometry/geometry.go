// Package geometry maintains three nested circles and the small controller
// widgets used to drag and resize them.
//
// Controllers live in a fixed, small coordinate space centred on the controller
// cluster. Rendered circles live in viewport pixels centred on the viewport.
// Rendered offsets are always derived from controller offsets, never edited
// directly.
package geometry

import (
	"fmt"
	"math"
)

// Target identifies one of the three nested circles.
type Target int

const (
	CircleOne Target = iota + 1
	CircleTwo
	CircleThree
)

// Targets lists the circles from outermost to innermost.
var Targets = []Target{CircleOne, CircleTwo, CircleThree}

func (t Target) String() string {
	switch t {
	case CircleOne:
		return "circle1"
	case CircleTwo:
		return "circle2"
	case CircleThree:
		return "circle3"
	default:
		return fmt.Sprintf("circle(%d)", int(t))
	}
}

// Valid reports whether t names one of the three circles.
func (t Target) Valid() bool {
	return t >= CircleOne && t <= CircleThree
}

// Draggable reports whether the circle can be repositioned. Circle one is
// always centred.
func (t Target) Draggable() bool {
	return t == CircleTwo || t == CircleThree
}

// Blurrable reports whether the circle accepts a blur radius.
func (t Target) Blurrable() bool {
	return t == CircleTwo || t == CircleThree
}

func (t Target) index() int {
	return int(t) - 1
}

// ParseTarget parses "1", "2", "3" or "circle1".."circle3".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "1", "circle1", "one":
		return CircleOne, nil
	case "2", "circle2", "two":
		return CircleTwo, nil
	case "3", "circle3", "three":
		return CircleThree, nil
	}
	return 0, fmt.Errorf("unknown circle %q (want 1, 2 or 3)", s)
}

// Vec is a 2D offset or position.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by k.
func (v Vec) Scale(k float64) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// RadialClamp limits v to maxDistance from the origin while keeping its angle.
// A negative maxDistance is treated as zero.
func RadialClamp(v Vec, maxDistance float64) Vec {
	maxDistance = math.Max(0, maxDistance)
	if v.Len() <= maxDistance {
		return v
	}
	angle := math.Atan2(v.Y, v.X)
	return Vec{X: math.Cos(angle) * maxDistance, Y: math.Sin(angle) * maxDistance}
}

// ProportionalResize scales a rendered size by the controller's resize ratio,
// rounds it to a whole pixel and clamps it to [minSize, maxSize]. minSize wins
// when the bounds cross.
func ProportionalResize(oldController, newController, rendered, minSize, maxSize float64) float64 {
	if oldController == 0 {
		return clamp(rendered, minSize, maxSize)
	}
	scaled := math.Round(rendered * newController / oldController)
	return clamp(scaled, minSize, maxSize)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
