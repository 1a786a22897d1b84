package geometry

import (
	"math"
	"math/rand/v2"
	"testing"
)

const eps = 1e-9

func TestRadialClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Vec
		max  float64
		want Vec
	}{
		{name: "inside", in: Vec{X: 3, Y: 4}, max: 10, want: Vec{X: 3, Y: 4}},
		{name: "on boundary", in: Vec{X: 3, Y: 4}, max: 5, want: Vec{X: 3, Y: 4}},
		{name: "outside keeps angle", in: Vec{X: 30, Y: 40}, max: 5, want: Vec{X: 3, Y: 4}},
		{name: "negative axis", in: Vec{X: -100}, max: 20, want: Vec{X: -20}},
		{name: "negative max", in: Vec{X: 1, Y: 1}, max: -3, want: Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RadialClamp(tt.in, tt.max)
			if math.Abs(got.X-tt.want.X) > eps || math.Abs(got.Y-tt.want.Y) > eps {
				t.Errorf("RadialClamp(%v, %v) = %v, want %v", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestProportionalResize(t *testing.T) {
	tests := []struct {
		name               string
		oldC, newC, render float64
		lo, hi             float64
		want               float64
	}{
		{name: "shrink by a third", oldC: 150, newC: 100, render: 450, lo: 120, hi: 540, want: 300},
		{name: "grow clamps to max", oldC: 100, newC: 200, render: 600, lo: 200, hi: 1000, want: 1000},
		{name: "shrink clamps to min", oldC: 50, newC: 15, render: 150, lo: 55, hi: 390, want: 55},
		{name: "rounds to whole pixel", oldC: 3, newC: 1, render: 100, lo: 0, hi: 1000, want: 33},
		{name: "min wins when bounds cross", oldC: 1, newC: 1, render: 10, lo: 50, hi: 20, want: 50},
		{name: "zero old size", oldC: 0, newC: 10, render: 10, lo: 0, hi: 5, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProportionalResize(tt.oldC, tt.newC, tt.render, tt.lo, tt.hi)
			if got != tt.want {
				t.Errorf("ProportionalResize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEngineInitialLayout(t *testing.T) {
	e := NewEngine()
	wantC := []float64{200, 150, 50}
	wantR := []float64{600, 450, 150}
	wantBlur := []float64{0, 2, 2}
	for i, tgt := range Targets {
		if got := e.Controller(tgt).Size; got != wantC[i] {
			t.Errorf("%v controller size = %v, want %v", tgt, got, wantC[i])
		}
		c := e.Circle(tgt)
		if c.Size != wantR[i] || c.Blur != wantBlur[i] {
			t.Errorf("%v circle = %+v, want size %v blur %v", tgt, c, wantR[i], wantBlur[i])
		}
		if c.Offset != (Vec{}) {
			t.Errorf("%v circle offset = %v, want centred", tgt, c.Offset)
		}
		if e.State(tgt) != Idle {
			t.Errorf("%v state = %v, want idle", tgt, e.State(tgt))
		}
	}
}

func TestStateMachine(t *testing.T) {
	e := NewEngine()

	if got := e.Press(CircleOne, Vec{}); got != Active {
		t.Fatalf("first press on circle one = %v, want active", got)
	}
	if got := e.Press(CircleOne, Vec{}); got != Idle {
		t.Fatalf("second press on circle one = %v, want idle", got)
	}

	e.Press(CircleOne, Vec{})
	if got := e.Press(CircleTwo, Vec{}); got != Active {
		t.Fatalf("first press on circle two = %v, want active", got)
	}
	if e.State(CircleOne) != Idle {
		t.Errorf("selecting circle two left circle one %v", e.State(CircleOne))
	}
	if got := e.Press(CircleTwo, Vec{}); got != Dragging {
		t.Fatalf("second press on circle two = %v, want dragging", got)
	}

	e.Release()
	if e.State(CircleTwo) != Active {
		t.Errorf("after release circle two = %v, want active", e.State(CircleTwo))
	}

	e.Press(CircleThree, Vec{})
	if e.State(CircleTwo) != Idle || e.State(CircleThree) != Active {
		t.Errorf("selecting circle three: two=%v three=%v", e.State(CircleTwo), e.State(CircleThree))
	}

	e.PressOutside()
	if _, ok := e.Selected(); ok {
		t.Error("PressOutside left a controller selected")
	}
}

func TestDragClampsToParent(t *testing.T) {
	e := NewEngine()
	e.Press(CircleTwo, Vec{})
	e.Press(CircleTwo, Vec{})
	e.Move(Vec{X: 100})

	// 200/2 - 150/2 - 5
	if got := e.Controller(CircleTwo).Offset; math.Abs(got.X-20) > eps || got.Y != 0 {
		t.Errorf("controller two offset = %v, want (20, 0)", got)
	}
	if got := e.Circle(CircleTwo).Offset; math.Abs(got.X-60) > eps {
		t.Errorf("circle two offset = %v, want (60, 0)", got)
	}
	// Circle three moves with its parent.
	if got := e.Circle(CircleThree).Offset; math.Abs(got.X-60) > eps {
		t.Errorf("circle three offset = %v, want (60, 0)", got)
	}
}

func TestDragCircleThreeRelativeToParent(t *testing.T) {
	e := NewEngine()
	e.Press(CircleTwo, Vec{})
	e.Press(CircleTwo, Vec{})
	e.Move(Vec{X: 10})
	e.Release()

	e.Press(CircleThree, Vec{})
	// Grab at the controller's centre so the offset follows the pointer exactly.
	e.Press(CircleThree, Vec{X: 10})
	e.Move(Vec{X: 10, Y: 200})

	off := e.Controller(CircleThree).Offset
	// 150/2 - 50/2 - 5
	if math.Abs(off.Len()-45) > eps || math.Abs(off.X) > eps {
		t.Errorf("controller three offset = %v, want (0, 45)", off)
	}
	want := Vec{X: 10, Y: 45}.Scale(3)
	if got := e.Circle(CircleThree).Offset; math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps {
		t.Errorf("circle three offset = %v, want %v", got, want)
	}
}

func TestGrabOffsetPreserved(t *testing.T) {
	e := NewEngine()
	e.Press(CircleTwo, Vec{})
	e.Press(CircleTwo, Vec{X: 3, Y: -2})
	e.Move(Vec{X: 8, Y: -2})
	if got := e.Controller(CircleTwo).Offset; math.Abs(got.X-5) > eps || math.Abs(got.Y) > eps {
		t.Errorf("offset = %v, want (5, 0)", got)
	}
}

func TestMoveIgnoredUnlessDragging(t *testing.T) {
	e := NewEngine()
	e.Press(CircleTwo, Vec{})
	e.Move(Vec{X: 10})
	if got := e.Controller(CircleTwo).Offset; got != (Vec{}) {
		t.Errorf("active controller moved to %v", got)
	}

	e.Press(CircleOne, Vec{})
	e.Press(CircleOne, Vec{})
	e.Move(Vec{X: 10})
	if got := e.Layout().Circles[0].Offset; got != (Vec{}) {
		t.Errorf("circle one moved to %v", got)
	}
}

func TestWheelResizesProportionally(t *testing.T) {
	e := NewEngine()
	e.Press(CircleTwo, Vec{})
	if !e.Wheel(50 / 0.3) {
		t.Fatal("Wheel() = false with circle two active")
	}
	if got := e.Controller(CircleTwo).Size; math.Abs(got-100) > 1e-6 {
		t.Errorf("controller two size = %v, want 100", got)
	}
	if got := e.Circle(CircleTwo).Size; got != 300 {
		t.Errorf("circle two size = %v, want 300", got)
	}
}

func TestWheelWithoutSelection(t *testing.T) {
	e := NewEngine()
	before := e.Layout()
	if e.Wheel(100) {
		t.Error("Wheel() = true with nothing selected")
	}
	if e.Layout() != before {
		t.Error("Wheel() changed the layout with nothing selected")
	}
}

func TestWheelClamps(t *testing.T) {
	e := NewEngine()
	e.Press(CircleOne, Vec{})
	e.Wheel(-1000)
	if got := e.Controller(CircleOne).Size; got != 200 {
		t.Errorf("controller one grew to %v, want max 200", got)
	}

	e.Press(CircleThree, Vec{})
	e.Wheel(1000)
	if got := e.Controller(CircleThree).Size; got != 15 {
		t.Errorf("controller three shrank to %v, want min 15", got)
	}
	if got := e.Circle(CircleThree).Size; got != 55 {
		t.Errorf("circle three shrank to %v, want min 55", got)
	}
}

func TestShrinkParentCascades(t *testing.T) {
	e := NewEngine()
	e.Press(CircleTwo, Vec{})
	e.Press(CircleTwo, Vec{})
	e.Move(Vec{X: 20})
	e.Release()

	e.Resize(CircleOne, 100)
	l := e.Layout()
	if l.Controllers[1].Size != 80 {
		t.Errorf("controller two = %v, want 80", l.Controllers[1].Size)
	}
	if l.Circles[0].Size != 300 {
		t.Errorf("circle one = %v, want 300", l.Circles[0].Size)
	}
	if l.Circles[1].Size != 240 {
		t.Errorf("circle two = %v, want 240", l.Circles[1].Size)
	}
	// 100/2 - 80/2 - 5
	if got := l.Controllers[1].Offset.Len(); math.Abs(got-5) > eps {
		t.Errorf("controller two offset length = %v, want 5", got)
	}
	assertInvariants(t, e)
}

func TestSetBlur(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		target Target
		px     float64
		ok     bool
		want   float64
	}{
		{CircleOne, 10, false, 0},
		{CircleTwo, 10, true, 10},
		{CircleTwo, 80, true, 50},
		{CircleThree, -4, true, 0},
	}
	for _, tt := range tests {
		if got := e.SetBlur(tt.target, tt.px); got != tt.ok {
			t.Errorf("SetBlur(%v, %v) = %v, want %v", tt.target, tt.px, got, tt.ok)
		}
		if got := e.Circle(tt.target).Blur; got != tt.want {
			t.Errorf("%v blur = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestRestoreClampsLayout(t *testing.T) {
	e := NewEngine()
	var l Layout
	l.Controllers[0].Size = 500
	l.Controllers[1] = Controller{Size: 400, Offset: Vec{X: 1000}}
	l.Controllers[2] = Controller{Size: 10}
	l.Circles[0].Size = 5000
	l.Circles[1].Size = 5000
	l.Circles[2] = Circle{Size: 10, Blur: 99}

	e.Restore(l)
	got := e.Layout()
	if got.Controllers[0].Size != 200 || got.Controllers[1].Size != 180 || got.Controllers[2].Size != 15 {
		t.Errorf("controller sizes = %v %v %v", got.Controllers[0].Size, got.Controllers[1].Size, got.Controllers[2].Size)
	}
	if got.Circles[0].Size != 1000 || got.Circles[1].Size != 940 || got.Circles[2].Size != 55 {
		t.Errorf("circle sizes = %v %v %v", got.Circles[0].Size, got.Circles[1].Size, got.Circles[2].Size)
	}
	if got.Circles[2].Blur != 50 {
		t.Errorf("blur = %v, want 50", got.Circles[2].Blur)
	}
	assertInvariants(t, e)
}

func TestRestoreRoundTrip(t *testing.T) {
	e := NewEngine()
	e.Press(CircleTwo, Vec{})
	e.Press(CircleTwo, Vec{})
	e.Move(Vec{X: -7, Y: 9})
	e.Release()
	e.SetBlur(CircleThree, 12)
	saved := e.Layout()

	other := NewEngine()
	other.Restore(saved)
	got := other.Layout()
	for i := range got.Controllers {
		got.Controllers[i].State = saved.Controllers[i].State
	}
	if got != saved {
		t.Errorf("Restore(Layout()) = %+v, want %+v", got, saved)
	}
}

func TestRandomInteractionsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	e := NewEngine()

	for step := range 5000 {
		switch rng.IntN(6) {
		case 0:
			e.Press(Targets[rng.IntN(3)], randomVec(rng, 120))
		case 1:
			e.Move(randomVec(rng, 300))
		case 2:
			e.Release()
		case 3:
			e.Wheel(rng.Float64()*600 - 300)
		case 4:
			e.Resize(Targets[rng.IntN(3)], rng.Float64()*300)
		case 5:
			e.PressOutside()
		}
		if t.Failed() {
			t.Fatalf("invariant broken at step %d", step)
		}
		assertInvariants(t, e)
	}
}

func randomVec(rng *rand.Rand, r float64) Vec {
	return Vec{X: rng.Float64()*2*r - r, Y: rng.Float64()*2*r - r}
}

func assertInvariants(t *testing.T, e *Engine) {
	t.Helper()
	l := e.Layout()
	lim := e.Limits()
	c, r := l.Controllers, l.Circles

	if c[0].Size < lim.ControllerMin[0] || c[0].Size > lim.ControllerMax1 {
		t.Errorf("controller one size %v out of range", c[0].Size)
	}
	if r[0].Size < lim.CircleMin[0] || r[0].Size > lim.CircleMax1 {
		t.Errorf("circle one size %v out of range", r[0].Size)
	}
	for i := 1; i < 3; i++ {
		if c[i].Size < lim.ControllerMin[i] || c[i].Size > c[i-1].Size-lim.NestMargin+eps {
			t.Errorf("controller %d size %v not nested in %v", i+1, c[i].Size, c[i-1].Size)
		}
		if r[i].Size < lim.CircleMin[i] || r[i].Size > r[i-1].Size-lim.CircleNestMargin {
			t.Errorf("circle %d size %v not nested in %v", i+1, r[i].Size, r[i-1].Size)
		}
		maxDist := c[i-1].Size/2 - c[i].Size/2 - lim.DragMargin
		if c[i].Offset.Len() > maxDist+1e-6 {
			t.Errorf("controller %d offset %v exceeds %v", i+1, c[i].Offset.Len(), maxDist)
		}
	}

	scale := r[0].Size / c[0].Size
	want2 := c[1].Offset.Scale(scale)
	want3 := c[1].Offset.Add(c[2].Offset).Scale(scale)
	if r[1].Offset.Sub(want2).Len() > 1e-6 || r[2].Offset.Sub(want3).Len() > 1e-6 {
		t.Errorf("rendered offsets %v %v not derived from controllers", r[1].Offset, r[2].Offset)
	}

	selected := 0
	for _, s := range []State{c[0].State, c[1].State, c[2].State} {
		if s != Idle {
			selected++
		}
	}
	if selected > 1 {
		t.Errorf("%d controllers selected at once", selected)
	}
}
