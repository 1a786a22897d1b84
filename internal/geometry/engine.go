package geometry

import "math"

// State is the interaction state of a controller.
type State int

const (
	Idle State = iota
	Active
	Dragging
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Limits holds the sizing rules. Index 0 is circle one.
type Limits struct {
	ControllerMin [3]float64
	// ControllerMax1 caps controller one; inner controllers are capped by
	// their parent minus NestMargin.
	ControllerMax1 float64
	NestMargin     float64

	CircleMin [3]float64
	// CircleMax1 caps rendered circle one; inner circles are capped by their
	// parent minus CircleNestMargin.
	CircleMax1       float64
	CircleNestMargin float64

	// DragMargin keeps a dragged controller this far inside its parent's edge.
	DragMargin float64
	// WheelFactor converts wheel delta into controller pixels.
	WheelFactor float64
	MaxBlur     float64
}

// DefaultLimits returns the standard sizing rules.
func DefaultLimits() Limits {
	return Limits{
		ControllerMin:    [3]float64{100, 50, 15},
		ControllerMax1:   200,
		NestMargin:       20,
		CircleMin:        [3]float64{200, 120, 55},
		CircleMax1:       1000,
		CircleNestMargin: 60,
		DragMargin:       5,
		WheelFactor:      0.3,
		MaxBlur:          50,
	}
}

// Controller is a small draggable widget. Offset is relative to its parent
// controller's centre.
type Controller struct {
	Size   float64 `json:"size"`
	Offset Vec     `json:"offset"`
	State  State   `json:"-"`
}

// Circle is a rendered circle. Offset is its centre relative to the viewport
// centre, derived from the controllers.
type Circle struct {
	Size   float64 `json:"size"`
	Offset Vec     `json:"offset"`
	Blur   float64 `json:"blur"`
}

// Layout is a copy of the engine's geometry.
type Layout struct {
	Controllers [3]Controller `json:"controllers"`
	Circles     [3]Circle     `json:"circles"`
}

// Controller returns the controller for t.
func (l Layout) Controller(t Target) Controller {
	return l.Controllers[t.index()]
}

// Circle returns the rendered circle for t.
func (l Layout) Circle(t Target) Circle {
	return l.Circles[t.index()]
}

// Engine owns the controller and circle geometry and the controller state
// machine. It is not safe for concurrent use.
type Engine struct {
	limits      Limits
	controllers [3]Controller
	circles     [3]Circle
	grab        Vec
}

// NewEngine creates an engine with DefaultLimits and the initial layout.
func NewEngine() *Engine {
	return NewEngineWithLimits(DefaultLimits())
}

// NewEngineWithLimits creates an engine with custom limits.
func NewEngineWithLimits(limits Limits) *Engine {
	e := &Engine{limits: limits}
	e.Reset()
	return e
}

// Reset restores the initial sizes, centres every circle and clears all
// controller state.
func (e *Engine) Reset() {
	e.controllers = [3]Controller{{Size: 200}, {Size: 150}, {Size: 50}}
	e.circles = [3]Circle{{Size: 600}, {Size: 450, Blur: 2}, {Size: 150, Blur: 2}}
	e.grab = Vec{}
	e.propagate()
}

// Limits returns the engine's sizing rules.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Layout returns a copy of the current geometry.
func (e *Engine) Layout() Layout {
	return Layout{Controllers: e.controllers, Circles: e.circles}
}

// Controller returns the controller for t.
func (e *Engine) Controller(t Target) Controller {
	return e.controllers[t.index()]
}

// Circle returns the rendered circle for t.
func (e *Engine) Circle(t Target) Circle {
	return e.circles[t.index()]
}

// State returns the interaction state of t's controller.
func (e *Engine) State(t Target) State {
	return e.controllers[t.index()].State
}

// Selected returns the controller that is active or dragging, if any.
func (e *Engine) Selected() (Target, bool) {
	for _, t := range Targets {
		if e.State(t) != Idle {
			return t, true
		}
	}
	return 0, false
}

// Press handles a pointer press on t's controller. pointer is in controller
// space relative to the cluster centre. Controller one toggles between idle
// and active. Controllers two and three become active on the first press and
// start dragging on a press while already selected. Selecting a controller
// deselects the others. Returns the new state of t.
func (e *Engine) Press(t Target, pointer Vec) State {
	if !t.Valid() {
		return Idle
	}
	current := e.State(t)

	if t == CircleOne {
		next := Active
		if current != Idle {
			next = Idle
		}
		e.selectOnly(t, next)
		return next
	}

	if current == Idle {
		e.selectOnly(t, Active)
		return Active
	}

	e.grab = pointer.Sub(e.absoluteController(t))
	e.selectOnly(t, Dragging)
	return Dragging
}

// Move repositions the dragging controller, if any, so that the grab point
// follows pointer. The controller is kept inside its parent.
func (e *Engine) Move(pointer Vec) {
	t, ok := e.Selected()
	if !ok || e.State(t) != Dragging || !t.Draggable() {
		return
	}

	target := pointer.Sub(e.grab)
	switch t {
	case CircleTwo:
		e.controllers[1].Offset = RadialClamp(target, e.maxDistance(CircleTwo))
	case CircleThree:
		rel := target.Sub(e.controllers[1].Offset)
		e.controllers[2].Offset = RadialClamp(rel, e.maxDistance(CircleThree))
	}
	e.propagate()
}

// Release ends any drag. The dragged controller stays active.
func (e *Engine) Release() {
	for i := range e.controllers {
		if e.controllers[i].State == Dragging {
			e.controllers[i].State = Active
		}
	}
}

// PressOutside deselects every controller.
func (e *Engine) PressOutside() {
	for i := range e.controllers {
		e.controllers[i].State = Idle
	}
}

// Wheel resizes the selected controller. A positive deltaY (scrolling down)
// shrinks it. The rendered circle follows proportionally and nested
// controllers and circles are pulled in so they still fit.
func (e *Engine) Wheel(deltaY float64) bool {
	t, ok := e.Selected()
	if !ok {
		return false
	}
	return e.Resize(t, e.controllers[t.index()].Size-deltaY*e.limits.WheelFactor)
}

// Resize sets t's controller size, clamped to its limits, and resizes the
// rendered circle by the same ratio. Returns false if t is invalid.
func (e *Engine) Resize(t Target, size float64) bool {
	if !t.Valid() {
		return false
	}
	i := t.index()
	old := e.controllers[i].Size
	next := clamp(size, e.limits.ControllerMin[i], e.controllerMax(i))
	e.controllers[i].Size = next
	e.circles[i].Size = ProportionalResize(old, next, e.circles[i].Size, e.limits.CircleMin[i], e.circleMax(i))

	e.enforce()
	e.propagate()
	return true
}

// SetBlur sets the blur radius of circle two or three, clamped to
// [0, MaxBlur]. Circle one has no blur.
func (e *Engine) SetBlur(t Target, px float64) bool {
	if !t.Blurrable() {
		return false
	}
	e.circles[t.index()].Blur = clamp(px, 0, e.limits.MaxBlur)
	return true
}

// Restore replaces the geometry with l. Sizes, offsets and blur are clamped
// back inside the limits and rendered offsets are recomputed. Controller
// states are reset to idle.
func (e *Engine) Restore(l Layout) {
	for i := range e.controllers {
		e.controllers[i] = Controller{Size: l.Controllers[i].Size, Offset: l.Controllers[i].Offset}
		e.circles[i].Size = l.Circles[i].Size
		e.circles[i].Blur = l.Circles[i].Blur
	}
	e.controllers[0].Offset = Vec{}
	e.circles[0].Blur = 0
	e.controllers[0].Size = clamp(e.controllers[0].Size, e.limits.ControllerMin[0], e.limits.ControllerMax1)
	e.circles[0].Size = clamp(e.circles[0].Size, e.limits.CircleMin[0], e.limits.CircleMax1)
	for i := 1; i < 3; i++ {
		e.circles[i].Blur = clamp(e.circles[i].Blur, 0, e.limits.MaxBlur)
	}
	e.grab = Vec{}
	e.enforce()
	e.propagate()
}

// enforce clamps nested sizes and offsets so every child fits inside its
// parent.
func (e *Engine) enforce() {
	for i := 1; i < 3; i++ {
		e.controllers[i].Size = clamp(e.controllers[i].Size, e.limits.ControllerMin[i], e.controllerMax(i))
		e.circles[i].Size = clamp(e.circles[i].Size, e.limits.CircleMin[i], e.circleMax(i))
	}
	for _, t := range []Target{CircleTwo, CircleThree} {
		i := t.index()
		e.controllers[i].Offset = RadialClamp(e.controllers[i].Offset, e.maxDistance(t))
	}
}

// propagate derives rendered offsets from controller offsets. Circle three's
// rendered offset is the sum of both controller offsets scaled by circle
// one's ratio.
func (e *Engine) propagate() {
	scale := 0.0
	if e.controllers[0].Size != 0 {
		scale = e.circles[0].Size / e.controllers[0].Size
	}
	e.circles[0].Offset = Vec{}
	e.circles[1].Offset = e.controllers[1].Offset.Scale(scale)
	e.circles[2].Offset = e.controllers[1].Offset.Add(e.controllers[2].Offset).Scale(scale)
}

func (e *Engine) selectOnly(t Target, s State) {
	for i := range e.controllers {
		e.controllers[i].State = Idle
	}
	e.controllers[t.index()].State = s
}

// absoluteController returns t's controller centre relative to the cluster
// centre.
func (e *Engine) absoluteController(t Target) Vec {
	switch t {
	case CircleTwo:
		return e.controllers[1].Offset
	case CircleThree:
		return e.controllers[1].Offset.Add(e.controllers[2].Offset)
	default:
		return Vec{}
	}
}

func (e *Engine) maxDistance(t Target) float64 {
	i := t.index()
	parent := e.controllers[i-1].Size
	child := e.controllers[i].Size
	return math.Max(0, parent/2-child/2-e.limits.DragMargin)
}

func (e *Engine) controllerMax(i int) float64 {
	if i == 0 {
		return e.limits.ControllerMax1
	}
	return e.controllers[i-1].Size - e.limits.NestMargin
}

func (e *Engine) circleMax(i int) float64 {
	if i == 0 {
		return e.limits.CircleMax1
	}
	return e.circles[i-1].Size - e.limits.CircleNestMargin
}
