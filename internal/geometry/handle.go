package geometry

// Draggable is the pointer and wheel surface of a single controller.
type Draggable interface {
	PressStart(pointer Vec) State
	DragMove(pointer Vec)
	Release()
	Scroll(deltaY float64)
}

// Handle binds one controller of an Engine to the Draggable interface.
type Handle struct {
	engine *Engine
	target Target
}

var _ Draggable = (*Handle)(nil)

// Handle returns the Draggable for t.
func (e *Engine) Handle(t Target) *Handle {
	return &Handle{engine: e, target: t}
}

// SelectedHandle returns the Draggable of the active or dragging controller.
// Pointer moves, releases and wheel events go to it.
func (e *Engine) SelectedHandle() (Draggable, bool) {
	t, ok := e.Selected()
	if !ok {
		return nil, false
	}
	return e.Handle(t), true
}

// Target returns the circle this handle controls.
func (h *Handle) Target() Target {
	return h.target
}

// PressStart presses this controller.
func (h *Handle) PressStart(pointer Vec) State {
	return h.engine.Press(h.target, pointer)
}

// DragMove moves this controller if it is being dragged.
func (h *Handle) DragMove(pointer Vec) {
	if h.engine.State(h.target) == Dragging {
		h.engine.Move(pointer)
	}
}

// Release ends a drag on this controller.
func (h *Handle) Release() {
	if h.engine.State(h.target) == Dragging {
		h.engine.controllers[h.target.index()].State = Active
	}
}

// Scroll resizes this controller if it is selected.
func (h *Handle) Scroll(deltaY float64) {
	if h.engine.State(h.target) == Idle {
		return
	}
	h.engine.Wheel(deltaY)
}
