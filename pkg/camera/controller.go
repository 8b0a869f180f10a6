package camera

import (
	"sync"
)

// Controller owns the camera state between frames and applies gesture deltas.
// Renderers never mutate the camera; they read a State snapshot per frame.
type Controller struct {
	mu    *sync.Mutex
	state State

	// Gesture sensitivities
	dragSensitivity  float64 // radians per pixel of drag
	pinchSensitivity float64 // zoom units per pixel of pinch distance change
	wheelStep        float64 // zoom units per wheel notch
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithDragSensitivity overrides the radians-per-pixel drag factor
func WithDragSensitivity(s float64) ControllerOption {
	return func(c *Controller) { c.dragSensitivity = s }
}

// WithInitialState starts the controller from s instead of the defaults
func WithInitialState(s State) ControllerOption {
	return func(c *Controller) { c.state = s.Clamped() }
}

// NewController creates a controller at the default camera state
func NewController(options ...ControllerOption) *Controller {
	c := &Controller{
		mu:               &sync.Mutex{},
		state:            DefaultState(),
		dragSensitivity:  0.005,
		pinchSensitivity: 0.01,
		wheelStep:        0.1,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// State returns a snapshot of the current camera
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Drag rotates the camera by a pointer displacement in pixels.
// Yaw is unbounded; pitch is clamped.
func (c *Controller) Drag(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Yaw += dx * c.dragSensitivity
	c.state.Pitch += dy * c.dragSensitivity
	c.state = c.state.Clamped()
}

// Pinch zooms by the change in distance between two touch points.
// Spreading the fingers (positive delta) moves the camera closer.
func (c *Controller) Pinch(distanceDelta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Zoom -= distanceDelta * c.pinchSensitivity
	c.state = c.state.Clamped()
}

// Wheel zooms one fixed step per event. Positive deltaY (scrolling down)
// moves the camera away; only the sign of deltaY matters.
func (c *Controller) Wheel(deltaY float64) {
	if deltaY == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if deltaY > 0 {
		c.state.Zoom += c.wheelStep
	} else {
		c.state.Zoom -= c.wheelStep
	}
	c.state = c.state.Clamped()
}

// Set replaces the state, clamping it into range
func (c *Controller) Set(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s.Clamped()
}

// Reset restores the default camera
func (c *Controller) Reset() {
	c.Set(DefaultState())
}
