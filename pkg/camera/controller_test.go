package camera

import (
	"math"
	"sync"
	"testing"
)

func TestController_Defaults(t *testing.T) {
	c := NewController()
	if c.State() != DefaultState() {
		t.Errorf("Expected default state %+v, got %+v", DefaultState(), c.State())
	}
}

func TestController_Drag(t *testing.T) {
	c := NewController()
	c.Drag(100, 40)

	s := c.State()
	if math.Abs(s.Yaw-0.5) > 1e-12 {
		t.Errorf("Expected yaw 0.5, got %v", s.Yaw)
	}
	if math.Abs(s.Pitch-0.2) > 1e-12 {
		t.Errorf("Expected pitch 0.2, got %v", s.Pitch)
	}

	// Pitch clamps, yaw does not
	c.Drag(10000, 10000)
	s = c.State()
	if s.Pitch != MaxPitch {
		t.Errorf("Expected pitch clamped to %v, got %v", MaxPitch, s.Pitch)
	}
	if s.Yaw < 50 {
		t.Errorf("Expected yaw to keep accumulating, got %v", s.Yaw)
	}

	c.Drag(0, -100000)
	if c.State().Pitch != MinPitch {
		t.Errorf("Expected pitch clamped to %v, got %v", MinPitch, c.State().Pitch)
	}
}

func TestController_Zoom(t *testing.T) {
	tests := []struct {
		name     string
		apply    func(c *Controller)
		expected float64
	}{
		{"wheel down moves away", func(c *Controller) { c.Wheel(120) }, 3.3},
		{"wheel up moves closer", func(c *Controller) { c.Wheel(-3) }, 3.1},
		{"zero wheel is ignored", func(c *Controller) { c.Wheel(0) }, 3.2},
		{"pinch spread moves closer", func(c *Controller) { c.Pinch(50) }, 2.7},
		{"pinch clamps at min", func(c *Controller) { c.Pinch(10000) }, MinZoom},
		{"wheel clamps at max", func(c *Controller) {
			for i := 0; i < 100; i++ {
				c.Wheel(1)
			}
		}, MaxZoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			tt.apply(c)
			if got := c.State().Zoom; math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected zoom %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestController_ResetAndOptions(t *testing.T) {
	c := NewController(WithInitialState(State{Yaw: 1, Pitch: 5, Zoom: 0}), WithDragSensitivity(0.01))
	s := c.State()
	if s.Pitch != MaxPitch || s.Zoom != MinZoom {
		t.Errorf("Expected initial state clamped, got %+v", s)
	}

	c.Drag(10, 0)
	if math.Abs(c.State().Yaw-1.1) > 1e-12 {
		t.Errorf("Expected custom sensitivity to give yaw 1.1, got %v", c.State().Yaw)
	}

	c.Reset()
	if c.State() != DefaultState() {
		t.Errorf("Expected reset to defaults, got %+v", c.State())
	}
}

func TestController_ConcurrentGestures(t *testing.T) {
	c := NewController()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Drag(1, 0)
		}()
		go func() {
			defer wg.Done()
			_ = c.State()
		}()
	}
	wg.Wait()

	if math.Abs(c.State().Yaw-0.25) > 1e-9 {
		t.Errorf("Expected 50 drags of 1px to give yaw 0.25, got %v", c.State().Yaw)
	}
}
