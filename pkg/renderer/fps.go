package renderer

import (
	"sync"
	"time"
)

// DefaultFPSWindow is how long frames are counted before the rate is refreshed
const DefaultFPSWindow = 500 * time.Millisecond

// FPSCounter measures frames per second over fixed windows
type FPSCounter struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	start  time.Time
	frames int
	fps    float64
}

// NewFPSCounter creates a counter that refreshes at least every window
func NewFPSCounter(window time.Duration) *FPSCounter {
	if window <= 0 {
		window = DefaultFPSWindow
	}
	return &FPSCounter{
		window: window,
		now:    time.Now,
	}
}

// Tick records a presented frame. It returns the current rate and whether
// this frame closed a window and refreshed it.
func (f *FPSCounter) Tick() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if f.start.IsZero() {
		f.start = now
	}
	f.frames++

	elapsed := now.Sub(f.start)
	if elapsed < f.window {
		return f.fps, false
	}

	f.fps = float64(f.frames) / elapsed.Seconds()
	f.frames = 0
	f.start = now
	return f.fps, true
}

// FPS returns the rate measured over the last complete window
func (f *FPSCounter) FPS() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fps
}
