package camera

import (
	"math"

	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	MinPitch    = -1.2
	MaxPitch    = 1.2
	MinZoom     = 1.2
	MaxZoom     = 8.0
	DefaultZoom = 3.2

	// ForwardZ skews the fixed forward vector toward the screen plane and acts
	// as the field of view: uv ±1 maps to about ±40 degrees.
	ForwardZ = -1.2
)

// State is the orbit camera: yaw and pitch in radians, zoom as the distance
// from the black hole at the scene origin.
type State struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Zoom  float64 `json:"zoom"`
}

// DefaultState returns the camera the application starts (and resets) with
func DefaultState() State {
	return State{Yaw: 0, Pitch: 0, Zoom: DefaultZoom}
}

// Clamped returns the state with pitch and zoom forced into their ranges
func (s State) Clamped() State {
	return State{
		Yaw:   s.Yaw,
		Pitch: core.Clamp(s.Pitch, MinPitch, MaxPitch),
		Zoom:  core.Clamp(s.Zoom, MinZoom, MaxZoom),
	}
}

// Orientation composes the yaw rotation about the vertical axis with the pitch
// rotation about the horizontal axis: RX(pitch) * RY(yaw).
func Orientation(yaw, pitch float64) mgl64.Mat3 {
	return mgl64.Rotate3DX(pitch).Mul3(mgl64.Rotate3DY(yaw))
}

// NDC maps a fragment coordinate (pixel centers at +0.5, y growing upward) to
// aspect-preserving normalized device coordinates. The quality divisor shrinks
// both the coordinate and the resolution, so it only decides how many
// fragments are evaluated, never where they land.
func NDC(fragX, fragY float64, width, height int, quality float64) core.Vec2 {
	q := math.Max(quality, 1)
	rx := float64(width) / q
	ry := float64(height) / q
	if ry < 1e-9 {
		ry = 1e-9
	}
	return core.Vec2{
		X: (fragX/q - 0.5*rx) / ry,
		Y: (fragY/q - 0.5*ry) / ry,
	}
}

// RayGenerator turns fragment coordinates into scene-space rays for one frame.
// It is immutable after construction and safe to share between goroutines.
type RayGenerator struct {
	width, height int
	quality       float64
	basis         mgl64.Mat3
	origin        core.Vec3
}

// NewRayGenerator precomputes the camera basis for a frame
func NewRayGenerator(width, height int, quality float64, state State) *RayGenerator {
	state = state.Clamped()
	basis := Orientation(state.Yaw, state.Pitch)

	// The camera sits on its own backward axis, so every view looks at the hole.
	back := basis.Mul3x1(mgl64.Vec3{0, 0, state.Zoom})

	return &RayGenerator{
		width:   width,
		height:  height,
		quality: quality,
		basis:   basis,
		origin:  core.NewVec3(back[0], back[1], back[2]),
	}
}

// Origin returns the camera position in scene units
func (g *RayGenerator) Origin() core.Vec3 {
	return g.origin
}

// GetRay returns the ray through a fragment together with its NDC position
func (g *RayGenerator) GetRay(fragX, fragY float64) (core.Ray, core.Vec2) {
	uv := NDC(fragX, fragY, g.width, g.height, g.quality)
	return core.NewRay(g.origin, g.Direction(uv)), uv
}

// Direction returns the unit scene-space direction for an NDC position
func (g *RayGenerator) Direction(uv core.Vec2) core.Vec3 {
	local := mgl64.Vec3{uv.X, uv.Y, ForwardZ}.Normalize()
	d := g.basis.Mul3x1(local).Normalize()
	return core.NewVec3(d[0], d[1], d[2])
}

// GenerateRay is the single-shot form of RayGenerator.GetRay
func GenerateRay(fragX, fragY float64, width, height int, quality float64, state State) core.Ray {
	ray, _ := NewRayGenerator(width, height, quality, state).GetRay(fragX, fragY)
	return ray
}
