package lensing

import (
	"math"

	"github.com/df07/go-lensing-renderer/pkg/core"
)

// DisplayGamma is the gamma applied after tone mapping
const DisplayGamma = 2.2

var glowColor = core.NewVec3(0.02, 0.03, 0.05)

// ToneMap compresses linear radiance with the exponential operator
// 1 - exp(-color * exposure). Non-negative input maps into [0, 1).
func ToneMap(col core.Vec3, exposure float64) core.Vec3 {
	exposure = math.Max(exposure, 0)
	mapped := core.NewVec3(1, 1, 1).Subtract(col.Multiply(-exposure).Exp())
	return sanitize(mapped)
}

// GammaCorrect converts tone-mapped values to display space
func GammaCorrect(col core.Vec3) core.Vec3 {
	return sanitize(col.Clamp(0, 1).GammaCorrect(DisplayGamma))
}

// Glow is the cosmetic halo added around screen center, a visual guide to
// where the hole sits on screen.
func Glow(uv core.Vec2) core.Vec3 {
	halo := core.Smoothstep(0.45, 0.0, uv.Length())
	return glowColor.Multiply(halo)
}

// sanitize replaces NaN components with zero and clamps into [0, 1]
func sanitize(v core.Vec3) core.Vec3 {
	return core.Vec3{
		X: core.Clamp(v.X, 0, 1),
		Y: core.Clamp(v.Y, 0, 1),
		Z: core.Clamp(v.Z, 0, 1),
	}
}
