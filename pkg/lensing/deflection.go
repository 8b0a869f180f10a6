package lensing

import (
	"math"

	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/physics"
)

const (
	// ImpactEpsilon keeps the impact parameter away from zero for rays aimed at the hole
	ImpactEpsilon = 1e-6
	// MaxDeflection bounds the bending angle in radians
	MaxDeflection = 1.2
)

// Deflection describes how a single ray is bent by the central mass
type Deflection struct {
	ImpactParameter float64   // Closest approach to the hole in scene units, epsilon included
	ImpactMeters    float64   // ImpactParameter in meters
	Alpha           float64   // Applied deflection angle in radians, after falloff
	Toward          core.Vec3 // Unit vector from the ray's closest point toward the hole (zero when the ray hits it dead-center)
	Bent            core.Vec3 // Bent unit direction
}

// Deflect bends a ray toward the black hole at the scene origin using a
// single-step weak-field approximation.
func Deflect(ray core.Ray, massKg float64) Deflection {
	d := ray.Direction
	oc := ray.Origin.Negate()
	closest := oc.Subtract(d.Multiply(oc.Dot(d)))
	b := closest.Length() + ImpactEpsilon

	alpha := DeflectionAngle(b, physics.SchwarzschildRadius(massKg))

	toward := closest.Normalize()
	bent := d.Multiply(math.Cos(alpha)).Subtract(toward.Multiply(math.Sin(alpha))).Normalize()

	return Deflection{
		ImpactParameter: b,
		ImpactMeters:    b * physics.SceneUnitMeters,
		Alpha:           alpha,
		Toward:          toward,
		Bent:            bent,
	}
}

// DeflectionAngle returns the bending angle for an impact parameter b (scene
// units) around a hole of Schwarzschild radius rs (meters). The weak-field term
// 2·Rs/b is clamped to MaxDeflection, then suppressed by 1/(1+(2b)²) so rays
// that pass far from the hole stay visually straight.
func DeflectionAngle(b, rs float64) float64 {
	bMeters := b * physics.SceneUnitMeters
	alpha := core.Clamp(2.0*rs/math.Max(bMeters, 1.0), 0, MaxDeflection)
	falloff := 1.0 / (1.0 + (2*b)*(2*b))
	return alpha * falloff
}
