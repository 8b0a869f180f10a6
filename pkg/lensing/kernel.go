// Package lensing implements the per-pixel black-hole lensing kernel: a single
// deflection toward the central mass, a procedural starfield sampled along the
// bent ray, an optional accretion disk, and exponential tone mapping.
//
// The kernel is a pure function of the frame Uniforms and a fragment
// coordinate. It has no shared mutable state, so any number of goroutines may
// shade pixels of the same frame concurrently.
package lensing

import (
	"math"

	"github.com/df07/go-lensing-renderer/pkg/camera"
	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/physics"
)

// Uniforms is the immutable per-frame snapshot consumed by the kernel
type Uniforms struct {
	Width    int          `json:"width"`    // Display resolution in pixels
	Height   int          `json:"height"`   // Display resolution in pixels
	Time     float64      `json:"time"`     // Elapsed seconds, drives the twinkle phase only
	MassKg   float64      `json:"massKg"`   // Black-hole mass in kilograms
	Exposure float64      `json:"exposure"` // Tone-mapping exposure
	Quality  float64      `json:"quality"`  // Supersampling divisor, >= 1
	Camera   camera.State `json:"camera"`   // Orbit camera snapshot
	ShowDisk bool         `json:"showDisk"` // Composite the accretion disk
}

// NewUniforms assembles a frame snapshot from host-owned parameters
func NewUniforms(width, height int, t float64, params physics.Parameters, quality float64, cam camera.State) Uniforms {
	return Uniforms{
		Width:    width,
		Height:   height,
		Time:     t,
		MassKg:   params.MassKg(),
		Exposure: params.Exposure,
		Quality:  quality,
		Camera:   cam,
		ShowDisk: params.ShowDisk,
	}
}

// Sanitized returns a copy with every field forced into its contract range.
// It never fails: out-of-range values are clamped, NaN becomes the lower bound.
func (u Uniforms) Sanitized() Uniforms {
	u.Width = max(u.Width, 1)
	u.Height = max(u.Height, 1)
	u.Time = core.Clamp(u.Time, 0, math.MaxFloat64)
	u.MassKg = core.Clamp(u.MassKg, 0, math.MaxFloat64)
	u.Exposure = core.Clamp(u.Exposure, 0, math.MaxFloat64)
	u.Quality = core.Clamp(u.Quality, 1, math.MaxFloat64)
	u.Camera = u.Camera.Clamped()
	return u
}

// SchwarzschildRadius returns the horizon radius in meters for the frame's mass
func (u Uniforms) SchwarzschildRadius() float64 {
	return physics.SchwarzschildRadius(u.MassKg)
}

// Sample is the full trace of one fragment, kept for inspection and tests
type Sample struct {
	UV         core.Vec2
	Ray        core.Ray
	Deflection Deflection
	Background core.Vec3 // Starfield radiance along the bent ray
	Disk       DiskHit   // Zero value (DiskMiss) when the disk is hidden
	Linear     core.Vec3 // Radiance after disk and glow, before tone mapping
	Color      core.Vec3 // Display color in [0, 1]
}

// Kernel shades fragments for one frame
type Kernel struct {
	uniforms  Uniforms
	generator *camera.RayGenerator
}

// NewKernel prepares the per-frame state shared by every pixel
func NewKernel(u Uniforms) *Kernel {
	u = u.Sanitized()
	return &Kernel{
		uniforms:  u,
		generator: camera.NewRayGenerator(u.Width, u.Height, u.Quality, u.Camera),
	}
}

// Uniforms returns the sanitized snapshot the kernel renders
func (k *Kernel) Uniforms() Uniforms {
	return k.uniforms
}

// Shade returns the display color of a fragment
func (k *Kernel) Shade(fragX, fragY float64) core.Vec3 {
	return k.Trace(fragX, fragY).Color
}

// Trace shades a fragment and returns every intermediate value
func (k *Kernel) Trace(fragX, fragY float64) Sample {
	u := k.uniforms
	ray, uv := k.generator.GetRay(fragX, fragY)

	deflection := Deflect(ray, u.MassKg)
	background := Starfield(deflection.Bent, u.Time)

	col := background
	var disk DiskHit
	if u.ShowDisk {
		col, disk = ShadeDisk(ray.Origin, deflection.Bent, u.MassKg, background)
	}

	col = col.Add(Glow(uv))

	return Sample{
		UV:         uv,
		Ray:        ray,
		Deflection: deflection,
		Background: background,
		Disk:       disk,
		Linear:     col,
		Color:      GammaCorrect(ToneMap(col, u.Exposure)),
	}
}

// Shade is the single-shot form of Kernel.Shade
func Shade(u Uniforms, fragX, fragY float64) core.Vec3 {
	return NewKernel(u).Shade(fragX, fragY)
}
