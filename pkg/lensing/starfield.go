package lensing

import (
	"math"

	"github.com/df07/go-lensing-renderer/pkg/core"
)

const (
	starTiling    = 200.0 // Lattice cells across the unit sphere-uv square
	starThreshold = 0.995 // Noise level where stars begin to appear
)

var (
	starColor = core.NewVec3(0.60, 0.72, 1.0)
	bandColor = core.NewVec3(0.03, 0.04, 0.06)
)

// Hash returns a deterministic pseudo-random value in [0, 1) for a lattice point
func Hash(x, y float64) float64 {
	return core.Fract(math.Sin(x*41.3+y*289.1) * 43758.5453123)
}

// ValueNoise evaluates 2D value noise: hashed lattice corners blended with a
// smoothstep-weighted bilinear interpolation. Output lies in [0, 1].
func ValueNoise(x, y float64) float64 {
	ix, iy := math.Floor(x), math.Floor(y)
	fx, fy := x-ix, y-iy

	a := Hash(ix, iy)
	b := Hash(ix+1, iy)
	c := Hash(ix, iy+1)
	d := Hash(ix+1, iy+1)

	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)

	return core.Mix(a, b, ux) + (c-a)*uy*(1-ux) + (d-b)*ux*uy
}

// SphereUV maps a unit direction to equirectangular coordinates in [0, 1]²
func SphereUV(dir core.Vec3) core.Vec2 {
	u := math.Atan2(dir.Z, dir.X)/(2*math.Pi) + 0.5
	v := math.Asin(core.Clamp(dir.Y, -1, 1))/math.Pi + 0.5
	return core.NewVec2(u, v)
}

// Starfield returns the linear background radiance seen along dir at time t:
// sparse twinkling stars plus a faint band that brightens toward the equator.
func Starfield(dir core.Vec3, t float64) core.Vec3 {
	uv := SphereUV(dir)
	n := ValueNoise(uv.X*starTiling, uv.Y*starTiling)

	s := core.Smoothstep(starThreshold, 1.0, n)
	twinkle := 0.5 + 0.5*math.Sin(t*2.0+n*20.0)
	col := starColor.Multiply(s * twinkle)

	band := math.Pow(math.Abs(dir.Y), 0.8)
	return col.Add(bandColor.Multiply(1.0 - band))
}
