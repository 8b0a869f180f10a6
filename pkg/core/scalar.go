package core

import "math"

// Clamp limits x to [lo, hi]. NaN is mapped to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return max(lo, min(hi, x))
}

// Fract returns the fractional part x - floor(x), always in [0, 1)
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Mix linearly interpolates between a and b by t
func Mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Smoothstep performs Hermite interpolation between edge0 and edge1.
// Reversed edges (edge0 > edge1) produce a falling step. Coincident edges
// degrade to a hard step at edge0.
func Smoothstep(edge0, edge1, x float64) float64 {
	d := edge1 - edge0
	if math.Abs(d) < 1e-300 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/d, 0, 1)
	return t * t * (3 - 2*t)
}
