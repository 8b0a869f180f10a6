// Package physics holds the physical constants and unit conversions shared by
// the lensing kernel and the host's display labels. Both sides must derive the
// Schwarzschild radius from the same constants so the on-screen label matches
// the rendered geometry.
package physics

import "fmt"

const (
	// G is the Newtonian gravitational constant in m^3 kg^-1 s^-2
	G = 6.67430e-11
	// C is the speed of light in m/s
	C = 299792458.0
	// SolarMass is one solar mass in kg
	SolarMass = 1.98847e30
	// SceneUnitMeters ties one rendering unit to physical distance
	SceneUnitMeters = 1.0e7
)

// MassKg converts a mass in solar masses to kilograms
func MassKg(massSolar float64) float64 {
	return massSolar * SolarMass
}

// SchwarzschildRadius returns Rs = 2GM/c² in meters for a mass in kg
func SchwarzschildRadius(massKg float64) float64 {
	return 2.0 * G * massKg / (C * C)
}

// SchwarzschildRadiusScene returns the Schwarzschild radius in scene units
func SchwarzschildRadiusScene(massKg float64) float64 {
	return SchwarzschildRadius(massKg) / SceneUnitMeters
}

// FormatRadius renders a radius in meters the way the control surface shows it:
// kilometers with one decimal above 1e6 m, meters with two decimals otherwise.
func FormatRadius(rsMeters float64) string {
	if rsMeters > 1e6 {
		return fmt.Sprintf("%.1f km", rsMeters/1000)
	}
	return fmt.Sprintf("%.2f m", rsMeters)
}

// Parameters are the host-owned physical inputs of a render
type Parameters struct {
	MassSolar float64 `json:"massSolar"` // Black-hole mass in solar masses (> 0)
	Exposure  float64 `json:"exposure"`  // Tone-mapping exposure (>= 0)
	ShowDisk  bool    `json:"showDisk"`  // Whether the accretion disk is composited
}

// DefaultParameters returns the parameters the application starts with
func DefaultParameters() Parameters {
	return Parameters{
		MassSolar: 1,
		Exposure:  1.2,
		ShowDisk:  true,
	}
}

// MassKg returns the mass in kilograms
func (p Parameters) MassKg() float64 {
	return MassKg(p.MassSolar)
}

// SchwarzschildRadius returns the horizon radius in meters for these parameters
func (p Parameters) SchwarzschildRadius() float64 {
	return SchwarzschildRadius(p.MassKg())
}

// RadiusLabel returns the display string for the Schwarzschild radius
func (p Parameters) RadiusLabel() string {
	return FormatRadius(p.SchwarzschildRadius())
}
