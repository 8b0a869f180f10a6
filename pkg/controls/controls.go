// Package controls holds the user-adjustable render settings and the pure
// actions the interactive hosts apply to them.
package controls

import (
	"fmt"
	"strconv"

	"github.com/df07/go-lensing-renderer/pkg/physics"
)

const (
	MinMassSolar = 1e-3
	MassFactor   = 2.0 // StepMass multiplies or divides by this

	ExposureStep = 0.1

	MinQuality  = 1.0
	MaxQuality  = 4.0
	QualityStep = 0.25
)

// Settings are the host-owned inputs that are not camera state
type Settings struct {
	physics.Parameters
	Quality float64 `json:"quality"` // Supersampling divisor, >= 1
}

// DefaultSettings returns the settings the application starts with
func DefaultSettings() Settings {
	return Settings{
		Parameters: physics.DefaultParameters(),
		Quality:    MinQuality,
	}
}

// QualityFromSlider converts a quality slider position to the divisor.
// The slider value is the divisor: the reciprocal round trip between slider
// and shader cancels out.
func QualityFromSlider(v float64) float64 {
	if !(v >= MinQuality) {
		return MinQuality
	}
	return v
}

// StepMass doubles (dir > 0) or halves (dir < 0) the mass
func (s Settings) StepMass(dir int) Settings {
	switch {
	case dir > 0:
		s.MassSolar *= MassFactor
	case dir < 0:
		s.MassSolar /= MassFactor
	}
	s.MassSolar = max(s.MassSolar, MinMassSolar)
	return s
}

// StepExposure raises or lowers the exposure by ExposureStep, never below zero
func (s Settings) StepExposure(dir int) Settings {
	switch {
	case dir > 0:
		s.Exposure += ExposureStep
	case dir < 0:
		s.Exposure -= ExposureStep
	}
	s.Exposure = max(s.Exposure, 0)
	return s
}

// StepQuality raises or lowers the divisor by QualityStep within [1, 4]
func (s Settings) StepQuality(dir int) Settings {
	switch {
	case dir > 0:
		s.Quality += QualityStep
	case dir < 0:
		s.Quality -= QualityStep
	}
	s.Quality = min(max(s.Quality, MinQuality), MaxQuality)
	return s
}

// ToggleDisk flips accretion disk visibility
func (s Settings) ToggleDisk() Settings {
	s.ShowDisk = !s.ShowDisk
	return s
}

// Validate reports settings the renderer would reject
func (s Settings) Validate() error {
	if !(s.MassSolar > 0) {
		return fmt.Errorf("mass must be positive, got %g", s.MassSolar)
	}
	if !(s.Exposure >= 0) {
		return fmt.Errorf("exposure must be non-negative, got %g", s.Exposure)
	}
	if !(s.Quality >= MinQuality) {
		return fmt.Errorf("quality must be at least %g, got %g", MinQuality, s.Quality)
	}
	return nil
}

// MassLabel formats the mass the way the slider readout shows it
func (s Settings) MassLabel() string {
	return strconv.FormatFloat(s.MassSolar, 'g', -1, 64)
}

// QualityLabel formats the quality divisor, e.g. "1.50x"
func (s Settings) QualityLabel() string {
	return fmt.Sprintf("%.2fx", s.Quality)
}

// ExposureLabel formats the exposure, e.g. "1.20"
func (s Settings) ExposureLabel() string {
	return fmt.Sprintf("%.2f", s.Exposure)
}

// Readout is the set of display strings derived from the settings
type Readout struct {
	Mass     string `json:"mass"`
	Quality  string `json:"quality"`
	Exposure string `json:"exposure"`
	Radius   string `json:"radius"`
}

// Readout returns every display string at once
func (s Settings) Readout() Readout {
	return Readout{
		Mass:     s.MassLabel(),
		Quality:  s.QualityLabel(),
		Exposure: s.ExposureLabel(),
		Radius:   s.RadiusLabel(),
	}
}
