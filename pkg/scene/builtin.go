package scene

import (
	"github.com/df07/go-lensing-renderer/pkg/camera"
	"github.com/df07/go-lensing-renderer/pkg/physics"
)

var builtInScenes = map[string]func() *Scene{
	"default": NewDefaultScene,
	"sgr-a":   NewSagittariusAScene,
	"m87":     NewM87Scene,
	"stellar": NewStellarScene,
	"edge-on": NewEdgeOnScene,
}

// builtInOrder lists the built-in scenes in display order
var builtInOrder = []string{"default", "sgr-a", "m87", "stellar", "edge-on"}

// NewDefaultScene creates the scene the application starts with
func NewDefaultScene() *Scene {
	return &Scene{
		Name:        "default",
		DisplayName: "Default",
		Description: "One solar mass seen from the default orbit",
		Parameters:  physics.DefaultParameters(),
		Camera:      camera.DefaultState(),
		Width:       800,
		Height:      450, // 16:9 aspect ratio
		Quality:     1,
	}
}

// NewSagittariusAScene creates a scene with the mass of Sagittarius A*
func NewSagittariusAScene() *Scene {
	s := NewDefaultScene()
	s.Name = "sgr-a"
	s.DisplayName = "Sagittarius A*"
	s.Description = "The Milky Way's central black hole, 4.3 million solar masses"
	s.Parameters.MassSolar = 4.3e6
	s.Camera = camera.State{Yaw: 0.3, Pitch: 0.35, Zoom: 4.0}
	return s
}

// NewM87Scene creates a scene with the mass of M87*
func NewM87Scene() *Scene {
	s := NewDefaultScene()
	s.Name = "m87"
	s.DisplayName = "M87*"
	s.Description = "The first imaged black hole, 6.5 billion solar masses"
	s.Parameters.MassSolar = 6.5e9
	s.Parameters.Exposure = 1.6
	s.Camera = camera.State{Yaw: -0.4, Pitch: 0.2, Zoom: 6.0}
	return s
}

// NewStellarScene creates a stellar-mass black hole scene
func NewStellarScene() *Scene {
	s := NewDefaultScene()
	s.Name = "stellar"
	s.DisplayName = "Stellar"
	s.Description = "A ten solar mass remnant viewed from above the disk"
	s.Parameters.MassSolar = 10
	s.Camera = camera.State{Yaw: 0, Pitch: 0.9, Zoom: 2.5}
	return s
}

// NewEdgeOnScene creates a scene with the camera grazing the disk plane
func NewEdgeOnScene() *Scene {
	s := NewDefaultScene()
	s.Name = "edge-on"
	s.DisplayName = "Edge-On"
	s.Description = "Default mass with the camera just above the disk plane"
	s.Camera = camera.State{Yaw: 0.8, Pitch: 0.05, Zoom: camera.DefaultZoom}
	return s
}
