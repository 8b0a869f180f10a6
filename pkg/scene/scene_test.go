package scene

import (
	"testing"

	"github.com/df07/go-lensing-renderer/pkg/camera"
	"github.com/df07/go-lensing-renderer/pkg/physics"
)

func TestNewScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneName   string
		expectError bool
	}{
		{"default scene", "default", false},
		{"sgr-a scene", "sgr-a", false},
		{"m87 scene", "m87", false},
		{"stellar scene", "stellar", false},
		{"edge-on scene", "edge-on", false},
		{"unknown scene", "nonexistent", true},
		{"missing scene file", "nonexistent.scene", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScene(tt.sceneName)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene '%s', but got none", tt.sceneName)
				}
				if s != nil {
					t.Errorf("Expected nil scene for '%s', got %+v", tt.sceneName, s)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene '%s': %v", tt.sceneName, err)
			}
			if s.Name != tt.sceneName {
				t.Errorf("Expected scene name %q, got %q", tt.sceneName, s.Name)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Built-in scene '%s' is invalid: %v", tt.sceneName, err)
			}
			if s.Camera != s.Camera.Clamped() {
				t.Errorf("Built-in scene '%s' camera outside limits: %+v", tt.sceneName, s.Camera)
			}
		})
	}
}

func TestSceneValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *Scene)
	}{
		{"zero mass", func(s *Scene) { s.Parameters.MassSolar = 0 }},
		{"negative exposure", func(s *Scene) { s.Parameters.Exposure = -1 }},
		{"quality below one", func(s *Scene) { s.Quality = 0.5 }},
		{"zero width", func(s *Scene) { s.Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDefaultScene()
			tt.modify(s)
			if err := s.Validate(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}

func TestSceneUniforms(t *testing.T) {
	s := NewSagittariusAScene()
	u := s.Uniforms(1.5)

	if u.Width != s.Width || u.Height != s.Height {
		t.Errorf("Expected %dx%d, got %dx%d", s.Width, s.Height, u.Width, u.Height)
	}
	if u.Time != 1.5 {
		t.Errorf("Expected time 1.5, got %g", u.Time)
	}
	if u.MassKg != physics.MassKg(4.3e6) {
		t.Errorf("Expected mass %g kg, got %g", physics.MassKg(4.3e6), u.MassKg)
	}
	if u.Camera != s.Camera || u.ShowDisk != s.Parameters.ShowDisk {
		t.Errorf("Expected camera and disk flag carried over, got %+v", u)
	}
}

func TestDefaultSceneMatchesDefaults(t *testing.T) {
	s := NewDefaultScene()
	if s.Parameters != physics.DefaultParameters() {
		t.Errorf("Expected default parameters, got %+v", s.Parameters)
	}
	if s.Camera != camera.DefaultState() {
		t.Errorf("Expected default camera, got %+v", s.Camera)
	}
}
