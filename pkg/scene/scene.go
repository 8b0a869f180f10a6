package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-lensing-renderer/pkg/camera"
	"github.com/df07/go-lensing-renderer/pkg/lensing"
	"github.com/df07/go-lensing-renderer/pkg/physics"
)

// SceneFileExt is the extension of user scene files in the scenes directory
const SceneFileExt = ".scene"

// Scene is a named starting point for a render: the physical parameters, the
// camera, and the output resolution
type Scene struct {
	Name        string // Identifier used by NewScene
	DisplayName string
	Description string
	Parameters  physics.Parameters
	Camera      camera.State
	Width       int
	Height      int
	Quality     float64
}

// Uniforms returns the frame snapshot for this scene at scene time t
func (s *Scene) Uniforms(t float64) lensing.Uniforms {
	return lensing.NewUniforms(s.Width, s.Height, t, s.Parameters, s.Quality, s.Camera)
}

// Validate checks the scene against the renderer's input contract
func (s *Scene) Validate() error {
	if !(s.Parameters.MassSolar > 0) {
		return fmt.Errorf("scene %q: mass must be positive, got %g", s.Name, s.Parameters.MassSolar)
	}
	if !(s.Parameters.Exposure >= 0) {
		return fmt.Errorf("scene %q: exposure must be non-negative, got %g", s.Name, s.Parameters.Exposure)
	}
	if !(s.Quality >= 1) {
		return fmt.Errorf("scene %q: quality must be at least 1, got %g", s.Name, s.Quality)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("scene %q: resolution must be positive, got %dx%d", s.Name, s.Width, s.Height)
	}
	return nil
}

// NewScene creates a scene by built-in name, scene file path, or the name of
// a file in the scenes directory
func NewScene(name string) (*Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("scene name is empty")
	}

	if create, ok := builtInScenes[name]; ok {
		return create(), nil
	}

	if strings.HasSuffix(name, SceneFileExt) {
		return LoadSceneFile(name)
	}

	// Fall back to a scene file of that name
	trimmed := strings.TrimPrefix(name, fileIDPrefix)
	for _, dir := range scenesDirs {
		path := filepath.Join(dir, trimmed+SceneFileExt)
		if _, err := os.Stat(path); err == nil {
			return LoadSceneFile(path)
		}
	}

	return nil, fmt.Errorf("unknown scene: %s", name)
}
