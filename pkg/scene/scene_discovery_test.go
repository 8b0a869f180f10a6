package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-lensing-renderer/pkg/camera"
)

// writeSceneFile creates a scene file in a temporary directory
func writeSceneFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}
	return path
}

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"sgr-a-closeup", "Sgr A Closeup"},
		{"bare_lens", "Bare Lens"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.scene",
			content: `# Scene: Sagittarius A*
# Variant: Close-up
# Description: Galactic center from close orbit
# Group: Supermassive

MASS_SOLAR=4.3e6`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Sagittarius A*",
				DisplayName: "Sagittarius A* - Close-up",
				Description: "Galactic center from close orbit",
				Group:       "Supermassive",
				Type:        "file",
				Variant:     "Close-up",
			},
		},
		{
			name: "partial_metadata.scene",
			content: `# Scene: Lens
# Description: Disk hidden

SHOW_DISK=false`,
			expected: SceneInfo{
				ID:          "file:partial_metadata",
				Name:        "Lens",
				DisplayName: "Lens",
				Description: "Disk hidden",
				Group:       fileGroupName,
				Type:        "file",
			},
		},
		{
			name:    "no_metadata.scene",
			content: `MASS_SOLAR=2`,
			expected: SceneInfo{
				ID:          "file:no_metadata",
				Name:        "No Metadata", // From filename
				DisplayName: "No Metadata",
				Group:       fileGroupName,
				Type:        "file",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, tc.name, tc.content)

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_InvalidFile(t *testing.T) {
	// Missing files fall back to filename-derived values
	info, err := ParseSceneMetadata("nonexistent.scene")
	if err != nil {
		t.Errorf("ParseSceneMetadata() should handle missing files gracefully: %v", err)
	}
	if info.DisplayName != "Nonexistent" {
		t.Errorf("Expected fallback display name, got %q", info.DisplayName)
	}
}

func TestLoadSceneFile(t *testing.T) {
	path := writeSceneFile(t, "closeup.scene", `# Scene: Close-up
# Description: Near orbit

MASS_SOLAR=4.3e6
EXPOSURE=1.4
SHOW_DISK=false
YAW=0.6
PITCH=3.0
ZOOM=1.6
WIDTH=320
HEIGHT=240
QUALITY=2
`)

	s, err := LoadSceneFile(path)
	if err != nil {
		t.Fatalf("LoadSceneFile() error: %v", err)
	}

	if s.Name != "file:closeup" || s.DisplayName != "Close-up" || s.Description != "Near orbit" {
		t.Errorf("Unexpected metadata: %q %q %q", s.Name, s.DisplayName, s.Description)
	}
	if s.Parameters.MassSolar != 4.3e6 || s.Parameters.Exposure != 1.4 || s.Parameters.ShowDisk {
		t.Errorf("Unexpected parameters: %+v", s.Parameters)
	}
	if s.Camera.Yaw != 0.6 || s.Camera.Zoom != 1.6 {
		t.Errorf("Unexpected camera: %+v", s.Camera)
	}
	if s.Camera.Pitch != camera.MaxPitch {
		t.Errorf("Expected pitch clamped to %g, got %g", camera.MaxPitch, s.Camera.Pitch)
	}
	if s.Width != 320 || s.Height != 240 || s.Quality != 2 {
		t.Errorf("Unexpected output settings: %dx%d q=%g", s.Width, s.Height, s.Quality)
	}

	// Loading by path goes through NewScene too
	viaNew, err := NewScene(path)
	if err != nil {
		t.Fatalf("NewScene(%q) error: %v", path, err)
	}
	if *viaNew != *s {
		t.Errorf("Expected NewScene to match LoadSceneFile")
	}
}

func TestLoadSceneFile_Defaults(t *testing.T) {
	path := writeSceneFile(t, "mass-only.scene", "MASS_SOLAR=50\n")

	s, err := LoadSceneFile(path)
	if err != nil {
		t.Fatalf("LoadSceneFile() error: %v", err)
	}

	def := NewDefaultScene()
	if s.Parameters.MassSolar != 50 {
		t.Errorf("Expected mass 50, got %g", s.Parameters.MassSolar)
	}
	if s.Camera != def.Camera || s.Width != def.Width || s.Parameters.Exposure != def.Parameters.Exposure {
		t.Errorf("Expected unspecified keys to keep defaults, got %+v", s)
	}
}

func TestLoadSceneFile_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad_float.scene", "MASS_SOLAR=heavy\n", "invalid MASS_SOLAR"},
		{"bad_int.scene", "WIDTH=wide\n", "invalid WIDTH"},
		{"bad_bool.scene", "SHOW_DISK=maybe\n", "invalid SHOW_DISK"},
		{"unknown_key.scene", "SPIN=0.9\n", "unknown key SPIN"},
		{"zero_mass.scene", "MASS_SOLAR=0\n", "mass must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, tc.name, tc.content)
			s, err := LoadSceneFile(path)
			if err == nil {
				t.Fatalf("Expected error, got scene %+v", s)
			}
			if !strings.Contains(err.Error(), tc.errPart) {
				t.Errorf("Expected error containing %q, got %v", tc.errPart, err)
			}
		})
	}

	if _, err := LoadSceneFile(filepath.Join(t.TempDir(), "missing.scene")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestListFileScenes(t *testing.T) {
	scenes, err := ListFileScenes()
	if err != nil {
		t.Errorf("ListFileScenes() error: %v", err)
	}

	// Should return empty list or found scenes - both are valid
	if scenes == nil {
		t.Error("ListFileScenes() returned nil, expected empty slice")
	}
}

func TestListAllScenes(t *testing.T) {
	response, err := ListAllScenes()
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	if len(response.Groups) == 0 || response.Groups[0].Name != builtInGroupName {
		t.Fatalf("Expected built-in group first, got %+v", response.Groups)
	}

	builtIn := response.Groups[0].Scenes
	if len(builtIn) != len(builtInOrder) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtIn), len(builtInOrder))
	}
	for i, id := range builtInOrder {
		if i < len(builtIn) && builtIn[i].ID != id {
			t.Errorf("Built-in scene %d = %s, want %s", i, builtIn[i].ID, id)
		}
	}

	for _, group := range response.Groups {
		for _, s := range group.Scenes {
			if s.ID == "" || s.DisplayName == "" {
				t.Errorf("Found scene with empty ID or DisplayName: %+v", s)
			}
			if s.Type == "file" && !strings.HasPrefix(s.ID, fileIDPrefix) {
				t.Errorf("File scene ID should start with %q: %s", fileIDPrefix, s.ID)
			}
		}
	}
}
