package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	fileIDPrefix     = "file:"
	builtInGroupName = "Built-in Scenes"
	fileGroupName    = "Scene Files"
)

// scenesDirs are the locations searched for scene files, relative to the
// working directory of the CLI and of the web server
var scenesDirs = []string{"scenes", "../scenes"}

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to scene file (file type only)
	Variant     string `json:"variant"`     // Variant name (optional)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// ListFileScenes scans the scenes directory and returns discovered scene files
func ListFileScenes() ([]SceneInfo, error) {
	var scenesDir string
	for _, path := range scenesDirs {
		if _, err := os.Stat(path); err == nil {
			scenesDir = path
			break
		}
	}

	if scenesDir == "" {
		// No scenes directory found, return empty list
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(scenesDir, "*"+SceneFileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Skip unreadable files, keep the rest
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneMetadata extracts metadata from scene file header comments
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:          fileIDPrefix + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       fileGroupName,
		Type:        "file",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		// If we can't read the file, return with fallback values
		return sceneInfo, nil
	}
	defer file.Close()

	// Metadata lives in the leading comment block
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}

		content, ok := strings.CutPrefix(line, "# ")
		if !ok {
			continue
		}

		switch {
		case strings.HasPrefix(content, "Scene:"):
			sceneInfo.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Variant:"):
			sceneInfo.Variant = strings.TrimSpace(strings.TrimPrefix(content, "Variant:"))
		case strings.HasPrefix(content, "Description:"):
			sceneInfo.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case strings.HasPrefix(content, "Group:"):
			sceneInfo.Group = strings.TrimSpace(strings.TrimPrefix(content, "Group:"))
		}
	}

	if sceneInfo.Variant != "" {
		sceneInfo.DisplayName = fmt.Sprintf("%s - %s", sceneInfo.Name, sceneInfo.Variant)
	} else {
		sceneInfo.DisplayName = sceneInfo.Name
	}

	return sceneInfo, scanner.Err()
}

// LoadSceneFile reads a scene file. The body uses .env syntax; keys missing
// from the file keep the default scene's values.
//
//	MASS_SOLAR=4.3e6
//	EXPOSURE=1.2
//	SHOW_DISK=true
//	YAW=0.3
//	PITCH=0.35
//	ZOOM=4
//	WIDTH=800
//	HEIGHT=450
//	QUALITY=1
func LoadSceneFile(filePath string) (*Scene, error) {
	values, err := godotenv.Read(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file %s: %w", filePath, err)
	}

	info, err := ParseSceneMetadata(filePath)
	if err != nil {
		return nil, err
	}

	s := NewDefaultScene()
	s.Name = info.ID
	s.DisplayName = info.DisplayName
	s.Description = info.Description

	floats := map[string]*float64{
		"MASS_SOLAR": &s.Parameters.MassSolar,
		"EXPOSURE":   &s.Parameters.Exposure,
		"YAW":        &s.Camera.Yaw,
		"PITCH":      &s.Camera.Pitch,
		"ZOOM":       &s.Camera.Zoom,
		"QUALITY":    &s.Quality,
	}
	ints := map[string]*int{
		"WIDTH":  &s.Width,
		"HEIGHT": &s.Height,
	}

	for key, raw := range values {
		switch {
		case floats[key] != nil:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("scene file %s: invalid %s %q: %w", filePath, key, raw, err)
			}
			*floats[key] = v
		case ints[key] != nil:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("scene file %s: invalid %s %q: %w", filePath, key, raw, err)
			}
			*ints[key] = v
		case key == "SHOW_DISK":
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("scene file %s: invalid %s %q: %w", filePath, key, raw, err)
			}
			s.Parameters.ShowDisk = v
		default:
			return nil, fmt.Errorf("scene file %s: unknown key %s", filePath, key)
		}
	}

	s.Camera = s.Camera.Clamped()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ListAllScenes returns both built-in and file scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	var allScenes []SceneInfo
	for _, id := range builtInOrder {
		s := builtInScenes[id]()
		allScenes = append(allScenes, SceneInfo{
			ID:          s.Name,
			Name:        s.DisplayName,
			DisplayName: s.DisplayName,
			Description: s.Description,
			Group:       builtInGroupName,
			Type:        "builtin",
		})
	}

	fileScenes, err := ListFileScenes()
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}
	allScenes = append(allScenes, fileScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Create ordered groups (Built-in first, then alphabetical)
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroupName {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtInGroupName,
		Scenes: groupMap[builtInGroupName],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "sgr-a-closeup" -> "Sgr A Closeup"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
