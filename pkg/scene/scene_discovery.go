package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Value accepted by Create
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath,omitempty"`
}

var builtinDescriptions = map[string]string{
	"default": "Diffuse, fuzzy metal and hollow glass spheres on a giant ground sphere",
	"book":    "Seeded field of small random spheres around three large ones",
}

// ListFileScenes scans dir for *.json scene files.
// A missing directory yields an empty list; unreadable files are skipped.
func ListFileScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ReadSceneInfo(filePath)
		if err != nil {
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ReadSceneInfo extracts the name and description of a scene file without building it
func ReadSceneInfo(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return SceneInfo{}, err
	}
	cfg, err := decodeConfig(data)
	if err != nil {
		return SceneInfo{}, err
	}

	displayName := cfg.Name
	if displayName == "" {
		displayName = titleCase(nameWithoutExt)
	}

	return SceneInfo{
		ID:          filePath,
		DisplayName: displayName,
		Description: cfg.Description,
		Type:        "file",
		FilePath:    filePath,
	}, nil
}

// ListAllScenes returns the built-in scenes followed by the scene files in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	var all []SceneInfo
	for _, name := range Names() {
		all = append(all, SceneInfo{
			ID:          name,
			DisplayName: titleCase(name),
			Description: builtinDescriptions[name],
			Type:        "builtin",
		})
	}

	files, err := ListFileScenes(dir)
	if err != nil {
		return nil, err
	}
	return append(all, files...), nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-balls" -> "Glass Balls"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
	}

	return strings.Join(words, " ")
}
