package main

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

func TestCreateScene(t *testing.T) {
	dir := t.TempDir()
	sceneFile := filepath.Join(dir, "two-balls.json")
	content := `{"camera": {"center": [0, 1, 3], "lookAt": [0, 0, 0], "vfov": 40},
		"spheres": [
			{"center": [0, -1000, 0], "radius": 1000, "material": {"type": "lambertian", "albedo": "gray"}},
			{"center": [0, 1, 0], "radius": 1, "material": {"type": "glass", "ior": 1.5}}
		]}`
	if err := os.WriteFile(sceneFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"book scene", "book", false},

		// Scene files
		{"json scene file", sceneFile, false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"missing scene file", filepath.Join(dir, "nonexistent.json"), true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := createScene(tt.sceneType)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s', got %T", tt.sceneType, scene)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if scene.RenderConfig.Width <= 0 || scene.RenderConfig.Height <= 0 {
				t.Errorf("Scene render size should be positive, got %dx%d", scene.RenderConfig.Width, scene.RenderConfig.Height)
			}
			if scene.RenderConfig.Samples <= 0 {
				t.Errorf("Scene samples should be positive, got %d", scene.RenderConfig.Samples)
			}
			if scene.GetPrimitiveCount() == 0 {
				t.Error("Scene should contain spheres")
			}
		})
	}
}

func TestResolveSize(t *testing.T) {
	s, err := createScene("default")
	if err != nil {
		t.Fatal(err)
	}

	w, h, n := resolveSize(s, 0, 0, 0)
	if w != 400 || h != 200 || n != 100 {
		t.Errorf("Expected scene defaults 400x200x100, got %dx%dx%d", w, h, n)
	}

	w, h, n = resolveSize(s, 64, 48, 7)
	if w != 64 || h != 48 || n != 7 {
		t.Errorf("Expected flags to win, got %dx%dx%d", w, h, n)
	}
}

func TestSceneOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		sceneType string
		expected  string
	}{
		{"built-in scene", "default", filepath.Join("output", "default")},
		{"scene file", "scenes/glass-balls.json", filepath.Join("output", "glass-balls")},
		{"nested scene file", "scenes/subdir/My-Scene.JSON", filepath.Join("output", "My-Scene")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sceneOutputDir(tt.sceneType); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTimestampedFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	got := timestampedFilename(filepath.Join("output", "book"), ts)
	expected := filepath.Join("output", "book", "render_20240309_140507.png")
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSavePNG(t *testing.T) {
	buffer := renderer.NewBuffer(8, 4)
	filename := filepath.Join(t.TempDir(), "nested", "out.png")

	if err := savePNG(buffer.Image(), filename); err != nil {
		t.Fatalf("savePNG failed: %v", err)
	}

	file, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Saved file is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("Expected 8x4 image, got %v", b)
	}
}

func TestRun_WritesOutput(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "render.png")
	if err := run("default", 16, 8, 2, 2, filename); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if info, err := os.Stat(filename); err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty output file, got %v", err)
	}

	if err := run("nonexistent", 16, 8, 1, 1, filename); err == nil || !strings.Contains(err.Error(), "unknown scene") {
		t.Errorf("Expected unknown scene error, got %v", err)
	}
}
