package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	Camera       *geometry.Camera
	World        *geometry.HittableList // Flat list of spheres, intersected linearly
	CameraConfig geometry.CameraConfig
	RenderConfig RenderConfig
}

// RenderConfig holds the scene's recommended output settings
type RenderConfig struct {
	Width   int // Image width
	Height  int // Image height
	Samples int // Full-frame passes to accumulate
}

// SetImageSize changes the output resolution and rebuilds the camera for the new aspect ratio
func (s *Scene) SetImageSize(width, height int) {
	s.RenderConfig.Width = width
	s.RenderConfig.Height = height
	s.CameraConfig.AspectRatio = float32(width) / float32(height)
	s.Camera = geometry.NewCamera(s.CameraConfig)
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// newScene assembles a scene and derives its camera
func newScene(name string, cameraConfig geometry.CameraConfig, renderConfig RenderConfig, world *geometry.HittableList) *Scene {
	if cameraConfig.AspectRatio <= 0 {
		cameraConfig.AspectRatio = float32(renderConfig.Width) / float32(renderConfig.Height)
	}
	return &Scene{
		Name:         name,
		Camera:       geometry.NewCamera(cameraConfig),
		World:        world,
		CameraConfig: cameraConfig,
		RenderConfig: renderConfig,
	}
}

// builtins maps scene names to their constructors
var builtins = map[string]func() *Scene{
	"default": NewDefaultScene,
	"book":    NewBookScene,
}

// Names returns the names of the built-in scenes, sorted
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a scene by name. Names ending in ".json" are loaded from disk.
func Create(name string) (*Scene, error) {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return LoadFile(name)
	}
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %s, or a .json file)", name, strings.Join(Names(), ", "))
	}
	return build(), nil
}
