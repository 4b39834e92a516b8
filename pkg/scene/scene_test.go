package scene

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func TestNewDefaultScene(t *testing.T) {
	s := NewDefaultScene()

	if s.Name != "default" {
		t.Errorf("Expected name default, got %q", s.Name)
	}
	if s.GetPrimitiveCount() != 6 {
		t.Errorf("Expected 6 spheres, got %d", s.GetPrimitiveCount())
	}
	if s.RenderConfig.Width != 400 || s.RenderConfig.Height != 200 || s.RenderConfig.Samples != 100 {
		t.Errorf("Unexpected render config %+v", s.RenderConfig)
	}
	if s.Camera == nil {
		t.Fatal("Camera not created")
	}

	// The hollow glass shell is a positive and a negative sphere sharing a center
	outer, inner := s.World.Objects[3], s.World.Objects[4]
	if outer.Center != inner.Center || outer.Radius <= 0 || inner.Radius >= 0 {
		t.Errorf("Expected hollow glass pair, got radii %v and %v", outer.Radius, inner.Radius)
	}

	// Center pixel looks straight at the red diffuse ball
	ray := s.Camera.GetRay(0.5, 0.5, core.NewRandomSampler(1))
	hit, isHit := s.World.Hit(ray, 1e-4, 1e6)
	if !isHit {
		t.Fatal("Expected the center ray to hit")
	}
	if math.Abs(float64(hit.T-0.5)) > 1e-4 {
		t.Errorf("Expected hit at t=0.5, got %v", hit.T)
	}
	if _, ok := hit.Material.(*material.Lambertian); !ok {
		t.Errorf("Expected lambertian material, got %T", hit.Material)
	}
}

func TestNewBookScene_Deterministic(t *testing.T) {
	a := NewBookScene()
	b := NewBookScene()

	if a.GetPrimitiveCount() != b.GetPrimitiveCount() {
		t.Fatalf("Sphere count differs between builds: %d vs %d", a.GetPrimitiveCount(), b.GetPrimitiveCount())
	}
	for i := range a.World.Objects {
		if a.World.Objects[i].Center != b.World.Objects[i].Center {
			t.Fatalf("Sphere %d differs between builds", i)
		}
	}

	// Ground + up to 22x22 small spheres + 3 large ones
	count := a.GetPrimitiveCount()
	if count < 400 || count > 1+22*22+3 {
		t.Errorf("Unexpected sphere count %d", count)
	}

	keepClear := core.NewVec3(4, 0.2, 0)
	for _, sphere := range a.World.Objects[1 : count-3] {
		if sphere.Radius != 0.2 {
			t.Errorf("Small sphere with radius %v", sphere.Radius)
		}
		if sphere.Center.Subtract(keepClear).Length() <= 0.9 {
			t.Errorf("Small sphere at %v overlaps the metal ball", sphere.Center)
		}
	}
}

func TestSetImageSize(t *testing.T) {
	s := NewDefaultScene()
	s.SetImageSize(300, 300)

	if s.RenderConfig.Width != 300 || s.RenderConfig.Height != 300 {
		t.Errorf("Render size not updated: %+v", s.RenderConfig)
	}
	if s.CameraConfig.AspectRatio != 1 {
		t.Errorf("Expected aspect ratio 1, got %v", s.CameraConfig.AspectRatio)
	}
}

func TestCreate(t *testing.T) {
	for _, name := range Names() {
		s, err := Create(name)
		if err != nil {
			t.Errorf("Create(%q) error: %v", name, err)
			continue
		}
		if s.Name != name {
			t.Errorf("Create(%q) returned scene %q", name, s.Name)
		}
	}

	_, err := Create("cornell")
	if err == nil || !strings.Contains(err.Error(), "unknown scene") {
		t.Errorf("Expected unknown scene error, got %v", err)
	}

	if _, err := Create(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing scene file")
	}
}

const testSceneJSON = `{
	"name": "two balls",
	"width": 120,
	"height": 60,
	"samples": 8,
	"camera": {"center": [0, 0, 0], "lookAt": [0, 0, -1], "vfov": 90},
	"spheres": [
		{"center": [0, 0, -1], "radius": 0.5, "material": {"type": "lambertian", "albedo": "white"}},
		{"center": [1, 0, -1], "radius": 0.5, "material": {"type": "metal", "albedo": [0.8, 0.6, 0.2], "fuzz": 3}},
		{"center": [-1, 0, -1], "radius": -0.45, "material": {"type": "glass", "ior": 1.5}}
	]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(testSceneJSON))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if s.Name != "two balls" || s.RenderConfig.Width != 120 || s.RenderConfig.Height != 60 || s.RenderConfig.Samples != 8 {
		t.Errorf("Unexpected scene header: %q %+v", s.Name, s.RenderConfig)
	}
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Expected aspect ratio from image size, got %v", s.CameraConfig.AspectRatio)
	}
	if s.CameraConfig.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected default up vector, got %v", s.CameraConfig.Up)
	}
	if s.GetPrimitiveCount() != 3 {
		t.Fatalf("Expected 3 spheres, got %d", s.GetPrimitiveCount())
	}

	white := s.World.Objects[0].Material.(*material.Lambertian)
	if white.Albedo != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected named color white, got %v", white.Albedo)
	}

	metal := s.World.Objects[1].Material.(*material.Metal)
	if metal.Fuzz != 3 {
		t.Errorf("Expected fuzz 3 kept as written, got %v", metal.Fuzz)
	}

	glass := s.World.Objects[2].Material.(*material.Dielectric)
	if glass.RefractiveIndex != 1.5 || s.World.Objects[2].Radius != -0.45 {
		t.Errorf("Unexpected glass sphere %+v", s.World.Objects[2])
	}
}

func TestParse_Defaults(t *testing.T) {
	s, err := Parse([]byte(`{"camera": {"center": [0, 1, 3], "lookAt": [0, 0, 0]},
		"spheres": [{"center": [0, 0, 0], "radius": 1, "material": {"type": "diffuse"}}]}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if s.RenderConfig.Width != DefaultWidth || s.RenderConfig.Height != DefaultHeight || s.RenderConfig.Samples != DefaultSamples {
		t.Errorf("Defaults not applied: %+v", s.RenderConfig)
	}
	if s.CameraConfig.VFov != DefaultVFov {
		t.Errorf("Expected default vfov, got %v", s.CameraConfig.VFov)
	}
	lambertian := s.World.Objects[0].Material.(*material.Lambertian)
	if lambertian.Albedo != core.NewVec3(0.5, 0.5, 0.5) {
		t.Errorf("Expected default gray albedo, got %v", lambertian.Albedo)
	}
}

func TestParse_Errors(t *testing.T) {
	sphere := func(mat string) string {
		return `{"camera": {"center": [0, 0, 0], "lookAt": [0, 0, -1]},
			"spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": ` + mat + `}]}`
	}

	testCases := []struct {
		name    string
		json    string
		message string
	}{
		{"malformed", `{"spheres": [`, "failed to decode scene"},
		{"no spheres", `{"camera": {"center": [0, 0, 0], "lookAt": [0, 0, -1]}, "spheres": []}`, "no spheres"},
		{"same center and lookAt", `{"camera": {"center": [1, 1, 1], "lookAt": [1, 1, 1]},
			"spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": {"type": "diffuse"}}]}`, "must differ"},
		{"zero radius", `{"camera": {"center": [0, 0, 0], "lookAt": [0, 0, -1]},
			"spheres": [{"center": [0, 0, -1], "radius": 0, "material": {"type": "diffuse"}}]}`, "sphere 0"},
		{"unknown material", sphere(`{"type": "plastic"}`), "unknown material type"},
		{"glass without ior", sphere(`{"type": "dielectric"}`), "positive ior"},
		{"unknown color name", sphere(`{"type": "metal", "albedo": "notacolor"}`), "unknown color name"},
		{"bad color", sphere(`{"type": "metal", "albedo": {"r": 1}}`), "color must be"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.json))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("Error %q does not mention %q", err, tc.message)
			}
		})
	}
}

func TestLoadFile_NameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSceneFile(t, dir, "lonely-ball.json", `{"camera": {"center": [0, 0, 0], "lookAt": [0, 0, -1]},
		"spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": {"type": "diffuse", "albedo": "gold"}}]}`)

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if s.Name != "lonely-ball" {
		t.Errorf("Expected name from file, got %q", s.Name)
	}

	// Create routes .json names to the loader
	s, err = Create(path)
	if err != nil || s.GetPrimitiveCount() != 1 {
		t.Errorf("Create(%q) = %v, %v", path, s, err)
	}
}
