package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Vec3Cfg is a JSON [x, y, z] triple
type Vec3Cfg [3]float32

func (v Vec3Cfg) vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// ColorCfg is either a linear [r, g, b] triple or an SVG color name such as "gold"
type ColorCfg struct {
	core.Vec3
}

// UnmarshalJSON accepts both color forms
func (c *ColorCfg) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		v, err := material.NamedColor(name)
		if err != nil {
			return err
		}
		c.Vec3 = v
		return nil
	}

	var rgb Vec3Cfg
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("color must be [r,g,b] or a color name: %w", err)
	}
	c.Vec3 = rgb.vec()
	return nil
}

// CameraCfg describes the camera of a scene file
type CameraCfg struct {
	Center        Vec3Cfg  `json:"center"`
	LookAt        Vec3Cfg  `json:"lookAt"`
	Up            *Vec3Cfg `json:"up,omitempty"` // defaults to +Y
	VFov          float32  `json:"vfov"`
	Aperture      float32  `json:"aperture,omitempty"`
	FocusDistance float32  `json:"focusDistance,omitempty"` // <= 0: distance to lookAt
}

// MaterialCfg selects one of the supported materials by type
type MaterialCfg struct {
	Type   string    `json:"type"` // lambertian, metal, dielectric
	Albedo *ColorCfg `json:"albedo,omitempty"`
	Fuzz   float32   `json:"fuzz,omitempty"`
	IOR    float32   `json:"ior,omitempty"`
}

// SphereCfg is one sphere of a scene file
type SphereCfg struct {
	Center   Vec3Cfg     `json:"center"`
	Radius   float32     `json:"radius"`
	Material MaterialCfg `json:"material"`
}

// Config is the on-disk scene description
type Config struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	Samples     int         `json:"samples,omitempty"`
	Camera      CameraCfg   `json:"camera"`
	Spheres     []SphereCfg `json:"spheres"`
}

// Defaults for fields a scene file may omit
const (
	DefaultWidth   = 400
	DefaultHeight  = 200
	DefaultSamples = 100
	DefaultVFov    = 90.0
)

// Build turns the material description into a material
func (m MaterialCfg) Build() (material.Material, error) {
	albedo := core.NewVec3(0.5, 0.5, 0.5)
	if m.Albedo != nil {
		albedo = m.Albedo.Vec3
	}

	switch strings.ToLower(m.Type) {
	case "lambertian", "diffuse":
		return material.NewLambertian(albedo), nil
	case "metal":
		return material.NewMetal(albedo, m.Fuzz), nil
	case "dielectric", "glass":
		if m.IOR <= 0 {
			return nil, fmt.Errorf("dielectric needs a positive ior, got %g", m.IOR)
		}
		return material.NewDielectric(m.IOR, m.Fuzz), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", m.Type)
	}
}

// Build creates the sphere; the radius may be negative but not zero
func (s SphereCfg) Build() (*geometry.Sphere, error) {
	if s.Radius == 0 {
		return nil, fmt.Errorf("sphere radius must be non-zero")
	}
	mat, err := s.Material.Build()
	if err != nil {
		return nil, err
	}
	return geometry.NewSphere(s.Center.vec(), s.Radius, mat), nil
}

// Parse builds a scene from JSON data
func Parse(data []byte) (*Scene, error) {
	cfg, err := decodeConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

func decodeConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode scene: %w", err)
	}
	return cfg, nil
}

// Build validates the configuration, applies defaults and creates the scene
func (cfg Config) Build() (*Scene, error) {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.Name == "" {
		cfg.Name = "custom"
	}
	if len(cfg.Spheres) == 0 {
		return nil, fmt.Errorf("scene has no spheres")
	}

	cameraConfig := geometry.CameraConfig{
		Center:        cfg.Camera.Center.vec(),
		LookAt:        cfg.Camera.LookAt.vec(),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          cfg.Camera.VFov,
		Aperture:      cfg.Camera.Aperture,
		FocusDistance: cfg.Camera.FocusDistance,
	}
	if cfg.Camera.Up != nil {
		cameraConfig.Up = cfg.Camera.Up.vec()
	}
	if cameraConfig.VFov <= 0 {
		cameraConfig.VFov = DefaultVFov
	}
	if cameraConfig.Center == cameraConfig.LookAt {
		return nil, fmt.Errorf("camera center and lookAt must differ")
	}

	world := geometry.NewHittableList()
	for i, sc := range cfg.Spheres {
		sphere, err := sc.Build()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		world.Add(sphere)
	}

	renderConfig := RenderConfig{Width: cfg.Width, Height: cfg.Height, Samples: cfg.Samples}
	return newScene(cfg.Name, cameraConfig, renderConfig, world), nil
}

// LoadFile reads a JSON scene description from disk.
// An unnamed scene takes its name from the file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	cfg, err := decodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
