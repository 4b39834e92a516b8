package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewDefaultScene creates the small test scene: a diffuse ball on a huge ground sphere,
// a fuzzy gold ball, a hollow glass shell and a tiny dark mirror.
func NewDefaultScene() *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 2.0,
		Aperture:    0.0, // Pinhole
	}

	renderConfig := RenderConfig{
		Width:   400,
		Height:  200,
		Samples: 100,
	}

	glass := func() material.Material { return material.NewDielectric(1.1, 0.0) }

	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.8, 0.3, 0.3))),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.1)),
		// Hollow glass: the negative radius flips the normals of the inner surface
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass()),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, glass()),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.15, material.NewMetal(core.NewVec3(0.1, 0.1, 0.1), 0.0)),
	)

	return newScene("default", cameraConfig, renderConfig, world)
}
