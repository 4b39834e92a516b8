package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// bookSceneSeed keeps the random sphere field identical between runs
const bookSceneSeed int64 = 123123123123 << 10

// NewBookScene creates the classic cover scene: a field of small random spheres
// around three large ones (diffuse, glass, mirror) on a giant ground sphere.
func NewBookScene() *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   3.0 / 2.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	renderConfig := RenderConfig{
		Width:   600,
		Height:  400,
		Samples: 50,
	}

	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
	)

	addRandomSpheres(world, core.NewRandomSampler(bookSceneSeed))

	world.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	world.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5, 0.0)))
	world.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)))

	return newScene("book", cameraConfig, renderConfig, world)
}

// addRandomSpheres scatters small spheres over a 22x22 grid, leaving room around the metal ball
func addRandomSpheres(world *geometry.HittableList, random core.Sampler) {
	keepClear := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float32()
			center := core.NewVec3(float32(a)+0.9*random.Float32(), 0.2, float32(b)+0.9*random.Float32())
			if center.Subtract(keepClear).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMat < 0.8: // diffuse
				mat = material.NewLambertian(core.NewVec3(
					random.Float32()*random.Float32(),
					random.Float32()*random.Float32(),
					random.Float32()*random.Float32(),
				))
			case chooseMat < 0.95: // metal
				mat = material.NewMetal(core.NewVec3(
					0.5*(random.Float32()+1),
					0.5*(random.Float32()+1),
					0.5*(random.Float32()+1),
				), 0.5*random.Float32())
			default: // glass
				mat = material.NewDielectric(1.5, 0.1*random.Float32())
			}

			world.Add(geometry.NewSphere(center, 0.2, mat))
		}
	}
}
