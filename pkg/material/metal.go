package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo core.Vec3 // Metal color
	Fuzz   float32   // 0.0 = perfect mirror; larger values scatter more and absorb more grazing rays
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3, fuzz float32) *Metal {
	return &Metal{Albedo: albedo, Fuzz: fuzz}
}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.UnitVector(), hit.Normal).
		Add(core.RandomInUnitSphere(sampler).Multiply(m.Fuzz))

	// Rays pushed below the surface by fuzz are absorbed
	if reflected.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, reflected),
		Attenuation: m.Albedo,
	}, true
}
