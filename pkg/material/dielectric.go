package material

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float32 // Index of refraction (e.g., 1.5 for glass)
	Fuzz            float32 // Perturbation applied to both reflected and refracted rays
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex, fuzz float32) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex, Fuzz: fuzz}
}

// Scatter implements the Material interface for dielectric scattering.
// rayIn.Direction must not be the zero vector.
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Clear glass does not tint
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	dirDotNormal := rayIn.Direction.Dot(hit.Normal)
	dirLength := rayIn.Direction.Length()

	// Exiting the medium: flip the normal so it opposes the ray
	outwardNormal := hit.Normal.Negate()
	niOverNt := d.RefractiveIndex
	cosine := d.RefractiveIndex * dirDotNormal / dirLength
	if dirDotNormal <= 0 {
		// Entering the medium
		outwardNormal = hit.Normal
		niOverNt = 1.0 / d.RefractiveIndex
		cosine = -dirDotNormal / dirLength
	}

	reflected := Reflect(rayIn.Direction.UnitVector(), hit.Normal).
		Add(core.RandomInUnitSphere(sampler).Multiply(d.Fuzz))

	refracted, canRefract := Refract(rayIn.Direction, outwardNormal, niOverNt)
	if !canRefract || sampler.Float32() < Schlick(cosine, d.RefractiveIndex) {
		return ScatterResult{
			Scattered:   core.NewRay(hit.Point, reflected),
			Attenuation: attenuation,
		}, true
	}

	refracted = refracted.Add(core.RandomInUnitSphere(sampler).Multiply(d.Fuzz))
	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, refracted),
		Attenuation: attenuation,
	}, true
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends v through a surface with unit normal n using Snell's law.
// Returns false on total internal reflection.
func Refract(v, n core.Vec3, niOverNt float32) (core.Vec3, bool) {
	uv := v.UnitVector()
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	return uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math32.Sqrt(discriminant))), true
}

// Schlick approximates the Fresnel reflectance at the given cosine
func Schlick(cosine, refractiveIndex float32) float32 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}
