package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Material interface for objects that can scatter rays
type Material interface {
	// Scatter computes the outgoing ray and its attenuation for a ray hitting the surface.
	// Returns false when the material absorbs the ray.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection.
// It only lives for the duration of one intersection query.
type HitRecord struct {
	T        float32   // Parameter t along the ray
	Point    core.Vec3 // Point of intersection
	Normal   core.Vec3 // (point-center)/radius; points inward for negative radii
	Material Material  // Material of the hit object
}
