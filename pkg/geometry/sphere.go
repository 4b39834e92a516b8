package geometry

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Sphere represents a sphere shape.
// A negative radius turns the surface inside out, which is how hollow glass is built.
type Sphere struct {
	Center   core.Vec3
	Radius   float32
	Material material.Material
}

// NewSphere creates a new sphere that owns the given material
func NewSphere(center core.Vec3, radius float32, mat material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Hit tests if a ray intersects with the sphere within (tMin, tMax)
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float32) (*material.HitRecord, bool) {
	oc := ray.Origin.Subtract(s.Center)

	// Half-b form of the quadratic; the factors of 2 and 4 cancel
	a := ray.Direction.Dot(ray.Direction)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	discriminant := b*b - a*c

	if discriminant < 0 {
		return nil, false
	}

	sqrtD := math32.Sqrt(discriminant)

	// Only the near root counts (both roots coincide for a tangent ray).
	// A ray starting inside the sphere, or past the near root, does not hit it.
	root := (-b - sqrtD) / a
	if !(root > tMin && root < tMax) {
		return nil, false
	}

	point := ray.PointAtParameter(root)
	return &material.HitRecord{
		T:        root,
		Point:    point,
		Normal:   point.Subtract(s.Center).Divide(s.Radius),
		Material: s.Material,
	}, true
}
