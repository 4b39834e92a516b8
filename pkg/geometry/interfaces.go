package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Hittable is anything a ray can be intersected with
type Hittable interface {
	Hit(ray core.Ray, tMin, tMax float32) (*material.HitRecord, bool)
}
