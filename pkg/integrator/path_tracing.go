package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

const (
	// DefaultMaxDepth bounds the number of bounces per path
	DefaultMaxDepth = 50
	// DefaultTMin keeps scattered rays from re-hitting their own surface (shadow acne)
	DefaultTMin float32 = 1e-4
	// DefaultTMax is the far clip distance
	DefaultTMax float32 = 1e6
)

// PathTracingIntegrator implements recursive unidirectional path tracing
// with a vertical sky gradient as the only light source
type PathTracingIntegrator struct {
	MaxDepth  int
	TMin      float32
	TMax      float32
	SkyTop    core.Vec3 // Color looking straight up
	SkyBottom core.Vec3 // Color looking straight down
}

// NewPathTracingIntegrator creates a new path tracing integrator.
// maxDepth <= 0 selects DefaultMaxDepth.
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PathTracingIntegrator{
		MaxDepth:  maxDepth,
		TMin:      DefaultTMin,
		TMax:      DefaultTMax,
		SkyTop:    core.NewVec3(0.5, 0.7, 1.0),
		SkyBottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// RayColor computes the color for a camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler) core.Vec3 {
	return pt.Color(ray, world, sampler, 0)
}

// Color returns the radiance along ray for a path that has already bounced depth times
func (pt *PathTracingIntegrator) Color(ray core.Ray, world geometry.Hittable, sampler core.Sampler, depth int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth >= pt.MaxDepth {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, pt.TMin, pt.TMax)
	if !isHit {
		return pt.backgroundGradient(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(pt.Color(scatter.Scattered, world, sampler, depth+1))
}

// backgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) backgroundGradient(r core.Ray) core.Vec3 {
	// Map y from [-1,1] to [0,1]
	t := 0.5 * (r.Direction.UnitVector().Y + 1.0)
	return pt.SkyBottom.Lerp(pt.SkyTop, t)
}
