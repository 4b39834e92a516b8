package core

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// Sampler provides uniformly distributed random numbers for rendering.
// Can be swapped out for deterministic testing.
type Sampler interface {
	// Float32 returns a uniform value in [0, 1)
	Float32() float32
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; give each goroutine its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a deterministic sampler from a seed
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{random: rand.New(rand.NewSource(seed))}
}

var samplerSequence atomic.Int64

// NewUnseededSampler creates an independent sampler seeded from the clock.
// Samplers created in the same instant still get distinct seeds.
func NewUnseededSampler() *RandomSampler {
	seed := time.Now().UnixNano() + samplerSequence.Add(1)*7919
	return NewRandomSampler(seed)
}

// Float32 returns a random float32 in [0, 1)
func (r *RandomSampler) Float32() float32 {
	return r.random.Float32()
}

// RandomInUnitSphere generates a random point inside the unit sphere
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		// Generate random point in [-1,1]³ cube
		p := Vec3{
			X: 2*sampler.Float32() - 1,
			Y: 2*sampler.Float32() - 1,
			Z: 2*sampler.Float32() - 1,
		}
		// Accept if inside unit sphere
		if p.LengthSquared() <= 1.0 {
			return p
		}
	}
}

// RandomInUnitDisk generates a random point in the unit disk on the z=0 plane (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		p := NewVec3(2*sampler.Float32()-1, 2*sampler.Float32()-1, 0)
		if p.LengthSquared() <= 1.0 {
			return p
		}
	}
}
