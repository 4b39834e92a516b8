package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func gray() material.Material {
	return material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
}

func TestSphere_Hit_Simple(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, gray())
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0, 100)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.T <= 0 || hit.T >= 1 {
		t.Errorf("Expected 0 < t < 1, got %f", hit.T)
	}
	if math.Abs(float64(hit.Normal.Length())-1) > 1e-6 {
		t.Errorf("Expected unit normal, got length %f", hit.Normal.Length())
	}
	if hit.Material != sphere.Material {
		t.Error("Hit record should reference the sphere's material")
	}
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, gray())
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	hit, isHit := sphere.Hit(ray, 0, 100)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_Normals(t *testing.T) {
	tests := []struct {
		name           string
		radius         float32
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float32
		expectedNormal core.Vec3
	}{
		{
			name:           "outside hitting top",
			radius:         0.5,
			rayOrigin:      core.NewVec3(0, 1, -1),
			rayDirection:   core.NewVec3(0, -1, 0),
			expectedT:      0.5,
			expectedNormal: core.NewVec3(0, 1, 0),
		},
		{
			name:           "negative radius flips normal",
			radius:         -0.5,
			rayOrigin:      core.NewVec3(0, 1, -1),
			rayDirection:   core.NewVec3(0, -1, 0),
			expectedT:      0.5,
			expectedNormal: core.NewVec3(0, -1, 0),
		},
		{
			name:           "non-unit direction scales t",
			radius:         0.5,
			rayOrigin:      core.NewVec3(0, 1, -1),
			rayDirection:   core.NewVec3(0, -2, 0),
			expectedT:      0.25,
			expectedNormal: core.NewVec3(0, 1, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(core.NewVec3(0, 0, -1), tt.radius, gray())
			hit, isHit := sphere.Hit(core.NewRay(tt.rayOrigin, tt.rayDirection), 1e-4, 100)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(float64(hit.T-tt.expectedT)) > 1e-6 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-6 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, gray())
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if hit, isHit := sphere.Hit(ray, 0, 0.1); isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}
	if hit, isHit := sphere.Hit(ray, 2, 100); isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// Near root excluded by tMin: the far root is never used as a fallback
	if hit, isHit := sphere.Hit(ray, 0.6, 100); isHit {
		t.Errorf("Expected miss once the near root is below tMin, got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FromInside(t *testing.T) {
	tests := []struct {
		name      string
		radius    float32
		rayOrigin core.Vec3
	}{
		{"from the center", 0.5, core.NewVec3(0, 0, -1)},
		{"just past the entry point", 0.5, core.NewVec3(0, 0, -1.5+1e-3)},
		{"negative radius", -0.5, core.NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(core.NewVec3(0, 0, -1), tt.radius, gray())
			ray := core.NewRay(tt.rayOrigin, core.NewVec3(0, 0, 1))
			if hit, isHit := sphere.Hit(ray, 1e-4, 100); isHit {
				t.Errorf("Expected a ray leaving from inside to miss, got hit at t=%f", hit.T)
			}
		})
	}
}

func TestSphere_Hit_Tangent(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1, gray())
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 1e-4, 100)
	if !isHit {
		t.Fatal("Expected glancing hit, but got miss")
	}
	if hit.Point.Subtract(core.NewVec3(1, 0, 0)).Length() > 1e-5 {
		t.Errorf("Expected hit point (1,0,0), got %v", hit.Point)
	}
}
