package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// HittableList is a flat, ordered collection of spheres.
// Every ray is tested against every object; order only affects speed.
type HittableList struct {
	Objects []*Sphere
}

// NewHittableList creates a list holding the given spheres
func NewHittableList(objects ...*Sphere) *HittableList {
	return &HittableList{Objects: objects}
}

// Add appends a sphere to the list
func (l *HittableList) Add(sphere *Sphere) {
	l.Objects = append(l.Objects, sphere)
}

// Len returns the number of objects in the list
func (l *HittableList) Len() int {
	return len(l.Objects)
}

// Hit returns the closest intersection among all objects within (tMin, tMax)
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float32) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, object := range l.Objects {
		if hit, isHit := object.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
