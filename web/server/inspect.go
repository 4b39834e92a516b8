package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	SphereIndex  int                    `json:"sphereIndex"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vecArray(v core.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	// Albedo is linear; show it the way it renders
	c := v.Sqrt()
	return fmt.Sprintf("#%02x%02x%02x", toHexByte(c.X), toHexByte(c.Y), toHexByte(c.Z))
}

func toHexByte(v float32) int {
	return int(min(max(v, 0), 1) * 255)
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["fuzz"] = m.Fuzz
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of pixel (x, y), top-left origin,
// and returns the closest hit and the index of the sphere it belongs to (-1 on a miss)
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (*material.HitRecord, int) {
	s := (float32(pixelX) + 0.5) / float32(width)
	t := 1 - (float32(pixelY)+0.5)/float32(height)

	// Lens sampling is deterministic so repeated inspections agree
	ray := sceneObj.Camera.GetRay(s, t, core.NewRandomSampler(0))

	hit, isHit := sceneObj.World.Hit(ray, integrator.DefaultTMin, integrator.DefaultTMax)
	if !isHit {
		return nil, -1
	}

	// The list does not report which sphere was hit; find the one at the same distance
	for i, sphere := range sceneObj.World.Objects {
		if sphereHit, ok := sphere.Hit(ray, integrator.DefaultTMin, integrator.DefaultTMax); ok && sphereHit.T == hit.T {
			return hit, i
		}
	}
	return hit, -1
}

// extractGeometryInfo describes the sphere that was hit
func extractGeometryInfo(sphere *geometry.Sphere) map[string]interface{} {
	return map[string]interface{}{
		"center": vecArray(sphere.Center),
		"radius": sphere.Radius,
		"hollow": sphere.Radius < 0,
	}
}

// handleInspect reports what the current scene shows at a pixel of the current session
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= sess.Width || pixelY < 0 || pixelY >= sess.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	hit, index := inspectPixel(sess.Scene, sess.Width, sess.Height, pixelX, pixelY)
	if hit == nil {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, SphereIndex: -1})
		return
	}

	materialType, materialProps := extractMaterialInfo(hit.Material)
	properties := map[string]interface{}{"material": materialProps}
	if index >= 0 {
		properties["geometry"] = extractGeometryInfo(sess.Scene.World.Objects[index])
	}

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		SphereIndex:  index,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.T,
		Properties:   properties,
	})
}
