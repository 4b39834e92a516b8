package material

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"golang.org/x/image/colornames"
)

// ColorFromRGBA converts an 8-bit display color into linear albedo.
// The inverse of the gamma 2 applied on output, so a named color renders as itself.
func ColorFromRGBA(c color.RGBA) core.Vec3 {
	display := core.NewVec3(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
	return display.MultiplyVec(display)
}

// NamedColor looks up an SVG 1.1 color keyword (e.g. "gold", "steelblue")
func NamedColor(name string) (core.Vec3, error) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return core.Vec3{}, fmt.Errorf("unknown color name %q", name)
	}
	return ColorFromRGBA(c), nil
}

// MustNamedColor is NamedColor for built-in palettes where the name is a constant
func MustNamedColor(name string) core.Vec3 {
	c, err := NamedColor(name)
	if err != nil {
		panic(err)
	}
	return c
}
