// Package render defines the scene handed to renderer backends and the
// lighting model they share.
package render

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/ulassi/stl2png/pkg/geometry"
	"github.com/ulassi/stl2png/pkg/math"
	"github.com/ulassi/stl2png/pkg/viewplan"
)

// Scene is a normalized mesh ready for drawing.
type Scene struct {
	Vertices []geometry.ShadedVertex
	Model    math.Mat4
}

// NewScene pairs shaded vertices with their model transform.
func NewScene(vertices []geometry.ShadedVertex, t geometry.ModelTransform) Scene {
	return Scene{Vertices: vertices, Model: t.Matrix()}
}

// TriangleCount returns the number of complete triangles in the scene.
func (s Scene) TriangleCount() int {
	return len(s.Vertices) / 3
}

// Backend renders one view of a scene to an RGBA image, top row first.
type Backend interface {
	Render(view viewplan.ViewDescriptor) (*image.RGBA, error)
	// Concurrent reports whether Render may be called from several goroutines.
	Concurrent() bool
	Close() error
}

// Material is the surface and background description shared by backends.
type Material struct {
	Color     [3]float32
	Ambient   float32
	Diffuse   float32
	Specular  float32
	Shininess float32
	Clear     [4]float32
}

// DefaultMaterial is a light grey, slightly glossy surface on the standard
// dark background.
func DefaultMaterial() Material {
	return Material{
		Color:     [3]float32{0.8, 0.8, 0.82},
		Ambient:   0.15,
		Diffuse:   0.75,
		Specular:  0.25,
		Shininess: 32,
		Clear:     [4]float32{0.1, 0.1, 0.1, 1},
	}
}

// Shade lights a surface point with a head light at eye. The surface is
// two-sided: a normal facing away from the eye is flipped. A zero normal
// gets ambient light only.
func (m Material) Shade(normal, position, eye math.Vec3) [3]float32 {
	toEye := eye.Sub(position).Normalize()
	if normal.Dot(toEye) < 0 {
		normal = normal.Negate()
	}

	diffuse := max(normal.Dot(toEye), 0)
	var highlight float32
	if diffuse > 0 {
		// Light and viewer coincide, so the reflection of the light
		// direction points at the viewer by n·l.
		reflected := normal.Scale(2 * diffuse).Sub(toEye)
		highlight = math32.Pow(max(reflected.Dot(toEye), 0), m.Shininess)
	}

	intensity := m.Ambient + m.Diffuse*diffuse
	var out [3]float32
	for i, c := range m.Color {
		out[i] = min(c*intensity+m.Specular*highlight, 1)
	}
	return out
}

// ClearRGBA returns the background as 8-bit channels.
func (m Material) ClearRGBA() [4]uint8 {
	var out [4]uint8
	for i, c := range m.Clear {
		out[i] = ToByte(c)
	}
	return out
}

// ToByte converts a [0,1] channel to 0..255 with rounding.
func ToByte(c float32) uint8 {
	switch {
	case c <= 0 || math32.IsNaN(c):
		return 0
	case c >= 1:
		return 255
	default:
		return uint8(c*255 + 0.5)
	}
}
