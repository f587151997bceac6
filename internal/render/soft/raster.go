package soft

import (
	"image"
	"image/color"
	gomath "math"

	"github.com/ulassi/stl2png/pkg/math"
)

// nearW rejects vertices at or behind the eye plane.
const nearW = 1e-6

// vertex is a screen-space position: pixel x, y (top-down) and NDC depth.
type vertex struct {
	x, y, z float64
}

type triangle [3]vertex

// frameBuffer holds the color target and a depth buffer cleared to the far plane.
type frameBuffer struct {
	img   *image.RGBA
	depth []float64
	w, h  int
}

func newFrameBuffer(w, h int, clear [4]uint8) *frameBuffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], clear[:])
	}
	depth := make([]float64, w*h)
	for i := range depth {
		depth[i] = 1
	}
	return &frameBuffer{img: img, depth: depth, w: w, h: h}
}

// toScreen applies the perspective divide and viewport transform.
func (fb *frameBuffer) toScreen(clip math.Vec4) vertex {
	w := float64(clip[3])
	return vertex{
		x: (float64(clip[0])/w + 1) * 0.5 * float64(fb.w),
		y: (1 - float64(clip[1])/w) * 0.5 * float64(fb.h),
		z: float64(clip[2]) / w,
	}
}

// fill rasterizes t with a less-than depth test, sampling pixel centers.
// Both windings are drawn. Fragments outside the [-1, 1] depth range are
// clipped per pixel.
func (fb *frameBuffer) fill(t triangle, c color.RGBA) {
	v0, v1, v2 := t[0], t[1], t[2]

	det := (v1.y-v2.y)*(v0.x-v2.x) + (v2.x-v1.x)*(v0.y-v2.y)
	if !(gomath.Abs(det) >= 1e-12) || gomath.IsInf(det, 0) {
		return
	}
	invDet := 1 / det

	// Clamp in float space so off-screen coordinates never overflow int.
	minXf := max(gomath.Floor(min(v0.x, v1.x, v2.x)), 0)
	maxXf := min(gomath.Ceil(max(v0.x, v1.x, v2.x)), float64(fb.w-1))
	minYf := max(gomath.Floor(min(v0.y, v1.y, v2.y)), 0)
	maxYf := min(gomath.Ceil(max(v0.y, v1.y, v2.y)), float64(fb.h-1))
	if !(minXf <= maxXf && minYf <= maxYf) {
		return
	}
	minX, maxX := int(minXf), int(maxXf)
	minY, maxY := int(minYf), int(maxYf)

	dy12 := v1.y - v2.y
	dx21 := v2.x - v1.x
	dy20 := v2.y - v0.y
	dx02 := v0.x - v2.x

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - v2.y
		row := sy * fb.w
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - v2.x
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1 - w0 - w1
			if !(w0 >= 0 && w1 >= 0 && w2 >= 0) {
				continue
			}

			z := w0*v0.z + w1*v1.z + w2*v2.z
			if !(z >= -1 && z < fb.depth[row+sx]) {
				continue
			}
			fb.depth[row+sx] = z

			off := fb.img.PixOffset(sx, sy)
			fb.img.Pix[off] = c.R
			fb.img.Pix[off+1] = c.G
			fb.img.Pix[off+2] = c.B
			fb.img.Pix[off+3] = c.A
		}
	}
}
