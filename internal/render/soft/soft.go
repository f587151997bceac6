// Package soft is a CPU z-buffer rasterizer backend. It needs no display or
// GPU and renders views concurrently.
package soft

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/ulassi/stl2png/internal/render"
	"github.com/ulassi/stl2png/pkg/math"
	"github.com/ulassi/stl2png/pkg/viewplan"
)

// Options configures the rasterizer.
type Options struct {
	Width       int
	Height      int
	Supersample int // render at Supersample x size, then downsample
	Material    render.Material
}

// Renderer rasterizes a scene. It holds no per-view state.
type Renderer struct {
	scene render.Scene
	opts  Options
}

// New creates a software renderer for scene.
func New(scene render.Scene, opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("soft: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	return &Renderer{scene: scene, opts: opts}, nil
}

// Concurrent reports true; views share only read-only scene data.
func (r *Renderer) Concurrent() bool { return true }

// Close is a no-op.
func (r *Renderer) Close() error { return nil }

// Render draws view and returns an image of the configured size.
func (r *Renderer) Render(view viewplan.ViewDescriptor) (*image.RGBA, error) {
	ss := r.opts.Supersample
	fb := newFrameBuffer(r.opts.Width*ss, r.opts.Height*ss, r.opts.Material.ClearRGBA())

	// Aspect comes from the output size so supersampling does not change framing.
	mvp := view.MVP(r.scene.Model, r.opts.Width, r.opts.Height)
	model := r.scene.Model
	verts := r.scene.Vertices

	for i := 0; i+2 < len(verts); i += 3 {
		var t triangle
		visible := true
		for k := 0; k < 3; k++ {
			p := verts[i+k].Position
			clip := mvp.MulVec4(math.Vec4{p.X, p.Y, p.Z, 1})
			if clip[3] <= nearW {
				visible = false
				break
			}
			t[k] = fb.toScreen(clip)
		}
		if !visible {
			continue
		}

		// The three vertices share the facet's shading normal.
		normal := model.TransformDirection(verts[i].Normal).Normalize()
		center := verts[i].Position.Add(verts[i+1].Position).Add(verts[i+2].Position).Div(3)
		rgb := r.opts.Material.Shade(normal, model.TransformVec3(center), view.Eye)
		fb.fill(t, color.RGBA{
			R: render.ToByte(rgb[0]),
			G: render.ToByte(rgb[1]),
			B: render.ToByte(rgb[2]),
			A: 255,
		})
	}

	if ss == 1 {
		return fb.img, nil
	}
	return downsample(fb.img, r.opts.Width, r.opts.Height), nil
}

// downsample scales src to width x height with a Catmull-Rom filter.
func downsample(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
