package glrender

import (
	"fmt"
	"image"

	"github.com/ulassi/stl2png/internal/engine/framebuffer"
	"github.com/ulassi/stl2png/internal/engine/window"
	"github.com/ulassi/stl2png/internal/render"
	"github.com/ulassi/stl2png/pkg/viewplan"
)

// Options configures the headless GL renderer.
type Options struct {
	Width    int
	Height   int
	Material render.Material
}

// Renderer draws views into an offscreen framebuffer of a hidden window.
type Renderer struct {
	win    *window.Window
	drawer *Drawer
	fb     *framebuffer.Framebuffer
	width  int
	height int
}

// New creates a hidden GL context and uploads scene.
func New(scene render.Scene, opts Options) (*Renderer, error) {
	win, err := window.New(window.Config{
		Title:  "stl2png",
		Width:  opts.Width,
		Height: opts.Height,
		Hidden: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GL context: %w", err)
	}

	drawer, err := NewDrawer(scene, opts.Material)
	if err != nil {
		win.Close()
		return nil, err
	}

	fb, err := framebuffer.New(int32(opts.Width), int32(opts.Height))
	if err != nil {
		drawer.Destroy()
		win.Close()
		return nil, err
	}

	return &Renderer{win: win, drawer: drawer, fb: fb, width: opts.Width, height: opts.Height}, nil
}

// Concurrent reports false; the context is bound to one OS thread.
func (r *Renderer) Concurrent() bool { return false }

// Render draws view offscreen and reads it back.
func (r *Renderer) Render(view viewplan.ViewDescriptor) (*image.RGBA, error) {
	r.fb.Bind()
	defer r.fb.Unbind()

	r.drawer.Draw(view, r.width, r.height)
	img, err := r.fb.ReadImage()
	if err != nil {
		return nil, fmt.Errorf("reading view %s: %w", view.Tag, err)
	}
	return img, nil
}

// Close releases GPU resources and the hidden window.
func (r *Renderer) Close() error {
	r.fb.Destroy()
	r.drawer.Destroy()
	r.win.Close()
	return nil
}
