// Package preview shows the planned views in a window, cycling through them.
package preview

import (
	"context"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/ulassi/stl2png/internal/engine/input"
	"github.com/ulassi/stl2png/internal/engine/window"
	"github.com/ulassi/stl2png/internal/logger"
	"github.com/ulassi/stl2png/internal/render"
	"github.com/ulassi/stl2png/internal/render/glrender"
	"github.com/ulassi/stl2png/pkg/viewplan"
)

// Config holds preview window settings.
type Config struct {
	Title         string
	Width         int
	Height        int
	FramesPerView int
	VSync         bool
	Material      render.Material
}

// Run opens the window and draws until it is closed, Escape or Q is
// pressed, or ctx is done. Space and Right skip to the next view, Left goes
// back.
func Run(ctx context.Context, cfg Config, scene render.Scene, views []viewplan.ViewDescriptor) error {
	win, err := window.New(window.Config{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		VSync:  cfg.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	drawer, err := glrender.NewDrawer(scene, cfg.Material)
	if err != nil {
		return err
	}
	defer drawer.Destroy()

	in := input.New()
	cycle := viewplan.NewCycle(views, cfg.FramesPerView)
	shown := viewplan.Tag("")

	logger.Info("preview started",
		zap.Int("triangles", scene.TriangleCount()),
		zap.Int("views", len(views)),
		zap.Int("frames_per_view", cfg.FramesPerView),
	)

	for ctx.Err() == nil {
		if in.Update() {
			break
		}
		if in.IsKeyPressed(sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q) {
			break
		}
		switch {
		case in.IsKeyPressed(sdl.SCANCODE_SPACE, sdl.SCANCODE_RIGHT):
			cycle.Next()
		case in.IsKeyPressed(sdl.SCANCODE_LEFT):
			cycle.Prev()
		}

		view := cycle.Current()
		if view.Tag != shown {
			shown = view.Tag
			win.SetTitle(fmt.Sprintf("%s [%s, %s]", cfg.Title, view.Tag, view.Projection))
			logger.Debug("showing view", zap.String("view", string(view.Tag)))
		}

		// Size is re-read every frame so resizes and high-DPI scaling apply.
		width, height := win.DrawableSize()
		drawer.Draw(view, width, height)
		win.SwapBuffers()
		cycle.Tick()
	}

	logger.Info("preview closed")
	return nil
}
