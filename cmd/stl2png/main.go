// stl2png renders a binary STL file from seven fixed viewpoints and writes
// one image per view.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/ulassi/stl2png/internal/config"
	"github.com/ulassi/stl2png/internal/logger"
	"github.com/ulassi/stl2png/internal/pipeline"
	"github.com/ulassi/stl2png/internal/preview"
	"github.com/ulassi/stl2png/internal/render"
	"github.com/ulassi/stl2png/internal/render/glrender"
	"github.com/ulassi/stl2png/internal/render/soft"
	"github.com/ulassi/stl2png/internal/snapshot"
	"github.com/ulassi/stl2png/internal/watch"
	"github.com/ulassi/stl2png/pkg/stl"
)

const usage = `stl2png - render a binary STL file from seven viewpoints

Usage:
  stl2png [options] file.stl

Renders views px, nx, py, ny, pz, nz (perspective) and or (orthographic)
and writes them as view_<tag>.png in the output directory.

Options may also follow the file name.

Options:
`

// errReported marks failures already shown to the user, through the log or
// the usage text.
var errReported = errors.New("reported")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run parses arguments and sets up logging. Failures before the logger
// exists are returned for main to print; later ones are logged.
func run(args []string) error {
	fs := flag.NewFlagSet("stl2png", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	flags, files, err := config.ParseFlags(fs, args)
	switch {
	case errors.Is(err, config.ErrNoInput):
		if flags.SaveConfig == "" {
			fmt.Fprintln(os.Stderr, "No STL file to process")
			fs.Usage()
			return errReported
		}
	case err != nil:
		// The flag set has already printed the error and usage.
		return errReported
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := execute(cfg, flags.SaveConfig, files); err != nil {
		logger.Error("stl2png failed", zap.Error(err))
		return errReported
	}
	return nil
}

// execute saves the config when asked, then processes the first file.
func execute(cfg *config.Config, saveTo string, files []string) error {
	if saveTo != "" {
		if err := cfg.SaveTo(saveTo); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		logger.Info("config saved", zap.String("path", saveTo))
	}
	if len(files) == 0 {
		return nil
	}

	path := files[0]
	if len(files) > 1 {
		logger.Warn("only the first file is processed",
			zap.String("file", path),
			zap.Strings("ignored", files[1:]),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, path: path}
	if err := a.process(ctx); err != nil {
		if !cfg.Watch.Enabled {
			return err
		}
		logger.Error("initial run failed", zap.Error(err))
	}

	if !cfg.Watch.Enabled {
		return nil
	}

	w, err := watch.New(path, cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	return w.Run(ctx, a.process)
}

type app struct {
	cfg  *config.Config
	path string
}

func (a *app) material() render.Material {
	m := render.DefaultMaterial()
	m.Clear = a.cfg.Render.ClearColor
	return m
}

// process decodes the file and either previews it or writes every view.
func (a *app) process(ctx context.Context) error {
	dec := stl.Decoder{AcceptSolidHeader: a.cfg.Decoder.AcceptSolidHeader}
	p, err := pipeline.Load(a.path, dec, a.cfg.Render.Views)
	if err != nil {
		return err
	}

	if a.cfg.Window.Enabled {
		return preview.Run(ctx, preview.Config{
			Title:         "stl2png - " + p.Path,
			Width:         a.cfg.Window.Width,
			Height:        a.cfg.Window.Height,
			FramesPerView: a.cfg.Window.FramesPerView,
			VSync:         a.cfg.Window.VSync,
			Material:      a.material(),
		}, p.Scene, p.Views)
	}

	backend, err := a.newBackend(p.Scene)
	if err != nil {
		return err
	}
	defer backend.Close()

	writer, err := snapshot.New(a.cfg.Output.Dir, a.cfg.Output.Prefix, a.cfg.Output.Format)
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{Backend: backend, Writer: writer, Workers: a.cfg.Render.Workers}
	results, err := runner.Run(ctx, p)
	for _, r := range results {
		fmt.Println(r.Path)
	}
	return err
}

func (a *app) newBackend(scene render.Scene) (render.Backend, error) {
	switch strings.ToLower(a.cfg.Render.Backend) {
	case config.BackendGL:
		return glrender.New(scene, glrender.Options{
			Width:    a.cfg.Render.Width,
			Height:   a.cfg.Render.Height,
			Material: a.material(),
		})
	case config.BackendSoft, "":
		return soft.New(scene, soft.Options{
			Width:       a.cfg.Render.Width,
			Height:      a.cfg.Render.Height,
			Supersample: a.cfg.Render.Supersample,
			Material:    a.material(),
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", a.cfg.Render.Backend)
	}
}
