package config

import (
	"errors"
	"flag"
	"strings"
)

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config      string
	Debug       bool
	Window      bool
	Watch       bool
	AcceptSolid bool
	Backend     string
	Width       int
	Height      int
	Out         string
	Format      string
	Workers     int
	Views       string
	SaveConfig  string
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Window, "window", false, "Open a preview window instead of writing images")
	fs.BoolVar(&f.Watch, "watch", false, "Re-render whenever the input file changes")
	fs.BoolVar(&f.AcceptSolid, "accept-solid", false, `Decode binary files whose header contains "solid"`)
	fs.StringVar(&f.Backend, "backend", "", "Renderer: soft or gl")
	fs.IntVar(&f.Width, "width", 0, "Image width")
	fs.IntVar(&f.Height, "height", 0, "Image height")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.StringVar(&f.Format, "format", "", "Image format: png or webp")
	fs.IntVar(&f.Workers, "workers", 0, "Concurrent views for the soft renderer (0 = config)")
	fs.StringVar(&f.Views, "views", "", "Comma-separated view tags to render (default all)")
	fs.StringVar(&f.SaveConfig, "save-config", "", "Write the effective config to this path")
}

// ErrNoInput is returned by ParseFlags when no input file was named.
var ErrNoInput = errors.New("no STL file to process")

// ParseFlags parses args into a new Flags and returns the input files.
// Options may come before or after file names, and empty arguments are
// skipped. With no files the parsed Flags are still returned, together with
// ErrNoInput.
func ParseFlags(fs *flag.FlagSet, args []string) (*Flags, []string, error) {
	f := &Flags{}
	f.Register(fs)

	var files []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		if rest[0] != "" {
			files = append(files, rest[0])
		}
		args = rest[1:]
	}

	if len(files) == 0 {
		return f, nil, ErrNoInput
	}
	return f, files, nil
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Window {
		cfg.Window.Enabled = true
	}
	if f.Watch {
		cfg.Watch.Enabled = true
	}
	if f.AcceptSolid {
		cfg.Decoder.AcceptSolidHeader = true
	}
	if f.Backend != "" {
		cfg.Render.Backend = strings.ToLower(f.Backend)
	}
	if f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.Format != "" {
		cfg.Output.Format = strings.ToLower(f.Format)
	}
	if f.Workers > 0 {
		cfg.Render.Workers = f.Workers
	}
	if f.Views != "" {
		cfg.Render.Views = splitList(f.Views)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
