// Package config handles stl2png configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all renderer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Output  OutputConfig  `yaml:"output"`
	Window  WindowConfig  `yaml:"window"`
	Decoder DecoderConfig `yaml:"decoder"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds headless rendering settings.
type RenderConfig struct {
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	Backend     string     `yaml:"backend"`     // soft or gl
	Supersample int        `yaml:"supersample"` // soft backend only
	Workers     int        `yaml:"workers"`     // 0 = one per CPU
	Views       []string   `yaml:"views"`       // empty = all seven
	ClearColor  [4]float32 `yaml:"clear_color"`
}

// OutputConfig holds snapshot file settings.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Format string `yaml:"format"` // png or webp (lossless)
}

// WindowConfig holds interactive preview settings.
type WindowConfig struct {
	Enabled       bool `yaml:"enabled"`
	Width         int  `yaml:"width"`
	Height        int  `yaml:"height"`
	FramesPerView int  `yaml:"frames_per_view"`
	VSync         bool `yaml:"vsync"`
}

// DecoderConfig holds STL decoding options.
type DecoderConfig struct {
	AcceptSolidHeader bool `yaml:"accept_solid_header"`
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Backend names.
const (
	BackendSoft = "soft"
	BackendGL   = "gl"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// MaxDimension bounds render width and height. The soft backend allocates
// Supersample times each side.
const MaxDimension = 16384

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:       1920,
			Height:      1080,
			Backend:     BackendSoft,
			Supersample: 2,
			Workers:     0,
			ClearColor:  [4]float32{0.1, 0.1, 0.1, 1},
		},
		Output: OutputConfig{
			Dir:    ".",
			Prefix: "view_",
			Format: FormatPNG,
		},
		Window: WindowConfig{
			Enabled:       false,
			Width:         640,
			Height:        480,
			FramesPerView: 100,
			VSync:         true,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, c.Render.Width, c.Render.Height)
	case c.Render.Width > MaxDimension || c.Render.Height > MaxDimension:
		return fmt.Errorf("%w: render size %dx%d exceeds %d", ErrInvalid, c.Render.Width, c.Render.Height, MaxDimension)
	case c.Render.Backend != BackendSoft && c.Render.Backend != BackendGL:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Render.Backend)
	case c.Render.Supersample < 1 || c.Render.Supersample > 4:
		return fmt.Errorf("%w: supersample %d not in 1..4", ErrInvalid, c.Render.Supersample)
	case c.Render.Workers < 0:
		return fmt.Errorf("%w: negative worker count", ErrInvalid)
	case c.Output.Format != FormatPNG && c.Output.Format != FormatWebP:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.Output.Format)
	case c.Output.Prefix == "":
		return fmt.Errorf("%w: empty output prefix", ErrInvalid)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.FramesPerView <= 0:
		return fmt.Errorf("%w: frames_per_view must be positive", ErrInvalid)
	case c.Watch.Debounce < 0:
		return fmt.Errorf("%w: negative watch debounce", ErrInvalid)
	}
	return nil
}
