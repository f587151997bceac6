package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Render.Width != 1920 || cfg.Render.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.Backend != BackendSoft {
		t.Errorf("expected soft backend, got %s", cfg.Render.Backend)
	}
	if cfg.Render.ClearColor != [4]float32{0.1, 0.1, 0.1, 1} {
		t.Errorf("unexpected clear color %v", cfg.Render.ClearColor)
	}
	if cfg.Output.Dir != "." || cfg.Output.Prefix != "view_" || cfg.Output.Format != FormatPNG {
		t.Errorf("unexpected output defaults %+v", cfg.Output)
	}
	if cfg.Window.Enabled {
		t.Error("expected headless mode by default")
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 || cfg.Window.FramesPerView != 100 {
		t.Errorf("unexpected window defaults %+v", cfg.Window)
	}
	if cfg.Decoder.AcceptSolidHeader {
		t.Error("expected solid headers to be rejected by default")
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("expected 200ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
render:
  width: 800
  height: 600
  backend: gl
  views: [px, or]

output:
  dir: out
  format: webp

window:
  frames_per_view: 30

decoder:
  accept_solid_header: true

watch:
  debounce: 1s

logging:
  level: debug
  log_file: "/tmp/stl2png.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Render.Width != 800 || cfg.Render.Height != 600 || cfg.Render.Backend != BackendGL {
		t.Errorf("render not loaded: %+v", cfg.Render)
	}
	if len(cfg.Render.Views) != 2 || cfg.Render.Views[1] != "or" {
		t.Errorf("views not loaded: %v", cfg.Render.Views)
	}
	if cfg.Output.Dir != "out" || cfg.Output.Format != FormatWebP {
		t.Errorf("output not loaded: %+v", cfg.Output)
	}
	if cfg.Window.FramesPerView != 30 {
		t.Errorf("expected 30 frames per view, got %d", cfg.Window.FramesPerView)
	}
	if !cfg.Decoder.AcceptSolidHeader {
		t.Error("expected accept_solid_header true")
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.LogFile != "/tmp/stl2png.log" {
		t.Errorf("expected log file, got %s", cfg.Logging.LogFile)
	}

	// Values absent from the file keep their defaults.
	if cfg.Render.Supersample != 2 || cfg.Output.Prefix != "view_" || cfg.Window.Width != 640 {
		t.Error("defaults were overwritten by a partial file")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty file", "", false},
		{"unknown key", "render:\n  colour: red\n", true},
		{"bad yaml", "render: [width\n", true},
		{"bad duration", "watch:\n  debounce: soon\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			err := loadFromFile(Default(), path)
			if (err != nil) != tt.wantErr {
				t.Errorf("loadFromFile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Priority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "stl2png.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  width: 800\n  height: 600\noutput:\n  dir: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags, args, err := ParseFlags(fs, []string{
		"-config", configPath, "-width", "320", "-format", "WEBP", "-views", "PX, or", "-debug", "part.stl",
	})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if len(args) != 1 || args[0] != "part.stl" {
		t.Errorf("positional args = %v", args)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Render.Width != 320 {
		t.Errorf("flag should beat file: width %d", cfg.Render.Width)
	}
	if cfg.Render.Height != 600 {
		t.Errorf("file should beat default: height %d", cfg.Render.Height)
	}
	if cfg.Output.Dir != "from-file" {
		t.Errorf("output dir = %s", cfg.Output.Dir)
	}
	if cfg.Output.Format != FormatWebP {
		t.Errorf("format = %s", cfg.Output.Format)
	}
	if len(cfg.Render.Views) != 2 || cfg.Render.Views[0] != "px" || cfg.Render.Views[1] != "or" {
		t.Errorf("views = %v", cfg.Render.Views)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %s", cfg.Logging.Level)
	}
}

func TestLoad_InvalidFlag(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(&Flags{Config: configPath, Backend: "vulkan"})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Render.Width = 0 }},
		{"huge width", func(c *Config) { c.Render.Width = MaxDimension + 1 }},
		{"huge height", func(c *Config) { c.Render.Height = 1 << 30 }},
		{"backend", func(c *Config) { c.Render.Backend = "dx12" }},
		{"supersample", func(c *Config) { c.Render.Supersample = 8 }},
		{"workers", func(c *Config) { c.Render.Workers = -1 }},
		{"format", func(c *Config) { c.Output.Format = "jpg" }},
		{"prefix", func(c *Config) { c.Output.Prefix = "" }},
		{"window", func(c *Config) { c.Window.Height = -1 }},
		{"frames", func(c *Config) { c.Window.FramesPerView = 0 }},
		{"debounce", func(c *Config) { c.Watch.Debounce = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidate_MaxDimensionAllowed(t *testing.T) {
	cfg := Default()
	cfg.Render.Width = MaxDimension
	cfg.Render.Height = MaxDimension
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := Default()
	cfg.Render.Width = 1024
	cfg.Output.Format = FormatWebP
	cfg.Watch.Debounce = 750 * time.Millisecond

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, configPath); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loaded.Render.Width != 1024 || loaded.Output.Format != FormatWebP || loaded.Watch.Debounce != 750*time.Millisecond {
		t.Errorf("saved config not restored: %+v", loaded)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	t.Logf("Config directory: %s", dir)
}
