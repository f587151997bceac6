package config

import (
	"errors"
	"flag"
	"io"
	"testing"
)

func TestParseFlags_Files(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		files     []string
		window    bool
		out       string
		wantNoIn  bool
	}{
		{"flag before file", []string{"-window", "a.stl"}, []string{"a.stl"}, true, "", false},
		{"flag after file", []string{"a.stl", "-window"}, []string{"a.stl"}, true, "", false},
		{"several files", []string{"a.stl", "b.stl", "-out", "x"}, []string{"a.stl", "b.stl"}, false, "x", false},
		{"empty argument skipped", []string{"", "a.stl"}, []string{"a.stl"}, false, "", false},
		{"only empty argument", []string{"", "-window"}, nil, true, "", true},
		{"no arguments", []string{}, nil, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags, files, err := ParseFlags(fs, tt.args)

			if tt.wantNoIn {
				if !errors.Is(err, ErrNoInput) {
					t.Fatalf("err = %v, want ErrNoInput", err)
				}
			} else if err != nil {
				t.Fatalf("ParseFlags: %v", err)
			}

			if flags == nil {
				t.Fatal("flags should be returned")
			}
			if len(files) != len(tt.files) {
				t.Fatalf("files = %v, want %v", files, tt.files)
			}
			for i := range files {
				if files[i] != tt.files[i] {
					t.Errorf("files[%d] = %q, want %q", i, files[i], tt.files[i])
				}
			}
			if flags.Window != tt.window {
				t.Errorf("window = %v, want %v", flags.Window, tt.window)
			}
			if flags.Out != tt.out {
				t.Errorf("out = %q, want %q", flags.Out, tt.out)
			}
		})
	}
}

func TestParseFlags_SaveConfigWithoutInput(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags, _, err := ParseFlags(fs, []string{"-save-config", "out.yaml"})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
	if flags.SaveConfig != "out.yaml" {
		t.Errorf("save-config = %q", flags.SaveConfig)
	}
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, _, err := ParseFlags(fs, []string{"a.stl", "-bogus"})
	if err == nil || errors.Is(err, ErrNoInput) {
		t.Fatalf("err = %v, want a parse error", err)
	}
}
