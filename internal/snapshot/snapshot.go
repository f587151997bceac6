// Package snapshot writes rendered views to image files.
package snapshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"github.com/ulassi/stl2png/pkg/viewplan"
)

// Supported formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Writer names and encodes snapshot files as <Dir>/<Prefix><tag>.<Format>.
type Writer struct {
	Dir    string
	Prefix string
	Format string
}

// New returns a writer, defaulting to PNG files named view_<tag>.png.
func New(dir, prefix, format string) (*Writer, error) {
	if format == "" {
		format = FormatPNG
	}
	if format != FormatPNG && format != FormatWebP {
		return nil, fmt.Errorf("snapshot: unsupported format %q", format)
	}
	if prefix == "" {
		prefix = "view_"
	}
	return &Writer{Dir: dir, Prefix: prefix, Format: format}, nil
}

// Path returns the file path for tag.
func (w *Writer) Path(tag viewplan.Tag) string {
	name := tag.FileName(w.Prefix, w.Format)
	if w.Dir == "" {
		return name
	}
	return filepath.Join(w.Dir, name)
}

// Write encodes img for tag and returns the written path. A partially
// written file is removed on failure.
func (w *Writer) Write(tag viewplan.Tag, img image.Image) (string, error) {
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	path := w.Path(tag)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	if err := w.Encode(file, img); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// Encode writes img to out in the writer's format.
func (w *Writer) Encode(out io.Writer, img image.Image) error {
	switch w.Format {
	case FormatWebP:
		if err := nativewebp.Encode(out, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		if err := png.Encode(out, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	}
	return nil
}

// FlipRows converts bottom-up RGBA rows, as read back from OpenGL, into a
// top-down image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}
	return img, nil
}
