package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulassi/stl2png/internal/render"
	"github.com/ulassi/stl2png/internal/render/soft"
	"github.com/ulassi/stl2png/internal/snapshot"
	"github.com/ulassi/stl2png/pkg/stl"
	"github.com/ulassi/stl2png/pkg/viewplan"
)

func writeCube(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cube.stl")
	require.NoError(t, stl.WriteFile(path, stl.Cube(5)))
	return path
}

// failingBackend renders solid images until the view named fail.
type failingBackend struct {
	fail       viewplan.Tag
	concurrent bool
	calls      atomic.Int32
}

func (b *failingBackend) Render(view viewplan.ViewDescriptor) (*image.RGBA, error) {
	b.calls.Add(1)
	if view.Tag == b.fail {
		return nil, errors.New("gpu on fire")
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (b *failingBackend) Concurrent() bool { return b.concurrent }
func (b *failingBackend) Close() error     { return nil }

func TestLoad(t *testing.T) {
	p, err := Load(writeCube(t), stl.Decoder{}, nil)
	require.NoError(t, err)

	assert.Len(t, p.Mesh.Triangles, 12)
	assert.Len(t, p.Geometry.Vertices, 36)
	assert.Equal(t, 12, p.Scene.TriangleCount())
	assert.InDelta(t, 0.4, p.Geometry.Transform.Scale, 1e-5)
	require.Len(t, p.Views, 7)
	assert.Equal(t, viewplan.Corner, p.Views[6].Tag)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unknown view", func(t *testing.T) {
		_, err := Load(writeCube(t), stl.Decoder{}, []string{"sideways"})
		assert.Error(t, err)
	})

	t.Run("decode failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ascii.stl")
		require.NoError(t, os.WriteFile(path, []byte("solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid x\n"), 0644))

		_, err := Load(path, stl.Decoder{}, nil)
		assert.ErrorIs(t, err, stl.ErrNotBinaryFormat)
	})
}

func TestRun_SoftBackendWritesAllViews(t *testing.T) {
	for _, workers := range []int{1, 4} {
		p, err := Load(writeCube(t), stl.Decoder{}, nil)
		require.NoError(t, err)

		backend, err := soft.New(p.Scene, soft.Options{Width: 32, Height: 18, Material: render.DefaultMaterial()})
		require.NoError(t, err)

		out := t.TempDir()
		writer, err := snapshot.New(out, "view_", snapshot.FormatPNG)
		require.NoError(t, err)

		runner := &Runner{Backend: backend, Writer: writer, Workers: workers}
		results, err := runner.Run(context.Background(), p)
		require.NoError(t, err)
		require.Len(t, results, 7)

		for i, tag := range []string{"px", "nx", "py", "ny", "pz", "nz", "or"} {
			assert.Equal(t, viewplan.Tag(tag), results[i].Tag)
			path := filepath.Join(out, "view_"+tag+".png")
			assert.Equal(t, path, results[i].Path)

			f, err := os.Open(path)
			require.NoError(t, err, "workers %d", workers)
			cfg, err := png.DecodeConfig(f)
			f.Close()
			require.NoError(t, err)
			assert.Equal(t, 32, cfg.Width)
			assert.Equal(t, 18, cfg.Height)
		}
	}
}

func TestRun_EmptyMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.stl")
	empty := &stl.Mesh{}
	empty.SetHeader("empty")
	require.NoError(t, stl.WriteFile(path, empty))
	// Pad so the file holds room for one facet.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, stl.TriangleSize))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	p, err := Load(path, stl.Decoder{}, []string{"pz"})
	require.NoError(t, err)
	assert.Empty(t, p.Geometry.Vertices)

	backend, err := soft.New(p.Scene, soft.Options{Width: 4, Height: 4, Material: render.DefaultMaterial()})
	require.NoError(t, err)
	writer, err := snapshot.New(t.TempDir(), "", "")
	require.NoError(t, err)

	results, err := (&Runner{Backend: backend, Writer: writer}).Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.FileExists(t, results[0].Path)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	p, err := Load(writeCube(t), stl.Decoder{}, nil)
	require.NoError(t, err)

	out := t.TempDir()
	writer, err := snapshot.New(out, "view_", snapshot.FormatPNG)
	require.NoError(t, err)

	backend := &failingBackend{fail: viewplan.PosY}
	results, err := (&Runner{Backend: backend, Writer: writer}).Run(context.Background(), p)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering view py")
	assert.Len(t, results, 2)
	assert.Equal(t, int32(3), backend.calls.Load())

	assert.FileExists(t, filepath.Join(out, "view_px.png"))
	assert.FileExists(t, filepath.Join(out, "view_nx.png"))
	assert.NoFileExists(t, filepath.Join(out, "view_py.png"))
	assert.NoFileExists(t, filepath.Join(out, "view_or.png"))
}

func TestRun_ParallelFailureSkipsFailedView(t *testing.T) {
	p, err := Load(writeCube(t), stl.Decoder{}, nil)
	require.NoError(t, err)

	out := t.TempDir()
	writer, err := snapshot.New(out, "view_", snapshot.FormatPNG)
	require.NoError(t, err)

	backend := &failingBackend{fail: viewplan.Corner, concurrent: true}
	_, err = (&Runner{Backend: backend, Writer: writer, Workers: 3}).Run(context.Background(), p)

	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(out, "view_or.png"))
}

func TestRun_Canceled(t *testing.T) {
	p, err := Load(writeCube(t), stl.Decoder{}, nil)
	require.NoError(t, err)

	writer, err := snapshot.New(t.TempDir(), "view_", snapshot.FormatPNG)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &failingBackend{}
	results, err := (&Runner{Backend: backend, Writer: writer}).Run(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Zero(t, backend.calls.Load())
}
