// Package pipeline runs the decode, normalize, plan, render and write steps
// for one STL file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ulassi/stl2png/internal/logger"
	"github.com/ulassi/stl2png/internal/render"
	"github.com/ulassi/stl2png/internal/snapshot"
	"github.com/ulassi/stl2png/pkg/geometry"
	"github.com/ulassi/stl2png/pkg/stl"
	"github.com/ulassi/stl2png/pkg/viewplan"
)

// Prepared is a decoded and normalized mesh with its planned views.
type Prepared struct {
	Path     string
	Mesh     *stl.Mesh
	Geometry geometry.Result
	Scene    render.Scene
	Views    []viewplan.ViewDescriptor
}

// Load decodes path and prepares it for rendering. tags selects a subset of
// views; empty means all seven.
func Load(path string, dec stl.Decoder, tags []string) (*Prepared, error) {
	views, err := viewplan.Filter(tags)
	if err != nil {
		return nil, err
	}

	mesh, err := dec.ReadFile(path)
	if err != nil {
		return nil, err
	}

	res := geometry.Process(mesh)
	if res.Stats.Degenerate > 0 {
		logger.Warn("facets without normal or area",
			zap.String("file", path),
			zap.Int("count", res.Stats.Degenerate),
		)
	}
	logger.Info("mesh loaded",
		zap.String("file", path),
		zap.Int("facets", len(mesh.Triangles)),
		zap.Int("recomputed_normals", res.Stats.Recomputed),
		zap.Any("min", res.Extent.Min),
		zap.Any("max", res.Extent.Max),
		zap.Any("centroid", res.Extent.Centroid),
		zap.Float32("scale", res.Transform.Scale),
	)

	return &Prepared{
		Path:     path,
		Mesh:     mesh,
		Geometry: res,
		Scene:    render.NewScene(res.Vertices, res.Transform),
		Views:    views,
	}, nil
}

// Result describes one written snapshot.
type Result struct {
	Tag     viewplan.Tag
	Path    string
	Elapsed time.Duration
}

// Runner renders prepared meshes and writes the snapshots.
type Runner struct {
	Backend render.Backend
	Writer  *snapshot.Writer
	// Workers bounds concurrent views for backends that allow it; 0 means
	// one per CPU.
	Workers int
}

// Run renders every planned view and writes each image once its render
// succeeded. The first failure stops the run; files already written stay.
// Results are in plan order.
func (r *Runner) Run(ctx context.Context, p *Prepared) ([]Result, error) {
	start := time.Now()
	workers := r.workers(len(p.Views))

	var (
		results []Result
		err     error
	)
	if workers <= 1 {
		results, err = r.runSequential(ctx, p.Views)
	} else {
		results, err = r.runParallel(ctx, p.Views, workers)
	}
	if err != nil {
		return results, err
	}

	logger.Info("views written",
		zap.String("file", p.Path),
		zap.Int("views", len(results)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

func (r *Runner) workers(views int) int {
	if !r.Backend.Concurrent() {
		return 1
	}
	n := r.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return min(n, views)
}

func (r *Runner) runSequential(ctx context.Context, views []viewplan.ViewDescriptor) ([]Result, error) {
	results := make([]Result, 0, len(views))
	for _, view := range views {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.renderOne(view)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runParallel(ctx context.Context, views []viewplan.ViewDescriptor, workers int) ([]Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]*Result, len(views))
	var (
		firstErr error
		once     sync.Once
		wg       sync.WaitGroup
	)

	jobs := make(chan int, len(views))
	for i := range views {
		jobs <- i
	}
	close(jobs)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				res, err := r.renderOne(views[idx])
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				slots[idx] = &res
			}
		}()
	}
	wg.Wait()

	results := make([]Result, 0, len(views))
	for _, s := range slots {
		if s != nil {
			results = append(results, *s)
		}
	}
	if firstErr != nil {
		return results, firstErr
	}
	if err := ctx.Err(); err != nil && len(results) < len(views) {
		return results, err
	}
	return results, nil
}

func (r *Runner) renderOne(view viewplan.ViewDescriptor) (Result, error) {
	start := time.Now()
	img, err := r.Backend.Render(view)
	if err != nil {
		return Result{}, fmt.Errorf("rendering view %s: %w", view.Tag, err)
	}
	if img == nil {
		return Result{}, fmt.Errorf("rendering view %s: %w", view.Tag, errNoImage)
	}

	path, err := r.Writer.Write(view.Tag, img)
	if err != nil {
		return Result{}, fmt.Errorf("writing view %s: %w", view.Tag, err)
	}

	elapsed := time.Since(start)
	logger.Debug("view written",
		zap.String("view", string(view.Tag)),
		zap.String("projection", view.Projection.String()),
		zap.String("path", path),
		zap.Duration("elapsed", elapsed),
	)
	return Result{Tag: view.Tag, Path: path, Elapsed: elapsed}, nil
}

var errNoImage = errors.New("backend returned no image")
