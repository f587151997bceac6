// Package geometry turns a decoded mesh into shaded vertices and the model
// transform that fits it into a 2-unit cube around the origin.
package geometry

import (
	"github.com/chewxy/math32"

	"github.com/ulassi/stl2png/pkg/math"
	"github.com/ulassi/stl2png/pkg/stl"
)

// DegenerateNormalLength is the stored normal length below which a facet
// normal is recomputed from its vertices.
const DegenerateNormalLength = 1e-5

// FitSize is the edge length of the cube the largest mesh extent is scaled to.
const FitSize = 2

// ShadedVertex is a position paired with the shading normal of its triangle.
type ShadedVertex struct {
	Position math.Vec3
	Normal   math.Vec3
}

// BoundingExtent is the axis-aligned bounds and vertex centroid of a mesh.
// Centroid is the mean of all vertex occurrences, not the box midpoint.
type BoundingExtent struct {
	Min      math.Vec3
	Max      math.Vec3
	Centroid math.Vec3
}

// Size returns Max - Min.
func (b BoundingExtent) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// ModelTransform translates by Translation, then scales uniformly by Scale.
type ModelTransform struct {
	Scale       float32
	Translation math.Vec3
}

// IdentityTransform leaves positions unchanged.
func IdentityTransform() ModelTransform {
	return ModelTransform{Scale: 1}
}

// Matrix returns the column-major S·T matrix.
func (t ModelTransform) Matrix() math.Mat4 {
	return math.Scale(math.Splat(t.Scale)).Mul(math.Translate(t.Translation))
}

// Apply transforms a single position.
func (t ModelTransform) Apply(p math.Vec3) math.Vec3 {
	return p.Add(t.Translation).Scale(t.Scale)
}

// Stats summarizes a normalization pass.
type Stats struct {
	Triangles int
	// Recomputed counts facets whose stored normal was below the threshold.
	Recomputed int
	// Degenerate counts facets with neither a usable stored normal nor area.
	Degenerate int
}

// Result bundles everything Normalize derives from a mesh.
type Result struct {
	Vertices  []ShadedVertex
	Extent    BoundingExtent
	Transform ModelTransform
	Stats     Stats
}

// Normalize computes shaded vertices (three per triangle, in file order),
// the bounding extent and the model transform in a single pass.
func Normalize(m *stl.Mesh) ([]ShadedVertex, BoundingExtent, ModelTransform) {
	r := Process(m)
	return r.Vertices, r.Extent, r.Transform
}

// Process is Normalize with normal statistics attached.
func Process(m *stl.Mesh) Result {
	n := len(m.Triangles)
	if n == 0 {
		return Result{Vertices: []ShadedVertex{}, Transform: IdentityTransform()}
	}

	res := Result{
		Vertices: make([]ShadedVertex, 0, 3*n),
		Stats:    Stats{Triangles: n},
	}
	lo := math.Splat(math32.Inf(1))
	hi := math.Splat(math32.Inf(-1))
	var centroid math.Vec3
	count := float32(3 * n)

	for _, tri := range m.Triangles {
		normal := tri.Normal
		if normal.Length() < DegenerateNormalLength {
			res.Stats.Recomputed++
			normal = FaceNormal(tri.Vertices)
			if normal == (math.Vec3{}) {
				res.Stats.Degenerate++
			}
		} else {
			normal = normal.Normalize()
		}

		for _, v := range tri.Vertices {
			res.Vertices = append(res.Vertices, ShadedVertex{Position: v, Normal: normal})
			lo = lo.Min(v)
			hi = hi.Max(v)
			centroid = centroid.Add(v.Div(count))
		}
	}

	res.Extent = BoundingExtent{Min: lo, Max: hi, Centroid: centroid}
	res.Transform = Fit(res.Extent)
	return res
}

// Fit returns the transform that centers the extent's centroid at the origin
// and scales its largest dimension to FitSize. An extent with no positive,
// finite dimension keeps scale 1.
func Fit(b BoundingExtent) ModelTransform {
	t := ModelTransform{Scale: 1, Translation: b.Centroid.Negate()}
	largest := b.Size().MaxComponent()
	if largest > 0 && !math32.IsInf(largest, 0) {
		t.Scale = FitSize / largest
	}
	return t
}

// FaceNormal returns normalize((v1-v0) x (v2-v0)), or the zero vector for a
// triangle without area.
func FaceNormal(v [3]math.Vec3) math.Vec3 {
	return v[1].Sub(v[0]).Cross(v[2].Sub(v[0])).Normalize()
}

// Interleave packs vertices as x y z nx ny nz for GPU upload.
func Interleave(vertices []ShadedVertex) []float32 {
	out := make([]float32, 0, len(vertices)*6)
	for _, v := range vertices {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
		)
	}
	return out
}
