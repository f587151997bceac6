package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulassi/stl2png/pkg/math"
	"github.com/ulassi/stl2png/pkg/stl"
)

const eps = 1e-5

func tri(normal math.Vec3, a, b, c math.Vec3) stl.Triangle {
	return stl.Triangle{Normal: normal, Vertices: [3]math.Vec3{a, b, c}}
}

func assertVec3Near(t *testing.T, want, got math.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, eps, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, eps, msgAndArgs...)
}

func TestNormalize_SingleTriangle(t *testing.T) {
	mesh := &stl.Mesh{Triangles: []stl.Triangle{
		tri(math.Vec3{}, math.Vec3{}, math.Vec3{X: 2}, math.Vec3{Y: 2}),
	}}

	vertices, extent, transform := Normalize(mesh)

	require.Len(t, vertices, 3)
	assert.Equal(t, math.Vec3{}, extent.Min)
	assert.Equal(t, math.Vec3{X: 2, Y: 2}, extent.Max)
	assertVec3Near(t, math.Vec3{X: 2.0 / 3, Y: 2.0 / 3}, extent.Centroid)
	assert.InDelta(t, 1, transform.Scale, eps)
	assertVec3Near(t, math.Vec3{X: -2.0 / 3, Y: -2.0 / 3}, transform.Translation)

	for _, v := range vertices {
		assertVec3Near(t, math.Vec3{Z: 1}, v.Normal, "recomputed normal")
	}
}

func TestNormalize_StoredNormalIsNormalized(t *testing.T) {
	mesh := &stl.Mesh{Triangles: []stl.Triangle{
		tri(math.Vec3{X: 0, Y: 0, Z: -5}, math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1}),
	}}

	vertices, _, _ := Normalize(mesh)

	// Stored normal wins over the winding-derived (0,0,1).
	for _, v := range vertices {
		assertVec3Near(t, math.Vec3{Z: -1}, v.Normal)
	}
}

func TestNormalize_DegenerateNormalFallback(t *testing.T) {
	tests := []struct {
		name   string
		stored math.Vec3
		verts  [3]math.Vec3
		want   math.Vec3
	}{
		{
			name:   "zero stored normal",
			stored: math.Vec3{},
			verts:  [3]math.Vec3{{}, {Y: 1}, {Z: 1}},
			want:   math.Vec3{X: 1},
		},
		{
			name:   "tiny stored normal",
			stored: math.Vec3{X: 1e-6},
			verts:  [3]math.Vec3{{}, {Z: 1}, {X: 1}},
			want:   math.Vec3{Y: 1},
		},
		{
			name:   "reversed winding",
			stored: math.Vec3{},
			verts:  [3]math.Vec3{{}, {Y: 1}, {X: 1}},
			want:   math.Vec3{Z: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := &stl.Mesh{Triangles: []stl.Triangle{{Normal: tt.stored, Vertices: tt.verts}}}
			r := Process(mesh)

			require.Len(t, r.Vertices, 3)
			for _, v := range r.Vertices {
				assertVec3Near(t, tt.want, v.Normal)
				assert.InDelta(t, 1, v.Normal.Length(), eps)
			}
			assert.Equal(t, 1, r.Stats.Recomputed)
			assert.Zero(t, r.Stats.Degenerate)
		})
	}
}

func TestNormalize_ZeroAreaTriangle(t *testing.T) {
	mesh := &stl.Mesh{Triangles: []stl.Triangle{
		tri(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{X: 1}, math.Vec3{X: 1}),
		tri(math.Vec3{}, math.Vec3{}, math.Vec3{X: 1}, math.Vec3{X: 2}),
	}}

	r := Process(mesh)

	for _, v := range r.Vertices {
		assert.Equal(t, math.Vec3{}, v.Normal)
		assert.True(t, v.Normal.IsFinite())
	}
	assert.Equal(t, 2, r.Stats.Degenerate)
}

func TestNormalize_OrderAndCount(t *testing.T) {
	mesh := stl.Cube(3)
	vertices, _, _ := Normalize(mesh)

	require.Len(t, vertices, 3*len(mesh.Triangles))
	for i, v := range vertices {
		assert.Equal(t, mesh.Triangles[i/3].Vertices[i%3], v.Position, "vertex %d", i)
	}
}

func TestNormalize_CubeFitsUnitBox(t *testing.T) {
	mesh := stl.Cube(10)
	vertices, extent, transform := Normalize(mesh)

	assert.InDelta(t, 0.2, transform.Scale, eps)
	assertVec3Near(t, math.Vec3{X: 10, Y: 10, Z: 10}, extent.Size())

	m := transform.Matrix()
	for _, v := range vertices {
		p := m.TransformVec3(v.Position)
		assertVec3Near(t, transform.Apply(v.Position), p)
		for _, c := range p.Array() {
			assert.LessOrEqual(t, math32.Abs(c), float32(2))
		}
	}
}

func TestNormalize_CentroidIsVertexMean(t *testing.T) {
	// Three triangles crowd the origin while one reaches out to x=10, so the
	// vertex mean differs from the box midpoint.
	mesh := &stl.Mesh{Triangles: []stl.Triangle{
		tri(math.Vec3{}, math.Vec3{}, math.Vec3{}, math.Vec3{}),
		tri(math.Vec3{}, math.Vec3{}, math.Vec3{}, math.Vec3{}),
		tri(math.Vec3{}, math.Vec3{}, math.Vec3{}, math.Vec3{}),
		tri(math.Vec3{}, math.Vec3{}, math.Vec3{}, math.Vec3{X: 12}),
	}}

	_, extent, transform := Normalize(mesh)

	assertVec3Near(t, math.Vec3{X: 1}, extent.Centroid)
	assertVec3Near(t, math.Vec3{X: -1}, transform.Translation)
	assert.InDelta(t, 2.0/12, transform.Scale, eps)
}

func TestNormalize_EmptyMesh(t *testing.T) {
	vertices, extent, transform := Normalize(&stl.Mesh{})

	assert.Empty(t, vertices)
	assert.Equal(t, BoundingExtent{}, extent)
	assert.Equal(t, IdentityTransform(), transform)
	assert.Equal(t, math.Identity(), transform.Matrix())
}

func TestFit_ZeroExtentKeepsUnitScale(t *testing.T) {
	tests := []struct {
		name   string
		extent BoundingExtent
	}{
		{"single point", BoundingExtent{Min: math.Vec3{X: 3}, Max: math.Vec3{X: 3}, Centroid: math.Vec3{X: 3}}},
		{"nan", BoundingExtent{Max: math.Vec3{X: math32.NaN()}}},
		{"inf", BoundingExtent{Max: math.Vec3{Y: math32.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := Fit(tt.extent)
			assert.Equal(t, float32(1), fit.Scale)
			assert.Equal(t, tt.extent.Centroid.Negate(), fit.Translation)
		})
	}
}

func TestInterleave(t *testing.T) {
	got := Interleave([]ShadedVertex{
		{Position: math.Vec3{X: 1, Y: 2, Z: 3}, Normal: math.Vec3{Z: 1}},
		{Position: math.Vec3{X: 4, Y: 5, Z: 6}, Normal: math.Vec3{X: -1}},
	})

	assert.Equal(t, []float32{1, 2, 3, 0, 0, 1, 4, 5, 6, -1, 0, 0}, got)
}
