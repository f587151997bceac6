package stl

import "github.com/ulassi/stl2png/pkg/math"

// Cube returns an axis-aligned cube of the given edge length with its
// minimum corner at the origin. Normals are left zero.
func Cube(size float32) *Mesh {
	c := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x * size, Y: y * size, Z: z * size} }
	quads := [6][4]math.Vec3{
		{c(0, 0, 0), c(0, 1, 0), c(1, 1, 0), c(1, 0, 0)}, // -z
		{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}, // +z
		{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}, // -y
		{c(0, 1, 0), c(0, 1, 1), c(1, 1, 1), c(1, 1, 0)}, // +y
		{c(0, 0, 0), c(0, 0, 1), c(0, 1, 1), c(0, 1, 0)}, // -x
		{c(1, 0, 0), c(1, 1, 0), c(1, 1, 1), c(1, 0, 1)}, // +x
	}

	m := &Mesh{Triangles: make([]Triangle, 0, 12)}
	m.SetHeader("stl2png cube")
	for _, q := range quads {
		m.Triangles = append(m.Triangles,
			Triangle{Vertices: [3]math.Vec3{q[0], q[1], q[2]}},
			Triangle{Vertices: [3]math.Vec3{q[0], q[2], q[3]}},
		)
	}
	return m
}

// Tetrahedron returns a regular tetrahedron inscribed in a cube of the given
// edge length. Stored normals are face normals that are not unit length.
func Tetrahedron(size float32) *Mesh {
	a := math.Vec3{X: size, Y: size, Z: size}
	b := math.Vec3{X: size, Y: -size, Z: -size}
	c := math.Vec3{X: -size, Y: size, Z: -size}
	d := math.Vec3{X: -size, Y: -size, Z: size}

	faces := [4][3]math.Vec3{{a, b, c}, {a, d, b}, {a, c, d}, {b, d, c}}
	m := &Mesh{Triangles: make([]Triangle, 0, len(faces))}
	m.SetHeader("stl2png tetrahedron")
	for _, f := range faces {
		n := f[1].Sub(f[0]).Cross(f[2].Sub(f[0]))
		m.Triangles = append(m.Triangles, Triangle{Normal: n, Vertices: f})
	}
	return m
}
