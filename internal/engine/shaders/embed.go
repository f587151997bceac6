// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms shaded mesh vertices.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader lights mesh fragments with a two-sided head light.
//
//go:embed mesh.frag
var MeshFragmentShader string
