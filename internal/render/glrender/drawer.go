// Package glrender renders scenes with OpenGL 4.1 through an SDL2 context.
// Everything here must run on the thread that owns the context.
package glrender

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/ulassi/stl2png/internal/engine/shader"
	"github.com/ulassi/stl2png/internal/engine/shaders"
	"github.com/ulassi/stl2png/internal/logger"
	"github.com/ulassi/stl2png/internal/render"
	"github.com/ulassi/stl2png/pkg/geometry"
	"github.com/ulassi/stl2png/pkg/viewplan"
)

// floatsPerVertex is position + normal.
const floatsPerVertex = 6

var uniformNames = []string{
	"uMVP", "uModel", "uEye", "uColor", "uAmbient", "uDiffuse", "uSpecular", "uShininess",
}

// Drawer owns the GPU copy of a scene and the mesh shader program.
type Drawer struct {
	scene    render.Scene
	material render.Material
	program  uint32
	uniforms map[string]int32
	vao      uint32
	vbo      uint32
	count    int32
}

// NewDrawer uploads scene to the GPU. An OpenGL context must be current.
func NewDrawer(scene render.Scene, material render.Material) (*Drawer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	program, err := shader.CompileProgram(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	uniforms, err := shader.Uniforms(program, uniformNames...)
	if err != nil {
		gl.DeleteProgram(program)
		return nil, err
	}

	d := &Drawer{
		scene:    scene,
		material: material,
		program:  program,
		uniforms: uniforms,
	}
	d.upload()
	return d, nil
}

func (d *Drawer) upload() {
	data := geometry.Interleave(d.scene.Vertices)
	d.count = int32(len(data) / floatsPerVertex)

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	}

	stride := int32(floatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	gl.BindVertexArray(0)
	logger.Debug("mesh uploaded", zap.Int32("vertices", d.count))
}

// Draw renders view into the bound framebuffer using a width x height viewport.
func (d *Drawer) Draw(view viewplan.ViewDescriptor, width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	c := d.material.Clear
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	if d.count == 0 {
		return
	}

	mvp := view.MVP(d.scene.Model, width, height)
	model := d.scene.Model
	m := d.material

	gl.UseProgram(d.program)
	gl.UniformMatrix4fv(d.uniforms["uMVP"], 1, false, mvp.Ptr())
	gl.UniformMatrix4fv(d.uniforms["uModel"], 1, false, model.Ptr())
	gl.Uniform3f(d.uniforms["uEye"], view.Eye.X, view.Eye.Y, view.Eye.Z)
	gl.Uniform3f(d.uniforms["uColor"], m.Color[0], m.Color[1], m.Color[2])
	gl.Uniform1f(d.uniforms["uAmbient"], m.Ambient)
	gl.Uniform1f(d.uniforms["uDiffuse"], m.Diffuse)
	gl.Uniform1f(d.uniforms["uSpecular"], m.Specular)
	gl.Uniform1f(d.uniforms["uShininess"], m.Shininess)

	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, d.count)
	gl.BindVertexArray(0)
}

// Destroy releases GPU resources.
func (d *Drawer) Destroy() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.program != 0 {
		gl.DeleteProgram(d.program)
		d.program = 0
	}
}
