// This file is part of GoStation.
//
// GoStation is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoStation is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoStation.  If not, see <https://www.gnu.org/licenses/>.

package sdlgl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.2-core/gl"

	"github.com/redcrab/gostation/rendering"
)

// maxVertices is the capacity of the vertex batch. A batch is flushed when
// it fills, when the draw offset changes and on present.
const maxVertices = 64 * 1024

const vertexShader = `
#version 150

in vec2 vertex_position;
in vec3 vertex_color;

uniform vec2 draw_offset;

out vec3 color;

void main() {
	vec2 pos = vertex_position + draw_offset;

	// VRAM coordinates to clip space
	float x = pos.x / 512.0 - 1.0;
	float y = 1.0 - pos.y / 256.0;

	gl_Position = vec4(x, y, 0.0, 1.0);
	color = vertex_color;
}
` + "\x00"

const fragmentShader = `
#version 150

in vec3 color;
out vec4 frag_color;

void main() {
	frag_color = vec4(color, 1.0);
}
` + "\x00"

// renderer batches vertices and draws them with a single shader program.
type renderer struct {
	program uint32
	vao     uint32
	vbo     uint32

	offsetUniform int32

	// interleaved x, y, r, g, b as floats
	vertices []float32
}

const vertexStride = 5

func newRenderer() (*renderer, error) {
	program, err := buildProgram()
	if err != nil {
		return nil, err
	}

	rnd := &renderer{
		program:  program,
		vertices: make([]float32, 0, maxVertices*vertexStride),
	}

	gl.GenVertexArrays(1, &rnd.vao)
	gl.BindVertexArray(rnd.vao)

	gl.GenBuffers(1, &rnd.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, rnd.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, maxVertices*vertexStride*4, nil, gl.DYNAMIC_DRAW)

	pos := uint32(gl.GetAttribLocation(program, gl.Str("vertex_position\x00")))
	gl.EnableVertexAttribArray(pos)
	gl.VertexAttribPointer(pos, 2, gl.FLOAT, false, vertexStride*4, gl.PtrOffset(0))

	col := uint32(gl.GetAttribLocation(program, gl.Str("vertex_color\x00")))
	gl.EnableVertexAttribArray(col)
	gl.VertexAttribPointer(col, 3, gl.FLOAT, false, vertexStride*4, gl.PtrOffset(2*4))

	rnd.offsetUniform = gl.GetUniformLocation(program, gl.Str("draw_offset\x00"))

	gl.UseProgram(program)
	gl.Uniform2f(rnd.offsetUniform, 0, 0)

	gl.ClearColor(0, 0, 0, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	return rnd, nil
}

func (rnd *renderer) destroy() {
	gl.DeleteBuffers(1, &rnd.vbo)
	gl.DeleteVertexArrays(1, &rnd.vao)
	gl.DeleteProgram(rnd.program)
}

func (rnd *renderer) pushVertex(p rendering.Position, c rendering.Color) {
	rnd.vertices = append(rnd.vertices,
		float32(p.X), float32(p.Y),
		float32(c.R)/255.0, float32(c.G)/255.0, float32(c.B)/255.0)
}

// PushTriangle implements the rendering.Backend interface.
func (win *Window) PushTriangle(positions [3]rendering.Position, colors [3]rendering.Color) {
	rnd := win.renderer
	if len(rnd.vertices)+3*vertexStride > cap(rnd.vertices) {
		rnd.flush()
	}
	for i := 0; i < 3; i++ {
		rnd.pushVertex(positions[i], colors[i])
	}
}

// PushQuad implements the rendering.Backend interface. The quad becomes two
// triangles with the winding kept stable.
func (win *Window) PushQuad(positions [4]rendering.Position, colors [4]rendering.Color) {
	win.PushTriangle(
		[3]rendering.Position{positions[0], positions[1], positions[2]},
		[3]rendering.Color{colors[0], colors[1], colors[2]})
	win.PushTriangle(
		[3]rendering.Position{positions[0], positions[2], positions[3]},
		[3]rendering.Color{colors[0], colors[2], colors[3]})
}

// SetDrawOffset implements the rendering.Backend interface. Batched
// vertices are drawn with the offset that was current when they were
// pushed, so the batch flushes first.
func (win *Window) SetDrawOffset(x int16, y int16) {
	rnd := win.renderer
	rnd.flush()
	gl.Uniform2f(rnd.offsetUniform, float32(x), float32(y))
}

// Present implements the rendering.Backend interface.
func (win *Window) Present() {
	win.renderer.flush()
	win.window.GLSwap()
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (rnd *renderer) flush() {
	if len(rnd.vertices) == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, rnd.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(rnd.vertices)*4, gl.Ptr(rnd.vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(rnd.vertices)/vertexStride))

	rnd.vertices = rnd.vertices[:0]
}

func buildProgram() (uint32, error) {
	vert, err := compileShader(gl.VERTEX_SHADER, vertexShader)
	if err != nil {
		return 0, err
	}
	frag, err := compileShader(gl.FRAGMENT_SHADER, fragmentShader)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("sdlgl: program link failed: %s", log)
	}

	return program, nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("sdlgl: shader compilation failed: %s", log)
	}

	return shader, nil
}
