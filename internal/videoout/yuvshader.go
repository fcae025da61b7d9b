package videoout

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/kestrelav/avplay/internal/playererrors"
)

// Core GL has no native planar-YUV texture format, so three single-channel
// (RED) textures carry Y, U, and V, and this fragment shader performs the
// YUV→RGB conversion at draw time — generalized from the teacher's own
// shader-compile idiom in renderer/renderer.go (newProgram/compileShader).
const vertexShaderSrc = `
#version 410
layout(location = 0) in vec2 position;
layout(location = 1) in vec2 texCoord;
out vec2 fragTexCoord;
void main() {
    fragTexCoord = texCoord;
    gl_Position = vec4(position, 0.0, 1.0);
}
` + "\x00"

const fragmentShaderSrc = `
#version 410
in vec2 fragTexCoord;
out vec4 outColor;
uniform sampler2D texY;
uniform sampler2D texU;
uniform sampler2D texV;
void main() {
    float y = texture(texY, fragTexCoord).r;
    float u = texture(texU, fragTexCoord).r - 0.5;
    float v = texture(texV, fragTexCoord).r - 0.5;
    float r = y + 1.402 * v;
    float g = y - 0.344136 * u - 0.714136 * v;
    float b = y + 1.772 * u;
    outColor = vec4(r, g, b, 1.0);
}
` + "\x00"

type yuvShader struct {
	program        uint32
	vao, vbo       uint32
	planeTextures  [3]uint32
	planeWidth     [3]int
	planeHeight    [3]int
}

func newYUVShader() (*yuvShader, error) {
	vs, err := compileShader(vertexShaderSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	fs, err := compileShader(fragmentShaderSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logBuf := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logBuf))
		return nil, playererrors.NewSetupError("link_program", fmt.Errorf("%s", logBuf))
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	s := &yuvShader{program: program}

	// Fullscreen quad: position(x,y), texCoord(u,v).
	vertices := []float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		-1, 1, 0, 0,
		1, 1, 1, 0,
	}
	gl.GenVertexArrays(1, &s.vao)
	gl.BindVertexArray(s.vao)

	gl.GenBuffers(1, &s.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)

	gl.GenTextures(3, &s.planeTextures[0])
	for _, tex := range s.planeTextures {
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}

	return s, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logBuf := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logBuf))
		return 0, playererrors.NewSetupError("compile_shader", fmt.Errorf("%s", logBuf))
	}
	return shader, nil
}

// uploadPlane uploads one Y/U/V plane into its texture unit, reallocating
// the texture storage only when dimensions change (spec §4.6's "lazy
// picture allocation").
func (s *yuvShader) uploadPlane(index int, plane []byte, linesize, height int) {
	if len(plane) == 0 {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(index))
	gl.BindTexture(gl.TEXTURE_2D, s.planeTextures[index])

	if s.planeWidth[index] != linesize || s.planeHeight[index] != height {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(linesize), int32(height), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(plane))
		s.planeWidth[index] = linesize
		s.planeHeight[index] = height
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(linesize), int32(height), gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(plane))
	}
}

func (s *yuvShader) draw(viewport [4]int32) {
	gl.Viewport(viewport[0], viewport[1], viewport[2], viewport[3])
	gl.UseProgram(s.program)
	gl.Uniform1i(gl.GetUniformLocation(s.program, gl.Str("texY\x00")), 0)
	gl.Uniform1i(gl.GetUniformLocation(s.program, gl.Str("texU\x00")), 1)
	gl.Uniform1i(gl.GetUniformLocation(s.program, gl.Str("texV\x00")), 2)
	gl.BindVertexArray(s.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func (s *yuvShader) close() {
	gl.DeleteTextures(3, &s.planeTextures[0])
	gl.DeleteBuffers(1, &s.vbo)
	gl.DeleteVertexArrays(1, &s.vao)
	gl.DeleteProgram(s.program)
}
