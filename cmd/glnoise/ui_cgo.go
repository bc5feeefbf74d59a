//go:build !tinygo && cgo

package main

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/glproc/glbuild"
	"github.com/soypat/glproc/gleval"
	"github.com/soypat/glproc/glrender"
)

const vertexSrc = `#version 430
in vec2 aPos;
void main() {
	gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

// ui opens a window shading the kernel on the GPU. Drag to pan, scroll to zoom.
func ui(ks gleval.KernelSpec, cfg config) error {
	window, term, err := startGLFW(cfg.size, cfg.size, "glnoise: "+ks.Name)
	if err != nil {
		return err
	}
	defer term()
	fragProg, globals, err := glrender.PreviewProgram(ks.Name)
	if err != nil {
		return err
	}
	var fragSrc bytes.Buffer
	_, err = glbuild.NewDefaultProgrammer().WriteFragment(&fragSrc, fragProg, globals...)
	if err != nil {
		return err
	}
	fragSrc.WriteByte(0)
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexSrc,
		Fragment: fragSrc.String(),
	})
	if err != nil {
		return fmt.Errorf("%s\n\n%w", fragSrc.String(), err)
	}
	defer prog.Delete()
	prog.Bind()
	// Define a quad covering the screen
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	resUniform, err := prog.UniformLocation(glrender.UniformResolution + "\x00")
	if err != nil {
		return err
	}
	scaleUniform, err := prog.UniformLocation(glrender.UniformScale + "\x00")
	if err != nil {
		return err
	}
	offsetUniform, err := prog.UniformLocation(glrender.UniformOffset + "\x00")
	if err != nil {
		return err
	}
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))

	var (
		scale          = cfg.scale / float64(cfg.size) // Domain units per pixel.
		minScale       = scale * 1e-4
		maxScale       = scale * 1e3
		offsetX        float64
		offsetY        float64
		lastMouseX     float64
		lastMouseY     float64
		firstMouseMove = true
		isMousePressed = false
		refresh        = true
	)
	window.SetCursorPosCallback(func(w *glfw.Window, xpos float64, ypos float64) {
		if !isMousePressed {
			return
		}
		refresh = true
		if firstMouseMove {
			lastMouseX = xpos
			lastMouseY = ypos
			firstMouseMove = false
		}
		offsetX -= (xpos - lastMouseX) * scale
		offsetY += (ypos - lastMouseY) * scale // Window y grows downwards.
		lastMouseX = xpos
		lastMouseY = ypos
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		refresh = true
		scale -= yoff * scale * .1
		scale = min(max(scale, minScale), maxScale)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		if action == glfw.Press {
			isMousePressed = true
			firstMouseMove = true
		} else if action == glfw.Release {
			isMousePressed = false
		}
	})

	for !window.ShouldClose() {
		width, height := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		gl.ClearColor(0.0, 0.0, 0.0, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		prog.Bind()
		gl.Uniform2f(resUniform, float32(width), float32(height))
		gl.Uniform1f(scaleUniform, float32(scale))
		gl.Uniform2f(offsetUniform, float32(offsetX), float32(offsetY))

		gl.BindVertexArray(vao)
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
		window.SwapBuffers()
		if err := glgl.Err(); err != nil {
			return err
		}
		for {
			time.Sleep(time.Second / 60)
			glfw.PollEvents()
			if refresh || window.ShouldClose() {
				refresh = false
				break
			}
		}
	}
	return nil
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Println("OpenGL version", gl.GoStr(gl.GetString(gl.VERSION)))
	return window, glfw.Terminate, nil
}
