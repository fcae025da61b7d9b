// Package videoout binds the platform window/renderer via go-gl/glfw and
// go-gl/gl, generalizing the teacher's glfwcontext/context.go window
// lifecycle and renderer.go shader-compilation idiom into a YUV-texture
// video surface — the concrete instance of SPEC_FULL.md §6's "renderer
// with a locked YUV texture surface" contract (C10).
package videoout

import (
	"log/slog"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/kestrelav/avplay/internal/avcodec"
	"github.com/kestrelav/avplay/internal/playererrors"
)

func init() {
	// GLFW/GL calls must run on the thread that created the context,
	// same constraint the teacher's glfwcontext/context.go documents.
	runtime.LockOSThread()
}

// Window owns the GLFW window, the GL context, and the YUV texture
// pipeline.
type Window struct {
	win    *glfw.Window
	log    *slog.Logger
	shader *yuvShader

	texWidth, texHeight int
}

// Open creates a window of the given size and compiles the YUV→RGB
// shader program.
func Open(log *slog.Logger, width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, playererrors.NewSetupError("glfw_init", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, playererrors.NewSetupError("glfw_create_window", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, playererrors.NewSetupError("gl_init", err)
	}

	glfw.SwapInterval(1)

	shader, err := newYUVShader()
	if err != nil {
		glfw.Terminate()
		return nil, err
	}

	return &Window{win: win, log: log, shader: shader}, nil
}

// ShouldClose reports whether the user requested the window to close.
func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// PollEvents dispatches queued input events (spec §6's "poll_event").
func (w *Window) PollEvents() { glfw.PollEvents() }

// WaitEventsTimeout blocks for input or the given timeout, backing the
// "blocking event-wait for input" contract while still letting the
// refresh ticker make progress.
func (w *Window) WaitEventsTimeout(seconds float64) { glfw.WaitEventsTimeout(seconds) }

// PostEmptyEvent wakes a blocked WaitEventsTimeout call, used by the
// refresh-ticker goroutine (spec §9).
func PostEmptyEvent() { glfw.PostEmptyEvent() }

// Display uploads a decoded picture's Y/U/V planes into three
// single-channel textures and draws the shader-converted quad,
// letterboxed to preserve aspect ratio (spec §4.6's Display step).
func (w *Window) Display(pic *avcodec.Picture) {
	if pic == nil || len(pic.Planes) < 3 {
		return
	}

	fbWidth, fbHeight := w.win.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	w.shader.uploadPlane(0, pic.Planes[0], pic.Linesize[0], pic.Height)
	w.shader.uploadPlane(1, pic.Planes[1], pic.Linesize[1], pic.Height/2)
	w.shader.uploadPlane(2, pic.Planes[2], pic.Linesize[2], pic.Height/2)

	vx, vy, vw, vh := aspectFitViewport(pic.Width, pic.Height, fbWidth, fbHeight)
	w.shader.draw([4]int32{vx, vy, vw, vh})

	w.win.SwapBuffers()
}

// aspectFitViewport computes the letterboxed viewport rectangle
// (x, y, width, height) that fits srcW×srcH into dstW×dstH while
// preserving aspect ratio (spec §4.6).
func aspectFitViewport(srcW, srcH, dstW, dstH int) (x, y, w, h int32) {
	if srcW == 0 || srcH == 0 {
		return 0, 0, int32(dstW), int32(dstH)
	}
	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(dstW) / float64(dstH)

	if srcAspect > dstAspect {
		fitW := dstW
		fitH := int(float64(dstW) / srcAspect)
		return 0, int32((dstH - fitH) / 2), int32(fitW), int32(fitH)
	}
	fitH := dstH
	fitW := int(float64(dstH) * srcAspect)
	return int32((dstW - fitW) / 2), 0, int32(fitW), int32(fitH)
}

// Close tears down the GL context and the GLFW window.
func (w *Window) Close() {
	w.shader.close()
	w.win.Destroy()
	glfw.Terminate()
}
