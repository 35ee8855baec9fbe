package window

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window *glfw.Window
}

var _ platform = &glfwWindow{}

// newPlatformWindow creates the GLFW window with an OpenGL 4.3 core context, registers the
// input callbacks and stores it as the platform window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.MakeContextCurrent()
	win.SetSizeLimits(w.minWidth, w.minHeight, sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	w.platform = &glfwWindow{window: win}

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, act glfw.Action, _ glfw.ModifierKey) {
		w.handleKey(int(key), toAction(act))
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, act glfw.Action, _ glfw.ModifierKey) {
		w.handleMouseButton(int(button), toAction(act))
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.handleCursor(xpos, ypos)
	})

	// Framebuffer size differs from window size on high-DPI displays, the viewport needs pixels.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.handleFramebufferSize(width, height)
	})

	w.width, w.height = w.platform.framebufferSize()
	common.Logger().Info("Created window", "title", w.title, "width", w.width, "height", w.height)
	return nil
}

func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

func toAction(act glfw.Action) action {
	switch act {
	case glfw.Press:
		return actionPress
	case glfw.Repeat:
		return actionRepeat
	default:
		return actionRelease
	}
}

func (g *glfwWindow) shouldClose() bool {
	return g.window.ShouldClose()
}

func (g *glfwWindow) setShouldClose(value bool) {
	g.window.SetShouldClose(value)
}

// pollEvents processes pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (g *glfwWindow) pollEvents() {
	glfw.PollEvents()
}

func (g *glfwWindow) swapBuffers() {
	g.window.SwapBuffers()
}

func (g *glfwWindow) setSwapInterval(interval int) {
	glfw.SwapInterval(interval)
}

func (g *glfwWindow) time() float64 {
	return glfw.GetTime()
}

func (g *glfwWindow) framebufferSize() (int, int) {
	return g.window.GetFramebufferSize()
}

func (g *glfwWindow) cursorCaptured() bool {
	return g.window.GetInputMode(glfw.CursorMode) == glfw.CursorDisabled
}

func (g *glfwWindow) setCursorCaptured(captured bool) {
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	g.window.SetInputMode(glfw.CursorMode, mode)
}

func (g *glfwWindow) monitorCount() int {
	return len(glfw.GetMonitors())
}

// enterFullscreen moves the window onto a monitor at the monitor's current video mode.
//
// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_monitor
func (g *glfwWindow) enterFullscreen(monitor int) {
	monitors := glfw.GetMonitors()
	if monitor >= len(monitors) {
		return
	}
	m := monitors[monitor]
	mode := m.GetVideoMode()
	g.window.SetMonitor(m, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
}

func (g *glfwWindow) exitFullscreen(pos, size [2]int) {
	g.window.SetMonitor(nil, pos[0], pos[1], size[0], size[1], 0)
}

func (g *glfwWindow) windowRect() (pos, size [2]int) {
	pos[0], pos[1] = g.window.GetPos()
	size[0], size[1] = g.window.GetSize()
	return pos, size
}

func (g *glfwWindow) setIcon(icon image.Image) {
	g.window.SetIcon([]image.Image{icon})
}

// destroy destroys the GLFW window and terminates the GLFW library.
func (g *glfwWindow) destroy() {
	g.window.Destroy()
	glfw.Terminate()
}
