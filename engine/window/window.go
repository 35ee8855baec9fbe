package window

import (
	"image"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
)

// action is the state change reported with a key or mouse button event.
type action int

const (
	actionRelease action = iota
	actionPress
	actionRepeat
)

// platform is the native window and GL context a Window drives.
type platform interface {
	shouldClose() bool
	setShouldClose(value bool)
	pollEvents()
	swapBuffers()
	setSwapInterval(interval int)
	time() float64
	framebufferSize() (int, int)
	cursorCaptured() bool
	setCursorCaptured(captured bool)
	monitorCount() int
	enterFullscreen(monitor int)
	exitFullscreen(pos, size [2]int)
	windowRect() (pos, size [2]int)
	setIcon(icon image.Image)
	destroy()
}

// Window provides the OpenGL window, its event loop and the input state the camera reads.
// Escape closes the window, F and F11 cycle fullscreen across monitors and back to windowed,
// and a left click toggles cursor capture.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the common.Key* code
	SetKeyDownCallback(callback func(key int))

	// KeyPressed reports whether key is held down.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true while the key is held
	KeyPressed(key int) bool

	// TakeMouseDelta returns the cursor movement accumulated while the cursor was captured
	// since the previous call, and resets it.
	//
	// Returns:
	//   - mgl32.Vec2: the cursor movement in screen pixels
	TakeMouseDelta() mgl32.Vec2

	// CursorCaptured reports whether the cursor is hidden and locked to the window.
	//
	// Returns:
	//   - bool: true while captured
	CursorCaptured() bool

	// Fullscreen reports whether the window currently covers a monitor.
	//
	// Returns:
	//   - bool: true in fullscreen
	Fullscreen() bool

	// SetIcon sets the window icon.
	//
	// Parameters:
	//   - icon: the icon image
	SetIcon(icon image.Image)

	// SetSwapInterval sets how many vertical blanks SwapBuffers waits for.
	//
	// Parameters:
	//   - interval: 0 for no vsync, 1 for every blank
	SetSwapInterval(interval int)

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// Time returns seconds since the window system was initialized.
	//
	// Returns:
	//   - float64: seconds
	Time() float64

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was already closed
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Polls events, then calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, input state and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound resizing, 0 means unlimited.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound resizing.
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	platform platform
	closed   bool

	keys       map[int]bool
	mouseDelta mgl32.Vec2
	lastCursor mgl32.Vec2
	hasCursor  bool

	fullscreen bool
	monitor    int
	savedPos   [2]int
	savedSize  [2]int

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(key int)
}

var _ Window = &engineWindow{}

// NewWindow creates the window and makes its OpenGL 4.3 core context current on the calling
// thread, which stays locked to its OS thread.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the window system or the context cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-raycaster",
		minWidth:  133,
		minHeight: 100,
		width:     1333,
		height:    1000,
		keys:      make(map[int]bool),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key int)) {
	w.onKeyDown = callback
}

func (w *engineWindow) KeyPressed(key int) bool {
	return w.keys[key]
}

func (w *engineWindow) TakeMouseDelta() mgl32.Vec2 {
	d := w.mouseDelta
	w.mouseDelta = mgl32.Vec2{}
	return d
}

func (w *engineWindow) CursorCaptured() bool {
	return w.platform.cursorCaptured()
}

func (w *engineWindow) Fullscreen() bool {
	return w.fullscreen
}

func (w *engineWindow) SetIcon(icon image.Image) {
	w.platform.setIcon(icon)
}

func (w *engineWindow) SetSwapInterval(interval int) {
	w.platform.setSwapInterval(interval)
}

func (w *engineWindow) SwapBuffers() {
	w.platform.swapBuffers()
}

func (w *engineWindow) Time() float64 {
	return w.platform.time()
}

func (w *engineWindow) IsRunning() bool {
	return !w.closed && !w.platform.shouldClose()
}

func (w *engineWindow) RequestClose() {
	w.platform.setShouldClose(true)
}

func (w *engineWindow) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	w.platform.destroy()
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.platform.pollEvents()
		if !w.IsRunning() {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// handleKey updates the key state and runs the built-in bindings.
func (w *engineWindow) handleKey(key int, act action) {
	switch act {
	case actionPress, actionRepeat:
		w.keys[key] = true
	case actionRelease:
		delete(w.keys, key)
	}

	if act != actionPress {
		return
	}
	switch key {
	case common.KeyEsc:
		w.platform.setShouldClose(true)
	case common.KeyF, common.KeyF11:
		w.cycleFullscreen()
	}
	if w.onKeyDown != nil {
		w.onKeyDown(key)
	}
}

// handleMouseButton toggles cursor capture on a left click.
func (w *engineWindow) handleMouseButton(button int, act action) {
	if button != common.MouseButtonLeft || act != actionPress {
		return
	}
	w.platform.setCursorCaptured(!w.platform.cursorCaptured())

	// capturing can warp the cursor
	w.hasCursor = false
}

// handleCursor accumulates cursor movement while the cursor is captured.
func (w *engineWindow) handleCursor(x, y float64) {
	pos := mgl32.Vec2{float32(x), float32(y)}
	captured := w.platform.cursorCaptured()

	if w.hasCursor && captured {
		w.mouseDelta = w.mouseDelta.Add(pos.Sub(w.lastCursor))
	}
	w.lastCursor = pos
	w.hasCursor = true
}

func (w *engineWindow) handleFramebufferSize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// cycleFullscreen goes windowed, monitor 0, monitor 1, ... and back to windowed.
func (w *engineWindow) cycleFullscreen() {
	count := w.platform.monitorCount()
	switch {
	case count == 0:
		return
	case !w.fullscreen:
		w.savedPos, w.savedSize = w.platform.windowRect()
		w.monitor = 0
		w.fullscreen = true
		w.platform.enterFullscreen(w.monitor)
	case w.monitor+1 < count:
		w.monitor++
		w.platform.enterFullscreen(w.monitor)
	default:
		w.fullscreen = false
		w.platform.exitFullscreen(w.savedPos, w.savedSize)
	}
}
