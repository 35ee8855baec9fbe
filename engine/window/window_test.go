package window

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
)

// fakePlatform records what the window asks of the native layer.
type fakePlatform struct {
	closing     bool
	captured    bool
	monitors    int
	fullscreen  []int
	exited      [][2][2]int
	pos, size   [2]int
	polls       int
	swaps       int
	interval    int
	icon        image.Image
	destroyed   int
	closeOnPoll int
}

func (f *fakePlatform) shouldClose() bool         { return f.closing }
func (f *fakePlatform) setShouldClose(value bool) { f.closing = value }
func (f *fakePlatform) swapBuffers()              { f.swaps++ }
func (f *fakePlatform) setSwapInterval(i int)     { f.interval = i }
func (f *fakePlatform) time() float64             { return 1.5 }
func (f *fakePlatform) framebufferSize() (int, int) {
	return f.size[0], f.size[1]
}
func (f *fakePlatform) cursorCaptured() bool               { return f.captured }
func (f *fakePlatform) setCursorCaptured(captured bool)    { f.captured = captured }
func (f *fakePlatform) monitorCount() int                  { return f.monitors }
func (f *fakePlatform) enterFullscreen(monitor int)        { f.fullscreen = append(f.fullscreen, monitor) }
func (f *fakePlatform) exitFullscreen(pos, size [2]int)    { f.exited = append(f.exited, [2][2]int{pos, size}) }
func (f *fakePlatform) windowRect() (pos, size [2]int)     { return f.pos, f.size }
func (f *fakePlatform) setIcon(icon image.Image)           { f.icon = icon }
func (f *fakePlatform) destroy()                           { f.destroyed++ }
func (f *fakePlatform) pollEvents() {
	f.polls++
	if f.closeOnPoll > 0 && f.polls >= f.closeOnPoll {
		f.closing = true
	}
}

func newTestWindow(options ...WindowBuilderOption) (*engineWindow, *fakePlatform) {
	p := &fakePlatform{monitors: 2, pos: [2]int{10, 20}, size: [2]int{800, 600}}
	w := newEngineWindow(options...)
	w.platform = p
	return w, p
}

func TestNewEngineWindow_Defaults(t *testing.T) {
	w := newEngineWindow(WithTitle("maze"), WithMinWidth(200))
	assert.Equal(t, "maze", w.title)

	w = newEngineWindow(WithTitle(""))
	assert.Equal(t, "oxy-raycaster", w.title)
	assert.Equal(t, 1333, w.Width())
	assert.Equal(t, 1000, w.Height())
	assert.Equal(t, 200, w.minWidth)
	assert.Equal(t, 100, w.minHeight)
	assert.Zero(t, w.maxWidth)
}

func TestWindow_KeyState(t *testing.T) {
	w, _ := newTestWindow()
	var pressed []int
	w.SetKeyDownCallback(func(key int) { pressed = append(pressed, key) })

	w.handleKey(common.KeyW, actionPress)
	assert.True(t, w.KeyPressed(common.KeyW))

	w.handleKey(common.KeyW, actionRepeat)
	assert.True(t, w.KeyPressed(common.KeyW))

	w.handleKey(common.KeyW, actionRelease)
	assert.False(t, w.KeyPressed(common.KeyW))

	assert.Equal(t, []int{common.KeyW}, pressed, "repeats and releases are not key downs")
}

func TestWindow_EscapeCloses(t *testing.T) {
	w, p := newTestWindow()
	require.True(t, w.IsRunning())

	w.handleKey(common.KeyEsc, actionPress)

	assert.True(t, p.closing)
	assert.False(t, w.IsRunning())
}

func TestWindow_FullscreenCycle(t *testing.T) {
	w, p := newTestWindow()

	w.handleKey(common.KeyF, actionPress)
	assert.True(t, w.Fullscreen())
	assert.Equal(t, []int{0}, p.fullscreen)

	w.handleKey(common.KeyF11, actionPress)
	assert.True(t, w.Fullscreen())
	assert.Equal(t, []int{0, 1}, p.fullscreen)

	w.handleKey(common.KeyF, actionPress)
	assert.False(t, w.Fullscreen())
	assert.Equal(t, [][2][2]int{{{10, 20}, {800, 600}}}, p.exited)

	w.handleKey(common.KeyF, actionRelease)
	assert.False(t, w.Fullscreen())
}

func TestWindow_FullscreenWithoutMonitors(t *testing.T) {
	w, p := newTestWindow()
	p.monitors = 0

	w.handleKey(common.KeyF11, actionPress)

	assert.False(t, w.Fullscreen())
	assert.Empty(t, p.fullscreen)
}

func TestWindow_MouseCapture(t *testing.T) {
	w, p := newTestWindow()

	w.handleCursor(100, 100)
	w.handleCursor(110, 90)
	assert.Equal(t, mgl32.Vec2{}, w.TakeMouseDelta(), "free cursor does not steer")

	w.handleMouseButton(1, actionPress)
	assert.False(t, p.captured, "only the left button toggles capture")

	w.handleMouseButton(common.MouseButtonLeft, actionPress)
	require.True(t, w.CursorCaptured())

	w.handleCursor(500, 500)
	w.handleCursor(503, 496)
	w.handleCursor(505, 497)
	assert.Equal(t, mgl32.Vec2{5, -3}, w.TakeMouseDelta())
	assert.Equal(t, mgl32.Vec2{}, w.TakeMouseDelta())

	w.handleMouseButton(common.MouseButtonLeft, actionRelease)
	assert.True(t, p.captured)
	w.handleMouseButton(common.MouseButtonLeft, actionPress)
	assert.False(t, p.captured)
}

func TestWindow_Resize(t *testing.T) {
	w, _ := newTestWindow()
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })

	w.handleFramebufferSize(1920, 1080)

	assert.Equal(t, [2]int{1920, 1080}, got)
	assert.Equal(t, 1920, w.Width())
	assert.Equal(t, 1080, w.Height())
}

func TestWindow_ProcessMessages(t *testing.T) {
	w, p := newTestWindow()
	p.closeOnPoll = 4
	updates := 0
	w.SetUpdateCallback(func() {
		updates++
		w.SwapBuffers()
	})

	w.ProcessMessages()

	assert.Equal(t, 4, p.polls)
	assert.Equal(t, 3, updates)
	assert.Equal(t, 3, p.swaps)
}

func TestWindow_Close(t *testing.T) {
	w, p := newTestWindow()
	icon := image.NewRGBA(image.Rect(0, 0, 2, 2))
	w.SetIcon(icon)
	w.SetSwapInterval(0)

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), ErrClosed)

	assert.Equal(t, 1, p.destroyed)
	assert.False(t, w.IsRunning())
	assert.Same(t, icon, p.icon)
	assert.Equal(t, 0, p.interval)
	assert.Equal(t, 1.5, w.Time())
}
