// Package engine drives the raycaster: one frame per window update, on the thread that owns the
// GL context.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/camera"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/level"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/profiler"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/window"
)

// DefaultSpriteInterval is the minimum time between two sprite re-sorts.
const DefaultSpriteInterval = time.Second

// ErrMissingComponent is returned by NewEngine when a required option was not given.
var ErrMissingComponent = errors.New("engine: missing component")

// Clock is the engine's time source.
type Clock interface {
	// Now returns the current time in seconds.
	Now() float64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() float64

// Now calls f.
func (f ClockFunc) Now() float64 {
	return f()
}

// engine implements the Engine interface.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	level    level.Map
	textures *gpu.Texture
	camera   camera.Camera
	clock    Clock
	logger   *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	vsync int

	sprites        []level.Sprite
	spriteInterval float64
	spritesSorted  bool
	lastSpriteSort float64
	spriteSorts    int

	lastFrame float64
	started   bool
	frames    uint64

	dumpDir string
	dumps   int

	err      error
	quitOnce sync.Once
}

// Engine is the main entry point for the raycaster.
// It owns the frame loop: update the camera from input, re-sort sprites on a fixed cadence,
// render, present and poll.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Camera returns the player camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// EnableProfiler enables the once per second frame report.
	EnableProfiler()

	// DisableProfiler disables the frame report.
	DisableProfiler()

	// SetVSync sets the swap interval applied before each present.
	//
	// Parameters:
	//   - interval: 0 disables vsync, 1 syncs to every refresh
	SetVSync(interval int)

	// Frames returns the number of frames rendered so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// SpriteSorts returns how many times the sprites were re-sorted and uploaded.
	//
	// Returns:
	//   - int: the sort count
	SpriteSorts() int

	// DumpRays writes the ray result buffer to a new file in the dump directory.
	//
	// Returns:
	//   - string: the file written
	//   - error: error if the file cannot be created or the buffer cannot be read
	DumpRays() (string, error)

	// Run sizes the renderer to the window and runs frames until the window closes or a frame
	// fails.
	//
	// Returns:
	//   - error: the error that stopped the loop, nil on a requested close
	Run() error

	// Quit asks the window to close. The current frame completes.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine from the provided options.
// WithWindow, WithRenderer, WithMap and WithTextures are required. Without WithCamera a camera
// with the default controller is placed at the map's initial pose. The floor and ceiling of the
// map are pushed to the renderer.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: ErrMissingComponent, or the error pushing the map surfaces
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		vsync:          1,
		spriteInterval: DefaultSpriteInterval.Seconds(),
		dumpDir:        ".",
	}
	for _, opt := range options {
		opt(e)
	}

	switch {
	case e.window == nil:
		return nil, fmt.Errorf("%w: window", ErrMissingComponent)
	case e.renderer == nil:
		return nil, fmt.Errorf("%w: renderer", ErrMissingComponent)
	case e.level == nil:
		return nil, fmt.Errorf("%w: map", ErrMissingComponent)
	case e.textures == nil:
		return nil, fmt.Errorf("%w: textures", ErrMissingComponent)
	}

	if e.clock == nil {
		e.clock = ClockFunc(e.window.Time)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera(
			camera.WithPosition(e.level.InitialPosition()),
			camera.WithDirection(e.level.InitialDirection()),
			camera.WithPlane(e.level.InitialPlane()),
			camera.WithController(camera.NewCameraController()),
		)
	}
	e.profiler = profiler.NewProfiler(
		profiler.WithClock(e.clock.Now),
		profiler.WithLogger(e.logger),
	)
	e.sprites = e.level.Sprites()

	if err := e.renderer.SetSurfaces(e.level.Floor(), e.level.Ceil()); err != nil {
		return nil, fmt.Errorf("failed to set map surfaces: %w", err)
	}

	e.window.SetResizeCallback(e.resize)
	e.window.SetKeyDownCallback(e.keyDown)
	e.window.SetUpdateCallback(e.update)

	return e, nil
}

func (e *engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return common.Logger()
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetVSync(interval int) {
	e.vsync = interval
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) SpriteSorts() int {
	return e.spriteSorts
}

func (e *engine) Run() error {
	e.resize(e.window.Width(), e.window.Height())
	e.window.ProcessMessages()
	return e.err
}

func (e *engine) Quit() {
	e.quitOnce.Do(e.window.RequestClose)
}

// update runs one frame. The window calls it after polling events, so the order is
// camera update, sprite sort, render, present, then the next poll.
func (e *engine) update() {
	now := e.clock.Now()
	var dt float32
	if e.started {
		dt = float32(now - e.lastFrame)
	}
	e.started = true
	e.lastFrame = now

	e.camera.Update(dt, e.window, e.level)

	if err := e.frame(now); err != nil {
		e.err = err
		e.log().Error("Frame failed", "frame", e.frames, "error", err)
		e.Quit()
		return
	}

	if e.profilingEnabled {
		e.profiler.Tick(e.camera.Position())
	}
}

func (e *engine) frame(now float64) error {
	if err := e.sortSprites(now); err != nil {
		return err
	}

	view := renderer.View{
		Position:  e.camera.Position(),
		Direction: e.camera.Direction(),
		Plane:     e.camera.Plane(),
	}
	err := e.renderer.RenderFrame(view, e.level.Texture(), e.textures)
	switch {
	case errors.Is(err, renderer.ErrNoViewport):
		// minimized
	case err != nil:
		return err
	}

	e.window.SetSwapInterval(e.vsync)
	e.window.SwapBuffers()
	e.frames++
	return nil
}

// sortSprites orders the sprites farthest first and uploads them on the first frame and then
// at most once per sprite interval. Between sorts the previous order is drawn.
func (e *engine) sortSprites(now float64) error {
	if e.spritesSorted && now-e.lastSpriteSort < e.spriteInterval {
		return nil
	}
	e.spritesSorted = true
	e.lastSpriteSort = now
	e.spriteSorts++

	level.SortByDistance(e.sprites, e.camera.Position())
	return e.renderer.SetSprites(e.sprites)
}

func (e *engine) resize(width, height int) {
	vp, err := e.renderer.Resize(width, height)
	if err != nil {
		e.log().Error("Failed to resize renderer", "width", width, "height", height, "error", err)
		return
	}
	e.log().Debug("Resized viewport", "x", vp.X, "y", vp.Y, "width", vp.Width, "height", vp.Height)
}

func (e *engine) keyDown(key int) {
	if key != common.KeyF2 {
		return
	}
	if _, err := e.DumpRays(); err != nil {
		e.log().Error("Failed to dump ray results", "error", err)
	}
}

func (e *engine) DumpRays() (string, error) {
	e.dumps++
	name := filepath.Join(e.dumpDir, fmt.Sprintf("rays-%03d.bin", e.dumps))
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("failed to create ray dump: %w", err)
	}

	n, err := e.renderer.DumpRays(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to dump ray results to %s: %w", name, err)
	}

	e.log().Info("Dumped ray results", "path", name, "bytes", n)
	return name, nil
}
