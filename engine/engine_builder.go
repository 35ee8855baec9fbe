package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/camera"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/level"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the once per second frame report.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window the engine polls, presents to and reads input from.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer frames are drawn with.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithMap sets the scene: collision grid, grid texture, surfaces, initial pose and sprites.
//
// Parameters:
//   - m: the loaded map
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMap(m level.Map) EngineBuilderOption {
	return func(e *engine) {
		e.level = m
	}
}

// WithTextures sets the wall and sprite texture array.
//
// Parameters:
//   - textures: the layered texture
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTextures(textures *gpu.Texture) EngineBuilderOption {
	return func(e *engine) {
		e.textures = textures
	}
}

// WithCamera replaces the camera built from the map's initial pose.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithClock sets the time source. Defaults to the window's time.
//
// Parameters:
//   - clock: the time source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(clock Clock) EngineBuilderOption {
	return func(e *engine) {
		e.clock = clock
	}
}

// WithVSync sets the swap interval. Defaults to 1.
//
// Parameters:
//   - interval: 0 disables vsync, 1 syncs to every refresh
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithVSync(interval int) EngineBuilderOption {
	return func(e *engine) {
		e.vsync = interval
	}
}

// WithSpriteInterval sets the minimum time between sprite re-sorts.
// Values <= 0 re-sort every frame.
//
// Parameters:
//   - interval: the re-sort interval (default DefaultSpriteInterval)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSpriteInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.spriteInterval = max(interval.Seconds(), 0)
	}
}

// WithDumpDir sets the directory ray dumps are written to. Defaults to the working directory.
//
// Parameters:
//   - dir: the directory
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDumpDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.dumpDir = dir
	}
}

// WithLogger sets the logger used by the engine and its profiler.
//
// Parameters:
//   - logger: the logger, nil falls back to the process logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}
