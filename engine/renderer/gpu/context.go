package gpu

import (
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
)

// ErrorMode controls how device errors are observed after each wrapped device call.
type ErrorMode int

const (
	// ErrorModeSilent never queries the device for errors. Callers cannot distinguish success from a failed device call.
	ErrorModeSilent ErrorMode = iota

	// ErrorModeLog drains the device error queue after every call and logs the codes with the call site, then continues.
	ErrorModeLog

	// ErrorModeStrict behaves like ErrorModeLog and additionally returns a *DeviceError to the caller.
	ErrorModeStrict
)

// maxErrorDrain bounds how many queued error codes are popped after a single call.
const maxErrorDrain = 16

// Context is the single owner of device state on the calling thread.
// It replaces device-side state queries with explicit tracking: the active program and the
// texture bound to each target are recorded here when a wrapper binds them, so binding
// discipline can be checked without round trips to the driver.
type Context struct {
	device Device
	mode   ErrorMode
	logger *slog.Logger

	activeProgram uint32
	boundTextures map[TextureType]uint32
}

// NewContext wraps a device with binding tracking and the configured error policy.
//
// Parameters:
//   - device: the device to drive
//   - options: functional options to configure the context
//
// Returns:
//   - *Context: the new context
func NewContext(device Device, options ...ContextBuilderOption) *Context {
	c := &Context{
		device:        device,
		mode:          ErrorModeSilent,
		boundTextures: make(map[TextureType]uint32),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Device returns the wrapped device.
func (c *Context) Device() Device {
	return c.device
}

// ErrorMode returns the configured device error policy.
func (c *Context) ErrorMode() ErrorMode {
	return c.mode
}

// ActiveProgram returns the handle of the program most recently made active, or 0.
func (c *Context) ActiveProgram() uint32 {
	return c.activeProgram
}

// BoundTexture returns the handle of the texture bound to target, or 0.
func (c *Context) BoundTexture(target TextureType) uint32 {
	return c.boundTextures[target]
}

// MemoryBarrier orders the given classes of prior shader writes before any subsequent read.
//
// Parameters:
//   - barriers: the barrier classes to enforce
//
// Returns:
//   - error: a *DeviceError in ErrorModeStrict when the device reports a failure
func (c *Context) MemoryBarrier(barriers Barrier) error {
	c.device.MemoryBarrier(barriers)
	return c.check("MemoryBarrier")
}

// Clear clears the color target to the given color.
//
// Returns:
//   - error: a *DeviceError in ErrorModeStrict when the device reports a failure
func (c *Context) Clear(r, g, b, a float32) error {
	c.device.ClearColor(r, g, b, a)
	if err := c.check("ClearColor"); err != nil {
		return err
	}
	c.device.ClearColorBuffer()
	return c.check("Clear")
}

// Viewport sets the rectangle the draw pass rasterizes into.
//
// Returns:
//   - error: a *DeviceError in ErrorModeStrict when the device reports a failure
func (c *Context) Viewport(x, y, width, height int32) error {
	c.device.Viewport(x, y, width, height)
	return c.check("Viewport")
}

func (c *Context) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return common.Logger()
}

func (c *Context) useProgram(handle uint32) error {
	c.device.UseProgram(handle)
	c.activeProgram = handle
	return c.check("UseProgram")
}

func (c *Context) bindTexture(target TextureType, handle uint32) error {
	c.device.BindTexture(target, handle)
	c.boundTextures[target] = handle
	return c.check("BindTexture")
}

func (c *Context) forgetProgram(handle uint32) {
	if c.activeProgram == handle {
		c.activeProgram = 0
	}
}

func (c *Context) forgetTexture(target TextureType, handle uint32) {
	if c.boundTextures[target] == handle {
		delete(c.boundTextures, target)
	}
}

// check drains the device error queue after a wrapped call when the error mode asks for it.
// The reported call site is the caller of check.
func (c *Context) check(call string) error {
	if c.mode == ErrorModeSilent {
		return nil
	}

	var codes []ErrorCode
	for range maxErrorDrain {
		code := c.device.GetError()
		if code == ErrorCodeNone {
			break
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	err := &DeviceError{
		File:  filepath.Base(file),
		Line:  line,
		Call:  call,
		Codes: codes,
	}
	c.log().Error("device errors", "file", err.File, "line", err.Line, "call", call, "errors", err.Error())

	if c.mode == ErrorModeStrict {
		return err
	}
	return nil
}
