package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProgramNotActive is returned when a uniform or dispatch call targets a program that is not the active one.
	ErrProgramNotActive = errors.New("gpu: program is not the active program")

	// ErrTextureNotBound is returned when a texture parameter or upload call targets a texture that is not bound.
	ErrTextureNotBound = errors.New("gpu: texture is not bound")

	// ErrGeometryBuilt is returned when attributes or indices are added to a geometry that has already been drawn.
	ErrGeometryBuilt = errors.New("gpu: geometry layout is already built")

	// ErrInvalidComponents is returned when an attribute stream does not have 1 to 4 components per vertex.
	ErrInvalidComponents = errors.New("gpu: attribute components must be between 1 and 4")

	// ErrEmptyGeometry is returned when drawing a geometry without attributes.
	ErrEmptyGeometry = errors.New("gpu: geometry has no attributes")

	// ErrReleased is returned by operations on a resource whose handle was released.
	ErrReleased = errors.New("gpu: resource was released")

	// ErrMapFailed is returned when the device refuses to map a buffer.
	ErrMapFailed = errors.New("gpu: buffer mapping failed")
)

// ErrorCode is a device error code. Values match the OpenGL error enumerants.
type ErrorCode uint32

const (
	ErrorCodeNone                        ErrorCode = 0
	ErrorCodeInvalidEnum                 ErrorCode = 0x0500
	ErrorCodeInvalidValue                ErrorCode = 0x0501
	ErrorCodeInvalidOperation            ErrorCode = 0x0502
	ErrorCodeStackOverflow               ErrorCode = 0x0503
	ErrorCodeStackUnderflow              ErrorCode = 0x0504
	ErrorCodeOutOfMemory                 ErrorCode = 0x0505
	ErrorCodeInvalidFramebufferOperation ErrorCode = 0x0506
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeNone:
		return "NO_ERROR"
	case ErrorCodeInvalidEnum:
		return "INVALID_ENUM"
	case ErrorCodeInvalidValue:
		return "INVALID_VALUE"
	case ErrorCodeInvalidOperation:
		return "INVALID_OPERATION"
	case ErrorCodeStackOverflow:
		return "STACK_OVERFLOW"
	case ErrorCodeStackUnderflow:
		return "STACK_UNDERFLOW"
	case ErrorCodeOutOfMemory:
		return "OUT_OF_MEMORY"
	case ErrorCodeInvalidFramebufferOperation:
		return "INVALID_FRAMEBUFFER_OPERATION"
	default:
		return fmt.Sprintf("UNKNOWN_ERROR(0x%04x)", uint32(c))
	}
}

// DeviceError reports the device errors raised by a single wrapped call, tied to its call site.
type DeviceError struct {
	File  string
	Line  int
	Call  string
	Codes []ErrorCode
}

func (e *DeviceError) Error() string {
	names := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		names[i] = c.String()
	}
	return fmt.Sprintf("%s:%d device errors on %s: %s", e.File, e.Line, e.Call, strings.Join(names, " "))
}

// CompileError carries the compiler log of a shader stage that failed to compile.
type CompileError struct {
	Path string
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("gpu: could not compile shader %q: %s", e.Path, e.Log)
}

// LinkError carries the linker log of a program that failed to link.
type LinkError struct {
	Program string
	Log     string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("gpu: could not link shader program %q: %s", e.Program, e.Log)
}
