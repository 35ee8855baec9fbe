package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Input is the per-frame input state a CameraController reads.
type Input interface {
	// KeyPressed reports whether key is held down.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true while the key is held
	KeyPressed(key int) bool

	// TakeMouseDelta returns the cursor movement accumulated since the previous call while the
	// cursor was captured, and resets it.
	//
	// Returns:
	//   - mgl32.Vec2: the cursor movement in screen pixels
	TakeMouseDelta() mgl32.Vec2
}

// CameraController turns input into camera motion.
// Keys W/Up and S/Down move forward and back, A/Left and D/Right turn left and right.
// Vertical mouse motion moves and horizontal mouse motion turns, each only while no key
// drives that axis.
type CameraController interface {
	// Apply moves and turns cam for a frame lasting dt seconds.
	//
	// Parameters:
	//   - cam: the camera to drive
	//   - dt: the frame duration in seconds
	//   - input: the input state
	//   - grid: the collision grid
	Apply(cam Camera, dt float32, input Input, grid Grid)

	// MoveSpeed returns the keyboard movement speed in cells per second.
	//
	// Returns:
	//   - float32: cells per second
	MoveSpeed() float32

	// RotateSpeed returns the keyboard turning speed in radians per second.
	//
	// Returns:
	//   - float32: radians per second
	RotateSpeed() float32

	// MouseMoveFactor returns the multiplier from vertical mouse pixels to movement.
	//
	// Returns:
	//   - float32: cells per pixel per second
	MouseMoveFactor() float32

	// MouseTurnFactor returns the multiplier from horizontal mouse pixels to turning.
	//
	// Returns:
	//   - float32: radians per pixel per second
	MouseTurnFactor() float32
}
