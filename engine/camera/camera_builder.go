package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - position: the position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(position mgl32.Vec2) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithDirection sets the camera's facing direction.
//
// Parameters:
//   - direction: the facing direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's direction
func WithDirection(direction mgl32.Vec2) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.direction = direction
	}
}

// WithPlane sets the camera's view plane.
//
// Parameters:
//   - plane: the view plane, perpendicular to the direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's view plane
func WithPlane(plane mgl32.Vec2) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.plane = plane
	}
}

// WithController attaches a controller to the camera.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
