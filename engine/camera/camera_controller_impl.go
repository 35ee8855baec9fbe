package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
)

const (
	mouseDeadZone   = 0.001
	motionThreshold = 1e-8
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	moveSpeed       float32
	rotateSpeed     float32
	mouseMoveFactor float32
	mouseTurnFactor float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller with the default speeds:
// 3.5 cells/s, 2.5 rad/s, mouse move factor 1.75 and mouse turn factor 1.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		moveSpeed:       3.5,
		rotateSpeed:     2.5,
		mouseMoveFactor: 1.75,
		mouseTurnFactor: 1.0,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) RotateSpeed() float32 {
	return cc.rotateSpeed
}

func (cc *cameraControllerImpl) MouseMoveFactor() float32 {
	return cc.mouseMoveFactor
}

func (cc *cameraControllerImpl) MouseTurnFactor() float32 {
	return cc.mouseTurnFactor
}

func (cc *cameraControllerImpl) Apply(cam Camera, dt float32, input Input, grid Grid) {
	mouse := input.TakeMouseDelta()

	var movement float32
	forward := input.KeyPressed(common.KeyW) || input.KeyPressed(common.KeyUp)
	backward := input.KeyPressed(common.KeyS) || input.KeyPressed(common.KeyDown)
	if forward {
		movement += dt * cc.moveSpeed
	}
	if backward {
		movement -= dt * cc.moveSpeed
	}
	if !forward && !backward && abs(mouse[1]) > mouseDeadZone {
		movement = -dt * mouse[1] * cc.mouseMoveFactor
	}
	if abs(movement) > motionThreshold {
		cam.Move(movement, grid)
	}

	var rotation float32
	right := input.KeyPressed(common.KeyD) || input.KeyPressed(common.KeyRight)
	left := input.KeyPressed(common.KeyA) || input.KeyPressed(common.KeyLeft)
	if right {
		rotation -= dt * cc.rotateSpeed
	}
	if left {
		rotation += dt * cc.rotateSpeed
	}
	if !right && !left && abs(mouse[0]) > mouseDeadZone {
		rotation = -dt * mouse[0] * cc.mouseTurnFactor
	}
	if abs(rotation) > motionThreshold {
		cam.Rotate(rotation)
	}
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
