package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithMoveSpeed sets the keyboard movement speed.
//
// Parameters:
//   - speed: cells per second
//
// Returns:
//   - CameraControllerOption: functional option to set the move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithRotateSpeed sets the keyboard turning speed.
//
// Parameters:
//   - speed: radians per second
//
// Returns:
//   - CameraControllerOption: functional option to set the rotate speed
func WithRotateSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotateSpeed = speed
	}
}

// WithMouseMoveFactor sets the multiplier from vertical mouse motion to movement.
//
// Parameters:
//   - factor: cells per pixel per second
//
// Returns:
//   - CameraControllerOption: functional option to set the mouse move factor
func WithMouseMoveFactor(factor float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseMoveFactor = factor
	}
}

// WithMouseTurnFactor sets the multiplier from horizontal mouse motion to turning.
//
// Parameters:
//   - factor: radians per pixel per second
//
// Returns:
//   - CameraControllerOption: functional option to set the mouse turn factor
func WithMouseTurnFactor(factor float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseTurnFactor = factor
	}
}
