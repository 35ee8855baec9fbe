package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid is the collision grid the camera moves on. Any non-zero cell blocks movement.
type Grid interface {
	// At returns the cell at (x, y).
	At(x, y int) uint8
}

type cameraImpl struct {
	mu *sync.Mutex

	position  mgl32.Vec2
	direction mgl32.Vec2
	plane     mgl32.Vec2

	controller CameraController
}

// Camera defines the interface for the 2-D raycasting camera.
// The camera holds a position, a facing direction and a view plane perpendicular to it whose
// length sets the field of view. An attached CameraController turns input into motion via Update.
type Camera interface {
	// Position returns the world-space position.
	//
	// Returns:
	//   - mgl32.Vec2: the position
	Position() mgl32.Vec2

	// Direction returns the facing direction.
	//
	// Returns:
	//   - mgl32.Vec2: the direction
	Direction() mgl32.Vec2

	// Plane returns the view plane.
	//
	// Returns:
	//   - mgl32.Vec2: the view plane
	Plane() mgl32.Vec2

	// SetPose replaces position, direction and view plane.
	//
	// Parameters:
	//   - position: world-space position
	//   - direction: facing direction
	//   - plane: view plane
	SetPose(position, direction, plane mgl32.Vec2)

	// Move advances along the facing direction by distance, negative moving backward.
	// Each axis is checked against grid on its own, so the camera slides along walls.
	//
	// Parameters:
	//   - distance: the signed distance
	//   - grid: the collision grid
	Move(distance float32, grid Grid)

	// Rotate turns the direction and the view plane by angle radians, counter-clockwise.
	//
	// Parameters:
	//   - angle: the rotation in radians
	Rotate(angle float32)

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Update lets the attached controller move the camera for a frame lasting dt seconds.
	// If no controller is attached, this method does nothing.
	//
	// Parameters:
	//   - dt: the frame duration in seconds
	//   - input: the input state
	//   - grid: the collision grid
	Update(dt float32, input Input, grid Grid)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the origin facing -x, with a 66 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:        &sync.Mutex{},
		direction: mgl32.Vec2{-1, 0},
		plane:     mgl32.Vec2{0, 0.66},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Direction() mgl32.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

func (c *cameraImpl) Plane() mgl32.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plane
}

func (c *cameraImpl) SetPose(position, direction, plane mgl32.Vec2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.direction = direction
	c.plane = plane
}

func (c *cameraImpl) Move(distance float32, grid Grid) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.direction.Mul(distance)
	if grid.At(int(c.position[0]+step[0]), int(c.position[1])) == 0 {
		c.position[0] += step[0]
	}
	if grid.At(int(c.position[0]), int(c.position[1]+step[1])) == 0 {
		c.position[1] += step[1]
	}
}

func (c *cameraImpl) Rotate(angle float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rot := mgl32.Rotate2D(angle)
	c.direction = rot.Mul2x1(c.direction)
	c.plane = rot.Mul2x1(c.plane)
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update(dt float32, input Input, grid Grid) {
	ctrl := c.Controller()
	if ctrl == nil {
		return
	}
	ctrl.Apply(c, dt, input, grid)
}
