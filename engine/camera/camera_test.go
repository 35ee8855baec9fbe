package camera_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/camera"
)

// boxGrid is a size x size room with walls on the border.
type boxGrid int

func (g boxGrid) At(x, y int) uint8 {
	n := int(g)
	if x <= 0 || y <= 0 || x >= n-1 || y >= n-1 {
		return 1
	}
	return 0
}

type fakeInput struct {
	keys  map[int]bool
	mouse mgl32.Vec2
}

func (f *fakeInput) KeyPressed(key int) bool {
	return f.keys[key]
}

func (f *fakeInput) TakeMouseDelta() mgl32.Vec2 {
	d := f.mouse
	f.mouse = mgl32.Vec2{}
	return d
}

func newCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithPosition(mgl32.Vec2{5, 5}),
		camera.WithDirection(mgl32.Vec2{1, 0}),
		camera.WithPlane(mgl32.Vec2{0, 0.66}),
		camera.WithController(camera.NewCameraController()),
	)
}

func TestCamera_MoveAndCollide(t *testing.T) {
	cam := newCamera()

	cam.Move(2, boxGrid(10))
	assert.InDelta(t, 7, cam.Position()[0], 1e-6)

	cam.Move(5, boxGrid(10))
	assert.InDelta(t, 7, cam.Position()[0], 1e-6, "wall blocks the x axis")

	cam.Move(-3, boxGrid(10))
	assert.InDelta(t, 4, cam.Position()[0], 1e-6)
}

func TestCamera_SlidesAlongWalls(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithPosition(mgl32.Vec2{8.5, 5}),
		camera.WithDirection(mgl32.Vec2{0.6, 0.8}),
	)

	cam.Move(1, boxGrid(10))

	assert.InDelta(t, 8.5, cam.Position()[0], 1e-6)
	assert.InDelta(t, 5.8, cam.Position()[1], 1e-6)
}

func TestCamera_Rotate(t *testing.T) {
	cam := newCamera()

	cam.Rotate(mgl32.DegToRad(90))

	assert.InDelta(t, 0, cam.Direction()[0], 1e-6)
	assert.InDelta(t, 1, cam.Direction()[1], 1e-6)
	assert.InDelta(t, -0.66, cam.Plane()[0], 1e-6)
	assert.InDelta(t, 0, cam.Plane()[1], 1e-6)
}

func TestController_Keys(t *testing.T) {
	tests := []struct {
		name    string
		keys    []int
		wantPos mgl32.Vec2
		wantDir mgl32.Vec2
	}{
		{name: "forward", keys: []int{common.KeyW}, wantPos: mgl32.Vec2{5.35, 5}, wantDir: mgl32.Vec2{1, 0}},
		{name: "forward arrow", keys: []int{common.KeyUp}, wantPos: mgl32.Vec2{5.35, 5}, wantDir: mgl32.Vec2{1, 0}},
		{name: "back", keys: []int{common.KeyS}, wantPos: mgl32.Vec2{4.65, 5}, wantDir: mgl32.Vec2{1, 0}},
		{name: "both cancel", keys: []int{common.KeyW, common.KeyDown}, wantPos: mgl32.Vec2{5, 5}, wantDir: mgl32.Vec2{1, 0}},
		{name: "turn left", keys: []int{common.KeyA}, wantPos: mgl32.Vec2{5, 5}, wantDir: rotated(0.25)},
		{name: "turn right", keys: []int{common.KeyRight}, wantPos: mgl32.Vec2{5, 5}, wantDir: rotated(-0.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := newCamera()
			in := &fakeInput{keys: map[int]bool{}}
			for _, k := range tt.keys {
				in.keys[k] = true
			}

			cam.Update(0.1, in, boxGrid(10))

			assert.InDelta(t, tt.wantPos[0], cam.Position()[0], 1e-5)
			assert.InDelta(t, tt.wantPos[1], cam.Position()[1], 1e-5)
			assert.InDelta(t, tt.wantDir[0], cam.Direction()[0], 1e-5)
			assert.InDelta(t, tt.wantDir[1], cam.Direction()[1], 1e-5)
		})
	}
}

func TestController_Mouse(t *testing.T) {
	cam := newCamera()
	in := &fakeInput{keys: map[int]bool{}, mouse: mgl32.Vec2{-2, -4}}

	cam.Update(0.1, in, boxGrid(10))

	// -0.1 * -4 * 1.75 forward, then -(-2) * 0.1 radians left
	assert.InDelta(t, 5.7, cam.Position()[0], 1e-5)
	assert.InDelta(t, rotated(0.2)[0], cam.Direction()[0], 1e-5)
	assert.InDelta(t, rotated(0.2)[1], cam.Direction()[1], 1e-5)
	assert.Equal(t, mgl32.Vec2{}, in.mouse)
}

func TestController_KeysOverrideMouse(t *testing.T) {
	cam := newCamera()
	in := &fakeInput{keys: map[int]bool{common.KeyW: true}, mouse: mgl32.Vec2{0, 100}}

	cam.Update(0.1, in, boxGrid(10))

	assert.InDelta(t, 5.35, cam.Position()[0], 1e-5)
}

func TestCamera_UpdateWithoutController(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(mgl32.Vec2{5, 5}))

	cam.Update(1, &fakeInput{keys: map[int]bool{common.KeyW: true}}, boxGrid(10))

	assert.Equal(t, mgl32.Vec2{5, 5}, cam.Position())
}

func rotated(angle float32) mgl32.Vec2 {
	return mgl32.Rotate2D(angle).Mul2x1(mgl32.Vec2{1, 0})
}
