// Package level loads raycaster scenes: the collision grid, the floor and ceiling appearance,
// the initial camera pose and the sprites, and exposes the grid to shaders as a texture.
package level

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
)

// OutOfBounds is the cell value reported for coordinates outside the grid.
// Any non-zero cell blocks movement, so the area outside the grid behaves like a wall.
const OutOfBounds uint8 = 0xFF

type mapImpl struct {
	name string

	width  int
	height int
	grid   []byte

	floor Surface
	ceil  Surface

	initialPosition  mgl32.Vec2
	initialDirection mgl32.Vec2
	initialPlane     mgl32.Vec2

	sprites  []Sprite
	textures []string

	texture *gpu.Texture
}

// Map is a loaded scene. It owns the CPU collision grid and the grid texture until Release.
type Map interface {
	// Name returns the resource name the map was loaded from.
	Name() string

	// Width returns the number of cells along x.
	Width() int

	// Height returns the number of cells along y.
	Height() int

	// At returns the cell at (x, y), or OutOfBounds outside the grid or after Release.
	// Zero means walkable.
	//
	// Parameters:
	//   - x, y: cell coordinates
	//
	// Returns:
	//   - uint8: the cell value
	At(x, y int) uint8

	// Grid returns a copy of the grid, cell (x, y) at index x*Height()+y.
	//
	// Returns:
	//   - []byte: the grid bytes
	Grid() []byte

	// Floor returns the floor appearance.
	Floor() Surface

	// Ceil returns the ceiling appearance.
	Ceil() Surface

	// InitialPosition returns the camera start position.
	InitialPosition() mgl32.Vec2

	// InitialDirection returns the camera start direction.
	InitialDirection() mgl32.Vec2

	// InitialPlane returns the camera start view plane.
	InitialPlane() mgl32.Vec2

	// Sprites returns a copy of the sprites in file order.
	//
	// Returns:
	//   - []Sprite: the sprites
	Sprites() []Sprite

	// Textures returns the texture files named by the scene, or nil when the scene uses the defaults.
	//
	// Returns:
	//   - []string: texture file names in layer order
	Textures() []string

	// Texture returns the single-channel unsigned integer texture holding the grid.
	// The texture is Height() texels wide and Width() texels tall, so cell (x, y) is texel (y, x).
	//
	// Returns:
	//   - *gpu.Texture: the grid texture, nil after Release
	Texture() *gpu.Texture

	// Release frees the CPU grid and the grid texture. Safe to call more than once.
	Release()
}

var _ Map = &mapImpl{}

func (m *mapImpl) Name() string {
	return m.name
}

func (m *mapImpl) Width() int {
	return m.width
}

func (m *mapImpl) Height() int {
	return m.height
}

func (m *mapImpl) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.width || y >= m.height || m.grid == nil {
		return OutOfBounds
	}
	return m.grid[x*m.height+y]
}

func (m *mapImpl) Grid() []byte {
	return slices.Clone(m.grid)
}

func (m *mapImpl) Floor() Surface {
	return m.floor
}

func (m *mapImpl) Ceil() Surface {
	return m.ceil
}

func (m *mapImpl) InitialPosition() mgl32.Vec2 {
	return m.initialPosition
}

func (m *mapImpl) InitialDirection() mgl32.Vec2 {
	return m.initialDirection
}

func (m *mapImpl) InitialPlane() mgl32.Vec2 {
	return m.initialPlane
}

func (m *mapImpl) Sprites() []Sprite {
	return slices.Clone(m.sprites)
}

func (m *mapImpl) Textures() []string {
	return slices.Clone(m.textures)
}

func (m *mapImpl) Texture() *gpu.Texture {
	return m.texture
}

func (m *mapImpl) Release() {
	m.grid = nil
	if m.texture != nil {
		m.texture.Release()
		m.texture = nil
	}
}

// upload creates the grid texture: nearest filtering, repeat wrapping, one R8UI texel per cell.
func (m *mapImpl) upload(ctx *gpu.Context) error {
	tex := gpu.NewTexture(ctx, gpu.Texture2D)
	err := func() error {
		if err := tex.Bind(); err != nil {
			return err
		}
		if err := tex.SetWrap(gpu.WrapRepeat, gpu.WrapRepeat); err != nil {
			return err
		}
		if err := tex.SetMinFilter(gpu.FilterNearest); err != nil {
			return err
		}
		if err := tex.SetMagFilter(gpu.FilterNearest); err != nil {
			return err
		}
		size := [2]int32{int32(m.height), int32(m.width)}
		return tex.FillImage2D(0, gpu.FormatR8UI, size, 0, gpu.ExternalRedInteger, gpu.PixelUnsignedByte, m.grid)
	}()
	if err != nil {
		tex.Release()
		return err
	}
	m.texture = tex
	return nil
}
