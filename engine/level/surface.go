package level

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSurfaceLayer is the texture layer used when a scene omits its floor or ceiling.
const DefaultSurfaceLayer TextureLayer = 3

// Surface is the appearance of the floor or the ceiling: either a FlatColor or a TextureLayer.
type Surface interface {
	// Uniform encodes the surface for the draw program: (r, g, b, 0) for a color,
	// (0, 0, 0, layer) for a texture layer.
	//
	// Returns:
	//   - mgl32.Vec4: the encoded surface
	Uniform() mgl32.Vec4

	fmt.Stringer

	surface()
}

// FlatColor is a solid RGB surface with components in [0, 1].
type FlatColor mgl32.Vec3

// TextureLayer is a surface sampled from one layer of the texture array.
type TextureLayer uint32

var (
	_ Surface = FlatColor{}
	_ Surface = TextureLayer(0)
)

func (c FlatColor) Uniform() mgl32.Vec4 {
	return mgl32.Vec4{c[0], c[1], c[2], 0}
}

func (c FlatColor) String() string {
	return fmt.Sprintf("color(%.3g, %.3g, %.3g)", c[0], c[1], c[2])
}

func (FlatColor) surface() {}

func (l TextureLayer) Uniform() mgl32.Vec4 {
	return mgl32.Vec4{0, 0, 0, float32(l)}
}

func (l TextureLayer) String() string {
	return fmt.Sprintf("layer(%d)", uint32(l))
}

func (TextureLayer) surface() {}
