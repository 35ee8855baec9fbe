package level

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Sprite is a billboard placed in the world.
type Sprite struct {
	Position mgl32.Vec2
	// Texture is the texture array layer.
	Texture uint32
	// UDiv and VDiv shrink the sprite horizontally and vertically.
	UDiv int32
	VDiv int32
	// VMove shifts the sprite vertically, in screen pixels at distance 1.
	VMove float32
}

// GPU returns the storage buffer representation of the sprite.
func (s Sprite) GPU() GPUSprite {
	return GPUSprite{
		X:       s.Position[0],
		Y:       s.Position[1],
		Texture: s.Texture,
		UDiv:    s.UDiv,
		VDiv:    s.VDiv,
		VMove:   s.VMove,
	}
}

// SortByDistance orders sprites from the farthest to the closest to from, in place.
// Sprites at the same distance keep their relative order.
//
// Parameters:
//   - sprites: the sprites to sort
//   - from: the viewer position
func SortByDistance(sprites []Sprite, from mgl32.Vec2) {
	slices.SortStableFunc(sprites, func(a, b Sprite) int {
		da := a.Position.Sub(from).Len()
		db := b.Position.Sub(from).Len()
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		default:
			return 0
		}
	})
}

// MarshalSprites packs sprites into the sprite input buffer layout, GPUSpriteSize bytes each.
//
// Parameters:
//   - sprites: the sprites in draw order
//
// Returns:
//   - []byte: the packed sprites
func MarshalSprites(sprites []Sprite) []byte {
	buf := make([]byte, len(sprites)*GPUSpriteSize)
	for i, s := range sprites {
		g := s.GPU()
		g.MarshalTo(buf[i*GPUSpriteSize:])
	}
	return buf
}
