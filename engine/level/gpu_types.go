package level

import (
	"encoding/binary"
	"math"
)

// GPUSpriteSize is the byte stride of one sprite in the sprite input storage buffer.
const GPUSpriteSize = 24

// GPUSpriteSource is the GLSL declaration matching GPUSprite.
const GPUSpriteSource = `struct Sprite {
    float x;
    float y;
    uint texture;
    int uDiv;
    int vDiv;
    float vMove;
};`

// GPUSprite is the std430 representation of one sprite read by the sprite-compute program.
// Size: 24 bytes.
type GPUSprite struct {
	X       float32 // offset  0
	Y       float32 // offset  4
	Texture uint32  // offset  8: texture array layer
	UDiv    int32   // offset 12
	VDiv    int32   // offset 16
	VMove   float32 // offset 20
}

// Size returns the size of the GPUSprite struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (24)
func (g *GPUSprite) Size() int {
	return GPUSpriteSize
}

// MarshalTo writes the sprite into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination
func (g *GPUSprite) MarshalTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.X))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Y))
	binary.LittleEndian.PutUint32(buf[8:], g.Texture)
	binary.LittleEndian.PutUint32(buf[12:], uint32(g.UDiv))
	binary.LittleEndian.PutUint32(buf[16:], uint32(g.VDiv))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.VMove))
}

// Marshal serializes the GPUSprite struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSprite) Marshal() []byte {
	buf := make([]byte, GPUSpriteSize)
	g.MarshalTo(buf)
	return buf
}
