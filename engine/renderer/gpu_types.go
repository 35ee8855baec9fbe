package renderer

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// GPURayHitSize is the byte stride of one column in the ray result storage buffer.
	GPURayHitSize = 40

	// GPUSpriteHitSize is the byte stride of one sprite in the sprite result storage buffer.
	GPUSpriteHitSize = 40
)

// GPURayHitSource is the GLSL declaration matching GPURayHit.
const GPURayHitSource = `struct RayHit {
    int cellX;
    int cellY;
    int side;
    int tile;
    int lineHeight;
    float distance;
    float wallX;
    float rayDirX;
    float rayDirY;
    float reserved;
};`

// GPUSpriteHitSource is the GLSL declaration matching GPUSpriteHit.
const GPUSpriteHitSource = `struct SpriteHit {
    int startX;
    int endX;
    int startY;
    int endY;
    int width;
    int height;
    int screenX;
    int vMoveScreen;
    float depth;
    uint texture;
};`

// GPURayHit is the std430 representation of one screen column written by the ray-compute program.
// Size: 40 bytes.
type GPURayHit struct {
	CellX      int32   // offset  0: grid cell that stopped the ray
	CellY      int32   // offset  4
	Side       int32   // offset  8: 0 for an x-facing wall, 1 for a y-facing wall
	Tile       int32   // offset 12: cell value, 255 when the ray left the grid
	LineHeight int32   // offset 16: wall height in pixels
	Distance   float32 // offset 20: perpendicular wall distance
	WallX      float32 // offset 24: hit position along the wall in [0, 1)
	RayDirX    float32 // offset 28
	RayDirY    float32 // offset 32
	_reserved  float32 // offset 36
}

// GPUSpriteHit is the std430 representation of one sprite projection written by the
// sprite-compute program. Size: 40 bytes.
type GPUSpriteHit struct {
	StartX      int32   // offset  0: first covered column
	EndX        int32   // offset  4: one past the last covered column
	StartY      int32   // offset  8
	EndY        int32   // offset 12
	Width       int32   // offset 16: unclipped width in pixels
	Height      int32   // offset 20: unclipped height in pixels
	ScreenX     int32   // offset 24: center column
	VMoveScreen int32   // offset 28: vertical offset in pixels
	Depth       float32 // offset 32: camera-space depth, not positive when behind the camera
	Texture     uint32  // offset 36: texture array layer
}

// Size returns the size of the GPURayHit struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (40)
func (g *GPURayHit) Size() int {
	return GPURayHitSize
}

// Marshal serializes the GPURayHit struct into a byte buffer matching the shader layout.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPURayHit) Marshal() []byte {
	buf := make([]byte, GPURayHitSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.CellX))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.CellY))
	binary.LittleEndian.PutUint32(buf[8:], uint32(g.Side))
	binary.LittleEndian.PutUint32(buf[12:], uint32(g.Tile))
	binary.LittleEndian.PutUint32(buf[16:], uint32(g.LineHeight))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.Distance))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.WallX))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.RayDirX))
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.RayDirY))
	binary.LittleEndian.PutUint32(buf[36:], 0) // _reserved
	return buf
}

// Unmarshal reads a GPURayHit from buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the source bytes
func (g *GPURayHit) Unmarshal(buf []byte) {
	g.CellX = int32(binary.LittleEndian.Uint32(buf[0:]))
	g.CellY = int32(binary.LittleEndian.Uint32(buf[4:]))
	g.Side = int32(binary.LittleEndian.Uint32(buf[8:]))
	g.Tile = int32(binary.LittleEndian.Uint32(buf[12:]))
	g.LineHeight = int32(binary.LittleEndian.Uint32(buf[16:]))
	g.Distance = math.Float32frombits(binary.LittleEndian.Uint32(buf[20:]))
	g.WallX = math.Float32frombits(binary.LittleEndian.Uint32(buf[24:]))
	g.RayDirX = math.Float32frombits(binary.LittleEndian.Uint32(buf[28:]))
	g.RayDirY = math.Float32frombits(binary.LittleEndian.Uint32(buf[32:]))
}

// Size returns the size of the GPUSpriteHit struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (40)
func (g *GPUSpriteHit) Size() int {
	return GPUSpriteHitSize
}

// Unmarshal reads a GPUSpriteHit from buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the source bytes
func (g *GPUSpriteHit) Unmarshal(buf []byte) {
	g.StartX = int32(binary.LittleEndian.Uint32(buf[0:]))
	g.EndX = int32(binary.LittleEndian.Uint32(buf[4:]))
	g.StartY = int32(binary.LittleEndian.Uint32(buf[8:]))
	g.EndY = int32(binary.LittleEndian.Uint32(buf[12:]))
	g.Width = int32(binary.LittleEndian.Uint32(buf[16:]))
	g.Height = int32(binary.LittleEndian.Uint32(buf[20:]))
	g.ScreenX = int32(binary.LittleEndian.Uint32(buf[24:]))
	g.VMoveScreen = int32(binary.LittleEndian.Uint32(buf[28:]))
	g.Depth = math.Float32frombits(binary.LittleEndian.Uint32(buf[32:]))
	g.Texture = binary.LittleEndian.Uint32(buf[36:])
}

// DecodeRayHits splits a ray result buffer into columns.
//
// Parameters:
//   - data: the buffer contents, a whole number of GPURayHitSize records
//
// Returns:
//   - []GPURayHit: one hit per column
//   - error: error if data is not a whole number of records
func DecodeRayHits(data []byte) ([]GPURayHit, error) {
	if len(data)%GPURayHitSize != 0 {
		return nil, fmt.Errorf("ray buffer of %d bytes is not a multiple of %d", len(data), GPURayHitSize)
	}
	hits := make([]GPURayHit, len(data)/GPURayHitSize)
	for i := range hits {
		hits[i].Unmarshal(data[i*GPURayHitSize:])
	}
	return hits, nil
}

// DecodeSpriteHits splits a sprite result buffer into sprites.
//
// Parameters:
//   - data: the buffer contents, a whole number of GPUSpriteHitSize records
//
// Returns:
//   - []GPUSpriteHit: one projection per sprite
//   - error: error if data is not a whole number of records
func DecodeSpriteHits(data []byte) ([]GPUSpriteHit, error) {
	if len(data)%GPUSpriteHitSize != 0 {
		return nil, fmt.Errorf("sprite buffer of %d bytes is not a multiple of %d", len(data), GPUSpriteHitSize)
	}
	hits := make([]GPUSpriteHit, len(data)/GPUSpriteHitSize)
	for i := range hits {
		hits[i].Unmarshal(data[i*GPUSpriteHitSize:])
	}
	return hits, nil
}
