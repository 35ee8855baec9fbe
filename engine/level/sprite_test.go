package level_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/level"
)

func TestSortByDistance(t *testing.T) {
	sprites := []level.Sprite{
		{Position: mgl32.Vec2{6, 5}, Texture: 1},
		{Position: mgl32.Vec2{10, 5}, Texture: 2},
		{Position: mgl32.Vec2{5, 7}, Texture: 3},
		{Position: mgl32.Vec2{4, 5}, Texture: 4},
	}

	level.SortByDistance(sprites, mgl32.Vec2{5, 5})

	var order []uint32
	for _, s := range sprites {
		order = append(order, s.Texture)
	}
	assert.Equal(t, []uint32{2, 3, 1, 4}, order)
}

func TestMarshalSprites(t *testing.T) {
	buf := level.MarshalSprites([]level.Sprite{
		{Position: mgl32.Vec2{1.5, 2.5}, Texture: 8, UDiv: 1, VDiv: 2, VMove: -64},
		{Position: mgl32.Vec2{3, 4}, Texture: 10, UDiv: 1, VDiv: 1},
	})

	require.Len(t, buf, 2*level.GPUSpriteSize)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(2.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(buf[8:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[12:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[16:]))
	assert.Equal(t, float32(-64), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
	assert.Equal(t, uint32(10), binary.LittleEndian.Uint32(buf[level.GPUSpriteSize+8:]))
}

func TestSurface_Uniform(t *testing.T) {
	tests := []struct {
		name    string
		surface level.Surface
		want    mgl32.Vec4
	}{
		{name: "color", surface: level.FlatColor{1, 0.5, 0.25}, want: mgl32.Vec4{1, 0.5, 0.25, 0}},
		{name: "layer", surface: level.TextureLayer(3), want: mgl32.Vec4{0, 0, 0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.surface.Uniform())
		})
	}
}
