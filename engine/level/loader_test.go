package level_test

import (
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/level"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu/gputest"
)

const colorScene = `
map:
  width: 3
  height: 4
  content:
    - [1, 1, 1, 1]
    - [1, 0, 0, 1]
    - [1, 1, 257, 1]
  floor: [1.0, 0.5, 0.25]
  ceil: 3
initial:
  pos: [1.5, 1.5]
  dir: [1, 0]
  plane: [0, 0.66]
sprites:
  - x: 1.5
    y: 2.5
    texture: 8
  - x: 1.2
    y: 1.2
    texture: 9
    uDiv: 2
    vDiv: 3
    vMove: 64.0
`

const defaultsScene = `
map:
  width: 1
  height: 1
  content: [[0]]
initial:
  pos: [0.5, 0.5]
  dir: [-1, 0]
  plane: [0, 0.66]
textures: [eagle.png, wood.png]
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"maps/color.yaml":        {Data: []byte(colorScene)},
		"maps/defaults.yaml":     {Data: []byte(defaultsScene)},
		"maps/nomap.yaml":        {Data: []byte("initial:\n  pos: [1, 1]\n")},
		"maps/broken.yaml":       {Data: []byte("map: [unclosed\n")},
		"maps/badgrid.yaml":      {Data: []byte("map:\n  width: 2\n  height: 2\n  content: [[0, 0]]\n")},
		"maps/badsprite.yaml":    {Data: []byte("map:\n  width: 1\n  height: 1\n  content: [[0]]\ninitial: {pos: [0, 0], dir: [1, 0], plane: [0, 1]}\nsprites:\n  - x: 1\n")},
		"maps/folder/child.yaml": {Data: []byte(colorScene)},
	}
}

func newLoader(t *testing.T) (level.Loader, *gputest.Device) {
	t.Helper()
	dev := gputest.New()
	return level.NewLoader(gpu.NewContext(dev), level.WithFS(testFS())), dev
}

func TestLoad_Scene(t *testing.T) {
	loader, dev := newLoader(t)

	m, err := loader.Load("color.yaml")
	require.NoError(t, err)

	assert.Equal(t, "color.yaml", m.Name())
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 4, m.Height())
	assert.Equal(t, uint8(0), m.At(1, 1))
	assert.Equal(t, uint8(1), m.At(0, 3))
	assert.Equal(t, uint8(1), m.At(2, 2), "cells keep the low 8 bits")
	assert.Equal(t, level.OutOfBounds, m.At(3, 0))
	assert.Equal(t, level.OutOfBounds, m.At(-1, 0))

	assert.Equal(t, level.FlatColor{1.0, 0.5, 0.25}, m.Floor())
	assert.Equal(t, level.TextureLayer(3), m.Ceil())

	assert.Equal(t, mgl32.Vec2{1.5, 1.5}, m.InitialPosition())
	assert.Equal(t, mgl32.Vec2{1, 0}, m.InitialDirection())
	assert.Equal(t, mgl32.Vec2{0, 0.66}, m.InitialPlane())

	sprites := m.Sprites()
	require.Len(t, sprites, 2)
	assert.Equal(t, level.Sprite{Position: mgl32.Vec2{1.5, 2.5}, Texture: 8, UDiv: 1, VDiv: 1, VMove: 0}, sprites[0])
	assert.Equal(t, level.Sprite{Position: mgl32.Vec2{1.2, 1.2}, Texture: 9, UDiv: 2, VDiv: 3, VMove: 64}, sprites[1])
	assert.Nil(t, m.Textures())

	tex := m.Texture()
	require.NotNil(t, tex)
	state := dev.Textures[tex.Handle()]
	require.NotNil(t, state)
	assert.Equal(t, gpu.FormatR8UI, state.InternalFormat)
	assert.Equal(t, gpu.WrapRepeat, state.WrapS)
	assert.Equal(t, gpu.WrapRepeat, state.WrapT)
	assert.Equal(t, gpu.FilterNearest, state.MinFilter)
	assert.Equal(t, gpu.FilterNearest, state.MagFilter)
	assert.Equal(t, int32(4), state.Width)
	assert.Equal(t, int32(3), state.Height)
	assert.Equal(t, m.Grid(), state.Layers[0])
}

func TestLoad_Defaults(t *testing.T) {
	loader, _ := newLoader(t)

	m, err := loader.Load("defaults.yaml")
	require.NoError(t, err)

	assert.Equal(t, level.DefaultSurfaceLayer, m.Floor())
	assert.Equal(t, level.DefaultSurfaceLayer, m.Ceil())
	assert.Empty(t, m.Sprites())
	assert.Equal(t, []string{"eagle.png", "wood.png"}, m.Textures())
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name string
		file string
		want error
	}{
		{name: "missing", file: "nope.yaml", want: level.ErrNotFound},
		{name: "escaping", file: "../secrets.yaml", want: level.ErrNotFound},
		{name: "directory", file: "folder", want: level.ErrNotRegularFile},
		{name: "syntax", file: "broken.yaml", want: level.ErrInvalidFormat},
		{name: "no map section", file: "nomap.yaml", want: level.ErrMissingMapSection},
		{name: "short grid", file: "badgrid.yaml", want: level.ErrInvalidFormat},
		{name: "sprite without texture", file: "badsprite.yaml", want: level.ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, dev := newLoader(t)

			m, err := loader.Load(tt.file)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, m)
			assert.Zero(t, dev.Count("GenTexture"), "no device allocation on failure")
			assert.Empty(t, dev.Calls())
		})
	}
}

func TestLoad_UploadFailureReleasesTexture(t *testing.T) {
	dev := gputest.New()
	ctx := gpu.NewContext(dev, gpu.WithErrorMode(gpu.ErrorModeStrict))
	loader := level.NewLoader(ctx, level.WithFS(testFS()))

	dev.PushError(gpu.ErrorCodeOutOfMemory)
	m, err := loader.Load("color.yaml")

	var devErr *gpu.DeviceError
	assert.ErrorAs(t, err, &devErr)
	assert.Nil(t, m)
	assert.Empty(t, dev.Textures)
}

func TestMap_Release(t *testing.T) {
	loader, dev := newLoader(t)
	m, err := loader.Load("color.yaml")
	require.NoError(t, err)

	m.Release()
	m.Release()

	assert.Nil(t, m.Texture())
	assert.Nil(t, m.Grid())
	assert.Equal(t, level.OutOfBounds, m.At(1, 1))
	assert.Equal(t, 1, dev.Count("DeleteTexture"))
}
