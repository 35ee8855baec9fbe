package loader_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/loader"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu/gputest"
)

// countingFS records how often each file is opened.
type countingFS struct {
	fs.FS
	mu    sync.Mutex
	opens map[string]int
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.mu.Lock()
	c.opens[name]++
	c.mu.Unlock()
	return c.FS.Open(name)
}

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testFS(t *testing.T) *countingFS {
	return &countingFS{
		FS: fstest.MapFS{
			"pics/red.png":    {Data: solidPNG(t, 2, 2, color.RGBA{R: 255, A: 255})},
			"pics/blue.png":   {Data: solidPNG(t, 8, 8, color.RGBA{B: 200, A: 255})},
			"pics/wide.png":   {Data: solidPNG(t, 16, 4, color.RGBA{G: 10, A: 255})},
			"pics/broken.png": {Data: []byte("not a png")},
			"pics/notes.txt":  {Data: []byte("hello")},
		},
		opens: map[string]int{},
	}
}

func newLoader(t *testing.T, options ...gpu.ContextBuilderOption) (loader.Loader, *gputest.Device, *countingFS) {
	t.Helper()
	dev := gputest.New()
	fsys := testFS(t)
	l := loader.NewLoader(gpu.NewContext(dev, options...),
		loader.WithFS(fsys),
		loader.WithLayerSize(4),
		loader.WithWorkers(2),
	)
	return l, dev, fsys
}

func repeatRGB(n int, rgb ...byte) []byte {
	return bytes.Repeat(rgb, n)
}

func TestLoadTextureArray_Layers(t *testing.T) {
	l, dev, _ := newLoader(t)

	tex, err := l.LoadTextureArray([]string{"red.png", "blue.png", "wide.png"})
	require.NoError(t, err)

	assert.Equal(t, gpu.Texture2DArray, tex.Kind())
	assert.Equal(t, gpu.FormatRGBA32F, tex.InternalFormat())

	state := dev.Textures[tex.Handle()]
	require.NotNil(t, state)
	assert.Equal(t, [3]int32{4, 4, 3}, [3]int32{state.Width, state.Height, state.Depth})
	assert.Equal(t, int32(1), state.Levels)
	assert.Equal(t, gpu.WrapRepeat, state.WrapS)
	assert.Equal(t, gpu.WrapRepeat, state.WrapT)
	assert.Equal(t, gpu.FilterNearest, state.MinFilter)
	assert.Equal(t, gpu.FilterNearest, state.MagFilter)

	assert.Equal(t, repeatRGB(16, 255, 0, 0), state.Layers[0])
	assert.Equal(t, repeatRGB(16, 0, 0, 200), state.Layers[1])
	assert.Equal(t, repeatRGB(16, 0, 10, 0), state.Layers[2])
	assert.Equal(t, 3, dev.Count("TexSubImage3D"))
}

func TestLoadTextureArray_MissingFileUsesPlaceholder(t *testing.T) {
	l, dev, _ := newLoader(t)

	tex, err := l.LoadTextureArray([]string{"red.png", "gone.png"})
	require.NoError(t, err)

	layer := dev.Textures[tex.Handle()].Layers[1]
	require.Len(t, layer, 4*4*3)
	assert.NotEqual(t, layer[:3], layer[3:6], "placeholder is a checkerboard")
	assert.Equal(t, layer[:3], layer[6:9])
}

func TestLoadTextureArray_Failures(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		wantErr error
	}{
		{name: "empty", files: nil, wantErr: loader.ErrNoTextures},
		{name: "unsupported", files: []string{"red.png", "notes.txt"}, wantErr: loader.ErrUnsupportedFormat},
		{name: "corrupt", files: []string{"broken.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, dev, _ := newLoader(t)

			tex, err := l.LoadTextureArray(tt.files)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Nil(t, tex)
			assert.Zero(t, dev.Count("GenTexture"))
		})
	}
}

func TestLoadTextureArray_CachesDecodedLayers(t *testing.T) {
	l, _, fsys := newLoader(t)

	_, err := l.LoadTextureArray([]string{"red.png", "blue.png"})
	require.NoError(t, err)
	_, err = l.LoadTextureArray([]string{"blue.png", "red.png"})
	require.NoError(t, err)

	assert.Equal(t, 1, fsys.opens["pics/red.png"])
	assert.Equal(t, 1, fsys.opens["pics/blue.png"])
}

func TestLoadTextureArray_DeviceFailureReleasesTexture(t *testing.T) {
	l, dev, _ := newLoader(t, gpu.WithErrorMode(gpu.ErrorModeStrict))

	dev.PushError(gpu.ErrorCodeOutOfMemory)
	tex, err := l.LoadTextureArray([]string{"red.png"})

	var devErr *gpu.DeviceError
	assert.ErrorAs(t, err, &devErr)
	assert.Nil(t, tex)
	assert.Empty(t, dev.Textures)
}

func TestLoadImage(t *testing.T) {
	l, _, _ := newLoader(t)

	img, err := l.LoadImage("wide.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 4), img.Bounds())

	_, err = l.LoadImage("gone.png")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewLoader_Defaults(t *testing.T) {
	l := loader.NewLoader(gpu.NewContext(gputest.New()), loader.WithLayerSize(-1))

	assert.Equal(t, loader.DefaultLayerSize, l.LayerSize())
	assert.Len(t, loader.DefaultTextures, 11)
}
