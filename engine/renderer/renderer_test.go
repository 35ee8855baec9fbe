package renderer_test

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/level"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu/gputest"
)

var testView = renderer.View{
	Position:  mgl32.Vec2{5, 5},
	Direction: mgl32.Vec2{1, 0},
	Plane:     mgl32.Vec2{0, 0.66},
}

func newRenderer(t *testing.T, options ...renderer.RendererBuilderOption) (renderer.Renderer, *gputest.Device, *gpu.Context) {
	t.Helper()
	dev := gputest.New()
	ctx := gpu.NewContext(dev)
	r, err := renderer.NewRenderer(ctx, options...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r, dev, ctx
}

// boxScene is a size x size room walled on its border.
func boxScene(size int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "map:\n  width: %d\n  height: %d\n  content:\n", size, size)
	for x := range size {
		row := make([]string, size)
		for y := range size {
			row[y] = "0"
			if x == 0 || y == 0 || x == size-1 || y == size-1 {
				row[y] = "1"
			}
		}
		fmt.Fprintf(&b, "    - [%s]\n", strings.Join(row, ", "))
	}
	b.WriteString("initial:\n  pos: [5, 5]\n  dir: [1, 0]\n  plane: [0, 0.66]\n")
	return b.String()
}

func loadBox(t *testing.T, ctx *gpu.Context) level.Map {
	t.Helper()
	loader := level.NewLoader(ctx, level.WithFS(fstest.MapFS{
		"maps/box.yaml": {Data: []byte(boxScene(10))},
	}))
	m, err := loader.Load("box.yaml")
	require.NoError(t, err)
	return m
}

func textureArray(t *testing.T, ctx *gpu.Context, layers int32) *gpu.Texture {
	t.Helper()
	tex := gpu.NewTexture(ctx, gpu.Texture2DArray)
	require.NoError(t, tex.Bind())
	require.NoError(t, tex.ReserveStorage3D(gpu.FormatRGBA32F, [3]int32{4, 4, layers}, 1))
	return tex
}

func TestNewRenderer_BuildsPrograms(t *testing.T) {
	r, dev, _ := newRenderer(t)

	for _, name := range []string{renderer.ProgramDraw, renderer.ProgramRays, renderer.ProgramSprite} {
		p := r.Program(name)
		require.NotNil(t, p, name)
		assert.True(t, p.Linked(), name)
		assert.Empty(t, dev.Programs[p.Handle()].Attached, name)
	}
	assert.Nil(t, r.Program("missing"))

	assert.Equal(t, 4, dev.Count("CompileShader"))
	assert.Empty(t, dev.Shaders, "stages are released once linked")

	assert.Equal(t, renderer.DefaultMaxColumns*renderer.GPURayHitSize, r.RayResults().Size())
	assert.Equal(t, 400000, r.RayResults().Size())
	assert.True(t, r.RayResults().Built())
	assert.True(t, r.SpriteResults().Built())
}

func TestNewRenderer_CompileFailure(t *testing.T) {
	dev := gputest.New()
	dev.CompileHook = func(kind gpu.ShaderType, _ string) (bool, string) {
		if kind == gpu.ShaderCompute {
			return false, "0:1: syntax error"
		}
		return true, ""
	}

	r, err := renderer.NewRenderer(gpu.NewContext(dev))

	var compileErr *gpu.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "raycaster.glsl", compileErr.Path)
	assert.Nil(t, r)
	assert.Empty(t, dev.Shaders)
	assert.Empty(t, dev.Programs)
}

func TestNewRenderer_LinkFailure(t *testing.T) {
	dev := gputest.New()
	dev.LinkHook = func(uint32) (bool, string) {
		return false, "link failed"
	}

	_, err := renderer.NewRenderer(gpu.NewContext(dev))

	var linkErr *gpu.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, renderer.ProgramDraw, linkErr.Program)
	assert.Empty(t, dev.Programs)
	assert.Empty(t, dev.Buffers)
}

func TestNewRenderer_CustomShaders(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, name := range []string{"vert.glsl", "raycaster-drawer.glsl", "raycaster.glsl", "spritecaster.glsl"} {
		fsys[name] = &fstest.MapFile{Data: []byte("#version 430 core\n// " + name)}
	}
	dev := gputest.New()
	var sources []string
	dev.CompileHook = func(_ gpu.ShaderType, src string) (bool, string) {
		sources = append(sources, src)
		return true, ""
	}

	r, err := renderer.NewRenderer(gpu.NewContext(dev), renderer.WithShaderFS(fsys))
	require.NoError(t, err)
	defer r.Release()

	assert.Len(t, sources, 4)
	assert.Contains(t, sources[1], "raycaster-drawer.glsl")
}

func TestNewRenderer_ExpandsSharedStructs(t *testing.T) {
	dev := gputest.New()
	sources := map[gpu.ShaderType][]string{}
	dev.CompileHook = func(kind gpu.ShaderType, src string) (bool, string) {
		sources[kind] = append(sources[kind], src)
		return true, ""
	}

	r, err := renderer.NewRenderer(gpu.NewContext(dev))
	require.NoError(t, err)
	defer r.Release()

	require.Len(t, sources[gpu.ShaderCompute], 2)
	rays, sprites := sources[gpu.ShaderCompute][0], sources[gpu.ShaderCompute][1]
	draw := sources[gpu.ShaderFragment][0]

	assert.Contains(t, rays, renderer.GPURayHitSource)
	assert.Contains(t, rays, "layout(std430, binding = 2) writeonly buffer RayHitBuffer2")
	assert.Contains(t, sprites, level.GPUSpriteSource)
	assert.Contains(t, sprites, "layout(std430, binding = 1) readonly buffer SpriteBuffer1")
	assert.Contains(t, sprites, "layout(std430, binding = 2) writeonly buffer SpriteHitBuffer2")
	assert.Contains(t, draw, renderer.GPUSpriteHitSource)
	assert.Contains(t, draw, "layout(std430, binding = 3) readonly buffer SpriteHitBuffer3")
	for _, src := range []string{rays, sprites, draw} {
		assert.NotContains(t, src, "@oxy:")
	}
}

func TestNewRenderer_RejectsMismatchedBuffers(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, name := range []string{"vert.glsl", "raycaster-drawer.glsl", "spritecaster.glsl"} {
		fsys[name] = &fstest.MapFile{Data: []byte("#version 430 core\n")}
	}
	fsys["raycaster.glsl"] = &fstest.MapFile{Data: []byte("#version 430 core\n// @oxy:buffer write 3 ray_hit rays\n")}
	dev := gputest.New()

	_, err := renderer.NewRenderer(gpu.NewContext(dev), renderer.WithShaderFS(fsys))

	require.ErrorIs(t, err, renderer.ErrBindingLayout)
	assert.Contains(t, err.Error(), "raycaster.glsl")
	assert.Empty(t, dev.Shaders)
	assert.Empty(t, dev.Programs)
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          renderer.Viewport
	}{
		{name: "wide", width: 1920, height: 1080, want: renderer.Viewport{X: 240, Width: 1440, Height: 1080}},
		{name: "exact", width: 800, height: 600, want: renderer.Viewport{Width: 800, Height: 600}},
		{name: "default window", width: 1333, height: 1000, want: renderer.Viewport{Width: 1333, Height: 999}},
		{name: "tall", width: 600, height: 800, want: renderer.Viewport{Y: 175, Width: 600, Height: 450}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, dev, _ := newRenderer(t)

			vp, err := r.Resize(tt.width, tt.height)
			require.NoError(t, err)

			assert.Equal(t, tt.want, vp)
			assert.Equal(t, tt.want, r.Viewport())
			assert.Equal(t, [4]int32{tt.want.X, tt.want.Y, tt.want.Width, tt.want.Height}, dev.ViewportValue)
			for _, name := range []string{renderer.ProgramDraw, renderer.ProgramRays, renderer.ProgramSprite} {
				assert.Equal(t, [2]int32{tt.want.Width, tt.want.Height}, dev.Uniform(r.Program(name).Handle(), "screenSize"), name)
			}
		})
	}
}

func TestResize_IgnoresEmptyFramebuffer(t *testing.T) {
	r, dev, _ := newRenderer(t)
	_, err := r.Resize(800, 600)
	require.NoError(t, err)
	dev.ResetCalls()

	vp, err := r.Resize(0, 0)

	require.NoError(t, err)
	assert.Equal(t, renderer.Viewport{Width: 800, Height: 600}, vp)
	assert.Zero(t, dev.Count("Viewport"))
}

func TestResize_CustomAspect(t *testing.T) {
	r, _, _ := newRenderer(t, renderer.WithAspectRatio(16, 9))

	vp, err := r.Resize(1920, 1080)

	require.NoError(t, err)
	assert.Equal(t, renderer.Viewport{Width: 1920, Height: 1080}, vp)
}

func TestSetSurfaces(t *testing.T) {
	r, dev, _ := newRenderer(t)

	require.NoError(t, r.SetSurfaces(level.FlatColor{0.5, 0.25, 1}, level.TextureLayer(6)))

	draw := r.Program(renderer.ProgramDraw).Handle()
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 0}, dev.Uniform(draw, "floorTex"))
	assert.Equal(t, [4]float32{0, 0, 0, 6}, dev.Uniform(draw, "ceilTex"))
}

func TestSetSprites(t *testing.T) {
	r, dev, _ := newRenderer(t)
	sprites := []level.Sprite{
		{Position: mgl32.Vec2{1, 1}, Texture: 8, UDiv: 1, VDiv: 1},
		{Position: mgl32.Vec2{2, 2}, Texture: 9, UDiv: 2, VDiv: 2, VMove: 64},
	}
	draw := r.Program(renderer.ProgramDraw).Handle()

	require.NoError(t, r.SetSprites(nil))
	assert.Equal(t, uint32(0), dev.Uniform(draw, "spriteCount"))
	assert.Equal(t, renderer.GPUSpriteHitSize, r.SpriteResults().Size())

	require.NoError(t, r.SetSprites(sprites))
	assert.Equal(t, 2, r.SpriteCount())
	assert.Equal(t, uint32(2), dev.Uniform(draw, "spriteCount"))
	assert.Equal(t, 2*renderer.GPUSpriteHitSize, r.SpriteResults().Size())

	dev.ResetCalls()
	sprites[0], sprites[1] = sprites[1], sprites[0]
	require.NoError(t, r.SetSprites(sprites))
	assert.Zero(t, dev.Count("Uniform1ui"), "same count keeps the uniform")

	var input *gputest.BufferState
	for _, b := range dev.Buffers {
		if b.Usage == gpu.DynamicCopy {
			input = b
		}
	}
	require.NotNil(t, input)
	assert.Equal(t, level.MarshalSprites(sprites), input.Data)
}

func TestRenderFrame_RequiresViewport(t *testing.T) {
	r, _, ctx := newRenderer(t)
	m := loadBox(t, ctx)

	err := r.RenderFrame(testView, m.Texture(), textureArray(t, ctx, 11))

	assert.ErrorIs(t, err, renderer.ErrNoViewport)
}

func TestRenderFrame_Ordering(t *testing.T) {
	r, dev, ctx := newRenderer(t)
	m := loadBox(t, ctx)
	textures := textureArray(t, ctx, 11)
	_, err := r.Resize(640, 480)
	require.NoError(t, err)
	require.NoError(t, r.SetSprites([]level.Sprite{{Position: mgl32.Vec2{3, 3}, Texture: 8, UDiv: 1, VDiv: 1}}))

	rays := r.Program(renderer.ProgramRays).Handle()
	sprites := r.Program(renderer.ProgramSprite).Handle()
	draw := r.Program(renderer.ProgramDraw).Handle()
	rayBuf := r.RayResults().Handle()
	spriteBuf := r.SpriteResults().Handle()

	var dispatched []uint32
	dev.OnDispatch = func(d *gputest.Device, program, x, y, z uint32) {
		dispatched = append(dispatched, program)
		switch program {
		case rays:
			assert.Equal(t, m.Texture().Handle(), d.ImageUnits[1].Texture)
			assert.Equal(t, rayBuf, d.IndexedBuffer[gpu.ShaderStorageBuffer][2])
			assert.Equal(t, [3]uint32{640, 1, 1}, [3]uint32{x, y, z})
			assert.Equal(t, [2]float32{1, 0}, d.Uniform(program, "direction"))
			assert.Equal(t, [2]float32{0, 0.66}, d.Uniform(program, "plane"))
		case sprites:
			assert.Equal(t, spriteBuf, d.IndexedBuffer[gpu.ShaderStorageBuffer][2])
			assert.NotZero(t, d.IndexedBuffer[gpu.ShaderStorageBuffer][1])
			assert.Equal(t, uint32(1), x)
		}
	}
	drawn := false
	dev.OnDraw = func(d *gputest.Device, program uint32) {
		drawn = true
		assert.Equal(t, draw, program)
		assert.Equal(t, textures.Handle(), d.ImageUnits[1].Texture)
		assert.True(t, d.ImageUnits[1].Layered)
		assert.Equal(t, rayBuf, d.IndexedBuffer[gpu.ShaderStorageBuffer][2])
		assert.Equal(t, spriteBuf, d.IndexedBuffer[gpu.ShaderStorageBuffer][3])
		assert.Equal(t, [2]float32{5, 5}, d.Uniform(program, "position"))
	}
	dev.ResetCalls()

	require.NoError(t, r.RenderFrame(testView, m.Texture(), textures))

	assert.Equal(t, []uint32{rays, sprites}, dispatched)
	assert.True(t, drawn)

	rayDispatch := dev.Index("DispatchCompute", 0)
	spriteDispatch := dev.Index("DispatchCompute", 1)
	clear := dev.Index("Clear", 0)
	barrier := dev.Index("MemoryBarrier", 0)
	drawCall := dev.Index("DrawElements", 0)
	assert.Less(t, rayDispatch, spriteDispatch)
	assert.Less(t, spriteDispatch, clear)
	assert.Less(t, clear, barrier)
	assert.Less(t, barrier, drawCall)
	assert.Equal(t, []gpu.Barrier{gpu.BarrierShaderStorage}, dev.BarrierHistory)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, dev.ClearValue)
}

func TestRenderFrame_SkipsSpritePassWithoutSprites(t *testing.T) {
	r, dev, ctx := newRenderer(t)
	m := loadBox(t, ctx)
	_, err := r.Resize(640, 480)
	require.NoError(t, err)
	require.NoError(t, r.SetSprites(nil))
	dev.ResetCalls()

	require.NoError(t, r.RenderFrame(testView, m.Texture(), textureArray(t, ctx, 11)))

	assert.Equal(t, 1, dev.Count("DispatchCompute"))
	assert.Equal(t, 1, dev.Count("DrawElements"))
}

func TestRenderFrame_ColumnsCapped(t *testing.T) {
	r, dev, ctx := newRenderer(t, renderer.WithMaxColumns(100))
	m := loadBox(t, ctx)
	_, err := r.Resize(800, 600)
	require.NoError(t, err)
	dev.ResetCalls()

	require.NoError(t, r.RenderFrame(testView, m.Texture(), textureArray(t, ctx, 11)))

	assert.Equal(t, uint32(100), r.Columns())
	assert.Equal(t, uint32(100), dev.Find("DispatchCompute")[0].Args[1])
	assert.Equal(t, 100*renderer.GPURayHitSize, r.RayResults().Size())
}

// castColumns emulates the ray-compute program on the grid texture bound to image unit 1.
func castColumns(d *gputest.Device, view renderer.View, screen [2]int32, columns uint32) {
	world := d.Textures[d.ImageUnits[1].Texture]
	gridW, gridH := int(world.Height), int(world.Width)
	cells := world.Layers[0]
	out := d.BufferAt(gpu.ShaderStorageBuffer, 2).Data

	for x := range int(columns) {
		if x >= int(screen[0]) {
			break
		}
		cameraX := 2*float64(x)/float64(screen[0]) - 1
		dirX := float64(view.Direction[0]) + float64(view.Plane[0])*cameraX
		dirY := float64(view.Direction[1]) + float64(view.Plane[1])*cameraX
		posX, posY := float64(view.Position[0]), float64(view.Position[1])
		cellX, cellY := int(math.Floor(posX)), int(math.Floor(posY))

		deltaX, deltaY := math.Inf(1), math.Inf(1)
		if dirX != 0 {
			deltaX = math.Abs(1 / dirX)
		}
		if dirY != 0 {
			deltaY = math.Abs(1 / dirY)
		}
		stepX, sideX := 1, (float64(cellX)+1-posX)*deltaX
		if dirX < 0 {
			stepX, sideX = -1, (posX-float64(cellX))*deltaX
		}
		stepY, sideY := 1, (float64(cellY)+1-posY)*deltaY
		if dirY < 0 {
			stepY, sideY = -1, (posY-float64(cellY))*deltaY
		}

		side, tile := 0, byte(0)
		for tile == 0 {
			if sideX < sideY {
				sideX += deltaX
				cellX += stepX
				side = 0
			} else {
				sideY += deltaY
				cellY += stepY
				side = 1
			}
			if cellX < 0 || cellY < 0 || cellX >= gridW || cellY >= gridH {
				tile = 255
				break
			}
			tile = cells[cellX*gridH+cellY]
		}
		dist := sideX - deltaX
		if side == 1 {
			dist = sideY - deltaY
		}

		hit := renderer.GPURayHit{
			CellX:      int32(cellX),
			CellY:      int32(cellY),
			Side:       int32(side),
			Tile:       int32(tile),
			LineHeight: int32(float64(screen[1]) / dist),
			Distance:   float32(dist),
			RayDirX:    float32(dirX),
			RayDirY:    float32(dirY),
		}
		copy(out[x*renderer.GPURayHitSize:], hit.Marshal())
	}
}

func TestRenderFrame_OneRayPerColumn(t *testing.T) {
	const width = 64
	r, dev, ctx := newRenderer(t, renderer.WithMaxColumns(width))
	m := loadBox(t, ctx)
	vp, err := r.Resize(width, 48)
	require.NoError(t, err)

	rays := r.Program(renderer.ProgramRays).Handle()
	dev.OnDispatch = func(d *gputest.Device, program, x, _, _ uint32) {
		if program == rays {
			castColumns(d, testView, [2]int32{vp.Width, vp.Height}, x)
		}
	}

	require.NoError(t, r.RenderFrame(testView, m.Texture(), textureArray(t, ctx, 11)))

	var dump bytes.Buffer
	n, err := r.DumpRays(&dump)
	require.NoError(t, err)
	require.Equal(t, int64(width*renderer.GPURayHitSize), n)

	hits, err := renderer.DecodeRayHits(dump.Bytes())
	require.NoError(t, err)
	require.Len(t, hits, width)
	for x, hit := range hits {
		cameraX := 2*float32(x)/width - 1
		assert.Equal(t, int32(9), hit.CellX, "column %d", x)
		assert.Equal(t, int32(1), hit.Tile, "column %d", x)
		assert.InDelta(t, 0.66*cameraX, hit.RayDirY, 1e-5, "column %d", x)
		assert.InDelta(t, 4, hit.Distance, 1e-4, "column %d", x)
	}
}

func TestDecodeRayHits_RejectsPartialRecords(t *testing.T) {
	_, err := renderer.DecodeRayHits(make([]byte, renderer.GPURayHitSize+1))
	assert.Error(t, err)

	_, err = renderer.DecodeSpriteHits(make([]byte, 3))
	assert.Error(t, err)
}

func TestRelease(t *testing.T) {
	dev := gputest.New()
	r, err := renderer.NewRenderer(gpu.NewContext(dev))
	require.NoError(t, err)

	r.Release()

	assert.Empty(t, dev.Programs)
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.VertexArrays)
}
