package renderer

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/level"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/shader"
)

//go:embed assets/*.glsl
var assets embed.FS

// DefaultMaxColumns is the number of screen columns the ray result buffer holds.
const DefaultMaxColumns = 10000

// Program names.
const (
	ProgramDraw   = "raycaster-draw"
	ProgramRays   = "raycaster"
	ProgramSprite = "spritecaster"
)

// Storage and image binding points shared with the shader programs.
const (
	imageUnitTextures  = 1
	slotSpriteInput    = 1
	slotRayResults     = 2
	slotComputeSprites = 2
	slotDrawSpriteHits = 3
)

// Structs shaders can include or declare buffers of.
const (
	structRayHit    shader.AnnotationArg = "ray_hit"
	structSpriteHit shader.AnnotationArg = "sprite_hit"
	structSprite    shader.AnnotationArg = "sprite"
)

var (
	// ErrNoViewport is returned by RenderFrame before the first non-empty Resize.
	ErrNoViewport = errors.New("renderer: viewport has not been sized")

	// ErrBindingLayout is returned when a shader declares a storage buffer the renderer does not bind.
	ErrBindingLayout = errors.New("renderer: shader buffer does not match the binding layout")
)

// Shaders returns the embedded shader sources.
//
// Returns:
//   - fs.FS: a filesystem with vert.glsl, raycaster-drawer.glsl, raycaster.glsl and spritecaster.glsl at its root
func Shaders() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// View is the camera state a frame is rendered from.
type View struct {
	Position  mgl32.Vec2
	Direction mgl32.Vec2
	Plane     mgl32.Vec2
}

// Viewport is the render area inside the framebuffer.
type Viewport struct {
	X, Y          int32
	Width, Height int32
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	ctx      *gpu.Context
	shaderFS fs.FS
	logger   *slog.Logger

	maxColumns  int
	aspectNum   int
	aspectDen   int
	viewport    Viewport
	spriteCount int
	spritesSent bool

	programs map[string]*gpu.Program
	screen   *gpu.Geometry

	rayResults    *gpu.Buffer
	spriteInput   *gpu.Buffer
	spriteResults *gpu.Buffer
}

// Renderer draws the raycaster: a ray-compute pass and a sprite-compute pass write into storage
// buffers, a memory barrier orders them before the draw program shades the full-screen quad.
//
// Storage and image bindings per pass:
//   - rays: grid image on unit 1, ray results on slot 2
//   - sprites: sprite input on slot 1, sprite results on slot 2
//   - draw: texture array image on unit 1, ray results on slot 2, sprite results on slot 3
type Renderer interface {
	// Resize limits the framebuffer to the configured aspect ratio, centres the render area,
	// pushes screenSize to every program and updates the viewport. Empty sizes are ignored.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	//
	// Returns:
	//   - Viewport: the render area in effect
	//   - error: error if a device call fails
	Resize(width, height int) (Viewport, error)

	// Viewport returns the current render area.
	//
	// Returns:
	//   - Viewport: the render area, zero before the first Resize
	Viewport() Viewport

	// Columns returns how many ray-compute work groups a frame dispatches.
	//
	// Returns:
	//   - uint32: the viewport width, capped at the ray buffer capacity
	Columns() uint32

	// SetSurfaces pushes the floor and ceiling appearance to the draw program.
	//
	// Parameters:
	//   - floor: the floor surface
	//   - ceil: the ceiling surface
	//
	// Returns:
	//   - error: error if a device call fails
	SetSurfaces(floor, ceil level.Surface) error

	// SetSprites uploads sprites, already ordered farthest first, to the sprite input buffer.
	// When the count changes the sprite result buffer is resized and spriteCount is pushed to
	// the draw program.
	//
	// Parameters:
	//   - sprites: the ordered sprites
	//
	// Returns:
	//   - error: error if a device call fails
	SetSprites(sprites []level.Sprite) error

	// SpriteCount returns the number of sprites last uploaded.
	//
	// Returns:
	//   - int: the sprite count
	SpriteCount() int

	// RenderFrame runs both compute passes, the memory barrier and the draw.
	//
	// Parameters:
	//   - view: the camera state
	//   - world: the grid texture of the map
	//   - textures: the wall and sprite texture array
	//
	// Returns:
	//   - error: ErrNoViewport, or the first failing step
	RenderFrame(view View, world, textures *gpu.Texture) error

	// Program returns one of the linked programs by name.
	//
	// Parameters:
	//   - name: ProgramDraw, ProgramRays or ProgramSprite
	//
	// Returns:
	//   - *gpu.Program: the program, or nil for an unknown name
	Program(name string) *gpu.Program

	// RayResults returns the ray result storage buffer.
	//
	// Returns:
	//   - *gpu.Buffer: the buffer
	RayResults() *gpu.Buffer

	// SpriteResults returns the sprite result storage buffer.
	//
	// Returns:
	//   - *gpu.Buffer: the buffer
	SpriteResults() *gpu.Buffer

	// DumpRays streams the raw ray result buffer to w.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - int64: bytes written
	//   - error: error if mapping or writing fails
	DumpRays(w io.Writer) (int64, error)

	// Release frees every program, buffer and the screen quad.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer compiles and links the three programs and allocates the screen quad and the
// storage buffers. Shader stages are released once linked.
//
// Parameters:
//   - ctx: the device context
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: a read error, *gpu.CompileError, *gpu.LinkError or device error
func NewRenderer(ctx *gpu.Context, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		ctx:        ctx,
		maxColumns: DefaultMaxColumns,
		aspectNum:  4,
		aspectDen:  3,
		programs:   make(map[string]*gpu.Program),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.shaderFS == nil {
		r.shaderFS = Shaders()
	}

	if err := r.buildPrograms(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.buildScreen(); err != nil {
		r.Release()
		return nil, fmt.Errorf("building screen quad: %w", err)
	}

	r.log().Info("Allocating raycaster output buffer", "bytes", r.maxColumns*GPURayHitSize)
	r.rayResults = gpu.NewBuffer(ctx, gpu.ShaderStorageBuffer, r.maxColumns*GPURayHitSize, gpu.WithLabel("ray results"))
	r.spriteInput = gpu.NewBuffer(ctx, gpu.ShaderStorageBuffer, 0, gpu.WithUsage(gpu.DynamicCopy), gpu.WithLabel("sprite input"))
	r.spriteResults = gpu.NewBuffer(ctx, gpu.ShaderStorageBuffer, GPUSpriteHitSize, gpu.WithLabel("sprite results"))
	for _, b := range []*gpu.Buffer{r.rayResults, r.spriteInput, r.spriteResults} {
		if err := b.Bind(); err != nil {
			r.Release()
			return nil, fmt.Errorf("allocating %s buffer: %w", b.Label(), err)
		}
	}
	return r, nil
}

func (r *renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return common.Logger()
}

func (r *renderer) buildPrograms() error {
	r.log().Info("Compiling shaders")
	stages := []struct {
		kind   gpu.ShaderType
		path   string
		layout map[int]shader.AnnotationArg
	}{
		{gpu.ShaderVertex, "vert.glsl", nil},
		{gpu.ShaderFragment, "raycaster-drawer.glsl", map[int]shader.AnnotationArg{
			slotRayResults:     structRayHit,
			slotDrawSpriteHits: structSpriteHit,
		}},
		{gpu.ShaderCompute, "raycaster.glsl", map[int]shader.AnnotationArg{
			slotRayResults: structRayHit,
		}},
		{gpu.ShaderCompute, "spritecaster.glsl", map[int]shader.AnnotationArg{
			slotSpriteInput:    structSprite,
			slotComputeSprites: structSpriteHit,
		}},
	}
	shaders := make([]*gpu.Shader, 0, len(stages))
	defer func() {
		for _, s := range shaders {
			s.Release()
		}
	}()
	for _, st := range stages {
		s, err := gpu.LoadShader(r.ctx, st.kind, r.shaderFS, st.path, gpu.WithSourceFilter(preprocess(st.layout)))
		if err != nil {
			return fmt.Errorf("compiling %s: %w", st.path, err)
		}
		shaders = append(shaders, s)
	}

	links := []struct {
		name   string
		stages []*gpu.Shader
	}{
		{ProgramDraw, []*gpu.Shader{shaders[0], shaders[1]}},
		{ProgramRays, []*gpu.Shader{shaders[2]}},
		{ProgramSprite, []*gpu.Shader{shaders[3]}},
	}
	for _, l := range links {
		p := gpu.NewProgram(r.ctx, l.name)
		r.programs[l.name] = p
		if err := p.Link(l.stages...); err != nil {
			return fmt.Errorf("linking %s: %w", l.name, err)
		}
	}
	return nil
}

// preprocess expands the @oxy directives of a stage and checks its buffer declarations
// against the slots the renderer binds for that stage.
func preprocess(layout map[int]shader.AnnotationArg) func(string) (string, error) {
	pre := shader.NewPreProcessor(
		shader.WithStruct(structRayHit, "RayHit", GPURayHitSource),
		shader.WithStruct(structSpriteHit, "SpriteHit", GPUSpriteHitSource),
		shader.WithStruct(structSprite, "Sprite", level.GPUSpriteSource),
	)
	return func(source string) (string, error) {
		out, err := pre.Process(source)
		if err != nil {
			return "", err
		}
		for _, d := range pre.Declarations() {
			if want, ok := layout[*d.Slot]; !ok || want != d.Struct() {
				return "", fmt.Errorf("%w: line %d declares %s on slot %d", ErrBindingLayout, d.Line, d.Struct(), *d.Slot)
			}
		}
		return out, nil
	}
}

func (r *renderer) buildScreen() error {
	r.log().Info("Generating plane")
	r.screen = gpu.NewGeometry(r.ctx)
	positions := gpu.NewFloatAttribute(r.ctx, []float32{
		1, 1, 0, // top right
		1, -1, 0, // bottom right
		-1, -1, 0, // bottom left
		-1, 1, 0, // top left
	}, 3, false)
	uvs := gpu.NewFloatAttribute(r.ctx, []float32{
		1, 1,
		1, 0,
		0, 0,
		0, 1,
	}, 2, false)
	indices := gpu.NewUintAttribute(r.ctx, []uint32{
		0, 1, 3,
		1, 2, 3,
	}, 3, false)

	if err := r.screen.AddAttribute(positions); err != nil {
		return err
	}
	if err := r.screen.AddAttribute(uvs); err != nil {
		return err
	}
	return r.screen.SetIndices(indices)
}

func (r *renderer) Program(name string) *gpu.Program {
	return r.programs[name]
}

func (r *renderer) RayResults() *gpu.Buffer {
	return r.rayResults
}

func (r *renderer) SpriteResults() *gpu.Buffer {
	return r.spriteResults
}

func (r *renderer) Viewport() Viewport {
	return r.viewport
}

func (r *renderer) Columns() uint32 {
	return r.columns()
}

func (r *renderer) columns() uint32 {
	return uint32(common.Clamp(int(r.viewport.Width), 0, r.maxColumns))
}

func (r *renderer) SpriteCount() int {
	return r.spriteCount
}

func (r *renderer) Resize(width, height int) (Viewport, error) {
	if width <= 0 || height <= 0 {
		r.log().Debug("Ignoring empty framebuffer", "width", width, "height", height)
		return r.viewport, nil
	}

	vp := Viewport{Width: int32(width), Height: int32(height)}
	if width*r.aspectDen > height*r.aspectNum {
		vp.Width = int32(height * r.aspectNum / r.aspectDen)
		vp.X = (int32(width) - vp.Width) / 2
	} else {
		vp.Height = int32(width * r.aspectDen / r.aspectNum)
		vp.Y = (int32(height) - vp.Height) / 2
	}
	r.log().Info("Framebuffer set", "width", vp.Width, "height", vp.Height, "x", vp.X, "y", vp.Y)

	for _, name := range []string{ProgramRays, ProgramDraw, ProgramSprite} {
		p := r.programs[name]
		if err := p.Use(); err != nil {
			return r.viewport, err
		}
		if err := p.SetUniformInt2("screenSize", vp.Width, vp.Height); err != nil {
			return r.viewport, err
		}
	}
	if err := r.ctx.Viewport(vp.X, vp.Y, vp.Width, vp.Height); err != nil {
		return r.viewport, err
	}
	r.viewport = vp
	return vp, nil
}

func (r *renderer) SetSurfaces(floor, ceil level.Surface) error {
	p := r.programs[ProgramDraw]
	if err := p.Use(); err != nil {
		return err
	}
	if err := p.SetUniformVec4("floorTex", floor.Uniform()); err != nil {
		return err
	}
	return p.SetUniformVec4("ceilTex", ceil.Uniform())
}

func (r *renderer) SetSprites(sprites []level.Sprite) error {
	if len(sprites) != r.spriteCount || !r.spritesSent {
		// never empty, so the buffer stays bindable without sprites
		if err := r.spriteResults.SetData(make([]byte, max(len(sprites), 1)*GPUSpriteHitSize)); err != nil {
			return fmt.Errorf("resizing sprite results: %w", err)
		}
		p := r.programs[ProgramDraw]
		if err := p.Use(); err != nil {
			return err
		}
		if err := p.SetUniformUint("spriteCount", uint32(len(sprites))); err != nil {
			return err
		}
		r.spriteCount = len(sprites)
		r.spritesSent = true
	}
	if err := r.spriteInput.SetData(level.MarshalSprites(sprites)); err != nil {
		return fmt.Errorf("uploading sprites: %w", err)
	}
	return nil
}

func (r *renderer) RenderFrame(view View, world, textures *gpu.Texture) error {
	columns := r.columns()
	if columns == 0 {
		return ErrNoViewport
	}

	if err := r.castRays(view, world, columns); err != nil {
		return fmt.Errorf("ray pass: %w", err)
	}
	if err := r.castSprites(view); err != nil {
		return fmt.Errorf("sprite pass: %w", err)
	}
	if err := r.ctx.Clear(0, 0, 0, 1); err != nil {
		return err
	}
	if err := r.ctx.MemoryBarrier(gpu.BarrierShaderStorage); err != nil {
		return err
	}
	if err := r.draw(view, textures); err != nil {
		return fmt.Errorf("draw pass: %w", err)
	}
	return nil
}

func (r *renderer) castRays(view View, world *gpu.Texture, columns uint32) error {
	if err := world.BindImage(imageUnitTextures); err != nil {
		return err
	}
	if err := r.rayResults.BindBase(slotRayResults); err != nil {
		return err
	}
	p := r.programs[ProgramRays]
	if err := p.Use(); err != nil {
		return err
	}
	if err := setView(p, view); err != nil {
		return err
	}
	return p.DispatchCompute(columns)
}

func (r *renderer) castSprites(view View) error {
	if r.spriteCount == 0 {
		return nil
	}
	p := r.programs[ProgramSprite]
	if err := p.Use(); err != nil {
		return err
	}
	if err := r.spriteInput.BindBase(slotSpriteInput); err != nil {
		return err
	}
	if err := r.spriteResults.BindBase(slotComputeSprites); err != nil {
		return err
	}
	if err := setView(p, view); err != nil {
		return err
	}
	return p.DispatchCompute(uint32(r.spriteCount))
}

func (r *renderer) draw(view View, textures *gpu.Texture) error {
	p := r.programs[ProgramDraw]
	if err := p.Use(); err != nil {
		return err
	}
	if err := textures.BindImage(imageUnitTextures); err != nil {
		return err
	}
	if err := r.rayResults.BindBase(slotRayResults); err != nil {
		return err
	}
	if err := r.spriteResults.BindBase(slotDrawSpriteHits); err != nil {
		return err
	}
	if err := p.SetUniformVec2("position", view.Position); err != nil {
		return err
	}
	return r.screen.Draw()
}

func setView(p *gpu.Program, view View) error {
	if err := p.SetUniformVec2("position", view.Position); err != nil {
		return err
	}
	if err := p.SetUniformVec2("direction", view.Direction); err != nil {
		return err
	}
	return p.SetUniformVec2("plane", view.Plane)
}

func (r *renderer) DumpRays(w io.Writer) (int64, error) {
	return r.rayResults.WriteTo(w)
}

func (r *renderer) Release() {
	for _, p := range r.programs {
		p.Release()
	}
	if r.screen != nil {
		r.screen.Release()
	}
	for _, b := range []*gpu.Buffer{r.rayResults, r.spriteInput, r.spriteResults} {
		if b != nil {
			b.Release()
		}
	}
}
