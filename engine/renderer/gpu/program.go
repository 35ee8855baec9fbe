package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a linked shader program. The native object is created on construction.
//
// Uniform locations are resolved by name on first use and cached for the lifetime of the
// program, including names the program does not expose, which stay at InvalidLocation.
// Uniform setters and DispatchCompute are only valid while the program is the active one.
type Program struct {
	ctx *Context

	name      string
	handle    uint32
	linked    bool
	locations map[string]int32
}

// NewProgram creates an empty program object.
//
// Parameters:
//   - ctx: the device context
//   - name: a display name used in diagnostics
//
// Returns:
//   - *Program: the empty program
func NewProgram(ctx *Context, name string) *Program {
	return &Program{
		ctx:       ctx,
		name:      name,
		handle:    ctx.device.CreateProgram(),
		locations: make(map[string]int32),
	}
}

// Name returns the display name.
func (p *Program) Name() string {
	return p.name
}

// Handle returns the native handle.
func (p *Program) Handle() uint32 {
	return p.handle
}

// Linked reports whether the last Link succeeded.
func (p *Program) Linked() bool {
	return p.linked
}

// Active reports whether this program is the one most recently made active on the Context.
func (p *Program) Active() bool {
	return p.handle != 0 && p.ctx.activeProgram == p.handle
}

// Link attaches every stage, links, detaches every stage and checks the link status.
// Stages are detached whatever the outcome. A program that failed to link must not be used.
//
// Parameters:
//   - shaders: the compiled stages
//
// Returns:
//   - error: a *LinkError carrying the linker log, or a device error
func (p *Program) Link(shaders ...*Shader) (err error) {
	if p.handle == 0 {
		return ErrReleased
	}
	p.ctx.log().Info("Linking shaders into program", "program", p.name, "stages", len(shaders))

	for _, s := range shaders {
		p.ctx.device.AttachShader(p.handle, s.handle)
	}
	defer func() {
		for _, s := range shaders {
			p.ctx.device.DetachShader(p.handle, s.handle)
		}
	}()
	if err := p.ctx.check("AttachShader"); err != nil {
		return err
	}

	p.ctx.device.LinkProgram(p.handle)
	if err := p.ctx.check("LinkProgram"); err != nil {
		return err
	}

	ok, info := p.ctx.device.ProgramLinkStatus(p.handle)
	p.linked = ok
	if !ok {
		p.ctx.log().Error("Could not link shader program", "program", p.name, "log", info)
		return &LinkError{Program: p.name, Log: info}
	}
	return nil
}

// Use makes this program the active one.
func (p *Program) Use() error {
	if p.handle == 0 {
		return ErrReleased
	}
	return p.ctx.useProgram(p.handle)
}

// UniformLocation returns the cached location of name, resolving it on first use.
func (p *Program) UniformLocation(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.ctx.device.GetUniformLocation(p.handle, name)
	p.locations[name] = loc
	if loc == InvalidLocation {
		p.ctx.log().Debug("uniform not found", "program", p.name, "uniform", name)
	}
	return loc
}

// SetUniformUint sets an unsigned scalar uniform.
//
// Returns:
//   - error: ErrProgramNotActive, or a device error
func (p *Program) SetUniformUint(name string, v uint32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.ctx.device.Uniform1ui(loc, v)
	return p.ctx.check("Uniform1ui")
}

// SetUniformInt2 sets a signed 2-component integer uniform.
//
// Returns:
//   - error: ErrProgramNotActive, or a device error
func (p *Program) SetUniformInt2(name string, x, y int32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.ctx.device.Uniform2i(loc, x, y)
	return p.ctx.check("Uniform2i")
}

// SetUniformVec2 sets a 2-component float uniform.
//
// Returns:
//   - error: ErrProgramNotActive, or a device error
func (p *Program) SetUniformVec2(name string, v mgl32.Vec2) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.ctx.device.Uniform2f(loc, v[0], v[1])
	return p.ctx.check("Uniform2f")
}

// SetUniformVec4 sets a 4-component float uniform.
//
// Returns:
//   - error: ErrProgramNotActive, or a device error
func (p *Program) SetUniformVec4(name string, v mgl32.Vec4) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.ctx.device.Uniform4f(loc, v[0], v[1], v[2], v[3])
	return p.ctx.check("Uniform4f")
}

// DispatchCompute launches the compute stage over a grid of work groups.
// Omitted dimensions default to 1; extra values are ignored.
//
// Parameters:
//   - groups: work group counts along x, y and z
//
// Returns:
//   - error: ErrProgramNotActive, or a device error
func (p *Program) DispatchCompute(groups ...uint32) error {
	if !p.Active() {
		return ErrProgramNotActive
	}
	dims := [3]uint32{1, 1, 1}
	copy(dims[:], groups)
	p.ctx.device.DispatchCompute(dims[0], dims[1], dims[2])
	return p.ctx.check("DispatchCompute")
}

// Release deletes the native object. Safe to call more than once.
func (p *Program) Release() {
	if p.handle != 0 {
		p.ctx.device.DeleteProgram(p.handle)
		p.ctx.forgetProgram(p.handle)
		p.handle = 0
	}
	p.linked = false
}

func (p *Program) location(name string) (int32, error) {
	if !p.Active() {
		return InvalidLocation, ErrProgramNotActive
	}
	return p.UniformLocation(name), nil
}
