package gpu

import (
	"fmt"
	"io/fs"
)

// Shader is a single compiled shader stage. The native object is created on construction.
type Shader struct {
	ctx *Context

	kind   ShaderType
	path   string
	handle uint32
	filter func(source string) (string, error)
}

// NewShader creates an empty shader stage of the given type.
//
// Parameters:
//   - ctx: the device context
//   - kind: the pipeline stage
//   - options: functional options to configure the stage
//
// Returns:
//   - *Shader: the empty stage
func NewShader(ctx *Context, kind ShaderType, options ...ShaderBuilderOption) *Shader {
	s := &Shader{
		ctx:    ctx,
		kind:   kind,
		handle: ctx.device.CreateShader(kind),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// LoadShader creates a shader stage, loads its source from fsys and compiles it.
//
// Parameters:
//   - ctx: the device context
//   - kind: the pipeline stage
//   - fsys: the filesystem holding the source
//   - path: the source path inside fsys
//   - options: functional options to configure the stage
//
// Returns:
//   - *Shader: the compiled stage
//   - error: a read error, a source filter error or a *CompileError
func LoadShader(ctx *Context, kind ShaderType, fsys fs.FS, path string, options ...ShaderBuilderOption) (*Shader, error) {
	s := NewShader(ctx, kind, options...)
	if err := s.LoadAndCompile(fsys, path); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// Kind returns the pipeline stage.
func (s *Shader) Kind() ShaderType {
	return s.kind
}

// Path returns the path of the loaded source, or "" when set from a string.
func (s *Shader) Path() string {
	return s.path
}

// Handle returns the native handle.
func (s *Shader) Handle() uint32 {
	return s.handle
}

// Load reads the source at path from fsys and hands it to the device.
//
// Parameters:
//   - fsys: the filesystem holding the source
//   - path: the source path inside fsys
//
// Returns:
//   - error: the read error, if any
func (s *Shader) Load(fsys fs.FS, path string) error {
	src, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("reading shader %q: %w", path, err)
	}
	s.path = path
	return s.SetSource(string(src))
}

// SetSource runs the source filter, if any, and hands the result to the device.
func (s *Shader) SetSource(source string) error {
	if s.handle == 0 {
		return ErrReleased
	}
	if s.filter != nil {
		filtered, err := s.filter(source)
		if err != nil {
			return fmt.Errorf("preprocessing shader %q: %w", s.path, err)
		}
		source = filtered
	}
	s.ctx.device.ShaderSource(s.handle, source)
	return s.ctx.check("ShaderSource")
}

// Compile compiles the loaded source.
//
// Returns:
//   - error: a *CompileError carrying the compiler log on failure
func (s *Shader) Compile() error {
	if s.handle == 0 {
		return ErrReleased
	}
	s.ctx.device.CompileShader(s.handle)
	if err := s.ctx.check("CompileShader"); err != nil {
		return err
	}

	ok, info := s.ctx.device.ShaderCompileStatus(s.handle)
	if !ok {
		s.ctx.log().Error("Could not compile shader", "path", s.path, "log", info)
		return &CompileError{Path: s.path, Log: info}
	}
	return nil
}

// LoadAndCompile is Load followed by Compile.
func (s *Shader) LoadAndCompile(fsys fs.FS, path string) error {
	if err := s.Load(fsys, path); err != nil {
		return err
	}
	return s.Compile()
}

// Release deletes the native object. Safe to call more than once.
func (s *Shader) Release() {
	if s.handle != 0 {
		s.ctx.device.DeleteShader(s.handle)
		s.handle = 0
	}
}
