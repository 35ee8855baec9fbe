// Package gputest provides an in-memory gpu.Device that records every call and emulates the
// device state the wrappers depend on: buffer storage and mappings, indexed bindings, texture
// storage, shader compilation, program linking, uniform locations and compute dispatch.
package gputest

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// BufferState is the emulated storage of one buffer object.
type BufferState struct {
	Data   []byte
	Usage  gpu.Usage
	Mapped bool
	Access gpu.MapAccess
	Specs  int
}

// TextureState is the emulated storage of one texture object.
type TextureState struct {
	Kind           gpu.TextureType
	Created        bool
	WrapS, WrapT   gpu.Wrap
	MinFilter      gpu.Filter
	MagFilter      gpu.Filter
	InternalFormat gpu.InternalFormat
	Levels         int32
	Width, Height  int32
	Depth          int32
	Immutable      bool
	// Layers holds the last data uploaded per layer (layer 0 for 2D images).
	Layers map[int32][]byte
}

// ImageBinding is the state of one image unit.
type ImageBinding struct {
	Texture uint32
	Level   int32
	Layered bool
	Layer   int32
	Write   bool
	Format  gpu.InternalFormat
}

// AttribPointer is the recorded layout of one vertex attribute slot.
type AttribPointer struct {
	Buffer     uint32
	Components int32
	Type       gpu.AttributeType
	Normalized bool
	Enabled    bool
}

// ShaderState is the emulated state of one shader stage.
type ShaderState struct {
	Kind     gpu.ShaderType
	Source   string
	Compiled bool
	Log      string
}

// ProgramState is the emulated state of one program.
type ProgramState struct {
	Attached  []uint32
	Linked    bool
	Log       string
	Locations map[string]int32
	Uniforms  map[int32]any
}

// Device is a recording, in-memory gpu.Device. The zero value is not usable; call New.
type Device struct {
	calls   []Call
	pending []gpu.ErrorCode
	next    uint32

	Buffers       map[uint32]*BufferState
	BoundBuffers  map[gpu.BufferType]uint32
	IndexedBuffer map[gpu.BufferType]map[uint32]uint32

	VertexArrays map[uint32]map[uint32]*AttribPointer
	BoundVAO     uint32
	ElementVAO   map[uint32]uint32

	Textures      map[uint32]*TextureState
	BoundTextures map[gpu.TextureType]uint32
	ImageUnits    map[uint32]ImageBinding

	Shaders       map[uint32]*ShaderState
	Programs      map[uint32]*ProgramState
	ActiveProgram uint32

	ClearValue     [4]float32
	ViewportValue  [4]int32
	BarrierHistory []gpu.Barrier

	// CompileHook decides the outcome of CompileShader. Nil means every stage compiles.
	CompileHook func(kind gpu.ShaderType, source string) (ok bool, log string)

	// LinkHook decides the outcome of LinkProgram. Nil means every program links.
	LinkHook func(program uint32) (ok bool, log string)

	// MissingUniforms names uniforms that resolve to gpu.InvalidLocation in every program.
	MissingUniforms map[string]bool

	// OnDispatch runs after a DispatchCompute is recorded, with the active program.
	OnDispatch func(d *Device, program uint32, x, y, z uint32)

	// OnDraw runs after a draw call is recorded, with the active program.
	OnDraw func(d *Device, program uint32)

	// FailMap makes MapBuffer return nil.
	FailMap bool
}

var _ gpu.Device = &Device{}

// New creates an empty recording device.
func New() *Device {
	return &Device{
		Buffers:         make(map[uint32]*BufferState),
		BoundBuffers:    make(map[gpu.BufferType]uint32),
		IndexedBuffer:   make(map[gpu.BufferType]map[uint32]uint32),
		VertexArrays:    make(map[uint32]map[uint32]*AttribPointer),
		ElementVAO:      make(map[uint32]uint32),
		Textures:        make(map[uint32]*TextureState),
		BoundTextures:   make(map[gpu.TextureType]uint32),
		ImageUnits:      make(map[uint32]ImageBinding),
		Shaders:         make(map[uint32]*ShaderState),
		Programs:        make(map[uint32]*ProgramState),
		MissingUniforms: make(map[string]bool),
	}
}

// Calls returns every recorded call in order.
func (d *Device) Calls() []Call {
	return slices.Clone(d.calls)
}

// CallNames returns the names of every recorded call in order.
func (d *Device) CallNames() []string {
	names := make([]string, len(d.calls))
	for i, c := range d.calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many times name was called.
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Index returns the position of the nth (0-based) call named name, or -1.
func (d *Device) Index(name string, nth int) int {
	for i, c := range d.calls {
		if c.Name == name {
			if nth == 0 {
				return i
			}
			nth--
		}
	}
	return -1
}

// Find returns the recorded calls named name.
func (d *Device) Find(name string) []Call {
	var out []Call
	for _, c := range d.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log without touching emulated state.
func (d *Device) ResetCalls() {
	d.calls = nil
}

// PushError queues error codes to be returned by GetError.
func (d *Device) PushError(codes ...gpu.ErrorCode) {
	d.pending = append(d.pending, codes...)
}

// Uniform returns the last value set for name on program, or nil.
func (d *Device) Uniform(program uint32, name string) any {
	p, ok := d.Programs[program]
	if !ok {
		return nil
	}
	loc, ok := p.Locations[name]
	if !ok {
		return nil
	}
	return p.Uniforms[loc]
}

// BufferAt returns the storage of the buffer bound to the indexed slot of target.
func (d *Device) BufferAt(target gpu.BufferType, slot uint32) *BufferState {
	return d.Buffers[d.IndexedBuffer[target][slot]]
}

func (d *Device) record(name string, args ...any) {
	d.calls = append(d.calls, Call{Name: name, Args: args})
}

func (d *Device) gen() uint32 {
	d.next++
	return d.next
}

func (d *Device) GetError() gpu.ErrorCode {
	if len(d.pending) == 0 {
		return gpu.ErrorCodeNone
	}
	code := d.pending[0]
	d.pending = d.pending[1:]
	return code
}

func (d *Device) GenBuffer() uint32 {
	h := d.gen()
	d.Buffers[h] = &BufferState{}
	d.record("GenBuffer", h)
	return h
}

func (d *Device) DeleteBuffer(handle uint32) {
	d.record("DeleteBuffer", handle)
	delete(d.Buffers, handle)
}

func (d *Device) BindBuffer(target gpu.BufferType, handle uint32) {
	d.record("BindBuffer", target, handle)
	d.BoundBuffers[target] = handle
	if target == gpu.ElementArrayBuffer && d.BoundVAO != 0 {
		d.ElementVAO[d.BoundVAO] = handle
	}
}

func (d *Device) BindBufferBase(target gpu.BufferType, index uint32, handle uint32) {
	d.record("BindBufferBase", target, index, handle)
	if d.IndexedBuffer[target] == nil {
		d.IndexedBuffer[target] = make(map[uint32]uint32)
	}
	d.IndexedBuffer[target][index] = handle
	d.BoundBuffers[target] = handle
}

func (d *Device) BufferData(target gpu.BufferType, size int, data []byte, usage gpu.Usage) {
	d.record("BufferData", target, size, usage)
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidOperation)
		return
	}
	b.Data = make([]byte, size)
	copy(b.Data, data)
	b.Usage = usage
	b.Specs++
}

func (d *Device) MapBuffer(target gpu.BufferType, access gpu.MapAccess, size int) []byte {
	d.record("MapBuffer", target, access, size)
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok || d.FailMap || b.Mapped {
		return nil
	}
	b.Mapped = true
	b.Access = access
	if access == gpu.MapReadOnly {
		return slices.Clone(b.Data)
	}
	return b.Data
}

func (d *Device) UnmapBuffer(target gpu.BufferType) bool {
	d.record("UnmapBuffer", target)
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok || !b.Mapped {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidOperation)
		return false
	}
	b.Mapped = false
	return true
}

func (d *Device) GenVertexArray() uint32 {
	h := d.gen()
	d.VertexArrays[h] = make(map[uint32]*AttribPointer)
	d.record("GenVertexArray", h)
	return h
}

func (d *Device) DeleteVertexArray(handle uint32) {
	d.record("DeleteVertexArray", handle)
	delete(d.VertexArrays, handle)
	delete(d.ElementVAO, handle)
}

func (d *Device) BindVertexArray(handle uint32) {
	d.record("BindVertexArray", handle)
	d.BoundVAO = handle
}

func (d *Device) VertexAttribPointer(index uint32, components int32, dataType gpu.AttributeType, normalized bool) {
	d.record("VertexAttribPointer", index, components, dataType, normalized)
	vao, ok := d.VertexArrays[d.BoundVAO]
	if !ok {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidOperation)
		return
	}
	vao[index] = &AttribPointer{
		Buffer:     d.BoundBuffers[gpu.ArrayBuffer],
		Components: components,
		Type:       dataType,
		Normalized: normalized,
	}
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray", index)
	if p, ok := d.VertexArrays[d.BoundVAO][index]; ok {
		p.Enabled = true
	}
}

func (d *Device) DrawElements(count int32, dataType gpu.AttributeType) {
	d.record("DrawElements", count, dataType)
	if d.OnDraw != nil {
		d.OnDraw(d, d.ActiveProgram)
	}
}

func (d *Device) DrawArrays(first, count int32) {
	d.record("DrawArrays", first, count)
	if d.OnDraw != nil {
		d.OnDraw(d, d.ActiveProgram)
	}
}

func (d *Device) GenTexture() uint32 {
	h := d.gen()
	d.Textures[h] = &TextureState{Layers: make(map[int32][]byte)}
	d.record("GenTexture", h)
	return h
}

func (d *Device) DeleteTexture(handle uint32) {
	d.record("DeleteTexture", handle)
	delete(d.Textures, handle)
}

func (d *Device) IsTexture(handle uint32) bool {
	d.record("IsTexture", handle)
	t, ok := d.Textures[handle]
	return ok && t.Created
}

func (d *Device) BindTexture(target gpu.TextureType, handle uint32) {
	d.record("BindTexture", target, handle)
	d.BoundTextures[target] = handle
	if t, ok := d.Textures[handle]; ok && !t.Created {
		t.Created = true
		t.Kind = target
	}
}

func (d *Device) bound(target gpu.TextureType) *TextureState {
	t, ok := d.Textures[d.BoundTextures[target]]
	if !ok {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidOperation)
		return nil
	}
	return t
}

func (d *Device) TexWrap(target gpu.TextureType, s, t gpu.Wrap) {
	d.record("TexWrap", target, s, t)
	if tex := d.bound(target); tex != nil {
		tex.WrapS, tex.WrapT = s, t
	}
}

func (d *Device) TexMinFilter(target gpu.TextureType, filter gpu.Filter) {
	d.record("TexMinFilter", target, filter)
	if tex := d.bound(target); tex != nil {
		tex.MinFilter = filter
	}
}

func (d *Device) TexMagFilter(target gpu.TextureType, filter gpu.Filter) {
	d.record("TexMagFilter", target, filter)
	if tex := d.bound(target); tex != nil {
		tex.MagFilter = filter
	}
}

func (d *Device) TexImage2D(target gpu.TextureType, level int32, internalFormat gpu.InternalFormat, width, height, border int32, format gpu.ExternalFormat, pixelType gpu.PixelType, data []byte) {
	d.record("TexImage2D", target, level, internalFormat, width, height, border, format, pixelType)
	tex := d.bound(target)
	if tex == nil {
		return
	}
	tex.InternalFormat = internalFormat
	tex.Width, tex.Height, tex.Depth = width, height, 1
	tex.Layers[0] = slices.Clone(data)
}

func (d *Device) TexStorage3D(target gpu.TextureType, levels int32, internalFormat gpu.InternalFormat, width, height, depth int32) {
	d.record("TexStorage3D", target, levels, internalFormat, width, height, depth)
	tex := d.bound(target)
	if tex == nil {
		return
	}
	if tex.Immutable {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidOperation)
		return
	}
	tex.Immutable = true
	tex.Levels = levels
	tex.InternalFormat = internalFormat
	tex.Width, tex.Height, tex.Depth = width, height, depth
}

func (d *Device) TexSubImage3D(target gpu.TextureType, level, xOffset, yOffset, zOffset, width, height, depth int32, format gpu.ExternalFormat, pixelType gpu.PixelType, data []byte) {
	d.record("TexSubImage3D", target, level, xOffset, yOffset, zOffset, width, height, depth, format, pixelType)
	tex := d.bound(target)
	if tex == nil {
		return
	}
	if zOffset+depth > tex.Depth || xOffset+width > tex.Width || yOffset+height > tex.Height {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidValue)
		return
	}
	tex.Layers[zOffset] = slices.Clone(data)
}

func (d *Device) BindImageTexture(unit uint32, handle uint32, level int32, layered bool, layer int32, write bool, format gpu.InternalFormat) {
	d.record("BindImageTexture", unit, handle, level, layered, layer, write, format)
	if t, ok := d.Textures[handle]; !ok || !t.Created {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidValue)
		return
	}
	d.ImageUnits[unit] = ImageBinding{
		Texture: handle,
		Level:   level,
		Layered: layered,
		Layer:   layer,
		Write:   write,
		Format:  format,
	}
}

func (d *Device) CreateShader(shaderType gpu.ShaderType) uint32 {
	h := d.gen()
	d.Shaders[h] = &ShaderState{Kind: shaderType}
	d.record("CreateShader", shaderType, h)
	return h
}

func (d *Device) DeleteShader(handle uint32) {
	d.record("DeleteShader", handle)
	delete(d.Shaders, handle)
}

func (d *Device) ShaderSource(handle uint32, source string) {
	d.record("ShaderSource", handle)
	if s, ok := d.Shaders[handle]; ok {
		s.Source = source
	}
}

func (d *Device) CompileShader(handle uint32) {
	d.record("CompileShader", handle)
	s, ok := d.Shaders[handle]
	if !ok {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidValue)
		return
	}
	s.Compiled, s.Log = true, ""
	if d.CompileHook != nil {
		s.Compiled, s.Log = d.CompileHook(s.Kind, s.Source)
	}
}

func (d *Device) ShaderCompileStatus(handle uint32) (bool, string) {
	s, ok := d.Shaders[handle]
	if !ok {
		return false, "no such shader"
	}
	return s.Compiled, s.Log
}

func (d *Device) CreateProgram() uint32 {
	h := d.gen()
	d.Programs[h] = &ProgramState{
		Locations: make(map[string]int32),
		Uniforms:  make(map[int32]any),
	}
	d.record("CreateProgram", h)
	return h
}

func (d *Device) DeleteProgram(handle uint32) {
	d.record("DeleteProgram", handle)
	delete(d.Programs, handle)
	if d.ActiveProgram == handle {
		d.ActiveProgram = 0
	}
}

func (d *Device) AttachShader(program, shader uint32) {
	d.record("AttachShader", program, shader)
	if p, ok := d.Programs[program]; ok {
		p.Attached = append(p.Attached, shader)
	}
}

func (d *Device) DetachShader(program, shader uint32) {
	d.record("DetachShader", program, shader)
	if p, ok := d.Programs[program]; ok {
		if i := slices.Index(p.Attached, shader); i >= 0 {
			p.Attached = slices.Delete(p.Attached, i, i+1)
		}
	}
}

func (d *Device) LinkProgram(handle uint32) {
	d.record("LinkProgram", handle)
	p, ok := d.Programs[handle]
	if !ok {
		d.pending = append(d.pending, gpu.ErrorCodeInvalidValue)
		return
	}
	p.Linked, p.Log = true, ""
	for _, s := range p.Attached {
		if st, ok := d.Shaders[s]; !ok || !st.Compiled {
			p.Linked, p.Log = false, fmt.Sprintf("shader %d is not compiled", s)
			return
		}
	}
	if d.LinkHook != nil {
		p.Linked, p.Log = d.LinkHook(handle)
	}
}

func (d *Device) ProgramLinkStatus(handle uint32) (bool, string) {
	p, ok := d.Programs[handle]
	if !ok {
		return false, "no such program"
	}
	return p.Linked, p.Log
}

func (d *Device) UseProgram(handle uint32) {
	d.record("UseProgram", handle)
	d.ActiveProgram = handle
}

func (d *Device) GetUniformLocation(program uint32, name string) int32 {
	d.record("GetUniformLocation", program, name)
	p, ok := d.Programs[program]
	if !ok || d.MissingUniforms[name] {
		return gpu.InvalidLocation
	}
	if loc, ok := p.Locations[name]; ok {
		return loc
	}
	loc := int32(len(p.Locations))
	p.Locations[name] = loc
	return loc
}

func (d *Device) setUniform(name string, loc int32, v any) {
	d.record(name, loc, v)
	p, ok := d.Programs[d.ActiveProgram]
	if !ok || loc == gpu.InvalidLocation {
		return
	}
	p.Uniforms[loc] = v
}

func (d *Device) Uniform1ui(location int32, v uint32) {
	d.setUniform("Uniform1ui", location, v)
}

func (d *Device) Uniform2i(location int32, x, y int32) {
	d.setUniform("Uniform2i", location, [2]int32{x, y})
}

func (d *Device) Uniform2f(location int32, x, y float32) {
	d.setUniform("Uniform2f", location, [2]float32{x, y})
}

func (d *Device) Uniform4f(location int32, x, y, z, w float32) {
	d.setUniform("Uniform4f", location, [4]float32{x, y, z, w})
}

func (d *Device) DispatchCompute(x, y, z uint32) {
	d.record("DispatchCompute", d.ActiveProgram, x, y, z)
	if d.OnDispatch != nil {
		d.OnDispatch(d, d.ActiveProgram, x, y, z)
	}
}

func (d *Device) MemoryBarrier(barriers gpu.Barrier) {
	d.record("MemoryBarrier", barriers)
	d.BarrierHistory = append(d.BarrierHistory, barriers)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor", r, g, b, a)
	d.ClearValue = [4]float32{r, g, b, a}
}

func (d *Device) ClearColorBuffer() {
	d.record("Clear")
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport", x, y, width, height)
	d.ViewportValue = [4]int32{x, y, width, height}
}
