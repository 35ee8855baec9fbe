// Package gpugl implements gpu.Device on OpenGL 4.3 core through go-gl.
// A GL context must be current on the calling thread before NewDevice is called and for every
// call made on the returned device.
package gpugl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
)

// GL_MIRROR_CLAMP_TO_EDGE is core only since 4.4; the enum is shared with the older extension.
const mirrorClampToEdge = 0x8743

type glDevice struct{}

var _ gpu.Device = &glDevice{}

// NewDevice loads the GL entry points for the current context.
//
// Returns:
//   - gpu.Device: the OpenGL device
//   - error: an error if the entry points could not be loaded
func NewDevice() (gpu.Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return &glDevice{}, nil
}

// Version returns the GL version and renderer strings of the current context.
func Version() (version, renderer string) {
	return gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER))
}

func bufferTarget(t gpu.BufferType) uint32 {
	switch t {
	case gpu.ElementArrayBuffer:
		return gl.ELEMENT_ARRAY_BUFFER
	case gpu.ShaderStorageBuffer:
		return gl.SHADER_STORAGE_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func usage(u gpu.Usage) uint32 {
	switch u {
	case gpu.StreamDraw:
		return gl.STREAM_DRAW
	case gpu.StreamRead:
		return gl.STREAM_READ
	case gpu.StreamCopy:
		return gl.STREAM_COPY
	case gpu.StaticDraw:
		return gl.STATIC_DRAW
	case gpu.StaticRead:
		return gl.STATIC_READ
	case gpu.StaticCopy:
		return gl.STATIC_COPY
	case gpu.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case gpu.DynamicRead:
		return gl.DYNAMIC_READ
	default:
		return gl.DYNAMIC_COPY
	}
}

func attributeType(t gpu.AttributeType) uint32 {
	switch t {
	case gpu.AttributeUnsignedInt:
		return gl.UNSIGNED_INT
	case gpu.AttributeInt:
		return gl.INT
	default:
		return gl.FLOAT
	}
}

func textureTarget(t gpu.TextureType) uint32 {
	if t == gpu.Texture2DArray {
		return gl.TEXTURE_2D_ARRAY
	}
	return gl.TEXTURE_2D
}

func filter(f gpu.Filter) int32 {
	switch f {
	case gpu.FilterLinear:
		return gl.LINEAR
	case gpu.FilterNearestMipmapNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case gpu.FilterLinearMipmapNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	case gpu.FilterNearestMipmapLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	case gpu.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.NEAREST
	}
}

func wrap(w gpu.Wrap) int32 {
	switch w {
	case gpu.WrapClampToBorder:
		return gl.CLAMP_TO_BORDER
	case gpu.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case gpu.WrapRepeat:
		return gl.REPEAT
	case gpu.WrapMirrorClampToEdge:
		return mirrorClampToEdge
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func internalFormat(f gpu.InternalFormat) uint32 {
	if f == gpu.FormatR8UI {
		return gl.R8UI
	}
	return gl.RGBA32F
}

func externalFormat(f gpu.ExternalFormat) uint32 {
	switch f {
	case gpu.ExternalRedInteger:
		return gl.RED_INTEGER
	case gpu.ExternalRGBA:
		return gl.RGBA
	default:
		return gl.RGB
	}
}

func pixelType(gpu.PixelType) uint32 {
	return gl.UNSIGNED_BYTE
}

func shaderType(t gpu.ShaderType) uint32 {
	switch t {
	case gpu.ShaderFragment:
		return gl.FRAGMENT_SHADER
	case gpu.ShaderCompute:
		return gl.COMPUTE_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

func barrierBits(b gpu.Barrier) uint32 {
	var bits uint32
	if b&gpu.BarrierShaderStorage != 0 {
		bits |= gl.SHADER_STORAGE_BARRIER_BIT
	}
	if b&gpu.BarrierShaderImageAccess != 0 {
		bits |= gl.SHADER_IMAGE_ACCESS_BARRIER_BIT
	}
	return bits
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func (d *glDevice) GetError() gpu.ErrorCode {
	return gpu.ErrorCode(gl.GetError())
}

func (d *glDevice) GenBuffer() uint32 {
	var h uint32
	gl.GenBuffers(1, &h)
	return h
}

func (d *glDevice) DeleteBuffer(handle uint32) {
	gl.DeleteBuffers(1, &handle)
}

func (d *glDevice) BindBuffer(target gpu.BufferType, handle uint32) {
	gl.BindBuffer(bufferTarget(target), handle)
}

func (d *glDevice) BindBufferBase(target gpu.BufferType, index uint32, handle uint32) {
	gl.BindBufferBase(bufferTarget(target), index, handle)
}

func (d *glDevice) BufferData(target gpu.BufferType, size int, data []byte, u gpu.Usage) {
	gl.BufferData(bufferTarget(target), size, ptr(data), usage(u))
}

func (d *glDevice) MapBuffer(target gpu.BufferType, access gpu.MapAccess, size int) []byte {
	mode := uint32(gl.READ_ONLY)
	if access == gpu.MapReadWrite {
		mode = gl.READ_WRITE
	}
	p := gl.MapBuffer(bufferTarget(target), mode)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), size)
}

func (d *glDevice) UnmapBuffer(target gpu.BufferType) bool {
	return gl.UnmapBuffer(bufferTarget(target))
}

func (d *glDevice) GenVertexArray() uint32 {
	var h uint32
	gl.GenVertexArrays(1, &h)
	return h
}

func (d *glDevice) DeleteVertexArray(handle uint32) {
	gl.DeleteVertexArrays(1, &handle)
}

func (d *glDevice) BindVertexArray(handle uint32) {
	gl.BindVertexArray(handle)
}

func (d *glDevice) VertexAttribPointer(index uint32, components int32, dataType gpu.AttributeType, normalized bool) {
	if dataType != gpu.AttributeFloat && !normalized {
		gl.VertexAttribIPointer(index, components, attributeType(dataType), 0, nil)
		return
	}
	gl.VertexAttribPointer(index, components, attributeType(dataType), normalized, 0, nil)
}

func (d *glDevice) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *glDevice) DrawElements(count int32, dataType gpu.AttributeType) {
	gl.DrawElements(gl.TRIANGLES, count, attributeType(dataType), nil)
}

func (d *glDevice) DrawArrays(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func (d *glDevice) GenTexture() uint32 {
	var h uint32
	gl.GenTextures(1, &h)
	return h
}

func (d *glDevice) DeleteTexture(handle uint32) {
	gl.DeleteTextures(1, &handle)
}

func (d *glDevice) IsTexture(handle uint32) bool {
	return gl.IsTexture(handle)
}

func (d *glDevice) BindTexture(target gpu.TextureType, handle uint32) {
	gl.BindTexture(textureTarget(target), handle)
}

func (d *glDevice) TexWrap(target gpu.TextureType, s, t gpu.Wrap) {
	gl.TexParameteri(textureTarget(target), gl.TEXTURE_WRAP_S, wrap(s))
	gl.TexParameteri(textureTarget(target), gl.TEXTURE_WRAP_T, wrap(t))
}

func (d *glDevice) TexMinFilter(target gpu.TextureType, f gpu.Filter) {
	gl.TexParameteri(textureTarget(target), gl.TEXTURE_MIN_FILTER, filter(f))
}

func (d *glDevice) TexMagFilter(target gpu.TextureType, f gpu.Filter) {
	gl.TexParameteri(textureTarget(target), gl.TEXTURE_MAG_FILTER, filter(f))
}

func (d *glDevice) TexImage2D(target gpu.TextureType, level int32, ifmt gpu.InternalFormat, width, height, border int32, format gpu.ExternalFormat, pt gpu.PixelType, data []byte) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(textureTarget(target), level, int32(internalFormat(ifmt)), width, height, border, externalFormat(format), pixelType(pt), ptr(data))
}

func (d *glDevice) TexStorage3D(target gpu.TextureType, levels int32, ifmt gpu.InternalFormat, width, height, depth int32) {
	gl.TexStorage3D(textureTarget(target), levels, internalFormat(ifmt), width, height, depth)
}

func (d *glDevice) TexSubImage3D(target gpu.TextureType, level, xOffset, yOffset, zOffset, width, height, depth int32, format gpu.ExternalFormat, pt gpu.PixelType, data []byte) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage3D(textureTarget(target), level, xOffset, yOffset, zOffset, width, height, depth, externalFormat(format), pixelType(pt), ptr(data))
}

func (d *glDevice) BindImageTexture(unit uint32, handle uint32, level int32, layered bool, layer int32, write bool, format gpu.InternalFormat) {
	access := uint32(gl.READ_ONLY)
	if write {
		access = gl.READ_WRITE
	}
	gl.BindImageTexture(unit, handle, level, layered, layer, access, internalFormat(format))
}

func (d *glDevice) CreateShader(t gpu.ShaderType) uint32 {
	return gl.CreateShader(shaderType(t))
}

func (d *glDevice) DeleteShader(handle uint32) {
	gl.DeleteShader(handle)
}

func (d *glDevice) ShaderSource(handle uint32, source string) {
	csource, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(handle, 1, csource, nil)
}

func (d *glDevice) CompileShader(handle uint32) {
	gl.CompileShader(handle)
}

func (d *glDevice) ShaderCompileStatus(handle uint32) (bool, string) {
	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	log := make([]byte, logLength+1)
	gl.GetShaderInfoLog(handle, logLength, nil, &log[0])
	return false, strings.TrimRight(string(log), "\x00\n")
}

func (d *glDevice) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (d *glDevice) DeleteProgram(handle uint32) {
	gl.DeleteProgram(handle)
}

func (d *glDevice) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (d *glDevice) DetachShader(program, shader uint32) {
	gl.DetachShader(program, shader)
}

func (d *glDevice) LinkProgram(handle uint32) {
	gl.LinkProgram(handle)
}

func (d *glDevice) ProgramLinkStatus(handle uint32) (bool, string) {
	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	log := make([]byte, logLength+1)
	gl.GetProgramInfoLog(handle, logLength, nil, &log[0])
	return false, strings.TrimRight(string(log), "\x00\n")
}

func (d *glDevice) UseProgram(handle uint32) {
	gl.UseProgram(handle)
}

func (d *glDevice) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *glDevice) Uniform1ui(location int32, v uint32) {
	gl.Uniform1ui(location, v)
}

func (d *glDevice) Uniform2i(location int32, x, y int32) {
	gl.Uniform2i(location, x, y)
}

func (d *glDevice) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (d *glDevice) Uniform4f(location int32, x, y, z, w float32) {
	gl.Uniform4f(location, x, y, z, w)
}

func (d *glDevice) DispatchCompute(x, y, z uint32) {
	gl.DispatchCompute(x, y, z)
}

func (d *glDevice) MemoryBarrier(barriers gpu.Barrier) {
	gl.MemoryBarrier(barrierBits(barriers))
}

func (d *glDevice) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *glDevice) ClearColorBuffer() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *glDevice) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}
