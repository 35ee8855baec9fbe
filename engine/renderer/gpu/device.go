// Package gpu wraps a stateful, handle-based graphics device with ownership-safe resource types.
//
// Every resource (Buffer, Texture, Shader, Program, Geometry) exclusively owns its native handle.
// Buffers and textures allocate their handle lazily on first use, programs and shader stages
// allocate eagerly on construction. All device access is funneled through a Context, which tracks
// the currently active program and bound textures and applies the configured ErrorMode after
// each device call.
package gpu

// BufferType identifies the logical target a Buffer binds to.
type BufferType int

const (
	// ArrayBuffer holds vertex attribute data.
	ArrayBuffer BufferType = iota

	// ElementArrayBuffer holds vertex indices.
	ElementArrayBuffer

	// ShaderStorageBuffer is readable and writable from compute and fragment stages through an indexed binding point.
	ShaderStorageBuffer
)

// Usage is the upload frequency and access hint handed to the device when a Buffer's storage is (re)specified.
type Usage int

const (
	StreamDraw Usage = iota
	StreamRead
	StreamCopy
	StaticDraw
	StaticRead
	StaticCopy
	DynamicDraw
	DynamicRead
	DynamicCopy
)

// MapAccess selects whether a buffer mapping is read-only or read-write.
type MapAccess int

const (
	MapReadOnly MapAccess = iota
	MapReadWrite
)

// AttributeType is the element type of a vertex attribute or index buffer.
type AttributeType int

const (
	AttributeFloat AttributeType = iota
	AttributeUnsignedInt
	AttributeInt
)

// TextureType is the dimensionality of a Texture.
type TextureType int

const (
	// Texture2D is a plain two-dimensional texture.
	Texture2D TextureType = iota

	// Texture2DArray is a layered two-dimensional texture.
	Texture2DArray
)

// Filter is a texture minification or magnification filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

// Wrap is the texture coordinate wrapping mode along one axis.
type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapClampToBorder
	WrapMirroredRepeat
	WrapRepeat
	WrapMirrorClampToEdge
)

// InternalFormat is the storage format of texture texels on the device.
type InternalFormat int

const (
	FormatRGBA32F InternalFormat = iota
	FormatR8UI
)

// ExternalFormat is the channel layout of pixel data uploaded from the CPU.
type ExternalFormat int

const (
	ExternalRedInteger ExternalFormat = iota
	ExternalRGB
	ExternalRGBA
)

// PixelType is the component type of pixel data uploaded from the CPU.
type PixelType int

const (
	PixelUnsignedByte PixelType = iota
)

// ShaderType is the pipeline stage a Shader is compiled for.
type ShaderType int

const (
	ShaderVertex ShaderType = iota
	ShaderFragment
	ShaderCompute
)

// Barrier is a bit set of memory barrier classes.
type Barrier uint32

const (
	// BarrierShaderStorage orders shader storage writes before subsequent shader storage reads.
	BarrierShaderStorage Barrier = 1 << iota

	// BarrierShaderImageAccess orders image store writes before subsequent image loads.
	BarrierShaderImageAccess
)

// InvalidLocation is the uniform location returned for names the program does not expose.
const InvalidLocation int32 = -1

// Device is the raw, stateful graphics API the resource wrappers drive.
// Implementations perform no validation or bookkeeping of their own: every call maps one-to-one
// onto a native API entry point. Handles are 0 when invalid.
type Device interface {
	// GetError pops the oldest pending device error, returning ErrorCodeNone when no error is pending.
	GetError() ErrorCode

	GenBuffer() uint32
	DeleteBuffer(handle uint32)
	BindBuffer(target BufferType, handle uint32)
	BindBufferBase(target BufferType, index uint32, handle uint32)
	// BufferData (re)specifies the storage of the buffer bound to target. A nil data allocates size uninitialized bytes.
	BufferData(target BufferType, size int, data []byte, usage Usage)
	// MapBuffer maps the full extent of the buffer bound to target. The returned slice is only valid until UnmapBuffer.
	MapBuffer(target BufferType, access MapAccess, size int) []byte
	UnmapBuffer(target BufferType) bool

	GenVertexArray() uint32
	DeleteVertexArray(handle uint32)
	BindVertexArray(handle uint32)
	VertexAttribPointer(index uint32, components int32, dataType AttributeType, normalized bool)
	EnableVertexAttribArray(index uint32)
	DrawElements(count int32, dataType AttributeType)
	DrawArrays(first, count int32)

	GenTexture() uint32
	DeleteTexture(handle uint32)
	IsTexture(handle uint32) bool
	BindTexture(target TextureType, handle uint32)
	TexWrap(target TextureType, s, t Wrap)
	TexMinFilter(target TextureType, filter Filter)
	TexMagFilter(target TextureType, filter Filter)
	TexImage2D(target TextureType, level int32, internalFormat InternalFormat, width, height, border int32, format ExternalFormat, pixelType PixelType, data []byte)
	TexStorage3D(target TextureType, levels int32, internalFormat InternalFormat, width, height, depth int32)
	TexSubImage3D(target TextureType, level, xOffset, yOffset, zOffset, width, height, depth int32, format ExternalFormat, pixelType PixelType, data []byte)
	BindImageTexture(unit uint32, handle uint32, level int32, layered bool, layer int32, write bool, format InternalFormat)

	CreateShader(shaderType ShaderType) uint32
	DeleteShader(handle uint32)
	ShaderSource(handle uint32, source string)
	CompileShader(handle uint32)
	// ShaderCompileStatus reports whether the last compile succeeded, with the info log on failure.
	ShaderCompileStatus(handle uint32) (bool, string)

	CreateProgram() uint32
	DeleteProgram(handle uint32)
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(handle uint32)
	// ProgramLinkStatus reports whether the last link succeeded, with the info log on failure.
	ProgramLinkStatus(handle uint32) (bool, string)
	UseProgram(handle uint32)
	GetUniformLocation(program uint32, name string) int32
	Uniform1ui(location int32, v uint32)
	Uniform2i(location int32, x, y int32)
	Uniform2f(location int32, x, y float32)
	Uniform4f(location int32, x, y, z, w float32)
	DispatchCompute(x, y, z uint32)
	MemoryBarrier(barriers Barrier)

	ClearColor(r, g, b, a float32)
	ClearColorBuffer()
	Viewport(x, y, width, height int32)
}
