package gpu

import (
	"io"
	"slices"
)

// Buffer owns a block of device memory plus an optional CPU-side shadow copy.
//
// The native handle is allocated lazily on the first Bind, BindBase or SetData call, never at
// construction. When a shadow exists it is byte-identical to the last contents uploaded to the
// device. A Buffer is not safe to copy by value; use Clone to duplicate the shadow into a new,
// unbuilt Buffer.
type Buffer struct {
	ctx *Context

	kind  BufferType
	usage Usage
	label string

	size   int
	shadow []byte

	handle   uint32
	released bool
}

// NewBuffer creates an unbuilt buffer of size bytes with no shadow copy.
// The default usage hint is StreamCopy.
//
// Parameters:
//   - ctx: the device context the buffer is created on
//   - kind: the logical target the buffer binds to
//   - size: the byte size reserved on the device when the buffer is built
//   - options: functional options to configure the buffer
//
// Returns:
//   - *Buffer: the unbuilt buffer
func NewBuffer(ctx *Context, kind BufferType, size int, options ...BufferBuilderOption) *Buffer {
	b := &Buffer{
		ctx:   ctx,
		kind:  kind,
		usage: StreamCopy,
		size:  size,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// NewBufferWithData creates an unbuilt buffer whose shadow copy holds a private copy of data.
// The default usage hint is StaticCopy.
//
// Parameters:
//   - ctx: the device context the buffer is created on
//   - kind: the logical target the buffer binds to
//   - data: the initial payload, copied
//   - options: functional options to configure the buffer
//
// Returns:
//   - *Buffer: the unbuilt buffer
func NewBufferWithData(ctx *Context, kind BufferType, data []byte, options ...BufferBuilderOption) *Buffer {
	b := &Buffer{
		ctx:    ctx,
		kind:   kind,
		usage:  StaticCopy,
		size:   len(data),
		shadow: append([]byte(nil), data...),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Clone returns a new unbuilt buffer with the same target, usage and size and a private copy of
// the shadow. The device handle is never shared.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{
		ctx:   b.ctx,
		kind:  b.kind,
		usage: b.usage,
		label: b.label,
		size:  b.size,
	}
	c.shadow = slices.Clone(b.shadow)
	return c
}

// Kind returns the logical target of the buffer.
func (b *Buffer) Kind() BufferType {
	return b.kind
}

// Usage returns the usage hint used for every upload.
func (b *Buffer) Usage() Usage {
	return b.usage
}

// Label returns the debug label.
func (b *Buffer) Label() string {
	return b.label
}

// Size returns the byte size of the buffer.
func (b *Buffer) Size() int {
	return b.size
}

// Handle returns the native handle, or 0 while the buffer is unbuilt.
func (b *Buffer) Handle() uint32 {
	return b.handle
}

// Built reports whether the native handle has been allocated.
func (b *Buffer) Built() bool {
	return b.handle != 0
}

// Shadow returns a copy of the CPU shadow, or nil when the buffer has none.
func (b *Buffer) Shadow() []byte {
	return slices.Clone(b.shadow)
}

// Bind ensures the buffer is built and binds it to its logical target.
//
// Returns:
//   - error: ErrReleased, or a *DeviceError in ErrorModeStrict
func (b *Buffer) Bind() error {
	if err := b.ensureBuilt(); err != nil {
		return err
	}
	b.ctx.device.BindBuffer(b.kind, b.handle)
	return b.ctx.check("BindBuffer")
}

// BindBase ensures the buffer is built and binds it to the indexed binding point slot of its target.
//
// Parameters:
//   - slot: the binding point index
//
// Returns:
//   - error: ErrReleased, or a *DeviceError in ErrorModeStrict
func (b *Buffer) BindBase(slot uint32) error {
	if err := b.ensureBuilt(); err != nil {
		return err
	}
	b.ctx.device.BindBufferBase(b.kind, slot, b.handle)
	return b.ctx.check("BindBufferBase")
}

// SetData replaces the contents of the buffer with data.
// The full region is re-uploaded with the configured usage hint, and the shadow and size change
// only once the upload succeeded. The shadow is reallocated to exactly len(data) bytes when it is
// missing or too small. The buffer does not need to be bound beforehand: it is built on demand
// and bound to its target before the upload.
//
// Parameters:
//   - data: the new contents
//
// Returns:
//   - error: ErrReleased, or a *DeviceError in ErrorModeStrict
func (b *Buffer) SetData(data []byte) error {
	if b.released {
		return ErrReleased
	}

	// an unbuilt buffer is created straight from data
	if b.handle == 0 {
		if err := b.build(len(data), data); err != nil {
			return err
		}
		b.commitShadow(data)
		return nil
	}

	b.ctx.device.BindBuffer(b.kind, b.handle)
	if err := b.ctx.check("BindBuffer"); err != nil {
		return err
	}
	b.ctx.device.BufferData(b.kind, len(data), data, b.usage)
	if err := b.ctx.check("BufferData"); err != nil {
		return err
	}
	b.commitShadow(data)
	return nil
}

// Map binds the buffer, maps its full extent read-only and passes the mapping to visit.
// The buffer is unmapped when visit returns, including when it fails or panics. The slice must
// not be retained past visit.
//
// Parameters:
//   - visit: the function reading the mapped bytes
//
// Returns:
//   - error: the error returned by visit, ErrMapFailed, or a device error
func (b *Buffer) Map(visit func(data []byte) error) error {
	return b.mapWith(MapReadOnly, visit)
}

// MapWritable is like Map but the mapping is read-write.
//
// Parameters:
//   - visit: the function reading or writing the mapped bytes
//
// Returns:
//   - error: the error returned by visit, ErrMapFailed, or a device error
func (b *Buffer) MapWritable(visit func(data []byte) error) error {
	return b.mapWith(MapReadWrite, visit)
}

// WriteTo streams the full device-side contents of the buffer to w through a read-only mapping.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - int64: the number of bytes written
//   - error: a mapping or write error
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var n int
	err := b.Map(func(data []byte) error {
		var werr error
		n, werr = w.Write(data)
		return werr
	})
	return int64(n), err
}

// Release deletes the device handle and drops the shadow copy. Safe to call more than once.
func (b *Buffer) Release() {
	if b.handle != 0 {
		b.ctx.device.DeleteBuffer(b.handle)
		b.handle = 0
	}
	b.shadow = nil
	b.released = true
}

func (b *Buffer) mapWith(access MapAccess, visit func(data []byte) error) (err error) {
	if err := b.Bind(); err != nil {
		return err
	}

	data := b.ctx.device.MapBuffer(b.kind, access, b.size)
	if cerr := b.ctx.check("MapBuffer"); cerr != nil {
		return cerr
	}
	if data == nil && b.size > 0 {
		return ErrMapFailed
	}
	defer func() {
		b.ctx.device.UnmapBuffer(b.kind)
		if cerr := b.ctx.check("UnmapBuffer"); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return visit(data)
}

func (b *Buffer) ensureBuilt() error {
	if b.released {
		return ErrReleased
	}
	if b.handle != 0 {
		return nil
	}
	return b.build(b.size, b.shadow)
}

func (b *Buffer) commitShadow(data []byte) {
	if b.shadow == nil || cap(b.shadow) < len(data) {
		b.shadow = make([]byte, len(data))
	} else {
		b.shadow = b.shadow[:len(data)]
	}
	copy(b.shadow, data)
	b.size = len(data)
}

// build allocates a handle and specifies size bytes of storage from data. The handle is kept only
// when every step succeeds; on failure it is deleted and the buffer stays unbuilt.
func (b *Buffer) build(size int, data []byte) (err error) {
	handle := b.ctx.device.GenBuffer()
	defer func() {
		if err != nil && handle != 0 {
			b.ctx.device.DeleteBuffer(handle)
		}
	}()
	if err := b.ctx.check("GenBuffers"); err != nil {
		return err
	}
	b.ctx.device.BindBuffer(b.kind, handle)
	if err := b.ctx.check("BindBuffer"); err != nil {
		return err
	}
	b.ctx.device.BufferData(b.kind, size, data, b.usage)
	if err := b.ctx.check("BufferData"); err != nil {
		return err
	}
	b.handle = handle
	return nil
}
