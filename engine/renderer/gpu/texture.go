package gpu

// Texture owns a 2D or layered 2D texture object.
//
// The handle is allocated lazily on the first Bind or BindImage. Sampling parameters and uploads
// require the texture to be the one bound to its target on the Context. The internal format of
// the last upload or storage reservation is recorded so BindImage can pass it to the device.
type Texture struct {
	ctx *Context

	kind           TextureType
	handle         uint32
	levels         int32
	internalFormat InternalFormat
	released       bool
}

// NewTexture creates an unbuilt texture.
//
// Parameters:
//   - ctx: the device context
//   - kind: Texture2D or Texture2DArray
//
// Returns:
//   - *Texture: the unbuilt texture
func NewTexture(ctx *Context, kind TextureType) *Texture {
	return &Texture{
		ctx:    ctx,
		kind:   kind,
		levels: 1,
	}
}

// Kind returns the dimensionality of the texture.
func (t *Texture) Kind() TextureType {
	return t.kind
}

// Handle returns the native handle, or 0 while unbuilt.
func (t *Texture) Handle() uint32 {
	return t.handle
}

// Levels returns the mip level count of reserved storage.
func (t *Texture) Levels() int32 {
	return t.levels
}

// InternalFormat returns the internal format of the last upload or reservation.
func (t *Texture) InternalFormat() InternalFormat {
	return t.internalFormat
}

// Bind allocates the handle if needed and binds the texture to its target.
//
// Returns:
//   - error: ErrReleased, or a device error
func (t *Texture) Bind() error {
	if err := t.ensureHandle(); err != nil {
		return err
	}
	return t.ctx.bindTexture(t.kind, t.handle)
}

// SetWrap sets the wrapping mode along s and t. The texture must be bound.
//
// Returns:
//   - error: ErrTextureNotBound, or a device error
func (t *Texture) SetWrap(s, tw Wrap) error {
	if err := t.checkBound(); err != nil {
		return err
	}
	t.ctx.device.TexWrap(t.kind, s, tw)
	return t.ctx.check("TexParameteri(WRAP)")
}

// SetMinFilter sets the minification filter. The texture must be bound.
//
// Returns:
//   - error: ErrTextureNotBound, or a device error
func (t *Texture) SetMinFilter(filter Filter) error {
	if err := t.checkBound(); err != nil {
		return err
	}
	t.ctx.device.TexMinFilter(t.kind, filter)
	return t.ctx.check("TexParameteri(MIN_FILTER)")
}

// SetMagFilter sets the magnification filter. The texture must be bound.
//
// Returns:
//   - error: ErrTextureNotBound, or a device error
func (t *Texture) SetMagFilter(filter Filter) error {
	if err := t.checkBound(); err != nil {
		return err
	}
	t.ctx.device.TexMagFilter(t.kind, filter)
	return t.ctx.check("TexParameteri(MAG_FILTER)")
}

// FillImage2D uploads a full 2D image at a mip level and records internalFormat.
//
// Parameters:
//   - level: the mip level
//   - internalFormat: the device storage format
//   - size: width and height in texels
//   - border: must be 0
//   - format: channel layout of data
//   - pixelType: component type of data
//   - data: the pixels, or nil to allocate without contents
//
// Returns:
//   - error: ErrTextureNotBound, or a device error
func (t *Texture) FillImage2D(level int32, internalFormat InternalFormat, size [2]int32, border int32, format ExternalFormat, pixelType PixelType, data []byte) error {
	t.internalFormat = internalFormat
	if err := t.checkBound(); err != nil {
		return err
	}
	t.ctx.device.TexImage2D(t.kind, level, internalFormat, size[0], size[1], border, format, pixelType, data)
	return t.ctx.check("TexImage2D")
}

// ReserveStorage3D allocates immutable storage for a layered texture and records format.
// The storage cannot be reallocated afterwards.
//
// Parameters:
//   - format: the device storage format
//   - size: width, height and layer count
//   - levels: the mip level count (at least 1)
//
// Returns:
//   - error: ErrTextureNotBound, or a device error
func (t *Texture) ReserveStorage3D(format InternalFormat, size [3]int32, levels int32) error {
	t.internalFormat = format
	if err := t.checkBound(); err != nil {
		return err
	}
	if levels < 1 {
		levels = 1
	}
	t.levels = levels
	t.ctx.device.TexStorage3D(t.kind, levels, format, size[0], size[1], size[2])
	return t.ctx.check("TexStorage3D")
}

// FillSubImage3D uploads a sub-region, typically one layer, into reserved storage.
//
// Parameters:
//   - level: the mip level
//   - offset: x, y and layer offset
//   - size: width, height and layer count of the region
//   - format: channel layout of data
//   - pixelType: component type of data
//   - data: the pixels
//
// Returns:
//   - error: ErrTextureNotBound, or a device error
func (t *Texture) FillSubImage3D(level int32, offset, size [3]int32, format ExternalFormat, pixelType PixelType, data []byte) error {
	if err := t.checkBound(); err != nil {
		return err
	}
	t.ctx.device.TexSubImage3D(t.kind, level, offset[0], offset[1], offset[2], size[0], size[1], size[2], format, pixelType, data)
	return t.ctx.check("TexSubImage3D")
}

// BindImage binds the texture to an image unit for random access from shaders, using the
// recorded internal format. Without WithLayer all layers are bound as an array; with it exactly
// that layer is bound. A texture that was never bound gets its handle here, and its contents are
// undefined until filled.
//
// Parameters:
//   - unit: the image unit
//   - options: level, access and layer selection
//
// Returns:
//   - error: ErrReleased, or a device error
func (t *Texture) BindImage(unit uint32, options ...ImageBindingOption) error {
	b := imageBinding{}
	for _, opt := range options {
		opt(&b)
	}

	if t.handle == 0 {
		if err := t.Bind(); err != nil {
			return err
		}
	} else if t.released {
		return ErrReleased
	}

	t.ctx.device.BindImageTexture(unit, t.handle, b.level, b.layer == nil, b.layerIndex(), b.write, t.internalFormat)
	return t.ctx.check("BindImageTexture")
}

// Release deletes the handle. Safe to call more than once.
func (t *Texture) Release() {
	if t.handle != 0 {
		t.ctx.device.DeleteTexture(t.handle)
		t.ctx.forgetTexture(t.kind, t.handle)
		t.handle = 0
	}
	t.released = true
}

func (t *Texture) ensureHandle() error {
	if t.released {
		return ErrReleased
	}
	if t.handle != 0 {
		return nil
	}
	handle := t.ctx.device.GenTexture()
	if err := t.ctx.check("GenTextures"); err != nil {
		if handle != 0 {
			t.ctx.device.DeleteTexture(handle)
		}
		return err
	}
	t.handle = handle
	return nil
}

func (t *Texture) checkBound() error {
	if t.handle == 0 || t.ctx.BoundTexture(t.kind) != t.handle {
		return ErrTextureNotBound
	}
	return nil
}
