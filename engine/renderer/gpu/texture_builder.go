package gpu

// imageBinding collects the optional arguments of Texture.BindImage.
type imageBinding struct {
	level int32
	write bool
	layer *int32
}

func (b imageBinding) layerIndex() int32 {
	if b.layer == nil {
		return 0
	}
	return *b.layer
}

// ImageBindingOption is a functional option for Texture.BindImage.
type ImageBindingOption func(*imageBinding)

// WithLevel selects the mip level bound to the image unit (default 0).
//
// Parameters:
//   - level: the mip level
//
// Returns:
//   - ImageBindingOption: option function to apply
func WithLevel(level int32) ImageBindingOption {
	return func(b *imageBinding) {
		b.level = level
	}
}

// WithWriteAccess binds the image read-write instead of read-only.
//
// Returns:
//   - ImageBindingOption: option function to apply
func WithWriteAccess() ImageBindingOption {
	return func(b *imageBinding) {
		b.write = true
	}
}

// WithLayer binds exactly one layer of a layered texture instead of the whole array.
//
// Parameters:
//   - layer: the layer index
//
// Returns:
//   - ImageBindingOption: option function to apply
func WithLayer(layer int32) ImageBindingOption {
	return func(b *imageBinding) {
		b.layer = &layer
	}
}
