package gpu

// BufferBuilderOption is a functional option for configuring a Buffer during construction.
type BufferBuilderOption func(*Buffer)

// WithUsage overrides the default usage hint of the buffer.
//
// Parameters:
//   - usage: the usage hint passed on every upload
//
// Returns:
//   - BufferBuilderOption: option function to apply
func WithUsage(usage Usage) BufferBuilderOption {
	return func(b *Buffer) {
		b.usage = usage
	}
}

// WithLabel sets a debug label for the buffer.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - BufferBuilderOption: option function to apply
func WithLabel(label string) BufferBuilderOption {
	return func(b *Buffer) {
		b.label = label
	}
}
