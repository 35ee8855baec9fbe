package gpu

// ShaderBuilderOption is a functional option for configuring a Shader via NewShader.
type ShaderBuilderOption func(*Shader)

// WithSourceFilter rewrites source text before it reaches the device.
//
// Parameters:
//   - filter: receives the source and returns the text to compile
//
// Returns:
//   - ShaderBuilderOption: a function that applies the filter to a shader
func WithSourceFilter(filter func(source string) (string, error)) ShaderBuilderOption {
	return func(s *Shader) {
		s.filter = filter
	}
}
