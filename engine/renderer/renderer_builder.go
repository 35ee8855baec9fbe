package renderer

import (
	"io/fs"
	"log/slog"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithShaderFS replaces the embedded shader sources. The filesystem must hold vert.glsl,
// raycaster-drawer.glsl, raycaster.glsl and spritecaster.glsl at its root.
//
// Parameters:
//   - fsys: the shader source filesystem
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader source option to a renderer
func WithShaderFS(fsys fs.FS) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderFS = fsys
	}
}

// WithMaxColumns sets how many screen columns the ray result buffer holds. Wider viewports
// only cast this many rays. Non-positive values are ignored.
//
// Parameters:
//   - columns: the column capacity
//
// Returns:
//   - RendererBuilderOption: a function that applies the column capacity option to a renderer
func WithMaxColumns(columns int) RendererBuilderOption {
	return func(r *renderer) {
		if columns > 0 {
			r.maxColumns = columns
		}
	}
}

// WithAspectRatio sets the widest aspect ratio the render area may have, 4:3 by default.
// Non-positive values are ignored.
//
// Parameters:
//   - width: the ratio numerator
//   - height: the ratio denominator
//
// Returns:
//   - RendererBuilderOption: a function that applies the aspect ratio option to a renderer
func WithAspectRatio(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 && height > 0 {
			r.aspectNum, r.aspectDen = width, height
		}
	}
}

// WithLogger sets the logger used for setup progress. Defaults to common.Logger().
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}
