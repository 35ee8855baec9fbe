package loader

import (
	"io/fs"
	"log/slog"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS sets the resource root images are read from.
//
// Parameters:
//   - fsys: the resource root
//
// Returns:
//   - LoaderBuilderOption: a function that applies the filesystem option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.fsys = fsys
	}
}

// WithDir sets the directory inside the resource root that holds images. Defaults to "pics".
//
// Parameters:
//   - dir: slash-separated directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the directory option to a loader
func WithDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.dir = dir
	}
}

// WithLayerSize sets the edge length of texture array layers. Non-positive values are ignored.
//
// Parameters:
//   - size: texels per side
//
// Returns:
//   - LoaderBuilderOption: a function that applies the layer size option to a loader
func WithLayerSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		if size > 0 {
			l.layerSize = size
		}
	}
}

// WithWorkers sets the maximum number of concurrent image decodes. Non-positive values are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the logger used for load progress. Defaults to common.Logger().
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}
