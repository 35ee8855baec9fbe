package level

import (
	"io/fs"
	"log/slog"
)

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loaderImpl)

// WithFS sets the resource root scenes are read from.
//
// Parameters:
//   - fsys: the resource root
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.fsys = fsys
	}
}

// WithDir sets the directory inside the resource root that holds scene files. Defaults to "maps".
//
// Parameters:
//   - dir: slash-separated directory
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithDir(dir string) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.dir = dir
	}
}

// WithLogger sets the logger used for load progress. Defaults to common.Logger().
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.logger = logger
	}
}
