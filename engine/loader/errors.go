package loader

import "errors"

var (
	// ErrUnsupportedFormat is returned for files whose extension has no decoder.
	ErrUnsupportedFormat = errors.New("loader: unsupported image format")

	// ErrNoTextures is returned when a texture array is requested with an empty file list.
	ErrNoTextures = errors.New("loader: no textures requested")
)
