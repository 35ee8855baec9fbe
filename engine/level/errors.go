package level

import "errors"

var (
	// ErrNotFound is returned when the scene resource does not exist.
	ErrNotFound = errors.New("level: map does not exist")

	// ErrNotRegularFile is returned when the scene resource is a directory or another non-regular file.
	ErrNotRegularFile = errors.New("level: map is not a file")

	// ErrInvalidFormat is returned when the scene resource is not valid YAML or has malformed fields.
	ErrInvalidFormat = errors.New("level: map file is invalid")

	// ErrMissingMapSection is returned when the scene resource has no top-level map section.
	ErrMissingMapSection = errors.New("level: map file is invalid: does not have map property")
)
