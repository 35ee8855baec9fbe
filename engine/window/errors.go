package window

import "errors"

// ErrClosed is returned when closing a window twice.
var ErrClosed = errors.New("window: already closed")
