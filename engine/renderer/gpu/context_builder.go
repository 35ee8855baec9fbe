package gpu

import "log/slog"

// ContextBuilderOption is a functional option for configuring a Context via NewContext.
type ContextBuilderOption func(*Context)

// WithErrorMode sets how device errors are observed after each call.
//
// Parameters:
//   - mode: the error policy (ErrorModeSilent by default)
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithErrorMode(mode ErrorMode) ContextBuilderOption {
	return func(c *Context) {
		c.mode = mode
	}
}

// WithLogger sets a dedicated logger for device diagnostics instead of the shared engine logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithLogger(l *slog.Logger) ContextBuilderOption {
	return func(c *Context) {
		c.logger = l
	}
}
