// Package logger provides the component logger used across the
// service. Output is JSON by default and human-readable console when
// APP_ENV=dev.
package logger

// Logger is the logging interface components depend on.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
