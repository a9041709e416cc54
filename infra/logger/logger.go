package logger

import corelogger "github.com/kilianp07/loadshare/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. The output format is
// selected by Configure or, when it was never called, by the APP_ENV
// environment variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
