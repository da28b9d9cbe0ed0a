// Package logging builds the structured loggers used across crossway
package logging

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr.Logger.V
const (
	DEFAULT = 2
	VERBOSE = 3
	DEBUG   = 4
	TRACE   = 5
)

// NewLogger creates a zap backed logger that emits messages up to the given
// verbosity. Development mode switches to the human readable console encoder.
func NewLogger(verbosity int, development bool) (logr.Logger, error) {
	cfg := uberzap.NewProductionConfig()
	if development {
		cfg = uberzap.NewDevelopmentConfig()
	}
	cfg.Level = uberzap.NewAtomicLevelAt(zapcore.Level(-1 * verbosity))

	zapLog, err := cfg.Build(uberzap.AddCaller())
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zapLog), nil
}

// NewTestLogger creates a new Zap logger using the dev mode.
func NewTestLogger() logr.Logger {
	logger, err := NewLogger(TRACE, true)
	if err != nil {
		return logr.Discard()
	}
	return logger
}

// Fatal calls logger.Error followed by os.Exit(1).
//
// This is a utility function and should not be used in library code!
func Fatal(logger logr.Logger, err error, msg string, keysAndValues ...interface{}) {
	logger.Error(err, msg, keysAndValues...)
	os.Exit(1)
}
