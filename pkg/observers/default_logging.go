package observers

import (
	"github.com/go-logr/logr"
)

// NewDefaultLoggingObserver creates a logging observer named "intersection"
func NewDefaultLoggingObserver(logger logr.Logger) *LoggingObserver {
	return NewLoggingObserver(logger, "intersection")
}
