package logger

import (
	"os"
	"strings"

	corelogger "github.com/kilianp07/depot/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. LOG_BACKEND=logrus selects
// the logrus backend, anything else zerolog. The output format is selected
// with APP_ENV and the minimum level with LOG_LEVEL.
func New(component string) Logger {
	if strings.EqualFold(os.Getenv("LOG_BACKEND"), "logrus") {
		return NewLogrusLogger(component)
	}
	return NewZerologLogger(component)
}
