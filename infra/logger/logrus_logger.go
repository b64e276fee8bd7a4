package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	corelogger "github.com/kilianp07/depot/core/logger"
)

// LogrusLogger implements Logger on top of sirupsen/logrus.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a logrus backed logger on stdout. It honours the
// same APP_ENV and LOG_LEVEL variables as the zerolog backend.
func NewLogrusLogger(component string) Logger {
	var f logrus.Formatter = &logrus.JSONFormatter{}
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		f = &logrus.TextFormatter{FullTimestamp: true}
	}
	return NewLogrusWithWriter(os.Stdout, f, component, parseLogrusLevel(os.Getenv("LOG_LEVEL")))
}

// NewLogrusWithWriter creates a logger on w using the given formatter.
func NewLogrusWithWriter(w io.Writer, f logrus.Formatter, component string, level logrus.Level) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(f)
	l.SetLevel(level)
	return &LogrusLogger{entry: l.WithField("component", component)}
}

func parseLogrusLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func (l *LogrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }

func (l *LogrusLogger) Debugw(msg string, fields corelogger.Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *LogrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
