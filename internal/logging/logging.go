// ABOUTME: Process-wide logrus logger for fitcentre.
// ABOUTME: Writes to stderr so CLI and MCP stdout stay clean.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. It starts at warn level until Setup runs.
var Log = newLogger(os.Stderr, logrus.WarnLevel)

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.Out = out
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

// Setup configures the shared logger's level and output.
// An empty or unknown level falls back to info.
func Setup(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.Out = out
	Log.SetLevel(lvl)
	return Log
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
