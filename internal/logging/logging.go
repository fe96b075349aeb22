// Package logging configures the process-wide logrus logger. The TUI
// owns stdout, so log output goes to a file under the config directory.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance.
var Log = logrus.New()

// Init configures the global logger with the given level and log file
// path. An empty path discards all output, which is what tests and
// library consumers without a writable config directory want.
func Init(level, file string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	if file == "" {
		Log.SetOutput(io.Discard)
		return
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		Log.SetOutput(io.Discard)
		return
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		Log.SetOutput(io.Discard)
		return
	}
	Log.SetOutput(f)
}

// Get returns the configured global logger.
func Get() *logrus.Logger {
	return Log
}
