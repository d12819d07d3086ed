// Package logging builds the logrus loggers shared by the CLI, the MCP server
// and the analysis packages.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a text logger writing to w at the given level. An unknown level
// falls back to info; verbose forces debug.
func New(w io.Writer, level string, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		DisableLevelTruncation: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Stderr is New(os.Stderr, level, verbose).
func Stderr(level string, verbose bool) *logrus.Logger {
	return New(os.Stderr, level, verbose)
}

// Discard returns a logger that drops everything. Packages use it when the
// caller supplies no logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
