package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger logs warnings by default so that degraded listings are always visible;
// verbose mode adds progress output.
func newLogger(verbose bool, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
