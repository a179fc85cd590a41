package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// setupLogger builds the logger shared by every component. An unknown
// level falls back to info; verbose always means debug.
func setupLogger(logLevel string, verbose bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
		defer logger.WithField("level", logLevel).Warn("Unknown log level, using info")
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return logger
}
