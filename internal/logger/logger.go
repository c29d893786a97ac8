// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger for JSON output at level and returns it.
// An unknown level falls back to info.
func Setup(level string) *logrus.Logger {
	return configure(logrus.StandardLogger(), level, os.Stdout)
}

func configure(l *logrus.Logger, level string, out io.Writer) *logrus.Logger {
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		defer l.WithField("level", level).Warn("unknown log level, using info")
	}
	l.SetLevel(lvl)
	return l
}
