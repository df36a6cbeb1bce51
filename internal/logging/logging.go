// Package logging builds the application logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing JSON, or human-readable text in dev.
// An unparsable level falls back to info.
func New(level string, dev bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, dev)
}

func NewWithOutput(out io.Writer, level string, dev bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if dev {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
