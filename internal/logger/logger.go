package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base *logrus.Logger
	once sync.Once
)

// Init configures the shared logger. Safe to call more than once; only the
// first call wins. Level accepts the usual logrus level names; anything
// unparseable falls back to info.
func Init(level string, jsonFormat bool) {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)

		if jsonFormat {
			base.SetFormatter(&logrus.JSONFormatter{})
		} else {
			base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}

		parsed, err := logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			parsed = logrus.InfoLevel
		}
		base.SetLevel(parsed)
	})
}

// New returns a log entry bound to the shared logger. Callers chain
// WithField/WithError as needed.
func New() *logrus.Entry {
	if base == nil {
		Init("info", false)
	}
	return logrus.NewEntry(base)
}
