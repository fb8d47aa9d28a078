// Package logging provides the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// Logger returns the shared logger, creating it on first use. It writes to
// stderr at info level until configured otherwise.
func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "meshedit",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and
// applies it to the shared logger.
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	Logger().SetLevel(lvl)
	return nil
}

// SetOutput redirects the shared logger.
func SetOutput(w io.Writer) {
	Logger().SetOutput(w)
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *log.Logger {
	return Logger().With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	Logger().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	Logger().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	Logger().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	Logger().Error(msg, keyvals...)
}
