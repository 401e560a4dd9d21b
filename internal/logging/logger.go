// Package logging defines the small structured logger contract shared by
// ir's internal packages.
//
// Library code never constructs a concrete logger. The CLI builds one
// *log.Logger from charmbracelet/log and hands it down; everything else
// accepts the Logger interface and falls back to a no-op.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger provides leveled, key-value structured logging.
// *log.Logger from charmbracelet/log satisfies it directly.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (nopLogger) Info(msg interface{}, keyvals ...interface{})  {}
func (nopLogger) Warn(msg interface{}, keyvals ...interface{})  {}
func (nopLogger) Error(msg interface{}, keyvals ...interface{}) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// Level selects the verbosity of the CLI logger.
type Level int

const (
	LevelQuiet Level = iota
	LevelNormal
	LevelVerbose
)

// New creates the process logger writing to w (stderr when nil).
func New(w io.Writer, level Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "ir",
		ReportTimestamp: false,
	})
	switch level {
	case LevelQuiet:
		logger.SetLevel(log.ErrorLevel)
	case LevelVerbose:
		logger.SetLevel(log.DebugLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
