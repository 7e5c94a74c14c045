package main

import (
	"fmt"
	"io"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"

	"github.com/felixgeelhaar/rpc-go/middleware"
)

var logger *golog.Logger

// SetLogger overrides the main logger of this command.
func SetLogger(l *golog.Logger) {
	logger = l
}

func init() {
	// Set a default null logger
	SetLogger(golog.New(io.Discard, log.Debug))
}

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

// levelFor maps the number of -v flags to a log level.
func levelFor(verbose int) log.Level {
	if verbose >= len(logLevels) {
		verbose = len(logLevels) - 1
	}
	return logLevels[verbose]
}

// middlewareLogger adapts a golog logger to middleware.Logger. Fields are
// appended to the message as key=value pairs.
type middlewareLogger struct {
	l *golog.Logger
}

var _ middleware.Logger = middlewareLogger{}

func (m middlewareLogger) Info(msg string, fields ...middleware.Field) {
	m.l.Info(format(msg, fields))
}

func (m middlewareLogger) Error(msg string, fields ...middleware.Field) {
	m.l.Error(format(msg, fields))
}

func (m middlewareLogger) Debug(msg string, fields ...middleware.Field) {
	m.l.Debug(format(msg, fields))
}

func (m middlewareLogger) Warn(msg string, fields ...middleware.Field) {
	m.l.Warning(format(msg, fields))
}

func format(msg string, fields []middleware.Field) string {
	for _, f := range fields {
		msg += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	return msg
}
