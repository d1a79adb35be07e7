// Package oarklog adapts github.com/oarkflow/log to the gateway's Logger
// interface.
package oarklog

import (
	"fmt"
	"os"
	"time"

	oarkLog "github.com/oarkflow/log"

	"github.com/nimbusdepot/gatesftp/internal/log"
)

// Default builds a Logger writing leveled, RFC3339-timestamped entries to
// stdout at info level.
func Default() log.Logger {
	return AtLevel("info")
}

// AtLevel is Default with the minimum level configurable, for
// logging.level in configuration.
func AtLevel(level string) log.Logger {
	w := []oarkLog.Writer{
		&oarkLog.IOWriter{Writer: os.Stdout},
	}
	writer := oarkLog.MultiEntryWriter(w)
	oarkLog.DefaultLogger.Writer = &writer
	oarkLog.DefaultLogger.EnableTracing = false
	oarkLog.DefaultLogger.TimeLocation = time.UTC
	oarkLog.DefaultLogger.TimeFormat = time.RFC3339
	oarkLog.DefaultLogger.Level = parseLevel(level)
	return &wrapper{logger: oarkLog.DefaultLogger}
}

func parseLevel(level string) oarkLog.Level {
	switch level {
	case "debug":
		return oarkLog.DebugLevel
	case "warn":
		return oarkLog.WarnLevel
	case "error":
		return oarkLog.ErrorLevel
	default:
		return oarkLog.InfoLevel
	}
}

// New wraps an already-configured oarkLog.Logger, e.g. one pointed at a
// file per logging.file in configuration.
func New(logr oarkLog.Logger) log.Logger {
	return &wrapper{logger: logr}
}

type wrapper struct {
	logger oarkLog.Logger
}

func (w *wrapper) Debug(msg string, keyvals ...interface{}) { addLog(w.logger.Debug(), msg, keyvals...) }
func (w *wrapper) Info(msg string, keyvals ...interface{})  { addLog(w.logger.Info(), msg, keyvals...) }
func (w *wrapper) Warn(msg string, keyvals ...interface{})  { addLog(w.logger.Warn(), msg, keyvals...) }
func (w *wrapper) Error(msg string, keyvals ...interface{}) { addLog(w.logger.Error(), msg, keyvals...) }

func (w *wrapper) With(keyvals ...interface{}) log.Logger {
	event := oarkLog.With(&w.logger)
	return New(addEvents(event, keyvals...).Copy())
}

func addLog(event *oarkLog.Entry, msg string, keyvals ...interface{}) {
	addEvents(event, keyvals...).Msg(msg)
}

func addEvents(event *oarkLog.Entry, keyvals ...interface{}) *oarkLog.Entry {
	for i := 0; i < len(keyvals)-1; i += 2 {
		event = event.Any(fmt.Sprint(keyvals[i]), keyvals[i+1])
	}
	return event
}
