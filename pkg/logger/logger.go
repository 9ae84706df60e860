// Package logger provides the process-wide leveled logger. It wraps
// zerolog with the component+fields call shape the rest of the codebase
// uses (InfoCF("telegram", "connected", map[string]any{...})).
package logger

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	DEBUG = zerolog.DebugLevel
	INFO  = zerolog.InfoLevel
	WARN  = zerolog.WarnLevel
	ERROR = zerolog.ErrorLevel
)

var log atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
	log.Store(&l)
}

// SetLevel changes the global log level.
func SetLevel(level Level) {
	l := log.Load().Level(level)
	log.Store(&l)
}

func Debug(msg string) { log.Load().Debug().Msg(msg) }
func Info(msg string)  { log.Load().Info().Msg(msg) }
func Warn(msg string)  { log.Load().Warn().Msg(msg) }
func Error(msg string) { log.Load().Error().Msg(msg) }

// DebugCF logs at debug level with a component tag and structured fields.
func DebugCF(component, msg string, fields map[string]any) {
	event(log.Load().Debug(), component, fields).Msg(msg)
}

// InfoCF logs at info level with a component tag and structured fields.
func InfoCF(component, msg string, fields map[string]any) {
	event(log.Load().Info(), component, fields).Msg(msg)
}

// WarnCF logs at warn level with a component tag and structured fields.
func WarnCF(component, msg string, fields map[string]any) {
	event(log.Load().Warn(), component, fields).Msg(msg)
}

// ErrorCF logs at error level with a component tag and structured fields.
func ErrorCF(component, msg string, fields map[string]any) {
	event(log.Load().Error(), component, fields).Msg(msg)
}

func event(e *zerolog.Event, component string, fields map[string]any) *zerolog.Event {
	e = e.Str("component", component)
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
