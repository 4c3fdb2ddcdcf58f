// Package logger is the small leveled-logging seam shared by the collector
// and the UI. The dashboard owns the terminal, so nothing here writes to
// stdout; diagnostics go to stderr and debug output stays silent unless
// VITALS_DEBUG is set.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger is the logging seam. Methods take printf-style format and args.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// envLogger writes to stderr via the standard log package. The debug gate
// is re-read on every call so tests can flip it with t.Setenv.
type envLogger struct {
	prefix string
}

// NewEnvLogger returns a stderr logger with the given prefix (e.g. "[gpu]").
// Debug output is suppressed unless VITALS_DEBUG is non-empty.
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) printf(level, format string, args ...any) {
	log.Printf(l.prefix+level+" "+format, args...)
}

func (l *envLogger) Debug(format string, args ...any) {
	if os.Getenv("VITALS_DEBUG") != "" {
		l.printf("", format, args...)
	}
}

func (l *envLogger) Info(format string, args ...any) {
	l.printf("", format, args...)
}

func (l *envLogger) Warn(format string, args ...any) {
	l.printf(" WARN:", format, args...)
}

func (l *envLogger) Error(format string, args ...any) {
	l.printf(" ERROR:", format, args...)
}

// noopLogger drops everything. Handed to components whose caller did not
// ask for diagnostics.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...any) {}
func (l *noopLogger) Info(format string, args ...any)  {}
func (l *noopLogger) Warn(format string, args ...any)  {}
func (l *noopLogger) Error(format string, args ...any) {}

// LogMessage is one captured entry: the level name and the formatted text.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger records messages in order so tests can assert on what a
// component logged. Messages is exported for direct inspection.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger returns an empty capturing logger.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{Messages: make([]LogMessage, 0)}
}

func (l *BufferLogger) capture(level, format string, args ...any) {
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...any) { l.capture("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...any)  { l.capture("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...any)  { l.capture("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...any) { l.capture("error", format, args...) }

// HasLevel reports whether any captured message carries the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear drops all captured messages, keeping the backing storage.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}
