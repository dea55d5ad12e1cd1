package config

import (
	"fmt"
	"io"
	"strings"
)

// Logger provides structured logging for pipeline operations.
// This interface allows callers to plug in their own logging implementation.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// noopLogger is a Logger implementation that does nothing.
// This is the default logger used when none is provided.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return &noopLogger{}
}

// writerLogger writes leveled key-value lines to an io.Writer.
// The CLI uses this with os.Stderr; progress output stays on stdout.
type writerLogger struct {
	w       io.Writer
	verbose bool
}

// NewLogger returns a Logger writing to w. Debug lines are dropped
// unless verbose is set.
func NewLogger(w io.Writer, verbose bool) Logger {
	return &writerLogger{w: w, verbose: verbose}
}

func (l *writerLogger) Debug(msg string, kv ...interface{}) {
	if l.verbose {
		l.log("DEBUG", msg, kv)
	}
}
func (l *writerLogger) Info(msg string, kv ...interface{})  { l.log("INFO", msg, kv) }
func (l *writerLogger) Warn(msg string, kv ...interface{})  { l.log("WARN", msg, kv) }
func (l *writerLogger) Error(msg string, kv ...interface{}) { l.log("ERROR", msg, kv) }

func (l *writerLogger) log(level, msg string, kv []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %s", level, msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 == 1 {
		fmt.Fprintf(&b, " %v", kv[len(kv)-1])
	}
	fmt.Fprintln(l.w, b.String())
}
