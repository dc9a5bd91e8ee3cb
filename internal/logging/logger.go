package logging

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Logger appends timestamped lines to a log file next to the project
// database. The terminal belongs to the UI, so diagnostics go here.
type Logger struct {
	w io.Writer
	f *os.File
}

// Open creates (or reuses) the log file at path.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{w: f, f: f}, nil
}

// Discard returns a logger that drops everything. Used in tests and
// when no log path is configured.
func Discard() *Logger {
	return &Logger{w: io.Discard}
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.w == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.w, "[%s] %s\n", time.Now().Format(time.RFC3339), line)
}

func (l *Logger) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Close()
}
