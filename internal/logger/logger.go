package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes leveled, printf-style messages. Info and Warn go to out,
// Error to errOut, Debug only in verbose mode. A file log, when set,
// receives every level with a timestamp.
type Logger struct {
	Verbose bool

	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	fileLog *os.File
	hasBar  bool
}

// New creates a Logger writing to stderr. Stdout is left to command output.
func New(verbose bool) *Logger {
	return NewWithWriters(verbose, os.Stderr, os.Stderr)
}

// NewWithWriters creates a Logger with explicit destinations.
func NewWithWriters(verbose bool, out, errOut io.Writer) *Logger {
	return &Logger{Verbose: verbose, out: out, errOut: errOut}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWithWriters(false, io.Discard, io.Discard)
}

// SetFileLog appends all messages to the file at path.
func (l *Logger) SetFileLog(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileLog != nil {
		l.fileLog.Close()
	}
	l.fileLog = f
	return nil
}

// SetProgressBar suppresses non-error console output while a progress bar
// owns the terminal line. Verbose mode ignores it.
func (l *Logger) SetProgressBar(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hasBar = active
}

// Close closes the file log if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog == nil {
		return nil
	}
	err := l.fileLog.Close()
	l.fileLog = nil
	return err
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log("INFO", l.out, format, args...)
}

// Debug is printed in verbose mode; the file log always receives it.
func (l *Logger) Debug(format string, args ...interface{}) {
	var w io.Writer
	if l.Verbose {
		w = l.out
	}
	l.log("DEBUG", w, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", l.out, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log("ERROR", l.errOut, format, args...)
}

func (l *Logger) log(level string, console io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if console != nil && (level == "ERROR" || l.Verbose || !l.hasBar) {
		if level == "INFO" {
			fmt.Fprintln(console, msg)
		} else {
			fmt.Fprintf(console, "[%s] %s\n", level, msg)
		}
	}

	if l.fileLog != nil {
		fmt.Fprintf(l.fileLog, "%s [%s] %s\n", time.Now().Format(time.RFC3339), level, msg)
	}
}
