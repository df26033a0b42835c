// Package logger provides leveled, verbose-gated logging for femspice.
// Debug, Info and Section output appears only in verbose mode; warnings are
// always written. Loggers derived with With share the writer and its lock.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type Logger struct {
	mu      *sync.Mutex
	out     *io.Writer
	verbose *bool
	prefix  string
}

// New returns a logger writing to w.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{
		mu:      &sync.Mutex{},
		out:     &w,
		verbose: &verbose,
	}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, false)
}

var std = New(os.Stderr, false)

// Default returns the process-wide logger used by the CLI.
func Default() *Logger { return std }

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.verbose
}

// SetOutput sets the output writer. Useful for testing.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.out = w
}

// With returns a logger that prepends prefix to every message.
func (l *Logger) With(prefix string) *Logger {
	child := *l
	child.prefix = l.prefix + prefix + " "
	return &child
}

func (l *Logger) printf(level, format string, args ...any) {
	fmt.Fprintf(*l.out, level+" "+l.prefix+format+"\n", args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if *l.verbose {
		l.printf("[DEBUG]", format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if *l.verbose {
		l.printf("[INFO]", format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printf("[WARN]", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if *l.verbose {
		fmt.Fprintf(*l.out, "\n=== %s%s ===\n", l.prefix, name)
	}
}

// Package-level helpers on the default logger.

func SetVerbose(v bool) { std.SetVerbose(v) }
func IsVerbose() bool { return std.IsVerbose() }
func SetOutput(w io.Writer) { std.SetOutput(w) }
func Debug(f string, a ...any) { std.Debug(f, a...) }
func Info(f string, a ...any) { std.Info(f, a...) }
func Warn(f string, a ...any) { std.Warn(f, a...) }
func Section(name string) { std.Section(name) }
