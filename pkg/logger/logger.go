package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// VerboseLevel represents the verbosity level for logging
type VerboseLevel int

const (
	// VerboseSilent means no verbose output
	VerboseSilent VerboseLevel = 0
	// VerboseNormal means standard verbose output (-v)
	VerboseNormal VerboseLevel = 1
	// VerboseVery means detailed debugging output (-vv)
	VerboseVery VerboseLevel = 2
)

// Logger handles verbose output at different levels. A nil *Logger is
// valid and discards everything.
type Logger struct {
	level VerboseLevel
	out   io.Writer
	mu    sync.Mutex
}

// NewLogger creates a new logger with the specified verbosity level
func NewLogger(level int) *Logger {
	return &Logger{level: VerboseLevel(level)}
}

// SetOutput redirects the logger, stderr when w is nil.
func (l *Logger) SetOutput(w io.Writer) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// IsVerbose returns true if verbose mode is enabled (-v or -vv)
func (l *Logger) IsVerbose() bool {
	return l != nil && l.level >= VerboseNormal
}

// IsVeryVerbose returns true if very verbose mode is enabled (-vv)
func (l *Logger) IsVeryVerbose() bool {
	return l != nil && l.level >= VerboseVery
}

func (l *Logger) write(prefix, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.out
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

// V logs a message at verbose level (-v)
func (l *Logger) V(format string, args ...interface{}) {
	if l.IsVerbose() {
		l.write("[*] ", format, args...)
	}
}

// VV logs a message at very verbose level (-vv)
func (l *Logger) VV(format string, args ...interface{}) {
	if l.IsVeryVerbose() {
		l.write("[VV] ", format, args...)
	}
}

// Info logs an informational message (always shown unless silent)
func (l *Logger) Info(format string, args ...interface{}) {
	if l != nil {
		l.write("[+] ", format, args...)
	}
}

// Warn logs a lint finding or recoverable problem
func (l *Logger) Warn(format string, args ...interface{}) {
	if l != nil {
		l.write("[-] ", format, args...)
	}
}

// Error logs an error message (always shown unless silent)
func (l *Logger) Error(format string, args ...interface{}) {
	if l != nil {
		l.write("[!] ", format, args...)
	}
}

// Section logs a section header for very verbose mode
func (l *Logger) Section(title string) {
	if l.IsVeryVerbose() {
		l.write("\n[VV] === ", "%s ===", title)
	}
}

// Detail logs a detail line for very verbose mode with indentation
func (l *Logger) Detail(format string, args ...interface{}) {
	if l.IsVeryVerbose() {
		l.write("[VV] → ", format, args...)
	}
}
