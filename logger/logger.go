// Package logger provides leveled CLI logging with three modes: quiet
// (findings only, no prefixes), normal, and debug. An optional verbose
// switch adds per-attempt detail on top of any mode except quiet.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressClearer is called before each log line to wipe an active
// status line from the terminal. Set via SetProgressClearer.
type ProgressClearer func()

// Logger is a configurable logger instance.
type Logger struct {
	quiet         bool
	debug         bool
	verbose       bool
	output        io.Writer
	mu            sync.Mutex
	clearProgress ProgressClearer
}

var defaultLogger = &Logger{output: os.Stdout}

// New creates a Logger. Quiet and debug are mutually exclusive.
func New(quiet, debug bool) (*Logger, error) {
	if quiet && debug {
		return nil, fmt.Errorf("logger: cannot enable both QUIET and DEBUG modes simultaneously")
	}
	return &Logger{
		quiet:  quiet,
		debug:  debug,
		output: os.Stdout,
	}, nil
}

// Init replaces the default global logger.
func Init(quiet, debug bool) error {
	l, err := New(quiet, debug)
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetProgressClearer registers a function that clears the status line
// before each log line, so log output does not collide with it.
func (l *Logger) SetProgressClearer(fn ProgressClearer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearProgress = fn
}

// SetVerbose toggles verbose mode.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsQuiet reports whether the logger is in quiet mode.
func (l *Logger) IsQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quiet
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// print emits one line. Must be called with l.mu held. In quiet mode
// the prefix and timestamp are dropped.
func (l *Logger) print(prefix, msg string) {
	if l.clearProgress != nil {
		l.clearProgress()
	}
	if l.quiet {
		fmt.Fprintln(l.output, msg)
		return
	}
	fmt.Fprintf(l.output, "%s %s %s\n", timestamp(), prefix, msg)
}

// Fatal logs a message with the [FATAL] prefix and exits the program.
func (l *Logger) Fatal(v ...interface{}) {
	l.mu.Lock()
	l.print("[FATAL]", fmt.Sprint(v...))
	l.mu.Unlock()
	os.Exit(1)
}

// Fatalf logs a formatted message with the [FATAL] prefix and exits.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.mu.Lock()
	l.print("[FATAL]", fmt.Sprintf(format, v...))
	l.mu.Unlock()
	os.Exit(1)
}

// Info logs an informational message. Suppressed in quiet mode.
func (l *Logger) Info(v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quiet {
		return
	}
	l.print("[*]", fmt.Sprint(v...))
}

// Infof logs a formatted informational message. Suppressed in quiet mode.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quiet {
		return
	}
	l.print("[*]", fmt.Sprintf(format, v...))
}

// Debug logs a debug message. Printed only in debug mode.
func (l *Logger) Debug(v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.debug {
		return
	}
	l.print("[DEBUG]", fmt.Sprint(v...))
}

// Debugf logs a formatted debug message. Printed only in debug mode.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.debug {
		return
	}
	l.print("[DEBUG]", fmt.Sprintf(format, v...))
}

// Success logs a finding with the [+] prefix. In quiet mode the bare
// message is still printed, findings are the one thing quiet keeps.
func (l *Logger) Success(v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.print("[+]", fmt.Sprint(v...))
}

// Successf logs a formatted finding with the [+] prefix.
func (l *Logger) Successf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.print("[+]", fmt.Sprintf(format, v...))
}

// Verbosef logs per-attempt detail. Printed only in verbose mode.
func (l *Logger) Verbosef(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.verbose || l.quiet {
		return
	}
	l.print("[VERBOSE]", fmt.Sprintf(format, v...))
}

// Package-level helpers operating on the default logger.

func SetOutput(w io.Writer)                 { defaultLogger.SetOutput(w) }
func SetProgressClearer(fn ProgressClearer) { defaultLogger.SetProgressClearer(fn) }
func SetVerbose(v bool)                     { defaultLogger.SetVerbose(v) }
func IsQuiet() bool                         { return defaultLogger.IsQuiet() }

func Fatal(v ...interface{})                   { defaultLogger.Fatal(v...) }
func Fatalf(format string, v ...interface{})   { defaultLogger.Fatalf(format, v...) }
func Info(v ...interface{})                    { defaultLogger.Info(v...) }
func Infof(format string, v ...interface{})    { defaultLogger.Infof(format, v...) }
func Debug(v ...interface{})                   { defaultLogger.Debug(v...) }
func Debugf(format string, v ...interface{})   { defaultLogger.Debugf(format, v...) }
func Success(v ...interface{})                 { defaultLogger.Success(v...) }
func Successf(format string, v ...interface{}) { defaultLogger.Successf(format, v...) }
func Verbosef(format string, v ...interface{}) { defaultLogger.Verbosef(format, v...) }
