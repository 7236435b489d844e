// Package logger provides the process-wide structured logger for logsh.
//
// Log lines go to stderr so command output on stdout stays pipeable.
// Debug output is enabled with SetVerbose; EnableFile additionally tees
// records into a size-rotated file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu       sync.RWMutex
	level    = new(slog.LevelVar)
	output   io.Writer = os.Stderr
	fileOut  *lumberjack.Logger
	instance = newLogger(os.Stderr)
)

func init() {
	level.Set(slog.LevelWarn)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose switches debug logging on or off.
func SetVerbose(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelWarn)
}

// IsVerbose reports whether debug logging is enabled.
func IsVerbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetOutput redirects log output. The rotating file, when enabled, keeps
// receiving records.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// EnableFile tees log records into path, rotating at 10 MB.
func EnableFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("logger: failed to create log directory: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if fileOut != nil {
		_ = fileOut.Close()
	}
	fileOut = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	rebuild()
	return nil
}

// Close flushes and closes the rotating file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileOut == nil {
		return nil
	}
	err := fileOut.Close()
	fileOut = nil
	rebuild()
	return err
}

func rebuild() {
	w := output
	if fileOut != nil {
		w = io.MultiWriter(output, fileOut)
	}
	instance = newLogger(w)
}

// Get returns the current logger for callers that want attributes.
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

func logf(lvl slog.Level, format string, args ...any) {
	l := Get()
	if !l.Enabled(context.Background(), lvl) {
		return
	}
	l.Log(context.Background(), lvl, fmt.Sprintf(format, args...))
}

// Debug logs at debug level.
func Debug(format string, args ...any) { logf(slog.LevelDebug, format, args...) }

// Info logs at info level.
func Info(format string, args ...any) { logf(slog.LevelInfo, format, args...) }

// Warn logs at warn level.
func Warn(format string, args ...any) { logf(slog.LevelWarn, format, args...) }

// Error logs at error level.
func Error(format string, args ...any) { logf(slog.LevelError, format, args...) }
