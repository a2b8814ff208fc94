// Package logging provides file-based logging for weft.
// It outputs logs to both a global log file (.weft/logs/weft.log)
// and task-specific log files (.weft/logs/task-<name>.log).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/weftlabs/weft/internal/task"
)

// Ensure Logger implements task.Logger.
var _ task.Logger = (*Logger)(nil)

// Logger wraps slog levels with file-based output.
type Logger struct {
	globalFile *os.File
	taskFiles  map[string]*os.File
	weftDir    string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a Logger writing under weftDir. If weftDir is empty, logging is
// disabled (a no-op logger).
func New(weftDir string, level slog.Level) *Logger {
	return &Logger{
		weftDir:   weftDir,
		level:     level,
		taskFiles: make(map[string]*os.File),
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) ensureLogsDir() error {
	return os.MkdirAll(filepath.Join(l.weftDir, "logs"), 0o750)
}

func (l *Logger) ensureGlobalFile() (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.globalFile != nil {
		return l.globalFile, nil
	}
	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	path := filepath.Join(l.weftDir, "logs", "weft.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open global log file: %w", err)
	}
	l.globalFile = f
	return f, nil
}

func (l *Logger) ensureTaskFile(taskName string) (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.taskFiles[taskName]; ok {
		return f, nil
	}
	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	path := filepath.Join(l.weftDir, "logs", "task-"+sanitize(taskName)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open task log file: %w", err)
	}
	l.taskFiles[taskName] = f
	return f, nil
}

// sanitize keeps namespaced task names filesystem-safe.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for name, f := range l.taskFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.taskFiles, name)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [task-styles] [category] message
func formatLog(t time.Time, level slog.Level, taskName, category, msg string) string {
	taskStr := "global"
	if taskName != "" {
		taskStr = "task-" + taskName
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		taskStr,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes an entry to the global log, and to the task log when taskName is
// non-empty.
func (l *Logger) log(level slog.Level, taskName, category, msg string) {
	if l.weftDir == "" {
		return // Logging disabled
	}
	if level < l.level {
		return
	}

	entry := formatLog(time.Now(), level, taskName, category, msg)

	if gf, err := l.ensureGlobalFile(); err == nil {
		_, _ = io.WriteString(gf, entry)
	}
	if taskName != "" {
		if tf, err := l.ensureTaskFile(taskName); err == nil {
			_, _ = io.WriteString(tf, entry)
		}
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(taskName, category, msg string) {
	l.log(slog.LevelDebug, taskName, category, msg)
}

// Info logs an info message.
func (l *Logger) Info(taskName, category, msg string) {
	l.log(slog.LevelInfo, taskName, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskName, category, msg string) {
	l.log(slog.LevelWarn, taskName, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskName, category, msg string) {
	l.log(slog.LevelError, taskName, category, msg)
}
