package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger provides structured, leveled logging throughout the application.
// Console output is colorized; when a log directory is configured, every
// entry is also appended as a JSON line (errors to error.log, the rest to
// server.log).
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	mu      sync.Mutex
	logFile *os.File
	errFile *os.File
}

// NewLogger creates a new Logger writing to stdout/stderr only.
func NewLogger() *Logger {
	flags := 0
	return &Logger{
		info:  log.New(os.Stdout, "", flags),
		warn:  log.New(os.Stdout, "", flags),
		err:   log.New(os.Stderr, "", flags),
		debug: log.New(os.Stdout, "", flags),
	}
}

// NewFileLogger creates a Logger that additionally appends JSON lines under dir.
func NewFileLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(dir, "server.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: open server.log: %w", err)
	}
	errFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("logger: open error.log: %w", err)
	}
	l := NewLogger()
	l.logFile = logFile
	l.errFile = errFile
	return l, nil
}

// Close flushes and closes the JSON log files, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		_ = l.logFile.Close()
	}
	if l.errFile != nil {
		_ = l.errFile.Close()
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) appendJSON(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	target := l.logFile
	if level == "error" {
		target = l.errFile
	}
	if target == nil {
		return
	}
	entry, _ := json.Marshal(map[string]string{
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"level": level,
		"msg":   fmt.Sprintf(format, args...),
	})
	_, _ = target.Write(append(entry, '\n'))
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("[%s] \033[32mINFO\033[0m  %s\n", l.timestamp(), format), args...)
	l.appendJSON("info", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("[%s] \033[33mWARN\033[0m  %s\n", l.timestamp(), format), args...)
	l.appendJSON("warn", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("[%s] \033[31mERROR\033[0m %s\n", l.timestamp(), format), args...)
	l.appendJSON("error", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.debug.Printf(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m %s\n", l.timestamp(), format), args...)
}
