// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package logger provides structured logging with dual console/file output
// and credential scrubbing, built on log/slog.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"
)

// Level represents a logging level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FileConfig controls the optional rotating JSON file sink.
type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger is the single structured logger used throughout mgit. A Logger
// value is built once per component via New and threaded explicitly through
// AppContext; there is no package-level global instance.
type Logger struct {
	slog      *slog.Logger
	component string
	sessionID string
}

// New builds a Logger writing to the console and, if cfg.Enabled, to a
// rotating JSON file. Construction never fails: a broken file sink is
// dropped and logging continues on the console alone.
func New(component string, level Level, cfg FileConfig) *Logger {
	opts := &slog.HandlerOptions{Level: level.slogLevel()}

	var handler slog.Handler = NewConsoleHandler(opts)
	if cfg.Enabled {
		if fileHandler, err := newFileHandler(cfg, opts); err == nil {
			handler = NewMultiHandler(handler, fileHandler)
		}
	}

	return &Logger{
		slog:      slog.New(scrub{handler}),
		component: component,
		sessionID: generateSessionID(component),
	}
}

// With returns a derived Logger carrying the given key/value pairs on every
// subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:      l.slog.With(args...),
		component: l.component,
		sessionID: l.sessionID,
	}
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.slog.Enabled(context.Background(), level) {
		return
	}

	caller := getCaller(3)
	attrs := make([]any, 0, 6+len(args))
	attrs = append(attrs,
		"component", l.component,
		"session_id", l.sessionID,
		"caller", fmt.Sprintf("%s:%d", caller.File, caller.Line),
	)
	attrs = append(attrs, args...)

	l.slog.Log(context.Background(), level, msg, attrs...)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// ErrorWithStack logs an error including a captured stack trace.
func (l *Logger) ErrorWithStack(err error, msg string, args ...any) {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	args = append(args, "error", err.Error(), "stack", string(buf[:n]))
	l.log(slog.LevelError, msg, args...)
}

// LogPerformance logs a duration and arbitrary metrics for an operation.
func (l *Logger) LogPerformance(operation string, duration time.Duration, metrics map[string]any) {
	args := make([]any, 0, 2+2*len(metrics))
	args = append(args, "operation", operation, "duration", duration.String())
	for k, v := range metrics {
		args = append(args, k, v)
	}
	l.Info("operation timing", args...)
}

// Middleware runs fn, logging its start, completion/failure, and duration.
func (l *Logger) Middleware(name string, fn func() error) error {
	start := time.Now()
	l.Debug("operation started", "operation", name)

	err := fn()
	duration := time.Since(start)

	if err != nil {
		l.LogPerformance(name, duration, map[string]any{"success": false})
		l.ErrorWithStack(err, "operation failed", "operation", name)
		return err
	}

	l.LogPerformance(name, duration, map[string]any{"success": true})
	return nil
}

type callerInfo struct {
	File string
	Line int
}

func getCaller(skip int) callerInfo {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return callerInfo{File: "unknown", Line: 0}
	}
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return callerInfo{File: file, Line: line}
}

func generateSessionID(component string) string {
	return fmt.Sprintf("%s_%d", component, time.Now().UnixNano())
}
