// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	colorDebug = color.New(color.FgCyan).SprintFunc()
	colorInfo  = color.New(color.FgGreen).SprintFunc()
	colorWarn  = color.New(color.FgYellow).SprintFunc()
	colorError = color.New(color.FgRed, color.Bold).SprintFunc()
)

// ConsoleHandler renders records as a single human-readable, colorized line:
// TIME LEVEL[context] message.
type ConsoleHandler struct {
	level slog.Level
	attrs []slog.Attr
}

// NewConsoleHandler creates a console handler writing to stdout.
func NewConsoleHandler(opts *slog.HandlerOptions) *ConsoleHandler {
	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}
	return &ConsoleHandler{level: level}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *ConsoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time.Format("15:04:05")
	level := h.formatLevel(record.Level)

	var parts []string
	for _, a := range h.attrs {
		parts = append(parts, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "component", "operation", "org_name", "provider":
			parts = append(parts, fmt.Sprintf("%s=%v", a.Key, a.Value))
		}
		return true
	})

	context := ""
	if len(parts) > 0 {
		context = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	_, err := fmt.Fprintf(os.Stdout, "%s %s%s %s\n", timestamp, level, context, record.Message)
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &ConsoleHandler{level: h.level, attrs: newAttrs}
}

func (h *ConsoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *ConsoleHandler) formatLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorError("ERROR")
	case level >= slog.LevelWarn:
		return colorWarn("WARN ")
	case level >= slog.LevelInfo:
		return colorInfo("INFO ")
	default:
		return colorDebug("DEBUG")
	}
}
