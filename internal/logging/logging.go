// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging installs the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/common/promslog"
)

// Options selects where and how much to log.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is logfmt or json.
	Format string
	// File receives log lines. Ignored when Writer is set.
	File string
	// Writer overrides File, e.g. os.Stderr for verbose CLI runs.
	Writer io.Writer
}

// New builds a logger without installing it.
func New(opts Options, w io.Writer) (*slog.Logger, error) {
	level := promslog.NewLevel()
	if err := level.Set(orDefault(opts.Level, "info")); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	format := promslog.NewFormat()
	if err := format.Set(orDefault(opts.Format, "logfmt")); err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}

	return promslog.New(&promslog.Config{
		Level:  level,
		Format: format,
		Style:  promslog.GoKitStyle,
		Writer: w,
	}), nil
}

// Setup builds the logger described by opts and installs it with
// slog.SetDefault. The returned func closes the log file, if one was opened.
func Setup(opts Options) (func() error, error) {
	w := opts.Writer
	closer := func() error { return nil }

	if w == nil {
		if opts.File == "" {
			w = io.Discard
		} else {
			if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
				return closer, fmt.Errorf("create log directory: %w", err)
			}
			f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				return closer, fmt.Errorf("open log file: %w", err)
			}
			w = f
			closer = f.Close
		}
	}

	logger, err := New(opts, w)
	if err != nil {
		_ = closer()
		return func() error { return nil }, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
