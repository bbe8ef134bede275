// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"
)

// fanoutHandler sends each record to every handler that accepts its
// level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			// Each handler gets its own copy; one may retain the record.
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}

// openFileLogHandler opens path for appending and returns a JSON
// handler writing to it, plus a function that closes the file.
func openFileLogHandler(path string, level slog.Leveler) (slog.Handler, func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return handler, func() { file.Close() }, nil
}

// withFileLog adds a file handler for path to handler when path is
// set. The returned closer is never nil.
func withFileLog(handler slog.Handler, path string, level slog.Leveler) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(handler), func() {}, nil
	}
	fileHandler, closer, err := openFileLogHandler(path, level)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(fanoutHandler{handler, fileHandler}), closer, nil
}
