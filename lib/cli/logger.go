// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for non-interactive
// modes (--plain, --list). When stderr is a terminal it uses
// slog.TextHandler; when stderr is piped or redirected it uses
// slog.JSONHandler so scripts can parse the records.
func NewCommandLogger(level slog.Leveler) *slog.Logger {
	return slog.New(newCommandHandler(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level))
}

func newCommandHandler(w io.Writer, terminal bool, level slog.Leveler) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}
