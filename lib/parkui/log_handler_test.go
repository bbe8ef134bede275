// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package parkui

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []tea.Msg
}

func (sender *recordingSender) Send(message tea.Msg) {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.messages = append(sender.messages, message)
}

func (sender *recordingSender) records() []logRecordMsg {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	var records []logRecordMsg
	for _, message := range sender.messages {
		if record, ok := message.(logRecordMsg); ok {
			records = append(records, record)
		}
	}
	return records
}

func TestTUILogHandler_DropsBeforeProgram(t *testing.T) {
	handler := NewTUILogHandler(slog.LevelWarn)
	logger := slog.New(handler)
	// Must not panic without a program.
	logger.Warn("connection lost")
}

func TestTUILogHandler_Level(t *testing.T) {
	handler := NewTUILogHandler(slog.LevelWarn)
	sender := &recordingSender{}
	handler.setSender(sender)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}

	logger := slog.New(handler)
	logger.Info("connection opened")
	logger.Warn("connection lost", "attempt", 2)
	logger.Error("retries exhausted")

	records := sender.records()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Summary != "connection lost (attempt=2)" || records[0].Level != slog.LevelWarn {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Summary != "retries exhausted" || records[1].Level != slog.LevelError {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestTUILogHandler_DerivedHandlersShareProgram(t *testing.T) {
	handler := NewTUILogHandler(slog.LevelWarn)
	logger := slog.New(handler).With("scope", "location:coex").WithGroup("frame")

	// SetProgram after deriving still reaches the derived handler.
	sender := &recordingSender{}
	handler.setSender(sender)

	logger.Warn("dropping undecodable frame", "bytes", 12)

	records := sender.records()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	want := "dropping undecodable frame (scope=location:coex, frame.bytes=12)"
	if records[0].Summary != want {
		t.Errorf("Summary = %q, want %q", records[0].Summary, want)
	}
}
