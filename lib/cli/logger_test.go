// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestCommandHandler_Terminal(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(newCommandHandler(&buffer, true, slog.LevelInfo))
	logger.Info("listing locations", "count", 4)

	if !strings.Contains(buffer.String(), "msg=\"listing locations\" count=4") {
		t.Errorf("expected text record, got %q", buffer.String())
	}
}

func TestCommandHandler_Piped(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(newCommandHandler(&buffer, false, slog.LevelInfo))
	logger.Warn("retrying", "attempt", 2)

	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", buffer.String(), err)
	}
	if record["msg"] != "retrying" || record["attempt"] != float64(2) {
		t.Errorf("unexpected record %v", record)
	}
}

func TestCommandHandler_Level(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(newCommandHandler(&buffer, true, slog.LevelWarn))
	logger.Info("hidden")

	if buffer.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got %q", buffer.String())
	}
}
