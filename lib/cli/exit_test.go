// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"exit error", &ExitError{Code: 7}, 7},
		{"wrapped exit error", fmt.Errorf("outer: %w", &ExitError{Code: 5}), 5},
		{"validation", Validation("bad flag"), ExitValidation},
		{"wrapped not found", fmt.Errorf("slots: %w", NotFound("no such location")), ExitNotFound},
		{"transient", Transient("dial failed"), ExitTransient},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExitCode(test.err); got != test.want {
				t.Errorf("ExitCode(%v) = %d, want %d", test.err, got, test.want)
			}
		})
	}
}

func TestSilent(t *testing.T) {
	if !Silent(&ExitError{Code: 1}) {
		t.Error("ExitError should be silent")
	}
	if !Silent(fmt.Errorf("wrapped: %w", &ExitError{Code: 1})) {
		t.Error("wrapped ExitError should be silent")
	}
	if Silent(Validation("bad")) {
		t.Error("ToolError should not be silent")
	}
	if Silent(nil) {
		t.Error("nil should not be silent")
	}
}
