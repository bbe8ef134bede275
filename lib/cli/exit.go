// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// exitCoder is implemented by [ExitError] and [ToolError].
type exitCoder interface {
	ExitCode() int
}

// ExitCode returns the process exit code for err: 0 for nil, the code
// of the first error in the chain that carries one, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitInternal
}

// Silent reports whether err is an [ExitError], whose message must not
// be printed.
func Silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
