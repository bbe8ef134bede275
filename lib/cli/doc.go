// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the command-line plumbing shared by parkwatch
// entry points: categorized errors, exit codes, flag suggestions, and
// the command logger.
//
// Commands return a [ToolError] built with one of the category
// constructors ([Validation], [NotFound], [Transient], [Internal]).
// The category decides the process exit code through [ExitCode]; an
// optional hint is printed after the message. [ExitError] carries a
// bare exit code for outcomes the command has already reported.
//
// When pflag rejects an unknown flag, [SuggestFlag] computes the
// Levenshtein edit distance against the defined flags and proposes the
// closest one (threshold: distance <= 3).
package cli
