// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package parkui renders a live occupancy subscription in the terminal.
//
// Two front ends share one data path. [Model] is a bubbletea program:
// a header with facility metadata and a connection indicator, the
// scope error banner, available/occupied/unknown counters with the
// occupancy percentage, and a scrollable grid of colored slot cells.
// Slots that just flipped glow for a few seconds. Pressing / opens an
// fzf-style filter over slot IDs, r restarts an exhausted subscription,
// ? shows the key reference, and q quits. [Plain] writes one line per
// change for pipes and dumb terminals, colored through termenv when
// the output supports it.
//
// Both read state the same way. The occupancy client calls a
// [Notifier] on its own goroutine; the notifier only signals a one-slot
// channel, and the front end then reads the client's getters through
// the [Source] interface. Bursts of changes coalesce into one redraw.
//
// [TUILogHandler] routes slog records at Warn and above into the
// dashboard's status bar, so retry warnings appear where the user is
// looking instead of corrupting the alternate screen.
package parkui
