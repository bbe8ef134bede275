// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the terminal building blocks shared by the
// parkwatch dashboard and directory views: a 256-color [Theme], fzf
// based fuzzy matching, a [HeatTracker] that makes recently changed
// slots glow and fade, overlay splicing for modal panels, and a
// scrollbar for grids taller than the screen.
//
// Nothing here knows about connections or retries. Views own their
// data and layout and call into this package for rendering.
package tui
