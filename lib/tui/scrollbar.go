// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar draws a one-column scrollbar of the given height for
// a list of totalRows of which visibleRows are shown from offset.
// When everything fits the thumb fills the track.
func RenderScrollbar(theme Theme, height, totalRows, visibleRows, offset int) string {
	if height <= 0 {
		return ""
	}

	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(theme.FaintText)

	start, size := ScrollThumb(height, totalRows, visibleRows, offset)
	lines := make([]string, height)
	for index := range lines {
		if index >= start && index < start+size {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}

// ScrollThumb returns the thumb's first row and length within a track
// of height rows. The thumb is at least one row long.
func ScrollThumb(height, totalRows, visibleRows, offset int) (start, size int) {
	if height <= 0 {
		return 0, 0
	}
	if totalRows <= visibleRows || totalRows <= 0 {
		return 0, height
	}

	size = max(height*visibleRows/totalRows, 1)
	scrollable := totalRows - visibleRows
	track := height - size
	if scrollable > 0 && track > 0 {
		start = offset * track / scrollable
	}
	if start+size > height {
		start = height - size
	}
	return max(start, 0), size
}
