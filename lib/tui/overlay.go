// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay writes overlay lines over a rendered view starting at
// (anchorX, anchorY). The view on either side of the overlay keeps its
// ANSI styling; lines outside the view are skipped.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}
		line := viewLines[row]
		lineWidth := ansi.StringWidth(line)

		var spliced strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(line, anchorX, "")
			spliced.WriteString(prefix)
			// Short lines are padded so the overlay lands at anchorX.
			if gap := anchorX - ansi.StringWidth(prefix); gap > 0 {
				spliced.WriteString(strings.Repeat(" ", gap))
			}
		}
		spliced.WriteString("\x1b[0m")
		spliced.WriteString(overlayLine)
		spliced.WriteString("\x1b[0m")
		if suffixStart := anchorX + overlayWidth; suffixStart < lineWidth {
			spliced.WriteString(ansi.TruncateLeft(line, suffixStart, ""))
		}
		viewLines[row] = spliced.String()
	}

	return strings.Join(viewLines, "\n")
}

// CenterOverlay renders lines as a padded panel and splices it into
// the middle of a width x height view.
func CenterOverlay(view string, lines []string, width, height int, theme Theme) string {
	innerWidth := 0
	for _, line := range lines {
		innerWidth = max(innerWidth, ansi.StringWidth(line))
	}
	innerWidth = min(innerWidth, max(width-4, 1))

	background := lipgloss.NewStyle().
		Foreground(theme.OverlayForeground).
		Background(theme.OverlayBackground)

	panel := make([]string, 0, len(lines)+2)
	blank := background.Render(strings.Repeat(" ", innerWidth+2))
	panel = append(panel, blank)
	for _, line := range lines {
		line = ansi.Truncate(line, innerWidth, "…")
		panel = append(panel, PadOverlayLine(background.Render(line), innerWidth+2, background))
	}
	panel = append(panel, blank)

	anchorX := max((width-(innerWidth+2))/2, 0)
	anchorY := max((height-len(panel))/2, 0)
	return SpliceOverlay(view, panel, anchorX, anchorY)
}

// PadOverlayLine pads styled content to the panel width with
// background-colored spaces: one on the left, the rest on the right.
func PadOverlayLine(styledContent string, totalWidth int, backgroundStyle lipgloss.Style) string {
	rightPad := max(totalWidth-1-ansi.StringWidth(styledContent), 0)
	return backgroundStyle.Render(" ") +
		styledContent +
		backgroundStyle.Render(strings.Repeat(" ", rightPad))
}
