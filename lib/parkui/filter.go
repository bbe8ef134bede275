// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package parkui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/parknow/parkwatch/lib/slot"
	"github.com/parknow/parkwatch/lib/tui"
)

// FilterModel holds the slot filter input. Matching is fzf-style fuzzy
// matching against slot IDs; the grid keeps server order and only
// hides slots that do not match.
type FilterModel struct {
	// Input is the current filter query text.
	Input string

	// Active is true while the filter input has keyboard focus.
	Active bool
}

// HandleRune appends a character to the query.
func (filter *FilterModel) HandleRune(r rune) {
	filter.Input += string(r)
}

// HandleBackspace removes the last character. Returns false when the
// query was already empty.
func (filter *FilterModel) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear empties the query without leaving filter mode.
func (filter *FilterModel) Clear() {
	filter.Input = ""
}

// Apply returns the indices of matching slots in server order, and the
// matched rune positions per index for highlighting. A blank query
// matches every slot and yields no highlights.
func (filter *FilterModel) Apply(snapshot slot.Snapshot) ([]int, map[int][]int) {
	ids := make([]string, snapshot.Len())
	for index := range ids {
		ids[index] = snapshot.At(index).ID
	}

	ranks := tui.FuzzyFilter(filter.Input, ids)
	indices := make([]int, 0, len(ranks))
	var highlights map[int][]int
	for _, rank := range ranks {
		indices = append(indices, rank.Index)
		if len(rank.Result.Positions) > 0 {
			if highlights == nil {
				highlights = make(map[int][]int)
			}
			highlights[rank.Index] = rank.Result.Positions
		}
	}
	slices.Sort(indices)
	return indices, highlights
}

// View renders the filter bar, or "" when the filter is neither active
// nor holding a query.
func (filter *FilterModel) View(theme tui.Theme, width, matched, total int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}

	promptStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(theme.FaintText)

	cursor := ""
	if filter.Active {
		cursor = "▏"
	}
	line := promptStyle.Render("/") + " " + filter.Input + cursor +
		"  " + countStyle.Render(formatCount(matched, total))
	return ansi.Truncate(line, width, "…")
}

func formatCount(matched, total int) string {
	return fmt.Sprintf("(%d/%d)", matched, total)
}
