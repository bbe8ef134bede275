// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package facility

import (
	"slices"
	"strings"

	"github.com/parknow/parkwatch/lib/tui"
)

// Entry is one row of the location directory: catalog detail merged
// with the backend's live counts.
type Entry struct {
	Facility Facility

	// Cataloged is false for locations the backend lists but the
	// catalog does not describe.
	Cataloged bool

	// Summary holds the backend's counts when Listed is true.
	Summary Summary
	Listed  bool
}

// DisplayName prefers the catalog name, then the backend's, then the
// ID.
func (e Entry) DisplayName() string {
	switch {
	case e.Cataloged:
		return e.Facility.Name
	case e.Listed && e.Summary.Name != "":
		return e.Summary.Name
	default:
		return e.Facility.ID
	}
}

// TotalSlots prefers the backend's total when listed.
func (e Entry) TotalSlots() int {
	if e.Listed {
		return e.Summary.TotalSlots
	}
	return e.Facility.TotalSlots
}

// Directory merges the catalog with a /locations listing. Catalog
// facilities come first in catalog order, followed by listed-only
// locations sorted by ID. locations may be nil when the backend could
// not be reached.
func Directory(catalog *Catalog, locations map[string]Summary) []Entry {
	entries := make([]Entry, 0, catalog.Len()+len(locations))
	for _, entry := range catalog.facilities {
		summary, listed := locations[entry.ID]
		entries = append(entries, Entry{
			Facility:  entry,
			Cataloged: true,
			Summary:   summary,
			Listed:    listed,
		})
	}

	var extra []string
	for id := range locations {
		if _, ok := catalog.index[id]; !ok {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	for _, id := range extra {
		summary := locations[id]
		entries = append(entries, Entry{
			Facility: Facility{ID: id, Name: summary.Name, TotalSlots: summary.TotalSlots},
			Summary:  summary,
			Listed:   true,
		})
	}
	return entries
}

// FilterEntries fuzzy-matches query against each entry's name, city,
// and ID, best first. A blank query returns entries unchanged.
func FilterEntries(entries []Entry, query string) []Entry {
	if strings.TrimSpace(query) == "" {
		return entries
	}
	candidates := make([]string, len(entries))
	for position, entry := range entries {
		candidates[position] = entry.DisplayName() + " " + entry.Facility.City + " " + entry.Facility.ID
	}
	ranks := tui.FuzzyFilter(query, candidates)
	filtered := make([]Entry, len(ranks))
	for position, rank := range ranks {
		filtered[position] = entries[rank.Index]
	}
	return filtered
}
