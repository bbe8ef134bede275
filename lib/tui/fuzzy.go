// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one text against a pattern.
// A zero Score means no match.
type FuzzyResult struct {
	Score int

	// Positions are the rune indexes in the text that matched, in
	// ascending order. Used to highlight matches.
	Positions []int
}

var fuzzyInit sync.Once

// NewSlab returns scratch space for FuzzyMatch. Reusing one slab
// across a filter pass avoids reallocating the scoring matrix per
// candidate. A slab must not be shared between goroutines.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch scores text against pattern with fzf's V2 algorithm,
// case-insensitively. An empty pattern matches nothing and scores 0;
// callers treat an empty filter as "show everything" themselves.
// slab may be nil.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}

	var matched []int
	if positions != nil {
		matched = slices.Clone(*positions)
		slices.Sort(matched)
	}
	return FuzzyResult{Score: result.Score, Positions: matched}
}

// FuzzyRank is one candidate that matched in FuzzyFilter.
type FuzzyRank struct {
	Index  int
	Result FuzzyResult
}

// FuzzyFilter matches query against every candidate and returns the
// matches best first. Ties keep candidate order. A blank query returns
// every candidate with a zero result, in order.
func FuzzyFilter(query string, candidates []string) []FuzzyRank {
	query = strings.TrimSpace(query)
	if query == "" {
		all := make([]FuzzyRank, len(candidates))
		for index := range candidates {
			all[index] = FuzzyRank{Index: index}
		}
		return all
	}

	pattern := []rune(query)
	slab := NewSlab()
	var matches []FuzzyRank
	for index, candidate := range candidates {
		result := FuzzyMatch(candidate, pattern, slab)
		if result.Score > 0 {
			matches = append(matches, FuzzyRank{Index: index, Result: result})
		}
	}
	slices.SortStableFunc(matches, func(a, b FuzzyRank) int {
		return b.Result.Score - a.Result.Score
	})
	return matches
}
