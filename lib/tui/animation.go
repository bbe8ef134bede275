// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/parknow/parkwatch/lib/slot"
)

// HeatDecayDuration is how long a slot glows after its status flips.
// Heat starts at 1.0 and decays linearly to 0.0 over this duration.
const HeatDecayDuration = 3 * time.Second

// HeatTickInterval is the re-render interval while any slot is hot.
const HeatTickInterval = 100 * time.Millisecond

// HeatKind says which way a slot flipped.
type HeatKind int

const (
	// HeatFreed: the slot became available.
	HeatFreed HeatKind = iota
	// HeatTaken: the slot became occupied.
	HeatTaken
)

type heatEntry struct {
	ignition time.Time
	kind     HeatKind
}

// HeatTracker maps slot IDs to ignition times for change highlighting.
// It is not safe for concurrent use; a bubbletea model owns one.
type HeatTracker struct {
	entries map[string]heatEntry
}

// NewHeatTracker creates an empty tracker.
func NewHeatTracker() *HeatTracker {
	return &HeatTracker{entries: make(map[string]heatEntry)}
}

// Ignite marks a slot as just changed, restarting its decay.
func (tracker *HeatTracker) Ignite(slotID string, kind HeatKind, now time.Time) {
	tracker.entries[slotID] = heatEntry{ignition: now, kind: kind}
}

// IgniteChanges compares two snapshots and ignites every slot present
// in both whose status moved to available or occupied. Slots that are
// new in next, or that went unknown, do not glow. Returns the number
// of slots ignited.
func (tracker *HeatTracker) IgniteChanges(previous, next slot.Snapshot, now time.Time) int {
	ignited := 0
	for index := 0; index < next.Len(); index++ {
		current := next.At(index)
		before, ok := previous.Lookup(current.ID)
		if !ok || before.Status == current.Status {
			continue
		}
		switch current.Status {
		case slot.StatusAvailable:
			tracker.Ignite(current.ID, HeatFreed, now)
		case slot.StatusOccupied:
			tracker.Ignite(current.ID, HeatTaken, now)
		default:
			continue
		}
		ignited++
	}
	return ignited
}

// Heat returns a slot's intensity: 1.0 at ignition, 0.0 once
// HeatDecayDuration has passed or if it never changed.
func (tracker *HeatTracker) Heat(slotID string, now time.Time) float64 {
	entry, exists := tracker.entries[slotID]
	if !exists {
		return 0.0
	}
	elapsed := now.Sub(entry.ignition)
	if elapsed >= HeatDecayDuration {
		return 0.0
	}
	return 1.0 - float64(elapsed)/float64(HeatDecayDuration)
}

// Kind returns how the slot last changed. Only meaningful while Heat
// is above zero.
func (tracker *HeatTracker) Kind(slotID string) HeatKind {
	return tracker.entries[slotID].kind
}

// HasHot reports whether any slot still glows, pruning cold entries.
// The view keeps its tick running while this is true.
func (tracker *HeatTracker) HasHot(now time.Time) bool {
	hot := false
	for slotID, entry := range tracker.entries {
		if now.Sub(entry.ignition) < HeatDecayDuration {
			hot = true
			continue
		}
		delete(tracker.entries, slotID)
	}
	return hot
}

// Reset forgets every entry.
func (tracker *HeatTracker) Reset() {
	clear(tracker.entries)
}
