// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package slot

import (
	"errors"
	"fmt"
)

// Slot is one parking space. ID is unique within a scope and stable
// across updates. Slot is a value: a status change produces a new Slot
// in a new Snapshot.
type Slot struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// ErrEmptyID is returned by NewSnapshot for a slot without an ID.
var ErrEmptyID = errors.New("slot has empty id")

// DuplicateIDError is returned by NewSnapshot when two slots share an
// ID.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate slot id %q", e.ID)
}

// Snapshot is the complete state of every slot in a scope at one
// instant, in server order. The zero value is the empty snapshot.
// Snapshots are immutable: constructors and accessors copy.
type Snapshot struct {
	slots []Slot
	index map[string]int
}

// NewSnapshot validates slots and returns a snapshot holding a copy of
// them. Every slot needs a non-empty ID and IDs must be unique.
func NewSnapshot(slots []Slot) (Snapshot, error) {
	if len(slots) == 0 {
		return Snapshot{}, nil
	}
	owned := make([]Slot, len(slots))
	index := make(map[string]int, len(slots))
	for position, slot := range slots {
		if slot.ID == "" {
			return Snapshot{}, fmt.Errorf("slot %d: %w", position, ErrEmptyID)
		}
		if _, exists := index[slot.ID]; exists {
			return Snapshot{}, &DuplicateIDError{ID: slot.ID}
		}
		index[slot.ID] = position
		owned[position] = slot
	}
	return Snapshot{slots: owned, index: index}, nil
}

// MustSnapshot is NewSnapshot for literals in tests and fixtures. It
// panics on invalid input.
func MustSnapshot(slots ...Slot) Snapshot {
	snapshot, err := NewSnapshot(slots)
	if err != nil {
		panic("slot: " + err.Error())
	}
	return snapshot
}

// Len returns the number of slots.
func (s Snapshot) Len() int { return len(s.slots) }

// IsEmpty reports whether the snapshot holds no slots.
func (s Snapshot) IsEmpty() bool { return len(s.slots) == 0 }

// At returns the slot at position i in server order.
func (s Snapshot) At(i int) Slot { return s.slots[i] }

// Slots returns a copy of the slots in server order. Never nil.
func (s Snapshot) Slots() []Slot {
	result := make([]Slot, len(s.slots))
	copy(result, s.slots)
	return result
}

// Lookup returns the slot with the given ID.
func (s Snapshot) Lookup(id string) (Slot, bool) {
	position, ok := s.index[id]
	if !ok {
		return Slot{}, false
	}
	return s.slots[position], true
}

// Equal reports whether two snapshots hold the same slots in the same
// order.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.slots) != len(other.slots) {
		return false
	}
	for i := range s.slots {
		if s.slots[i] != other.slots[i] {
			return false
		}
	}
	return true
}
