// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package slot

import (
	"errors"
	"testing"
)

func TestNewSnapshotCopiesInput(t *testing.T) {
	input := []Slot{{ID: "A1", Status: StatusAvailable}}
	snapshot, err := NewSnapshot(input)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	input[0].Status = StatusOccupied

	if got := snapshot.At(0).Status; got != StatusAvailable {
		t.Fatalf("snapshot observed caller mutation: status = %v", got)
	}

	slots := snapshot.Slots()
	slots[0].Status = StatusOccupied
	if got := snapshot.At(0).Status; got != StatusAvailable {
		t.Fatalf("snapshot observed mutation through Slots(): status = %v", got)
	}
}

func TestNewSnapshotRejectsEmptyID(t *testing.T) {
	_, err := NewSnapshot([]Slot{{ID: "A1"}, {ID: ""}})
	if !errors.Is(err, ErrEmptyID) {
		t.Fatalf("err = %v, want ErrEmptyID", err)
	}
}

func TestNewSnapshotRejectsDuplicateID(t *testing.T) {
	_, err := NewSnapshot([]Slot{{ID: "A1"}, {ID: "A2"}, {ID: "A1"}})
	var duplicate *DuplicateIDError
	if !errors.As(err, &duplicate) {
		t.Fatalf("err = %v, want DuplicateIDError", err)
	}
	if duplicate.ID != "A1" {
		t.Errorf("duplicate ID = %q, want A1", duplicate.ID)
	}
}

func TestEmptySnapshot(t *testing.T) {
	var snapshot Snapshot
	if !snapshot.IsEmpty() || snapshot.Len() != 0 {
		t.Fatalf("zero Snapshot not empty: len=%d", snapshot.Len())
	}
	if slots := snapshot.Slots(); slots == nil || len(slots) != 0 {
		t.Fatalf("Slots() = %#v, want empty non-nil slice", slots)
	}
	if _, ok := snapshot.Lookup("A1"); ok {
		t.Fatal("Lookup on empty snapshot succeeded")
	}
}

func TestReplaceLeavesNoResidualSlots(t *testing.T) {
	first := MustSnapshot(
		Slot{ID: "A1", Status: StatusAvailable},
		Slot{ID: "A2", Status: StatusOccupied},
		Slot{ID: "A3", Status: StatusAvailable},
	)
	second := MustSnapshot(Slot{ID: "A1", Status: StatusOccupied})

	current := first
	if current.Len() != 3 {
		t.Fatalf("first snapshot len = %d, want 3", current.Len())
	}
	current = second

	for _, stale := range []string{"A2", "A3"} {
		if _, ok := current.Lookup(stale); ok {
			t.Errorf("slot %s survived replacement", stale)
		}
	}
	if got, _ := current.Lookup("A1"); got.Status != StatusOccupied {
		t.Errorf("A1 status = %v, want occupied", got.Status)
	}
	if _, ok := first.Lookup("A2"); !ok {
		t.Error("replacing the current snapshot mutated the old one")
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := MustSnapshot(Slot{ID: "A1", Status: StatusAvailable}, Slot{ID: "A2"})
	b := MustSnapshot(Slot{ID: "A1", Status: StatusAvailable}, Slot{ID: "A2"})
	c := MustSnapshot(Slot{ID: "A2"}, Slot{ID: "A1", Status: StatusAvailable})
	if !a.Equal(b) {
		t.Error("identical snapshots not equal")
	}
	if a.Equal(c) {
		t.Error("snapshots differing in order compare equal")
	}
	if !(Snapshot{}).Equal(MustSnapshot()) {
		t.Error("empty snapshots not equal")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		text   string
		want   Status
		wantOK bool
	}{
		{"available", StatusAvailable, true},
		{"occupied", StatusOccupied, true},
		{"unknown", StatusUnknown, true},
		{"reserved", StatusUnknown, false},
		{"", StatusUnknown, false},
		{"AVAILABLE", StatusUnknown, false},
	}
	for _, test := range tests {
		got, ok := ParseStatus(test.text)
		if got != test.want || ok != test.wantOK {
			t.Errorf("ParseStatus(%q) = (%v, %v), want (%v, %v)",
				test.text, got, ok, test.want, test.wantOK)
		}
	}
}

func TestStatusUnmarshalTextRejectsUnknownValue(t *testing.T) {
	var status Status
	if err := status.UnmarshalText([]byte("reserved")); err == nil {
		t.Fatal("UnmarshalText accepted an unrecognized status")
	}
	if err := status.UnmarshalText([]byte("occupied")); err != nil || status != StatusOccupied {
		t.Fatalf("UnmarshalText(occupied) = %v, status %v", err, status)
	}
}
