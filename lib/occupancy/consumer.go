// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package occupancy

import "github.com/parknow/parkwatch/lib/slot"

// Consumer receives a client's changes. Every method runs on the
// client's event-loop goroutine and must return promptly; a renderer
// on another goroutine should signal itself and read the getters.
type Consumer interface {
	// OnStatusChange fires when the status or retry counter changes.
	OnStatusChange(State)

	// OnSnapshotChange fires for every snapshot frame, including one
	// identical to the previous snapshot.
	OnSnapshotChange(slot.Snapshot)

	// OnScopeError fires once per scope-error frame.
	OnScopeError(ScopeError)
}

// ConsumerFuncs adapts plain functions to Consumer. Nil fields are
// skipped.
type ConsumerFuncs struct {
	Status     func(State)
	Snapshot   func(slot.Snapshot)
	ScopeError func(ScopeError)
}

func (f ConsumerFuncs) OnStatusChange(state State) {
	if f.Status != nil {
		f.Status(state)
	}
}

func (f ConsumerFuncs) OnSnapshotChange(snapshot slot.Snapshot) {
	if f.Snapshot != nil {
		f.Snapshot(snapshot)
	}
}

func (f ConsumerFuncs) OnScopeError(scopeError ScopeError) {
	if f.ScopeError != nil {
		f.ScopeError(scopeError)
	}
}
