// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package parkui

import (
	"sync/atomic"

	"github.com/parknow/parkwatch/lib/occupancy"
	"github.com/parknow/parkwatch/lib/scope"
	"github.com/parknow/parkwatch/lib/slot"
)

// Source is the read side of a subscription. *occupancy.Client
// implements it.
type Source interface {
	Scope() scope.Scope
	Status() occupancy.State
	Snapshot() slot.Snapshot
	ScopeError() (occupancy.ScopeError, bool)
	Restart() error
}

// Notifier is an occupancy.Consumer that turns callbacks into a
// coalescing wake-up signal. Callbacks never block: when a signal is
// already pending, another one is dropped, and the reader picks up the
// latest state from the Source either way.
type Notifier struct {
	signal    chan struct{}
	snapshots atomic.Uint64
}

var _ occupancy.Consumer = (*Notifier)(nil)

// NewNotifier creates a Notifier with no pending signal.
func NewNotifier() *Notifier {
	return &Notifier{signal: make(chan struct{}, 1)}
}

// C returns the wake-up channel.
func (notifier *Notifier) C() <-chan struct{} {
	return notifier.signal
}

// Snapshots returns how many snapshot frames have been delivered. A
// front end uses it to tell "no frame yet" from "an empty frame".
func (notifier *Notifier) Snapshots() uint64 {
	return notifier.snapshots.Load()
}

func (notifier *Notifier) OnStatusChange(occupancy.State) {
	notifier.poke()
}

func (notifier *Notifier) OnSnapshotChange(slot.Snapshot) {
	notifier.snapshots.Add(1)
	notifier.poke()
}

func (notifier *Notifier) OnScopeError(occupancy.ScopeError) {
	notifier.poke()
}

func (notifier *Notifier) poke() {
	select {
	case notifier.signal <- struct{}{}:
	default:
	}
}
