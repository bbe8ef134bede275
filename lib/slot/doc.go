// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package slot holds the in-memory model of parking slot occupancy: the
// [Slot] value, the immutable [Snapshot] that a live subscription
// replaces wholesale on every update, and the [Aggregate] derived from
// it.
//
// Snapshots never merge. A new snapshot says nothing about the slot
// count or identity set of the previous one, and an empty snapshot is
// a valid state (for example before the first frame arrives) whose
// aggregate is all zeros, including a zero occupancy rate.
package slot
