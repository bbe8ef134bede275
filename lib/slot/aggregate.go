// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package slot

import "math"

// Aggregate is the derived occupancy summary of a snapshot. It is
// always recomputed from a snapshot, never stored alongside one.
type Aggregate struct {
	Available int
	Occupied  int
	Unknown   int

	// OccupancyRate is Occupied/Total in [0, 1]. Zero when the
	// snapshot is empty.
	OccupancyRate float64
}

// Summarize partitions snapshot by status. Safe on the empty
// snapshot, which yields the zero Aggregate.
func Summarize(snapshot Snapshot) Aggregate {
	var aggregate Aggregate
	for _, slot := range snapshot.slots {
		switch slot.Status {
		case StatusAvailable:
			aggregate.Available++
		case StatusOccupied:
			aggregate.Occupied++
		default:
			aggregate.Unknown++
		}
	}
	if total := aggregate.Total(); total > 0 {
		aggregate.OccupancyRate = float64(aggregate.Occupied) / float64(total)
	}
	return aggregate
}

// Total returns the number of slots summarized.
func (a Aggregate) Total() int {
	return a.Available + a.Occupied + a.Unknown
}

// Percent returns OccupancyRate as a whole percentage rounded half
// away from zero, for labels.
func (a Aggregate) Percent() int {
	return int(math.Round(a.OccupancyRate * 100))
}
