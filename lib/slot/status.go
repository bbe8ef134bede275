// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package slot

import "fmt"

// Status is the occupancy of a single slot. The zero value is
// StatusUnknown. Statuses carry no transition rules: any status may
// follow any other between snapshots.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusAvailable
	StatusOccupied
)

// String returns the wire form: "available", "occupied", or "unknown".
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// ParseStatus maps a wire status to a Status. Unrecognized strings map
// to StatusUnknown with ok=false so callers can log them; detectors
// that report states this client does not model still render as
// unknown rather than dropping the whole frame.
func ParseStatus(text string) (status Status, ok bool) {
	switch text {
	case "available":
		return StatusAvailable, true
	case "occupied":
		return StatusOccupied, true
	case "unknown":
		return StatusUnknown, true
	default:
		return StatusUnknown, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike
// ParseStatus it rejects unrecognized values.
func (s *Status) UnmarshalText(text []byte) error {
	status, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown slot status %q", text)
	}
	*s = status
	return nil
}
