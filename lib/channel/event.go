// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"fmt"

	"github.com/parknow/parkwatch/lib/slot"
)

// EventKind tags the variant held by an Event.
type EventKind uint8

const (
	// EventOpened: the websocket handshake completed.
	EventOpened EventKind = iota + 1

	// EventSnapshot: a frame carried a full replacement snapshot.
	EventSnapshot

	// EventScopeError: the server reported the scope as invalid. The
	// connection stays open; this is data, not a failure.
	EventScopeError

	// EventTransportError: dialing or reading failed. Terminal.
	EventTransportError

	// EventClosed: the peer closed the session, cleanly or not.
	// Terminal.
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventSnapshot:
		return "snapshot"
	case EventScopeError:
		return "scope_error"
	case EventTransportError:
		return "transport_error"
	case EventClosed:
		return "closed"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is one lifecycle or data notification from a Connection.
type Event struct {
	Kind EventKind

	// Snapshot is set for EventSnapshot.
	Snapshot slot.Snapshot

	// ScopeError is set for EventScopeError.
	ScopeError string

	// Err is set for EventTransportError.
	Err error

	// Code and Reason are the websocket close code and text for
	// EventClosed. An abrupt disconnect without a close frame reports
	// 1006 (abnormal closure).
	Code   int
	Reason string
}

// Terminal reports whether e ends its connection.
func (e Event) Terminal() bool {
	return e.Kind == EventTransportError || e.Kind == EventClosed
}

func (e Event) String() string {
	switch e.Kind {
	case EventSnapshot:
		return fmt.Sprintf("snapshot(%d slots)", e.Snapshot.Len())
	case EventScopeError:
		return fmt.Sprintf("scope_error(%q)", e.ScopeError)
	case EventTransportError:
		return fmt.Sprintf("transport_error(%v)", e.Err)
	case EventClosed:
		return fmt.Sprintf("closed(%d %q)", e.Code, e.Reason)
	default:
		return e.Kind.String()
	}
}
