// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel owns a single websocket session bound to one
// subscription scope.
//
// [Open] builds the scope's endpoint synchronously, failing at once if
// no address can be constructed, then dials and reads in a background
// goroutine. Everything that happens afterwards arrives on
// [Connection.Events] in transport order: an opened event, one event
// per decoded frame (a replacement snapshot or a scope error), and
// finally exactly one terminal event, a transport error or a close.
// The channel is closed after the terminal event.
//
// A Connection never reconnects. A terminal event ends that instance
// for good; retrying is the job of the reconnect package and the
// occupancy client that owns both.
//
// Frames that cannot be decoded are logged and dropped. They neither
// touch the snapshot nor end the connection, since one bad frame must
// not interrupt an otherwise healthy stream.
package channel
