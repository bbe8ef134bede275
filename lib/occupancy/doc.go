// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package occupancy is the live synchronization client: it binds one
// subscription scope to a resilient websocket subscription and keeps
// the latest slot snapshot for a renderer.
//
// A [Client] owns exactly one channel.Connection at a time and one
// reconnect.Policy. A single event-loop goroutine per client reacts to
// everything that can change its state: connection events, retry timer
// fires, restart requests, and teardown. Reactions never overlap, and
// [Consumer] callbacks run on that goroutine in the order the reactions
// happen.
//
// Each connection and each scheduled retry is tagged with a generation
// number. Replacing the connection or tearing the client down bumps the
// generation, so a late timer fire or an event from a connection that
// is already gone is recognized as stale and discarded.
//
// Renderers that run on their own goroutine read the published state
// through [Client.Status], [Client.Snapshot], [Client.ScopeError], and
// [Client.Aggregate]. These return copies and never block on the loop.
//
// A scope error ("location not found") is data, not a failure: it is
// published and delivered to the consumer, the status is left as is,
// and no retry is scheduled. If the server then closes the session,
// that close is an ordinary transport failure and goes through the
// retry policy like any other.
package occupancy
