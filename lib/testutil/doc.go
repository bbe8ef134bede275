// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout safety valve so individual tests do not call
// time.After themselves. These are the only real wall-clock timeouts in
// the test suite; everything else that depends on time runs against a
// fake clock from lib/clock.
//
// [RequireNoReceive] asserts the opposite: that nothing arrives within a
// short window. It is for checking that a stopped component stays
// quiet, and should be used sparingly since it always waits out the
// full window.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
