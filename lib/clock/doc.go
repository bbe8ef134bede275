// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that retry
// timers can be driven deterministically in tests.
//
// Production code holds a Clock and calls AfterFunc or After instead of
// the time package. Real() is the standard library; Fake() advances only
// when Advance is called:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	policy := reconnect.New(reconnect.Config{RetryDelay: 3 * time.Second}, fake)
//	// ... trigger a failure ...
//	fake.WaitForTimers(1)       // the retry timer is registered
//	fake.Advance(3 * time.Second) // fire it
//
// AfterFunc callbacks on a FakeClock run synchronously inside Advance, in
// deadline order.
package clock
