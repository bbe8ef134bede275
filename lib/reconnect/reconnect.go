// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconnect is the bounded-retry state machine that sits
// between a live connection and its owner.
//
// A [Policy] tracks one of four statuses and a consecutive-failure
// counter:
//
//	Connecting --Opened--> Connected --Failed--> Disconnected
//	     ^                                            |
//	     +------------------Retry---------------------+
//
//	any --Failed past MaxAttempts--> Exhausted
//	any --Restart--> Connecting (counter 0)
//
// Each failure within budget schedules exactly one retry timer through
// the injected clock. The policy does not dial anything itself: the
// timer calls back into the owner, which opens a fresh connection and
// reports Retry. A successful open resets the counter, so only
// consecutive failures count toward the limit.
//
// Stop cancels any pending timer and freezes the policy. It is the
// teardown path and is idempotent.
package reconnect

import (
	"fmt"
	"sync"
	"time"

	"github.com/parknow/parkwatch/lib/clock"
)

// Status is the connection lifecycle state visible to consumers.
type Status uint8

const (
	// StatusConnecting: a dial is in flight.
	StatusConnecting Status = iota

	// StatusConnected: the channel is open and delivering frames.
	StatusConnected

	// StatusDisconnected: the last attempt failed and a retry is
	// scheduled.
	StatusDisconnected

	// StatusExhausted: the retry budget is spent. Terminal until
	// Restart.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Defaults for Config fields left zero.
const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 3 * time.Second
)

// Config bounds the retry behavior.
type Config struct {
	// MaxAttempts is how many consecutive failures are retried. The
	// failure after that exhausts the policy.
	MaxAttempts int

	// RetryDelay is the fixed wait between a failure and its retry.
	RetryDelay time.Duration
}

// DefaultConfig returns five attempts three seconds apart.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, RetryDelay: DefaultRetryDelay}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// State is an inspectable copy of a policy's position.
type State struct {
	Status      Status
	Attempt     int
	MaxAttempts int
}

func (s State) String() string {
	switch s.Status {
	case StatusDisconnected, StatusExhausted:
		return fmt.Sprintf("%s (%d/%d)", s.Status, s.Attempt, s.MaxAttempts)
	default:
		return s.Status.String()
	}
}

// Policy is the reconnection state machine. Methods are safe for
// concurrent use, though a typical owner drives it from one goroutine.
type Policy struct {
	clock  clock.Clock
	config Config

	mu      sync.Mutex
	status  Status
	attempt int
	timer   *clock.Timer
	stopped bool
}

// New returns a policy in StatusConnecting with a zero counter.
func New(config Config, clk clock.Clock) *Policy {
	return &Policy{
		clock:  clk,
		config: config.withDefaults(),
		status: StatusConnecting,
	}
}

// Config returns the effective configuration.
func (p *Policy) Config() Config { return p.config }

// State returns the current status and counter.
func (p *Policy) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Policy) stateLocked() State {
	return State{Status: p.status, Attempt: p.attempt, MaxAttempts: p.config.MaxAttempts}
}

// Begin marks a dial as started. The counter is untouched.
func (p *Policy) Begin() State {
	return p.transition(func() { p.status = StatusConnecting })
}

// Opened records a successful open and resets the counter.
func (p *Policy) Opened() State {
	return p.transition(func() {
		p.status = StatusConnected
		p.attempt = 0
	})
}

// Failed records a transport failure. The counter is incremented
// first. Within budget the policy moves to StatusDisconnected and
// schedules onRetry after RetryDelay; past it the policy moves to
// StatusExhausted and schedules nothing. An exhausted policy reports
// MaxAttempts as its counter: every retry was made.
//
// onRetry runs on the clock's timer goroutine. It should hand off to
// the owner rather than do work itself.
func (p *Policy) Failed(onRetry func()) State {
	return p.transition(func() {
		p.stopTimerLocked()
		p.attempt++
		if p.attempt > p.config.MaxAttempts {
			p.attempt = p.config.MaxAttempts
			p.status = StatusExhausted
			return
		}
		p.status = StatusDisconnected
		p.timer = p.clock.AfterFunc(p.config.RetryDelay, onRetry)
	})
}

// Retry records that the retry timer fired and a new dial is starting.
func (p *Policy) Retry() State {
	return p.transition(func() {
		p.timer = nil
		p.status = StatusConnecting
	})
}

// Restart is the caller-initiated reset from any state: the pending
// timer is dropped, the counter zeroed, and the status set to
// StatusConnecting.
func (p *Policy) Restart() State {
	return p.transition(func() {
		p.stopTimerLocked()
		p.attempt = 0
		p.status = StatusConnecting
	})
}

// Pending reports whether a retry timer is scheduled.
func (p *Policy) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil
}

// Stop cancels any pending retry and makes every later transition a
// no-op. Safe to call more than once.
func (p *Policy) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimerLocked()
	p.stopped = true
}

// Stopped reports whether Stop has been called.
func (p *Policy) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *Policy) transition(apply func()) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		apply()
	}
	return p.stateLocked()
}

func (p *Policy) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
