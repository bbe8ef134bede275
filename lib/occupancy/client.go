// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package occupancy

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/parknow/parkwatch/lib/channel"
	"github.com/parknow/parkwatch/lib/clock"
	"github.com/parknow/parkwatch/lib/reconnect"
	"github.com/parknow/parkwatch/lib/scope"
	"github.com/parknow/parkwatch/lib/slot"
)

// ErrClosed is returned by operations on a client after Close.
var ErrClosed = errors.New("occupancy client closed")

// State is the connection status together with the retry counter.
type State = reconnect.State

// ScopeError is a server report that the subscribed scope is invalid.
type ScopeError struct {
	Scope   scope.Scope
	Message string
}

func (e ScopeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Scope, e.Message)
}

// Options configures New. BaseURL is required.
type Options struct {
	// BaseURL is the server root; http(s) and ws(s) are both accepted.
	BaseURL string

	// Reconnect bounds retries. Zero fields take the reconnect
	// package defaults (5 attempts, 3s apart).
	Reconnect reconnect.Config

	// DialTimeout and ReadLimit pass through to channel.Options.
	DialTimeout time.Duration
	ReadLimit   int64

	// Header is sent with every websocket handshake.
	Header http.Header

	// Dialer overrides the websocket dialer.
	Dialer channel.Dialer

	// Clock drives retry timers. Default is the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a live subscription to one scope.
type Client struct {
	scope    scope.Scope
	consumer Consumer
	options  Options
	policy   *reconnect.Policy
	logger   *slog.Logger

	retries  chan uint64
	restarts chan struct{}
	closing  chan struct{}
	done     chan struct{}

	closeOnce sync.Once

	// Loop-owned. Only the event loop touches these after New returns.
	connection *channel.Connection
	generation uint64

	// rejected is set once the current connection has delivered a
	// scope error. Its close is then final rather than a failure.
	rejected bool

	// Published for readers on other goroutines.
	mu            sync.RWMutex
	state         State
	snapshot      slot.Snapshot
	scopeError    ScopeError
	hasScopeError bool
}

// New opens the first connection for target and starts the event loop.
// An endpoint that cannot be built is reported here and no client is
// created. A nil consumer is allowed; the getters still work.
func New(target scope.Scope, consumer Consumer, options Options) (*Client, error) {
	if consumer == nil {
		consumer = ConsumerFuncs{}
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	client := &Client{
		scope:    target,
		consumer: consumer,
		options:  options,
		policy:   reconnect.New(options.Reconnect, options.Clock),
		logger:   options.Logger.With("scope", target.String()),
		retries:  make(chan uint64, 1),
		restarts: make(chan struct{}, 1),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	connection, err := client.open()
	if err != nil {
		return nil, err
	}
	client.connection = connection
	client.state = client.policy.Begin()

	go client.run()
	return client, nil
}

// Scope returns the scope this client is bound to.
func (c *Client) Scope() scope.Scope { return c.scope }

// Status returns the current connection status and retry counter.
func (c *Client) Status() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns the latest snapshot; empty until the first frame.
func (c *Client) Snapshot() slot.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// ScopeError returns the latest scope error, if one has been reported
// since the client was created or last restarted.
func (c *Client) ScopeError() (ScopeError, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scopeError, c.hasScopeError
}

// Aggregate summarizes the latest snapshot. It is computed on every
// call.
func (c *Client) Aggregate() slot.Aggregate {
	return slot.Summarize(c.Snapshot())
}

// Restart discards the current connection and retry count and dials
// again. It is the recovery path out of an exhausted state, but works
// from any state. Requests made while one is pending are coalesced.
func (c *Client) Restart() error {
	select {
	case <-c.closing:
		return ErrClosed
	default:
	}
	select {
	case c.restarts <- struct{}{}:
	default:
	}
	return nil
}

// Close tears the client down: the retry timer is stopped, the live
// connection is closed, and the event loop exits. Close blocks until
// the loop is gone, so no consumer callback runs after it returns. It
// is idempotent and safe in every state, but must not be called from
// inside a consumer callback.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closing)
	})
	<-c.done
}

func (c *Client) open() (*channel.Connection, error) {
	return channel.Open(c.scope, channel.Options{
		BaseURL:     c.options.BaseURL,
		DialTimeout: c.options.DialTimeout,
		ReadLimit:   c.options.ReadLimit,
		Header:      c.options.Header,
		Dialer:      c.options.Dialer,
		Logger:      c.logger,
	})
}

func (c *Client) run() {
	defer close(c.done)

	for {
		var events <-chan channel.Event
		if c.connection != nil {
			events = c.connection.Events()
		}

		select {
		case <-c.closing:
			c.shutdown()
			return

		case event, ok := <-events:
			if !ok {
				// The connection ended without a terminal event, which
				// only happens once it has been closed from this side.
				c.connection = nil
				continue
			}
			c.handleEvent(event)

		case generation := <-c.retries:
			if generation != c.generation {
				continue
			}
			c.retry()

		case <-c.restarts:
			c.restart()
		}
	}
}

func (c *Client) handleEvent(event channel.Event) {
	switch event.Kind {
	case channel.EventOpened:
		c.setState(c.policy.Opened())
		c.logger.Info("connected")

	case channel.EventSnapshot:
		c.mu.Lock()
		c.snapshot = event.Snapshot
		c.mu.Unlock()
		if c.live() {
			c.consumer.OnSnapshotChange(event.Snapshot)
		}

	case channel.EventScopeError:
		scopeError := ScopeError{Scope: c.scope, Message: event.ScopeError}
		c.rejected = true
		c.mu.Lock()
		c.scopeError = scopeError
		c.hasScopeError = true
		c.mu.Unlock()
		c.logger.Warn("server rejected scope", "message", event.ScopeError)
		if c.live() {
			c.consumer.OnScopeError(scopeError)
		}

	case channel.EventTransportError, channel.EventClosed:
		if c.rejected {
			c.settle(event)
			return
		}
		c.fail(event)
	}
}

// settle ends a connection whose scope the server rejected. Redialing
// would only be rejected again, so no retry is scheduled and the
// status is left alone; Restart or a new client is the way back.
func (c *Client) settle(event channel.Event) {
	c.retire()
	var attributes []any
	if event.Kind == channel.EventClosed {
		attributes = append(attributes, "code", event.Code, "reason", event.Reason)
	} else {
		attributes = append(attributes, "error", event.Err)
	}
	c.logger.Info("connection ended after scope rejection, not retrying", attributes...)
}

// fail retires the current connection and lets the policy decide
// whether to retry.
func (c *Client) fail(event channel.Event) {
	c.retire()
	generation := c.generation
	state := c.policy.Failed(func() { c.postRetry(generation) })

	attributes := []any{"attempt", state.Attempt, "max_attempts", state.MaxAttempts}
	if event.Kind == channel.EventClosed {
		attributes = append(attributes, "code", event.Code, "reason", event.Reason)
	} else {
		attributes = append(attributes, "error", event.Err)
	}
	if state.Status == reconnect.StatusExhausted {
		c.logger.Error("connection lost, retries exhausted", attributes...)
	} else {
		attributes = append(attributes, "retry_in", c.policy.Config().RetryDelay)
		c.logger.Warn("connection lost", attributes...)
	}

	c.setState(state)
}

// postRetry runs on the timer goroutine and hands the fire to the loop.
func (c *Client) postRetry(generation uint64) {
	select {
	case c.retries <- generation:
	case <-c.closing:
	}
}

func (c *Client) retry() {
	c.setState(c.policy.Retry())
	c.dial()
}

func (c *Client) restart() {
	c.retire()
	c.mu.Lock()
	c.scopeError = ScopeError{}
	c.hasScopeError = false
	c.mu.Unlock()
	c.logger.Info("restarting subscription")
	c.setState(c.policy.Restart())
	c.dial()
}

// dial opens a replacement connection. The endpoint was already built
// once in New, so failure here is unexpected; it is treated as a
// transport failure so the policy still bounds it.
func (c *Client) dial() {
	connection, err := c.open()
	if err != nil {
		c.fail(channel.Event{Kind: channel.EventTransportError, Err: err})
		return
	}
	c.connection = connection
}

// retire closes the live connection, if any, and invalidates every
// retry scheduled for it.
func (c *Client) retire() {
	if c.connection != nil {
		c.connection.Close()
		c.connection = nil
	}
	c.rejected = false
	c.generation++
}

func (c *Client) shutdown() {
	c.policy.Stop()
	c.retire()
}

// setState publishes state and notifies the consumer if it changed.
func (c *Client) setState(state State) {
	c.mu.Lock()
	changed := state != c.state
	c.state = state
	c.mu.Unlock()
	if changed && c.live() {
		c.consumer.OnStatusChange(state)
	}
}

// live reports whether callbacks may still fire. Close can begin while
// a reaction is in progress; once it has, the reaction finishes its
// bookkeeping silently.
func (c *Client) live() bool {
	select {
	case <-c.closing:
		return false
	default:
		return true
	}
}
