// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parknow/parkwatch/lib/frame"
	"github.com/parknow/parkwatch/lib/netutil"
	"github.com/parknow/parkwatch/lib/scope"
)

// ErrInvalidEndpoint is returned by Open when the scope's address
// cannot be constructed.
var ErrInvalidEndpoint = scope.ErrInvalidEndpoint

// Dialer opens websocket sessions. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Options configures Open. BaseURL is required; every other field has
// a default.
type Options struct {
	// BaseURL is the server root, for example ws://localhost:8000.
	BaseURL string

	// DialTimeout bounds the websocket handshake. Default 10s.
	DialTimeout time.Duration

	// ReadLimit caps a single inbound message. Default 4 MiB.
	ReadLimit int64

	// Header is sent with the handshake request.
	Header http.Header

	// Dialer defaults to websocket.DefaultDialer.
	Dialer Dialer

	// Logger receives decode diagnostics. Default discards.
	Logger *slog.Logger
}

const (
	defaultDialTimeout = 10 * time.Second
	defaultReadLimit   = 4 << 20

	// closeGracePeriod bounds the write of our close frame during
	// Close. The peer's reply is not awaited.
	closeGracePeriod = time.Second
)

func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = defaultDialTimeout
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Connection is one websocket session for one scope. Create it with
// Open; release it with Close.
type Connection struct {
	scope    scope.Scope
	endpoint string
	options  Options

	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	closeOnce sync.Once

	// mu guards conn and released. The transport is adopted by the
	// read goroutine after dialing and released exactly once by
	// whichever of Close and the read goroutine gets there first.
	mu       sync.Mutex
	conn     *websocket.Conn
	released bool
}

// Open starts a session for target. The endpoint is built before Open
// returns; any failure to build it is returned immediately and wraps
// ErrInvalidEndpoint. Dialing and reading happen in the background and
// are reported on Events.
func Open(target scope.Scope, options Options) (*Connection, error) {
	endpoint, err := scope.Endpoint(options.BaseURL, target)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", target, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := &Connection{
		scope:    target,
		endpoint: endpoint,
		options:  options.withDefaults(),
		events:   make(chan Event),
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	go connection.run(ctx)
	return connection, nil
}

// Scope returns the scope this connection is bound to.
func (c *Connection) Scope() scope.Scope { return c.scope }

// Endpoint returns the websocket address being dialed.
func (c *Connection) Endpoint() string { return c.endpoint }

// Events delivers the connection's events in transport order. The
// channel is unbuffered and is closed after the terminal event, or
// without one if the owner calls Close first. Once Close has been
// called the owner should stop receiving.
func (c *Connection) Events() <-chan Event { return c.events }

// Done is closed when the background goroutine has exited.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Close ends the session and releases the websocket. It is safe to
// call more than once, from any goroutine, and after the transport has
// already closed itself. No new event is sent after Close returns.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		conn := c.conn
		released := c.released
		c.mu.Unlock()

		if conn != nil && !released {
			// Best effort: tell the server we are leaving. The read
			// goroutine may be blocked in ReadMessage; gorilla allows a
			// concurrent control write.
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeGracePeriod))
		}
		c.release()
	})
}

// release closes the websocket if one was adopted and marks the
// transport released. Later calls, and later adoptions, see released.
func (c *Connection) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	if c.conn != nil {
		c.conn.Close()
	}
}

// adopt records a freshly dialed websocket. If Close already ran, the
// websocket is closed here instead and adopt reports false.
func (c *Connection) adopt(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		conn.Close()
		return false
	}
	c.conn = conn
	return true
}

// emit sends event unless the connection has been closed by its owner.
func (c *Connection) emit(ctx context.Context, event Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case c.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Connection) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.events)
	defer c.release()

	logger := c.options.Logger.With("scope", c.scope.String())

	dialContext, cancelDial := context.WithTimeout(ctx, c.options.DialTimeout)
	conn, response, err := c.options.Dialer.DialContext(dialContext, c.endpoint, c.options.Header)
	cancelDial()
	if response != nil && response.Body != nil {
		response.Body.Close()
	}
	if err != nil {
		if response != nil {
			err = fmt.Errorf("dialing %s: %w (http %d)", c.endpoint, err, response.StatusCode)
		} else {
			err = fmt.Errorf("dialing %s: %w", c.endpoint, err)
		}
		c.emit(ctx, Event{Kind: EventTransportError, Err: err})
		return
	}
	if !c.adopt(conn) {
		return
	}
	conn.SetReadLimit(c.options.ReadLimit)

	if !c.emit(ctx, Event{Kind: EventOpened}) {
		return
	}

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.emit(ctx, terminalEvent(err))
			return
		}

		var decoded frame.Frame
		switch messageType {
		case websocket.TextMessage:
			decoded, err = frame.DecodeJSON(data)
		case websocket.BinaryMessage:
			decoded, err = frame.DecodeCBOR(data)
		default:
			err = fmt.Errorf("%w: unexpected message type %d", frame.ErrMalformed, messageType)
		}
		if err != nil {
			logger.Warn("dropping undecodable frame",
				"bytes", len(data),
				"error", err,
			)
			continue
		}
		if decoded.Unrecognized > 0 {
			logger.Debug("frame carried unrecognized slot statuses",
				"count", decoded.Unrecognized,
			)
		}

		var event Event
		switch decoded.Kind {
		case frame.KindSnapshot:
			event = Event{Kind: EventSnapshot, Snapshot: decoded.Snapshot}
		case frame.KindScopeError:
			event = Event{Kind: EventScopeError, ScopeError: decoded.ScopeError}
		}
		if !c.emit(ctx, event) {
			return
		}
	}
}

// terminalEvent classifies a read failure. Close frames and abrupt
// disconnects are closes; anything else is a transport error.
func terminalEvent(err error) Event {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return Event{Kind: EventClosed, Code: closeErr.Code, Reason: closeErr.Text}
	}
	if netutil.IsExpectedCloseError(err) {
		return Event{Kind: EventClosed, Code: websocket.CloseAbnormalClosure, Reason: err.Error()}
	}
	return Event{Kind: EventTransportError, Err: fmt.Errorf("reading frame: %w", err)}
}
