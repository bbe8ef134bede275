// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package slottest

import (
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parknow/parkwatch/lib/codec"
	"github.com/parknow/parkwatch/lib/slot"
	"github.com/parknow/parkwatch/lib/testutil"
)

const writeTimeout = 5 * time.Second

// Session is the server side of one accepted websocket.
type Session struct {
	// Path is the request path the client dialed, e.g. /ws/slots/coex.
	Path string

	// LocationID is the {id} path segment, empty for /ws/slots.
	LocationID string

	conn     *websocket.Conn
	writeMu  sync.Mutex
	gone     chan struct{}
	goneOnce sync.Once
}

// Gone is closed once the client has disconnected, by close frame or
// by dropping the socket.
func (s *Session) Gone() <-chan struct{} {
	return s.gone
}

// WaitGone fails the test if the client does not disconnect in time.
func (s *Session) WaitGone(t testing.TB) {
	t.Helper()
	testutil.RequireClosed(t, s.gone, acceptTimeout, "waiting for client on %s to disconnect", s.Path)
}

// SendSnapshot writes slots as a JSON text frame.
func (s *Session) SendSnapshot(t testing.TB, slots ...slot.Slot) {
	t.Helper()
	s.write(t, func() error { return s.conn.WriteJSON(wireSlots(slots)) })
}

// SendSnapshotCBOR writes slots as a CBOR binary frame.
func (s *Session) SendSnapshotCBOR(t testing.TB, slots ...slot.Slot) {
	t.Helper()
	data, err := codec.Marshal(wireSlots(slots))
	if err != nil {
		t.Fatalf("encoding snapshot: %v", err)
	}
	s.SendBinary(t, data)
}

// SendScopeError writes an {"error": message} text frame.
func (s *Session) SendScopeError(t testing.TB, message string) {
	t.Helper()
	s.write(t, func() error { return s.conn.WriteJSON(map[string]string{"error": message}) })
}

// SendText writes a raw text frame, well-formed or not.
func (s *Session) SendText(t testing.TB, text string) {
	t.Helper()
	s.write(t, func() error { return s.conn.WriteMessage(websocket.TextMessage, []byte(text)) })
}

// SendBinary writes a raw binary frame.
func (s *Session) SendBinary(t testing.TB, data []byte) {
	t.Helper()
	s.write(t, func() error { return s.conn.WriteMessage(websocket.BinaryMessage, data) })
}

// Close sends a close frame with code and reason. The socket itself is
// released once the client answers.
func (s *Session) Close(t testing.TB, code int, reason string) {
	t.Helper()
	message := websocket.FormatCloseMessage(code, reason)
	s.writeMu.Lock()
	err := s.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeTimeout))
	s.writeMu.Unlock()
	if err != nil {
		t.Fatalf("sending close frame on %s: %v", s.Path, err)
	}
}

// Drop closes the socket without a close frame, as a crashed server or
// a severed network would.
func (s *Session) Drop(t testing.TB) {
	t.Helper()
	if err := s.conn.UnderlyingConn().Close(); err != nil {
		t.Fatalf("dropping %s: %v", s.Path, err)
	}
}

func (s *Session) write(t testing.TB, send func() error) {
	t.Helper()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := send(); err != nil {
		t.Fatalf("writing to %s: %v", s.Path, err)
	}
}

// readUntilGone services control frames until the client leaves. It
// runs on the handler goroutine.
func (s *Session) readUntilGone() {
	defer s.goneOnce.Do(func() { close(s.gone) })
	defer s.conn.Close()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func wireSlots(slots []slot.Slot) []map[string]string {
	wire := make([]map[string]string, len(slots))
	for index, entry := range slots {
		wire[index] = map[string]string{"id": entry.ID, "status": entry.Status.String()}
	}
	return wire
}
