// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package slottest provides a scriptable occupancy server for tests.
//
// A [Server] listens on a loopback httptest server and speaks the same
// protocol as the production backend: websocket subscriptions at
// /ws/slots and /ws/slots/{id}, plus the JSON lookups /locations,
// /slots, and /slots/{id}. Nothing is pushed on its own. Each accepted
// websocket is handed to the test as a [Session], and the test decides
// what frames to send and how the session ends:
//
//	server := slottest.NewServer(t)
//	client := newClient(t, server.URL())
//	session := server.Accept(t)
//	session.SendSnapshot(t, slot.Slot{ID: "COEX-1", Status: slot.StatusAvailable})
//	session.Drop(t)
//
// The server and every session are torn down by t.Cleanup.
package slottest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parknow/parkwatch/lib/slot"
	"github.com/parknow/parkwatch/lib/testutil"
)

// acceptTimeout bounds how long Accept waits for a client to dial.
const acceptTimeout = 5 * time.Second

// Location is one entry of the /locations listing.
type Location struct {
	Name       string `json:"name"`
	TotalSlots int    `json:"totalSlots"`
	Available  int    `json:"available"`
	Occupied   int    `json:"occupied"`
}

// Server is a loopback occupancy backend driven by the test.
type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader
	sessions   chan *Session

	mu         sync.Mutex
	live       []*Session
	dials      int
	rejectCode int
	locations  map[string]Location
	slots      map[string][]map[string]string
}

// NewServer starts a server and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	server := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions:  make(chan *Session, 64),
		locations: make(map[string]Location),
		slots:     make(map[string][]map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/slots", server.handleSubscribe)
	mux.HandleFunc("GET /ws/slots/{id}", server.handleSubscribe)
	mux.HandleFunc("GET /locations", server.handleLocations)
	mux.HandleFunc("GET /slots", server.handleSlots)
	mux.HandleFunc("GET /slots/{id}", server.handleSlots)

	server.httpServer = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// URL returns the websocket base address (ws://127.0.0.1:port).
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpServer.URL, "http")
}

// HTTPURL returns the HTTP base address.
func (s *Server) HTTPURL() string {
	return s.httpServer.URL
}

// Dials returns how many websocket handshakes have been attempted,
// including rejected ones.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// RejectUpgrades makes subsequent websocket handshakes fail with the
// given HTTP status. Zero restores normal upgrades.
func (s *Server) RejectUpgrades(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectCode = status
}

// SetLocation adds or replaces an entry in the /locations listing.
func (s *Server) SetLocation(id string, location Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[id] = location
}

// SetSlots sets the /slots/{id} reply. An empty id sets the /slots
// (global) reply.
func (s *Server) SetSlots(id string, slots ...slot.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[id] = wireSlots(slots)
}

// Accept waits for the next websocket session, failing the test if none
// arrives in time.
func (s *Server) Accept(t testing.TB) *Session {
	t.Helper()
	return testutil.RequireReceive(t, s.sessions, acceptTimeout, "waiting for a websocket client")
}

// Sessions delivers accepted sessions in dial order.
func (s *Server) Sessions() <-chan *Session {
	return s.sessions
}

// Close drops every live session and shuts the listener down.
func (s *Server) Close() {
	s.mu.Lock()
	live := s.live
	s.live = nil
	s.mu.Unlock()
	for _, session := range live {
		session.conn.Close()
	}
	s.httpServer.Close()
}

func (s *Server) handleSubscribe(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	s.dials++
	rejectCode := s.rejectCode
	s.mu.Unlock()

	if rejectCode != 0 {
		http.Error(writer, http.StatusText(rejectCode), rejectCode)
		return
	}

	conn, err := s.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		return
	}

	session := &Session{
		Path:       request.URL.Path,
		LocationID: request.PathValue("id"),
		conn:       conn,
		gone:       make(chan struct{}),
	}
	s.mu.Lock()
	s.live = append(s.live, session)
	s.mu.Unlock()

	s.sessions <- session
	session.readUntilGone()
}

func (s *Server) handleLocations(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	listing := make(map[string]Location, len(s.locations))
	for id, location := range s.locations {
		listing[id] = location
	}
	s.mu.Unlock()
	writeJSON(writer, listing)
}

func (s *Server) handleSlots(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	s.mu.Lock()
	slots, ok := s.slots[id]
	s.mu.Unlock()
	if !ok {
		// The backend reports unknown locations in-band with a 200.
		writeJSON(writer, map[string]string{"error": "Location not found"})
		return
	}
	writeJSON(writer, slots)
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(value)
}
