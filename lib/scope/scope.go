// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package scope names what a live subscription watches: every facility
// at once ([Global]) or a single facility ([Location]), and maps each
// scope to its websocket address.
package scope

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Kind distinguishes the two scope shapes.
type Kind uint8

const (
	KindGlobal Kind = iota
	KindLocation
)

// Scope is the subscription target. The zero value is the global
// scope. Scope is a comparable value; a client binds exactly one for
// its lifetime.
type Scope struct {
	kind       Kind
	locationID string
}

// Global returns the aggregate-of-all-facilities scope.
func Global() Scope { return Scope{kind: KindGlobal} }

// Location returns the scope for one facility. The ID is not checked
// against any catalog: an unknown facility is reported by the server
// as a scope error, not rejected here.
func Location(id string) Scope { return Scope{kind: KindLocation, locationID: id} }

// Kind returns whether s is global or a single location.
func (s Scope) Kind() Kind { return s.kind }

// IsGlobal reports whether s is the global scope.
func (s Scope) IsGlobal() bool { return s.kind == KindGlobal }

// LocationID returns the facility ID, or "" for the global scope.
func (s Scope) LocationID() string { return s.locationID }

// String returns "global" or "location:<id>". Parse accepts it back.
func (s Scope) String() string {
	if s.kind == KindGlobal {
		return "global"
	}
	return "location:" + s.locationID
}

// Parse reads a scope from its String form. A bare word other than
// "global" is taken as a location ID, so "coex" and "location:coex"
// are the same scope.
func Parse(text string) (Scope, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return Scope{}, errors.New("empty scope")
	case text == "global":
		return Global(), nil
	case strings.HasPrefix(text, "location:"):
		id := strings.TrimPrefix(text, "location:")
		if id == "" {
			return Scope{}, fmt.Errorf("scope %q: empty location id", text)
		}
		return Location(id), nil
	default:
		return Location(text), nil
	}
}

// ErrInvalidEndpoint is wrapped by every Endpoint failure.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Endpoint builds the websocket address for s under base, for example
// ws://localhost:8000/ws/slots/coex. Global maps to the /ws/slots
// endpoint. http and https bases are rewritten to ws and wss so one
// server URL can serve both the HTTP lookups and the push channel.
//
// Endpoint is a pure function of (base, s). It fails only when no
// address can be built: an unparseable or non-websocket base, or a
// location scope with an empty or non-UTF-8 ID.
func Endpoint(base string, s Scope) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	switch parsed.Scheme {
	case "ws", "wss":
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: base %q must use ws, wss, http, or https", ErrInvalidEndpoint, base)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: base %q has no host", ErrInvalidEndpoint, base)
	}

	prefix := strings.TrimRight(parsed.Path, "/")
	rawPrefix := strings.TrimRight(parsed.EscapedPath(), "/")
	parsed.Path = prefix + "/ws/slots"
	parsed.RawPath = rawPrefix + "/ws/slots"

	if s.kind == KindLocation {
		id := s.locationID
		if id == "" {
			return "", fmt.Errorf("%w: empty location id", ErrInvalidEndpoint)
		}
		if !utf8.ValidString(id) {
			return "", fmt.Errorf("%w: location id %q is not valid UTF-8", ErrInvalidEndpoint, id)
		}
		parsed.Path += "/" + id
		parsed.RawPath += "/" + url.PathEscape(id)
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}
