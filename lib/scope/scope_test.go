// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package scope

import (
	"errors"
	"testing"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		scope Scope
		want  string
	}{
		{"global", "ws://localhost:8000", Global(), "ws://localhost:8000/ws/slots"},
		{"location", "ws://localhost:8000", Location("coex"), "ws://localhost:8000/ws/slots/coex"},
		{"trailing slash", "ws://localhost:8000/", Location("coex"), "ws://localhost:8000/ws/slots/coex"},
		{"http rewritten", "http://parking.example", Location("paskal"), "ws://parking.example/ws/slots/paskal"},
		{"https rewritten", "https://parking.example", Global(), "wss://parking.example/ws/slots"},
		{"path prefix", "wss://parking.example/api/", Location("jakarta"), "wss://parking.example/api/ws/slots/jakarta"},
		{"escaped id", "ws://h", Location("a b/c"), "ws://h/ws/slots/a%20b%2Fc"},
		{"query dropped", "ws://h?x=1", Global(), "ws://h/ws/slots"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Endpoint(test.base, test.scope)
			if err != nil {
				t.Fatalf("Endpoint: %v", err)
			}
			if got != test.want {
				t.Errorf("Endpoint = %q, want %q", got, test.want)
			}
		})
	}
}

func TestEndpointErrors(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		scope Scope
	}{
		{"empty location", "ws://localhost:8000", Location("")},
		{"invalid utf8", "ws://localhost:8000", Location("\xff")},
		{"bad scheme", "ftp://localhost", Global()},
		{"no host", "ws://", Global()},
		{"unparseable", "ws://[::1", Global()},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Endpoint(test.base, test.scope)
			if !errors.Is(err, ErrInvalidEndpoint) {
				t.Fatalf("err = %v, want ErrInvalidEndpoint", err)
			}
		})
	}
}

func TestEndpointIsPure(t *testing.T) {
	first, _ := Endpoint("ws://h", Location("coex"))
	second, _ := Endpoint("ws://h", Location("coex"))
	if first != second {
		t.Fatalf("Endpoint not deterministic: %q vs %q", first, second)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want Scope
	}{
		{"global", Global()},
		{" global ", Global()},
		{"coex", Location("coex")},
		{"location:coex", Location("coex")},
		{"location:global", Location("global")},
	}
	for _, test := range tests {
		got, err := Parse(test.text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", test.text, err)
		}
		if got != test.want {
			t.Errorf("Parse(%q) = %v, want %v", test.text, got, test.want)
		}
		if roundtrip, _ := Parse(got.String()); roundtrip != got {
			t.Errorf("Parse(String()) = %v, want %v", roundtrip, got)
		}
	}

	for _, bad := range []string{"", "   ", "location:"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded", bad)
		}
	}
}

func TestZeroScopeIsGlobal(t *testing.T) {
	var zero Scope
	if !zero.IsGlobal() || zero != Global() {
		t.Fatalf("zero Scope = %v, want global", zero)
	}
}
