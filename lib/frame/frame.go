// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame decodes server-to-client slot frames into a tagged
// [Frame] so that nothing downstream of the transport ever inspects
// raw payload shape.
//
// A frame is either an array of slots, which becomes a full
// replacement snapshot, or an object {"error": "..."} reporting that
// the subscribed scope itself is invalid. Text websocket messages are
// JSON; binary messages are CBOR with the same shapes.
package frame

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parknow/parkwatch/lib/codec"
	"github.com/parknow/parkwatch/lib/slot"
)

// Kind tags the variant held by a Frame.
type Kind uint8

const (
	KindSnapshot Kind = iota + 1
	KindScopeError
)

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindScopeError:
		return "scope_error"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Frame is one decoded inbound message. Exactly one of Snapshot (for
// KindSnapshot) and ScopeError (for KindScopeError) is meaningful.
type Frame struct {
	Kind       Kind
	Snapshot   slot.Snapshot
	ScopeError string

	// Unrecognized counts slots whose status string was not one of
	// available, occupied, or unknown. Those slots decode as unknown.
	Unrecognized int
}

// ErrMalformed is wrapped by every decode failure.
var ErrMalformed = errors.New("malformed frame")

// DecodeJSON decodes a text frame.
func DecodeJSON(data []byte) (Frame, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromValue(value)
}

// DecodeCBOR decodes a binary frame.
func DecodeCBOR(data []byte) (Frame, error) {
	var value any
	if err := codec.Unmarshal(data, &value); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromValue(value)
}

// fromValue resolves the generic decoded value to a Frame. JSON and
// CBOR both decode arrays as []any and maps as map[string]any.
func fromValue(value any) (Frame, error) {
	switch shaped := value.(type) {
	case []any:
		return snapshotFrame(shaped)
	case map[string]any:
		raw, present := shaped["error"]
		if !present {
			return Frame{}, fmt.Errorf("%w: object without \"error\" field", ErrMalformed)
		}
		message, ok := raw.(string)
		if !ok || message == "" {
			return Frame{}, fmt.Errorf("%w: \"error\" must be a non-empty string", ErrMalformed)
		}
		return Frame{Kind: KindScopeError, ScopeError: message}, nil
	case nil:
		return Frame{}, fmt.Errorf("%w: null payload", ErrMalformed)
	default:
		return Frame{}, fmt.Errorf("%w: unexpected top-level %T", ErrMalformed, value)
	}
}

func snapshotFrame(items []any) (Frame, error) {
	frame := Frame{Kind: KindSnapshot}
	slots := make([]slot.Slot, 0, len(items))
	for position, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			return Frame{}, fmt.Errorf("%w: slot %d is %T, not an object", ErrMalformed, position, item)
		}
		id, ok := object["id"].(string)
		if !ok {
			return Frame{}, fmt.Errorf("%w: slot %d has no string id", ErrMalformed, position)
		}
		statusText, ok := object["status"].(string)
		if !ok {
			return Frame{}, fmt.Errorf("%w: slot %q has no string status", ErrMalformed, id)
		}
		status, recognized := slot.ParseStatus(statusText)
		if !recognized {
			frame.Unrecognized++
		}
		slots = append(slots, slot.Slot{ID: id, Status: status})
	}

	snapshot, err := slot.NewSnapshot(slots)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	frame.Snapshot = snapshot
	return frame, nil
}
