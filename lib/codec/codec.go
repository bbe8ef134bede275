// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec configures CBOR encoding for binary slot frames.
//
// Servers may push the same frame shapes as JSON text or as CBOR
// binary messages. Decoding into any yields map[string]any for CBOR
// maps so both encodings reach the frame decoder with identical Go
// shapes.
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so that
// equal frames encode to equal bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// CBOR allows non-string map keys, so the library default for
		// any-typed targets is map[interface{}]interface{}. Frames only
		// use string keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Reject pathological nesting before it reaches the frame
		// decoder.
		MaxNestedLevels: 16,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
