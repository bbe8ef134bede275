// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package facility is the read-only metadata side of parkwatch: what a
// facility is called, where it is, and how many slots it has. None of
// it is live state.
//
// [Client] performs the backend's request/response lookups:
// GET /locations for the directory with availability counts, and
// GET /slots/{id} for a one-shot snapshot used as a placeholder until
// the first live frame arrives.
//
// [Catalog] holds static facility details (address, hours, price) that
// the backend does not serve. It is loaded from a JSONC file, with
// comments and trailing commas allowed, or taken from the built-in
// catalog, and supports fuzzy search over names and cities.
package facility
