// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for parkwatch.
//
// Configuration comes from at most one file, named either by the
// PARKWATCH_CONFIG environment variable (via [Load]) or by a --config
// flag (via [LoadFile]). When neither is given the built-in defaults
// from [Default] apply unchanged: a local development server at
// ws://localhost:8000, five reconnect attempts three seconds apart, and
// the embedded facility catalog. There is no automatic file search.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production without an explicit section
// only logs errors.
//
// Variable expansion is performed on URL and path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No environment
// variable overrides a config value directly; command-line flags are
// the only layer above the file.
//
// Key exports:
//
//   - [Config] -- master struct with Server, Reconnect, Catalog, UI, Log
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.ReconnectPolicy] -- the validated reconnect settings
package config
