// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

// withBuildInfo overrides the ldflags variables for one test.
func withBuildInfo(t *testing.T, version, commit, dirty, buildTime string) {
	t.Helper()
	saved := [4]string{Version, GitCommit, GitDirty, BuildTime}
	Version, GitCommit, GitDirty, BuildTime = version, commit, dirty, buildTime
	t.Cleanup(func() {
		Version, GitCommit, GitDirty, BuildTime = saved[0], saved[1], saved[2], saved[3]
	})
}

func TestInfo(t *testing.T) {
	withBuildInfo(t, "1.2.0", "abc1234", "false", "2026-10-01T00:00:00Z")
	if got, want := Info(), "1.2.0 (abc1234, 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "true"
	if got, want := Info(), "1.2.0 (abc1234-dirty, 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("Info() dirty = %q, want %q", got, want)
	}
}

func TestFull(t *testing.T) {
	withBuildInfo(t, "1.2.0", "abc1234", "false", "now")
	full := Full()
	if !strings.HasPrefix(full, Info()) {
		t.Errorf("Full() = %q, want prefix %q", full, Info())
	}
	if !strings.Contains(full, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Full() = %q, missing platform", full)
	}
}

func TestFprint(t *testing.T) {
	withBuildInfo(t, "0.3.0", "deadbee", "false", "then")
	var buffer bytes.Buffer
	Fprint(&buffer, "parkwatch")
	if got, want := buffer.String(), "parkwatch 0.3.0 (deadbee, then)\n"; got != want {
		t.Errorf("Fprint = %q, want %q", got, want)
	}
	if Short() != "0.3.0" {
		t.Errorf("Short() = %q, want 0.3.0", Short())
	}
}
