// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package version

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrint(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.24.2",
		Deps: []*debug.Module{
			{Path: "go.starlark.net", Version: "v0.0.0-20250417143717-f57e51f710eb"},
		},
		Settings: []debug.BuildSetting{
			{Key: "-trimpath", Value: "true"},
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.modified", Value: "false"},
		},
	}
	for _, tc := range []struct {
		deps bool
		want string
	}{
		{
			want: "nqbp v1.0.0\ngo\tgo1.24.2\nbuild\tvcs.revision=abc123\nbuild\tvcs.modified=false\n",
		},
		{
			deps: true,
			want: "nqbp v1.0.0\ngo\tgo1.24.2\nbuild\tvcs.revision=abc123\nbuild\tvcs.modified=false\ndep\tgo.starlark.net\tv0.0.0-20250417143717-f57e51f710eb\n",
		},
	} {
		var buf bytes.Buffer
		c := &versionRun{version: "nqbp v1.0.0", deps: tc.deps, stdout: &buf}
		c.print(info)
		if diff := cmp.Diff(tc.want, buf.String()); diff != "" {
			t.Errorf("print(deps=%t) diff -want +got:\n%s", tc.deps, diff)
		}
	}

	var buf bytes.Buffer
	c := &versionRun{version: "nqbp v1.0.0", stdout: &buf}
	c.print(nil)
	if got, want := buf.String(), "nqbp v1.0.0\n"; got != want {
		t.Errorf("print(nil)=%q; want %q", got, want)
	}
}
