// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/maruel/subcommands"
)

func TestGetApplication(t *testing.T) {
	app := getApplication(context.Background())
	seen := make(map[string]bool)
	for _, c := range app.Commands {
		name := c.Name()
		if seen[name] {
			t.Errorf("duplicate command %q", name)
		}
		seen[name] = true
	}
	for _, name := range []string{"build", "clean", "query", "bob", "help", "version"} {
		if !seen[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	code := subcommands.Run(getApplication(context.Background()), []string{"version"})
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("nqbp version=%d; want 0", code)
	}
	if first, _, _ := strings.Cut(string(out), "\n"); first != nqbpVersion {
		t.Errorf("nqbp version first line=%q; want %q", first, nqbpVersion)
	}
}

func TestVcsInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "GOOS", Value: "linux"},
		},
	}
	if got, want := vcsInfo(info), "vcs[revision=abc time= modified=true]"; got != want {
		t.Errorf("vcsInfo()=%q; want %q", got, want)
	}
	if got, want := moduleInfo(nil), "<nil>"; got != want {
		t.Errorf("moduleInfo(nil)=%q; want %q", got, want)
	}
}
