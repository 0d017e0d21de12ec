// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	for _, tc := range []struct {
		cmdline string
		want    []string
	}{
		{
			cmdline: `--p2 arm -g --bldnum 42 -- -b posix64`,
			want:    []string{"--p2", "arm", "-g", "--bldnum", "42", "--", "-b", "posix64"},
		},
		{
			cmdline: `  here   --exclude  '_0test'  `,
			want:    []string{"here", "--exclude", "_0test"},
		},
		{
			cmdline: `gcc -DCR_CLANG_REVISION=\"llvmorg-13\" -c 'my dir/a.c'.x -o "out dir/a.o"`,
			want: []string{
				"gcc",
				`-DCR_CLANG_REVISION="llvmorg-13"`,
				"-c",
				"my dir/a.c.x",
				"-o",
				"out dir/a.o",
			},
		},
		{
			cmdline: `/bin/bash -c ""`,
			want:    []string{"/bin/bash", "-c", ""},
		},
		{
			cmdline: `/bin/bash -c "(rm -f out/fname ) && (cp \"frameworks/fname\" \"out/fname\" )"`,
			want: []string{
				"/bin/bash",
				"-c",
				`(rm -f out/fname ) && (cp "frameworks/fname" "out/fname" )`,
			},
		},
		{
			cmdline: "",
			want:    nil,
		},
	} {
		args, err := Split(tc.cmdline)
		if err != nil {
			t.Errorf("Split(%q)=%q, %v; want nil error", tc.cmdline, args, err)
		}
		if diff := cmp.Diff(tc.want, args); diff != "" {
			t.Errorf("Split(%q); diff -want +got:\n%s", tc.cmdline, diff)
		}
	}
}

func TestSplit_Error(t *testing.T) {
	for _, cmdline := range []string{
		`ln -f report_env.sh 2>/dev/null || (rm -rf report_env.sh)`,
		`/bin/bash -c "`,
		`/bin/bash -c "(rm -out/fname ) && (cp \`,
		`cp foo bar\`,
		`echo 'unterminated`,
		`echo $HOME`,
	} {
		args, err := Split(cmdline)
		if err == nil {
			t.Errorf("Split(%q)=%q, %v; want err", cmdline, args, err)
		}
	}
}

func TestJoin(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{
			args: []string{"nqbp", "build", "-b", "posix64"},
			want: "nqbp build -b posix64",
		},
		{
			args: []string{"nqbp", "build", "-def1", "NAME=a b", ""},
			want: "nqbp build -def1 'NAME=a b' ''",
		},
		{
			args: []string{"echo", "it's"},
			want: `echo 'it'\''s'`,
		},
	} {
		got := Join(tc.args)
		if got != tc.want {
			t.Errorf("Join(%q)=%q; want %q", tc.args, got, tc.want)
		}
		back, err := Split(got)
		if err != nil {
			t.Errorf("Split(Join(%q))=%v; want nil error", tc.args, err)
			continue
		}
		if diff := cmp.Diff(tc.args, back); diff != "" {
			t.Errorf("Split(Join(%q)) diff -want +got:\n%s", tc.args, diff)
		}
	}
}
