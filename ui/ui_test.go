// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/nqbp/ui"
)

func TestStripANSIEscapeCodes(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{
			in:   "foo\033",
			want: "foo",
		},
		{
			in:   "foo\033[",
			want: "foo",
		},
		{
			in:   "\033[1mmain.cpp:28:15: \033[0m\033[0;1;35mwarning: \033[0m\033[1munused variable\033[0m",
			want: "main.cpp:28:15: warning: unused variable",
		},
	} {
		got := ui.StripANSIEscapeCodes(tc.in)
		if got != tc.want {
			t.Errorf("ui.StripANSIEscapeCodes(%q)=%q; want=%q", tc.in, got, tc.want)
		}
	}
}

func TestBanner(t *testing.T) {
	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	b := ui.Banner{
		Output:     "a.out",
		ProjectDir: "/w/colony/projects/app/linux/gcc",
		Toolchain:  "Generic GCC",
		Variant:    "release",
		Started:    started,
	}
	var buf bytes.Buffer
	b.WriteStart(&buf)
	rule := strings.Repeat("=", 80)
	want := "\n" + rule + "\n" +
		"= START of build for:  a.out\n" +
		"= Project Directory:   /w/colony/projects/app/linux/gcc\n" +
		"= Toolchain:           Generic GCC\n" +
		"= Build Configuration: release\n" +
		"= Begin (UTC):         Wed, 04 Mar 2026 05:06:07\n" +
		"= Build Time:          1772600767 (69a7bdbf)\n" +
		rule + "\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteStart diff -want +got:\n%s", diff)
	}

	buf.Reset()
	b.WriteEnd(&buf, started.Add(1*time.Hour+2*time.Minute+3*time.Second))
	if !strings.Contains(buf.String(), "= Elapsed Time (hh mm:ss): 01 02:03\n") {
		t.Errorf("WriteEnd=%q; want elapsed 01 02:03", buf.String())
	}
	if !strings.Contains(buf.String(), "= END of build for:    a.out\n") {
		t.Errorf("WriteEnd=%q; want END line", buf.String())
	}
}
