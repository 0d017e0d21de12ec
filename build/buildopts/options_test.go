// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildopts

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJoinFlags(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want string
	}{
		{"", "", ""},
		{"-c", "", "-c"},
		{"", "-g", "-g"},
		{"-c", "-g", "-c -g"},
	} {
		got := JoinFlags(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("JoinFlags(%q, %q)=%q; want %q", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOptions_Append(t *testing.T) {
	a := &Options{CFlags: "-c", FirstObjs: []ObjRef{Literal("crt0.o")}}
	b := &Options{CFlags: "-O2", Inc: "-Isrc"}
	c := &Options{CFlags: "-Wall", LastObjs: []ObjRef{Forward("src/end")}}

	left := a.Copy().Append(b).Append(c)
	right := a.Copy().Append(b.Copy().Append(c))
	if diff := cmp.Diff(left, right, cmp.AllowUnexported(ObjRef{})); diff != "" {
		t.Errorf("Append is not associative: -left +right\n%s", diff)
	}
	want := &Options{
		Inc:       "-Isrc",
		CFlags:    "-c -O2 -Wall",
		FirstObjs: []ObjRef{Literal("crt0.o")},
		LastObjs:  []ObjRef{Forward("src/end")},
	}
	if diff := cmp.Diff(want, left, cmp.AllowUnexported(ObjRef{})); diff != "" {
		t.Errorf("a.Append(b).Append(c) diff -want +got:\n%s", diff)
	}

	if got := a.Copy().Append(nil); got.CFlags != "-c" {
		t.Errorf("Append(nil).CFlags=%q; want %q", got.CFlags, "-c")
	}
}

func TestOptions_Copy(t *testing.T) {
	orig := &Options{
		CFlags:        "-c",
		FirstObjs:     []ObjRef{Literal("a.o")},
		LastObjs:      []ObjRef{Literal("z.o")},
		ClangdExclude: []string{"-mthumb"},
	}
	cp := orig.Copy()
	cp.CFlags += " -g"
	cp.FirstObjs[0] = Literal("b.o")
	cp.LastObjs = append(cp.LastObjs, Literal("y.o"))
	cp.ClangdExclude[0] = "-mcpu"

	if orig.CFlags != "-c" {
		t.Errorf("orig.CFlags=%q; want %q", orig.CFlags, "-c")
	}
	if got := orig.FirstObjs[0].Literal; got != "a.o" {
		t.Errorf("orig.FirstObjs[0]=%q; want %q", got, "a.o")
	}
	if len(orig.LastObjs) != 1 {
		t.Errorf("len(orig.LastObjs)=%d; want 1", len(orig.LastObjs))
	}
	if got := orig.ClangdExclude[0]; got != "-mthumb" {
		t.Errorf("orig.ClangdExclude[0]=%q; want %q", got, "-mthumb")
	}

	var nilOpts *Options
	if got := nilOpts.Copy(); got == nil {
		t.Errorf("nil.Copy()=nil; want empty options")
	}
}

func TestOptions_NormalizePaths(t *testing.T) {
	o := &Options{
		Inc:        `-I.\src -Ifoo/bar`,
		CFlags:     `-DPATH=a\b`,
		LinkScript: `-T..\ld\app.ld`,
		FirstObjs:  []ObjRef{Literal(`lib\crt0.o`), Forward(`src\core`)},
	}
	o.NormalizePaths('/')
	want := &Options{
		Inc:        "-I./src -Ifoo/bar",
		CFlags:     `-DPATH=a\b`,
		LinkScript: "-T../ld/app.ld",
		FirstObjs:  []ObjRef{Literal("lib/crt0.o"), Forward("src/core")},
	}
	if diff := cmp.Diff(want, o, cmp.AllowUnexported(ObjRef{})); diff != "" {
		t.Errorf("NormalizePaths('/') diff -want +got:\n%s", diff)
	}

	o.NormalizePaths('\\')
	if got, want := o.FirstObjs[1].Dir, "src/core"; got != want {
		t.Errorf("forward dir after NormalizePaths('\\\\')=%q; want %q", got, want)
	}
	if got, want := o.FirstObjs[0].Literal, `lib\crt0.o`; got != want {
		t.Errorf("literal after NormalizePaths('\\\\')=%q; want %q", got, want)
	}
}

func TestParseObjRefs(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want []ObjRef
	}{
		{
			in: "",
		},
		{
			in:   "crt0.o  startup.o",
			want: []ObjRef{Literal("crt0.o startup.o")},
		},
		{
			in:   "_BUILT_DIR_.src/core",
			want: []ObjRef{Forward("src/core")},
		},
		{
			in: "crt0.o _BUILT_DIR_.src/a -lfoo _BUILT_DIR_.src/b",
			want: []ObjRef{
				Literal("crt0.o"),
				Forward("src/a"),
				Literal("-lfoo"),
				Forward("src/b"),
			},
		},
	} {
		got := ParseObjRefs(tc.in)
		if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(ObjRef{})); diff != "" {
			t.Errorf("ParseObjRefs(%q) diff -want +got:\n%s", tc.in, diff)
		}
		if tc.in != "" {
			if s := FormatObjRefs(got); s != joinFields(tc.in) {
				t.Errorf("FormatObjRefs(ParseObjRefs(%q))=%q; want %q", tc.in, s, joinFields(tc.in))
			}
		}
	}
}

func TestHasForward(t *testing.T) {
	if HasForward([]ObjRef{Literal("a.o")}) {
		t.Errorf("HasForward([a.o])=true; want false")
	}
	if !HasForward([]ObjRef{Literal("a.o"), Forward("")}) {
		t.Errorf("HasForward([a.o, _BUILT_DIR_.])=false; want true")
	}
}

func joinFields(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
