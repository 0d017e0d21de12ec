// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package builtdir

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
	"go.chromium.org/infra/build/nqbp/build/libdirs"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

type fakeLister map[string][]string

func (f fakeLister) Sources(e libdirs.Entry) ([]string, error) {
	srcs, ok := f[e.Path]
	if !ok {
		return nil, errors.New("no such directory")
	}
	return srcs, nil
}

func testExpander() *Expander {
	return &Expander{
		WS: workspace.New("/w", "/w/p", "/w/p/projects/x"),
		Entries: []libdirs.Entry{
			{Path: "src/startup", Origin: libdirs.Local},
			{Path: "pkgx/src/end", Origin: libdirs.ExternalPackage},
			{Path: "src/broken", Origin: libdirs.Local},
		},
		ObjectRoot: "out",
		ObjExt:     "o",
		Lister: fakeLister{
			"src/startup":  {"vectors.s", "crt0.c", "init.cpp"},
			"pkgx/src/end": {"fini.c"},
		},
	}
}

func TestExpand(t *testing.T) {
	x := testExpander()
	refs := buildopts.ParseObjRefs("-Wl,--whole-archive _BUILT_DIR_.src/startup _BUILT_DIR_.pkgx/src/end -lm")

	got, err := x.Expand(refs)
	if err != nil {
		t.Fatalf("Expand(%v)=%v; want nil error", refs, err)
	}
	want := []string{
		"-Wl,--whole-archive",
		filepath.Join("out", "src", "startup", "vectors.o"),
		filepath.Join("out", "src", "startup", "crt0.o"),
		filepath.Join("out", "src", "startup", "init.o"),
		filepath.Join("out", "xpkgs", "pkgx", "src", "end", "fini.o"),
		"-lm",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand(%v) diff -want +got:\n%s", refs, diff)
	}

	objs, err := x.Objects(refs)
	if err != nil {
		t.Fatalf("Objects(%v)=%v; want nil error", refs, err)
	}
	if diff := cmp.Diff(want[1:5], objs); diff != "" {
		t.Errorf("Objects(%v) diff -want +got:\n%s", refs, diff)
	}
}

func TestExpand_ThreeSources(t *testing.T) {
	x := testExpander()
	got, err := x.Expand([]buildopts.ObjRef{buildopts.Forward("src/startup")})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("Expand(src/startup)=%q; want 3 objects", got)
	}
	for i, src := range []string{"vectors", "crt0", "init"} {
		if !strings.HasPrefix(got[i], "out") || !strings.HasSuffix(got[i], src+".o") {
			t.Errorf("Expand(src/startup)[%d]=%q; want out/.../%s.o", i, got[i], src)
		}
	}
}

func TestExpandText(t *testing.T) {
	x := testExpander()
	got, err := x.ExpandText("crt.o _BUILT_DIR_.pkgx/src/end")
	if err != nil {
		t.Fatal(err)
	}
	want := "crt.o " + filepath.Join("out", "xpkgs", "pkgx", "src", "end", "fini.o")
	if got != want {
		t.Errorf("ExpandText(...)=%q; want %q", got, want)
	}

	got, err = x.ExpandText("")
	if err != nil || got != "" {
		t.Errorf("ExpandText(\"\")=%q, %v; want \"\", nil", got, err)
	}
}

func TestExpand_Missing(t *testing.T) {
	x := testExpander()
	text := "a.o _BUILT_DIR_.src/startup _BUILT_DIR_.src/nope"
	_, err := x.ExpandText(text)
	var merr *MissingReferenceError
	if !errors.As(err, &merr) {
		t.Fatalf("ExpandText(%q)=%v; want MissingReferenceError", text, err)
	}
	if merr.Dir != "src/nope" || merr.Text != text {
		t.Errorf("MissingReferenceError=%+v; want Dir=src/nope Text=%q", merr, text)
	}

	// Prefix of an entry path is not a match.
	_, err = x.ExpandText("_BUILT_DIR_.src/start")
	if !errors.As(err, &merr) {
		t.Errorf("ExpandText(prefix)=%v; want MissingReferenceError", err)
	}
}

func TestExpand_ListerError(t *testing.T) {
	x := testExpander()
	_, err := x.ExpandText("_BUILT_DIR_.src/broken")
	if err == nil {
		t.Fatal("ExpandText(src/broken)=nil error; want error")
	}
	var merr *MissingReferenceError
	if errors.As(err, &merr) {
		t.Errorf("ExpandText(src/broken)=%v; want lister error, not MissingReferenceError", err)
	}
}
