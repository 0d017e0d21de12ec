// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

func testToolchain() *Toolchain {
	tc := GCC(workspace.New("/w", "/w/p", "/w/p/projects/x"), "a.out")
	tc.Defaults.Base = &buildopts.Options{CFlags: "-c", AsmFlags: "-c"}
	tc.Defaults.Debug = &buildopts.Options{CFlags: "-g"}
	tc.Defaults.Optimized = &buildopts.Options{CFlags: "-O2"}
	return tc
}

func TestCompose_Order(t *testing.T) {
	tc := testToolchain()
	tc.Variants["release"] = &Layers{
		UserBase:      &buildopts.Options{CFlags: "-DSAME", Inc: "-Iuser"},
		Base:          &buildopts.Options{CFlags: "-DSAME -c", Inc: "-Ibase"},
		UserOptimized: &buildopts.Options{CFlags: "-Os"},
		UserDebug:     &buildopts.Options{CFlags: "-Og"},
	}

	for _, tc2 := range []struct {
		name string
		sel  Selection
		want string
	}{
		{
			name: "optimized",
			sel:  Selection{BuildNumber: 7},
			want: "-DSAME -DSAME -c -DBUILD_VARIANT_RELEASE -DBUILD_NUMBER=7 -O2 -Os",
		},
		{
			name: "debug",
			sel:  Selection{Debug: true, Defines: []string{"FOO", "BAR=1"}},
			want: "-DSAME -DSAME -c -DBUILD_VARIANT_RELEASE -DBUILD_NUMBER=0 -DFOO -DBAR=1 -g -Og",
		},
	} {
		t.Run(tc2.name, func(t *testing.T) {
			got, err := Compose(tc, "release", tc2.sel)
			if err != nil {
				t.Fatalf("Compose(release, %+v)=%v; want nil error", tc2.sel, err)
			}
			if got.CFlags != tc2.want {
				t.Errorf("Compose(release, %+v).CFlags=%q; want %q", tc2.sel, got.CFlags, tc2.want)
			}
			if got.Inc != "-Iuser -Ibase" {
				t.Errorf("Compose(release, %+v).Inc=%q; want %q", tc2.sel, got.Inc, "-Iuser -Ibase")
			}
			user := strings.Index(got.Inc, "-Iuser")
			base := strings.Index(got.Inc, "-Ibase")
			if user > base {
				t.Errorf("user_base at %d after base at %d in %q", user, base, got.Inc)
			}
		})
	}
}

func TestCompose_AsmFlags(t *testing.T) {
	tc := testToolchain()
	tc.AsmSymDef = "--defsym "
	got, err := Compose(tc, "release", Selection{BuildNumber: 3, Defines: []string{"X"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "-c --defsym BUILD_VARIANT_RELEASE --defsym BUILD_NUMBER=3 --defsym X"
	if got.AsmFlags != want {
		t.Errorf("Compose(...).AsmFlags=%q; want %q", got.AsmFlags, want)
	}
}

func TestCompose_DoesNotModifyTable(t *testing.T) {
	tc := testToolchain()
	base := &buildopts.Options{CFlags: "-c", FirstObjs: []buildopts.ObjRef{buildopts.Literal("crt0.o")}}
	userBase := &buildopts.Options{CFlags: "-u"}
	tc.Variants["release"] = &Layers{Base: base, UserBase: userBase}

	for range 2 {
		got, err := Compose(tc, "release", Selection{})
		if err != nil {
			t.Fatal(err)
		}
		got.FirstObjs[0] = buildopts.Literal("changed.o")
	}
	if base.CFlags != "-c" || userBase.CFlags != "-u" {
		t.Errorf("table modified: base=%q user_base=%q", base.CFlags, userBase.CFlags)
	}
	if got := base.FirstObjs[0].Literal; got != "crt0.o" {
		t.Errorf("base.FirstObjs[0]=%q; want %q", got, "crt0.o")
	}
}

func TestCompose_Errors(t *testing.T) {
	tc := testToolchain()
	_, err := Compose(tc, "nope", Selection{})
	var verr *UnknownVariantError
	if !errors.As(err, &verr) {
		t.Fatalf("Compose(nope)=%v; want UnknownVariantError", err)
	}
	if diff := cmp.Diff([]string{"release"}, verr.Known); diff != "" {
		t.Errorf("UnknownVariantError.Known diff -want +got:\n%s", diff)
	}

	_, err = Compose(tc, "release", Selection{Defines: []string{"1", "2", "3", "4", "5", "6"}})
	if err == nil {
		t.Errorf("Compose(6 defines)=nil error; want error")
	}
}

func TestCompose_NormalizePaths(t *testing.T) {
	tc := testToolchain()
	tc.Variants["release"] = &Layers{
		UserBase: &buildopts.Options{
			Inc:       `-I..\inc`,
			CFlags:    `-DDIR="a\b"`,
			FirstObjs: buildopts.ParseObjRefs(`_BUILT_DIR_.src\startup`),
		},
	}
	got, err := Compose(tc, "release", Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.CFlags, `-DDIR="a\b"`) {
		t.Errorf("Compose(...).CFlags=%q; want flag text untouched", got.CFlags)
	}
	if wantInc := buildopts.NormalizeSep(`-I..\inc`, os.PathSeparator); !strings.HasPrefix(got.Inc, wantInc) {
		t.Errorf("Compose(...).Inc=%q; want prefix %q", got.Inc, wantInc)
	}
	if got.FirstObjs[0].Dir != "src/startup" {
		t.Errorf("Compose(...).FirstObjs[0].Dir=%q; want %q", got.FirstObjs[0].Dir, "src/startup")
	}
}

func TestValidate(t *testing.T) {
	tc := testToolchain()
	if err := tc.Validate(); err != nil {
		t.Errorf("Validate()=%v; want nil", err)
	}
	tc.DefaultVariant = "debug"
	if err := tc.Validate(); err == nil {
		t.Errorf("Validate() with undefined default=nil; want error")
	}
	tc.Variants = nil
	if err := tc.Validate(); err == nil {
		t.Errorf("Validate() without variants=nil; want error")
	}
}

func TestGCC_DefaultOutputName(t *testing.T) {
	ws := workspace.New("/w", "/w/p", "/w/p/projects/x")
	tc := GCC(ws, "")
	if tc.OutputName != DefaultOutputName {
		t.Errorf("GCC(ws, %q).OutputName=%q; want %q", "", tc.OutputName, DefaultOutputName)
	}
	if err := tc.Validate(); err != nil {
		t.Errorf("GCC(ws, %q).Validate()=%v; want nil", "", err)
	}
	if got := GCC(ws, "app.elf").OutputName; got != "app.elf" {
		t.Errorf("GCC(ws, %q).OutputName=%q; want %q", "app.elf", got, "app.elf")
	}
}

func TestListVariants(t *testing.T) {
	tc := testToolchain()
	tc.Variants["_test"] = &Layers{}
	tc.Variants["cpp11"] = &Layers{}
	tc.VariantOrder = []string{"release", "cpp11", "_test"}
	var buf bytes.Buffer
	tc.ListVariants(&buf)
	want := "Available Build Configurations/Variants:\n  release *\n  cpp11\n  _test\n"
	if got := buf.String(); got != want {
		t.Errorf("ListVariants()=%q; want %q", got, want)
	}
}

func TestCompileFlags(t *testing.T) {
	opts := &buildopts.Options{
		Inc:           "-I. -Isrc -Iinc -Isrc",
		CFlags:        "-c -Wall -x c++ -std=c++11 -DFOO",
		CppFlags:      "-fno-rtti -Wall",
		ClangdExclude: []string{"-x c++", "-c", "-std=c++11"},
		ClangdInclude: []string{"-xc++"},
	}
	want := []string{"-Isrc", "-Iinc", "-Wall", "-DFOO", "-fno-rtti", "-xc++"}
	if diff := cmp.Diff(want, CompileFlags(opts)); diff != "" {
		t.Errorf("CompileFlags(...) diff -want +got:\n%s", diff)
	}
}
