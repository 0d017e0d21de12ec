// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/nqbp/build/project"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

func writeFile(t *testing.T, fname, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(fname), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fname, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setupProject creates a package with one project and returns the
// project directory.
func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv(workspace.EnvPkgRoot, "")
	t.Setenv(workspace.EnvWorkRoot, "")
	pkg := filepath.Join(t.TempDir(), "colony")
	prj := filepath.Join(pkg, "projects", "app", "linux")
	writeFile(t, filepath.Join(pkg, "src", "core", "a.c"), "")
	writeFile(t, filepath.Join(prj, "main.c"), "")
	writeFile(t, filepath.Join(prj, "libdirs.b"), "src/core\n")
	writeFile(t, filepath.Join(prj, "toolchain.star"), `
load("@builtin//nqbp.star", "nqbp")
load("@builtin//struct.star", "module")

def init(ctx):
    return module(
        "toolchain",
        output_name = "app.exe",
        variants = {
            "posix": nqbp.variant(),
            "_scratch": nqbp.variant(),
        },
        default_variant = "posix",
    )
`)
	return prj
}

func newBuildRun(t *testing.T, args ...string) *buildRun {
	t.Helper()
	c := &buildRun{}
	c.init()
	if err := c.Flags.Parse(args); err != nil {
		t.Fatalf("Parse(%q)=%v; want nil error", args, err)
	}
	return c
}

func TestRun_GenOnly(t *testing.T) {
	ctx := context.Background()
	prj := setupProject(t)
	c := newBuildRun(t, "-project_dir", prj, "-gen_only", "-bldnum", "12", "-def1", "FOO")
	if err := c.run(ctx); err != nil {
		t.Fatalf("run()=%v; want nil error", err)
	}
	buf, err := os.ReadFile(filepath.Join(prj, "_posix", project.NinjaFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"-DBUILD_VARIANT_POSIX", "-DBUILD_NUMBER=12", "-DFOO", "build app.exe: link"} {
		if !strings.Contains(string(buf), want) {
			t.Errorf("build.ninja does not contain %q:\n%s", want, buf)
		}
	}
}

func TestRun_BldAll(t *testing.T) {
	ctx := context.Background()
	prj := setupProject(t)
	c := newBuildRun(t, "-project_dir", prj, "-gen_only", "-bld_all")
	if err := c.run(ctx); err != nil {
		t.Fatalf("run()=%v; want nil error", err)
	}
	if _, err := os.Stat(filepath.Join(prj, "_posix", project.NinjaFile)); err != nil {
		t.Errorf("posix not generated: %v", err)
	}
	if _, err := os.Stat(filepath.Join(prj, "_scratch")); err == nil {
		t.Errorf("_scratch generated; want skipped")
	}
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	prj := setupProject(t)
	for _, tc := range []struct {
		name string
		args []string
		code int
	}{
		{
			name: "try missing",
			args: []string{"-try", "arm"},
			code: 0,
		},
		{
			name: "unknown variant",
			args: []string{"-b", "arm"},
			code: 2,
		},
		{
			name: "duplicates without serial",
			args: []string{"-allow_duplicates"},
			code: 2,
		},
		{
			name: "p and x",
			args: []string{"-p", "-x"},
			code: 2,
		},
		{
			name: "bad regexp",
			args: []string{"-Q", "("},
			code: 2,
		},
		{
			name: "try and bld_all",
			args: []string{"-try", "posix", "-bld_all"},
			code: 2,
		},
		{
			name: "no toolchain",
			args: []string{"-project_dir", filepath.Dir(prj)},
			code: 1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"-project_dir", prj, "-gen_only"}, tc.args...)
			c := newBuildRun(t, args...)
			err := c.run(ctx)
			if got := ExitCode(err); got != tc.code {
				t.Errorf("ExitCode(run(%q))=%d; want %d (err=%v)", args, got, tc.code, err)
			}
		})
	}
}

func TestParseEnvFlags(t *testing.T) {
	c := newBuildRun(t, "-b", "posix")
	err := c.parseEnvFlags("-g -def2 'A B' -b arm", nil)
	if err != nil {
		t.Fatalf("parseEnvFlags()=%v; want nil error", err)
	}
	if !c.pf.Debug || c.pf.Defines[1] != "A B" || c.pf.Variant != "arm" {
		t.Errorf("parseEnvFlags() flags=%+v; want -g, def2=%q and -b arm", c.pf, "A B")
	}

	c = newBuildRun(t)
	err = c.parseEnvFlags("-v stray", nil)
	var errFlag FlagError
	if !errors.As(err, &errFlag) {
		t.Errorf("parseEnvFlags(stray)=%v; want FlagError", err)
	}
	if err := c.parseEnvFlags("-b 'unterminated", nil); !errors.As(err, &errFlag) {
		t.Errorf("parseEnvFlags(unterminated)=%v; want FlagError", err)
	}
}

func TestExitCode(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errNothingToDo, 0},
		{NewFlagError(errors.New("bad")), 2},
		{buildError{err: &project.ExitError{Cmd: "ninja", Code: 5}}, 5},
		{errors.New("boom"), 1},
	} {
		if got := ExitCode(tc.err); got != tc.want {
			t.Errorf("ExitCode(%v)=%d; want %d", tc.err, got, tc.want)
		}
	}
}

func TestFilterFlags(t *testing.T) {
	c := newBuildRun(t, "-q", "io", "-Q", "^src/", "-c", "test", "-s", "core", "-e", "startup", "-noabs", "-p")
	opts, err := c.ff.Options()
	if err != nil {
		t.Fatalf("Options()=_, %v; want nil error", err)
	}
	got := []string{opts.Contains, opts.Match.String(), opts.NotContains, opts.Start, opts.Stop}
	want := []string{"io", "^src/", "test", "core", "startup"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Options() diff -want +got:\n%s", diff)
	}
	if !opts.NoAbsolute || !opts.NoExternal || opts.OnlyExternal || opts.NotMatch != nil {
		t.Errorf("Options()=%+v; want -noabs -p only", opts)
	}
}
