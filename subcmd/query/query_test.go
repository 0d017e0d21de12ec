// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package query

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maruel/subcommands"
	"gopkg.in/yaml.v3"

	"go.chromium.org/infra/build/nqbp/build/workspace"
)

func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv(workspace.EnvPkgRoot, "")
	t.Setenv(workspace.EnvWorkRoot, "")
	pkg := filepath.Join(t.TempDir(), "colony")
	prj := filepath.Join(pkg, "projects", "app", "linux")
	for fname, content := range map[string]string{
		"src/core/a.c":                      "",
		"src/io/file1.c":                    "",
		"src/io/file2.c":                    "",
		"src/io/file3.c":                    "",
		"projects/app/linux/libdirs.b":      "src/core\nsrc/io < file1.c file2.c\n",
		"projects/app/linux/toolchain.star": "load(\"@builtin//struct.star\", \"module\")\n\ndef init(ctx):\n    return module(\"toolchain\", output_name = \"app.exe\")\n",
	} {
		p := filepath.Join(pkg, filepath.FromSlash(fname))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return prj
}

// runQuery runs the query command cmd with args and returns its output.
func runQuery(t *testing.T, cmd *subcommands.Command, args ...string) (string, error) {
	t.Helper()
	c := cmd.CommandRun().(*queryRun)
	var buf bytes.Buffer
	c.stdout = &buf
	if err := c.Flags.Parse(args); err != nil {
		t.Fatalf("Parse(%q)=%v; want nil error", args, err)
	}
	err := c.run(context.Background(), c.Flags.Args())
	return buf.String(), err
}

func TestQueries(t *testing.T) {
	prj := setupProject(t)
	for _, tc := range []struct {
		name string
		cmd  *subcommands.Command
		args []string
		want []string
	}{
		{
			name: "prjdir",
			cmd:  cmdPrjDir(),
			want: []string{prj},
		},
		{
			name: "variants",
			cmd:  cmdVariants(),
			want: []string{"Toolchain: Generic GCC", "  release *"},
		},
		{
			name: "dirs",
			cmd:  cmdDirs(),
			want: []string{"src/core", "src/io"},
		},
		{
			name: "dirs filters",
			cmd:  cmdDirs(),
			args: []string{"-filters", "-q", "io"},
			want: []string{"src/io  <<< file1.c file2.c"},
		},
		{
			name: "opts",
			cmd:  cmdOpts(),
			args: []string{"-g"},
			want: []string{"VARIANT: release", "-DBUILD_VARIANT_RELEASE", "-DDEBUG_BUILD"},
		},
		{
			name: "opts all",
			cmd:  cmdOpts(),
			args: []string{"-all"},
			want: []string{"VARIANT: release"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"-project_dir", prj}, tc.args...)
			got, err := runQuery(t, tc.cmd, args...)
			if err != nil {
				t.Fatalf("%s %q=%v; want nil error", tc.name, args, err)
			}
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Errorf("%s %q output does not contain %q:\n%s", tc.name, args, w, got)
				}
			}
		})
	}
}

func TestQueryDirs_YAML(t *testing.T) {
	prj := setupProject(t)
	got, err := runQuery(t, cmdDirs(), "-project_dir", prj, "-yaml")
	if err != nil {
		t.Fatalf("dirs -yaml=%v; want nil error", err)
	}
	var entries []dirEntry
	if err := yaml.Unmarshal([]byte(got), &entries); err != nil {
		t.Fatalf("yaml.Unmarshal(%q)=%v", got, err)
	}
	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	if diff := cmp.Diff([]string{"src/core", "src/io"}, paths); diff != "" {
		t.Errorf("dirs -yaml paths diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"file1.c", "file2.c"}, entries[1].Files); diff != "" {
		t.Errorf("dirs -yaml src/io files diff -want +got:\n%s", diff)
	}
}

func TestQueryCompileFlags(t *testing.T) {
	prj := setupProject(t)
	if _, err := runQuery(t, cmdCompileFlags(), "-project_dir", prj); err != nil {
		t.Fatalf("compile_flags=%v; want nil error", err)
	}
	pkg := filepath.Dir(filepath.Dir(filepath.Dir(prj)))
	buf, err := os.ReadFile(filepath.Join(pkg, "compile_flags.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(buf), "-DBUILD_VARIANT_RELEASE") {
		t.Errorf("compile_flags.txt=%q; want BUILD_VARIANT_RELEASE define", buf)
	}
}

func TestQueryErrors(t *testing.T) {
	prj := setupProject(t)
	if _, err := runQuery(t, cmdOpts(), "-project_dir", prj, "-b", "arm"); err == nil {
		t.Errorf("opts -b arm=nil; want unknown variant error")
	}
	if _, err := runQuery(t, cmdDeps(), "-project_dir", prj); err == nil {
		t.Errorf("deps before build=nil; want error")
	}
	if _, err := runQuery(t, cmdPrjDir(), "-project_dir", prj, "extra"); err == nil {
		t.Errorf("prjdir extra=nil; want error")
	}
}
