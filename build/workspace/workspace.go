// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package workspace describes the directory roots a build runs against.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment variables that override root detection.
const (
	EnvWorkRoot = "NQBP_WORK_ROOT"
	EnvPkgRoot  = "NQBP_PKG_ROOT"
)

// EnvFile is the optional dotenv file loaded from the package root.
const EnvFile = "nqbp.env"

// markers are directory names whose parent is a package root.
var markers = []string{"projects", "tests"}

// Context holds the roots of one build.
type Context struct {
	// WorkRoot is the directory holding the package and its external
	// packages.
	WorkRoot string
	// PkgRoot is the root of the current package.
	PkgRoot string
	// ProjectDir is the directory containing libdirs.b.
	ProjectDir string
	// XpkgsDir is the directory name, relative to WorkRoot, of external
	// packages.
	XpkgsDir string
	// XsrcRoot is the third party source tree of the package.
	XsrcRoot string

	// LookupEnv looks up environment variables. os.LookupEnv if nil.
	LookupEnv func(key string) (string, bool)
}

// New returns a context with explicit roots.
func New(workRoot, pkgRoot, projectDir string) *Context {
	return &Context{
		WorkRoot:   workRoot,
		PkgRoot:    pkgRoot,
		ProjectDir: projectDir,
		XpkgsDir:   "xpkgs",
		XsrcRoot:   filepath.Join(pkgRoot, "xsrc"),
	}
}

// Detect returns the context for projectDir.
// The package root is $NQBP_PKG_ROOT or the parent of the outermost
// ancestor named "projects" or "tests". The work root is $NQBP_WORK_ROOT
// or the parent of the package root.
func Detect(projectDir string) (*Context, error) {
	prjdir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, err
	}
	pkgRoot := os.Getenv(EnvPkgRoot)
	if pkgRoot == "" {
		pkgRoot, err = findPkgRoot(prjdir)
		if err != nil {
			return nil, err
		}
	}
	workRoot := os.Getenv(EnvWorkRoot)
	if workRoot == "" {
		workRoot = filepath.Dir(pkgRoot)
	}
	c := New(workRoot, pkgRoot, prjdir)
	log.Debugf("workspace work_root=%s pkg_root=%s project=%s", c.WorkRoot, c.PkgRoot, c.ProjectDir)
	return c, nil
}

func findPkgRoot(dir string) (string, error) {
	var found string
	for d := dir; ; {
		for _, m := range markers {
			if filepath.Base(d) == m {
				found = filepath.Dir(d)
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	if found == "" {
		return "", fmt.Errorf("no package root for %s: no ancestor named %q and $%s not set", dir, markers, EnvPkgRoot)
	}
	return found, nil
}

// LoadEnvFile loads <pkgroot>/nqbp.env if present.
// Variables already set in the environment are kept.
func (c *Context) LoadEnvFile() error {
	fname := filepath.Join(c.PkgRoot, EnvFile)
	err := godotenv.Load(fname)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", fname, err)
	}
	log.Debugf("loaded %s", fname)
	return nil
}

// Getenv looks up key in the environment of the context.
func (c *Context) Getenv(key string) (string, bool) {
	if c.LookupEnv != nil {
		return c.LookupEnv(key)
	}
	return os.LookupEnv(key)
}

// XpkgsRoot returns the directory of external packages.
func (c *Context) XpkgsRoot() string {
	return filepath.Join(c.WorkRoot, c.XpkgsDir)
}

// Rel returns path relative to the package root, or path when it is not
// under the package root.
func (c *Context) Rel(path string) string {
	rel, err := filepath.Rel(c.PkgRoot, path)
	if err != nil || !filepath.IsLocal(rel) {
		return path
	}
	return filepath.ToSlash(rel)
}
