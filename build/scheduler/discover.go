// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scheduler

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.chromium.org/infra/build/nqbp/toolsupport/shutil"
)

// DefaultMarker is the file that marks a project directory.
const DefaultMarker = "toolchain.star"

// Filter selects projects by the components of their path relative to
// the package root. Patterns use path.Match syntax.
type Filter struct {
	// Pattern must match a component. "here" or "" match everything.
	Pattern string
	// Also must each match a component (--p2, --p3).
	Also []string
	// Exclude must each match no component (--exclude, --e2, --e3).
	Exclude []string
}

// Match reports whether rel, a slash separated relative path, is
// selected by f.
func (f Filter) Match(rel string) (bool, error) {
	comps := strings.Split(rel, "/")
	pattern := f.Pattern
	if pattern == "" || pattern == "here" {
		pattern = "*"
	}
	ok, err := anyMatch(pattern, comps)
	if err != nil || !ok {
		return false, err
	}
	for _, p := range f.Also {
		ok, err := anyMatch(p, comps)
		if err != nil || !ok {
			return false, err
		}
	}
	for _, p := range f.Exclude {
		ok, err := anyMatch(p, comps)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}
	return true, nil
}

func anyMatch(pattern string, comps []string) (bool, error) {
	for _, c := range comps {
		ok, err := path.Match(pattern, c)
		if err != nil {
			return false, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Discover walks root for directories containing marker and returns
// the ones selected by f, in lexical order. Paths are matched relative
// to pkgRoot. Hidden directories and the output directories ("_"
// prefixed) of projects are not walked.
func Discover(root, pkgRoot, marker string, f Filter) ([]string, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if strings.HasPrefix(d.Name(), "_") {
			if _, err := os.Stat(filepath.Join(filepath.Dir(p), marker)); err == nil {
				return filepath.SkipDir
			}
		}
		if _, err := os.Stat(filepath.Join(p, marker)); err != nil {
			return nil
		}
		rel, err := filepath.Rel(pkgRoot, p)
		if err != nil {
			rel = p
		}
		ok, err := f.Match(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ok {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// ReadBuildList reads a build list file: each line not blank and not
// starting with '#' is a full argument list.
func ReadBuildList(fname string) ([][]string, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to open build list: %w", err)
	}
	defer f.Close()
	var lists [][]string
	s := bufio.NewScanner(f)
	lineno := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shutil.Split(filepath.ToSlash(line))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", fname, lineno, err)
		}
		lists = append(lists, args)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fname, err)
	}
	return lists, nil
}
