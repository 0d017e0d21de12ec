// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
)

// Load repositories of toolchain.star.
const (
	// builtinRepo is the embedded library, "@builtin//nqbp.star".
	builtinRepo = "builtin"
	// pkgRepo is the package root, "@pkg//top/arm.star".
	pkgRepo = "pkg"
)

// starModule names a Starlark file: path in repo, or an absolute host
// path when repo is empty.
type starModule struct {
	repo string
	path string
}

func (m starModule) String() string {
	if m.repo == "" {
		return m.path
	}
	return "@" + m.repo + "//" + m.path
}

// resolveLoad returns the module named by a load statement in m.
// Relative names stay in the repository of m.
func (m starModule) resolveLoad(name string) (starModule, error) {
	if !strings.HasPrefix(name, "@") {
		if path.IsAbs(name) {
			return starModule{repo: m.repo, path: name}, nil
		}
		return starModule{repo: m.repo, path: path.Join(path.Dir(m.path), name)}, nil
	}
	repo, p, ok := strings.Cut(name[1:], "//")
	if !ok || repo == "" || p == "" {
		return starModule{}, fmt.Errorf("bad load %q: want @<repo>//<path>", name)
	}
	return starModule{repo: repo, path: p}, nil
}

type loadResult struct {
	globals starlark.StringDict
	err     error
}

// starLoader executes toolchain.star and the modules it loads, each
// once.
type starLoader struct {
	ctx         context.Context
	repos       map[string]fs.FS
	predeclared starlark.StringDict

	// results by module name. nil while the module is executing.
	results map[string]*loadResult
}

func newStarLoader(ctx context.Context, repos map[string]fs.FS) *starLoader {
	return &starLoader{
		ctx:         ctx,
		repos:       repos,
		predeclared: builtinModule(),
		results:     make(map[string]*loadResult),
	}
}

// threadModule is the thread local key of the executing module.
const threadModule = "nqbp.module"

// load implements starlark.Thread.Load.
func (l *starLoader) load(thread *starlark.Thread, name string) (starlark.StringDict, error) {
	cur, _ := thread.Local(threadModule).(starModule)
	m, err := cur.resolveLoad(name)
	if err != nil {
		return nil, err
	}
	return l.exec(m)
}

// exec executes m unless it was already executed.
func (l *starLoader) exec(m starModule) (starlark.StringDict, error) {
	if err := l.ctx.Err(); err != nil {
		return nil, err
	}
	key := m.String()
	if r, ok := l.results[key]; ok {
		if r == nil {
			return nil, fmt.Errorf("cycle in load graph at %s", key)
		}
		return r.globals, r.err
	}
	var buf []byte
	var err error
	if m.repo == "" {
		buf, err = os.ReadFile(m.path)
	} else {
		repo, ok := l.repos[m.repo]
		if !ok {
			return nil, fmt.Errorf("unknown repository %q in load of %s", m.repo, key)
		}
		buf, err = fs.ReadFile(repo, m.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	log.Debugf("exec %s", key)
	thread := &starlark.Thread{
		Name: key,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("%s: %s", thread.Name, msg)
		},
		Load: l.load,
	}
	thread.SetLocal(threadModule, m)
	l.results[key] = nil
	globals, err := starlark.ExecFile(thread, key, buf, l.predeclared)
	l.results[key] = &loadResult{globals: globals, err: err}
	return globals, err
}
