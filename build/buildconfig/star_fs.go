// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// projectFS is `ctx.fs` of init. Names are slash separated and relative
// to the project directory, and may not leave it.
type projectFS struct {
	ctx   context.Context
	fsys  fs.FS
	dir   string
	cache *fscache
}

// starFS returns `ctx.fs` for the project directory dir.
//
//	read(fname)     bytes of fname
//	is_dir(fname)   fname is a directory; fails if it does not exist
//	exists(fname)
//	glob(pattern)   names matching pattern, see fs.Glob
func starFS(ctx context.Context, fsys fs.FS, dir string, fsc *fscache) starlark.Value {
	p := &projectFS{ctx: ctx, fsys: fsys, dir: dir, cache: fsc}
	return starlarkstruct.FromStringDict(starlark.String("fs"), starlark.StringDict{
		"read":   p.builtin("read", "fname", p.read),
		"is_dir": p.builtin("is_dir", "fname", p.isDir),
		"exists": p.builtin("exists", "fname", p.exists),
		"glob":   p.builtin("glob", "pattern", p.glob),
	})
}

func (p *projectFS) builtin(name, param string, f func(string) (starlark.Value, error)) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var arg string
		if err := starlark.UnpackArgs(name, args, kwargs, param, &arg); err != nil {
			return starlark.None, err
		}
		log.Debugf("fs.%s(%q) in %s", name, arg, p.dir)
		return f(arg)
	})
}

// name converts fname to an fs.FS name.
func (p *projectFS) name(fname string) (string, error) {
	name := path.Clean(fname)
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%q is not a path inside %s", fname, p.dir)
	}
	return name, nil
}

func (p *projectFS) read(fname string) (starlark.Value, error) {
	name, err := p.name(fname)
	if err != nil {
		return starlark.None, err
	}
	buf, err := p.cache.Get(p.ctx, p.fsys, name)
	if err != nil {
		return starlark.None, err
	}
	return starlark.Bytes(buf), nil
}

func (p *projectFS) isDir(fname string) (starlark.Value, error) {
	name, err := p.name(fname)
	if err != nil {
		return starlark.None, err
	}
	fi, err := fs.Stat(p.fsys, name)
	if err != nil {
		return starlark.None, err
	}
	return starlark.Bool(fi.IsDir()), nil
}

func (p *projectFS) exists(fname string) (starlark.Value, error) {
	name, err := p.name(fname)
	if err != nil {
		return starlark.None, err
	}
	_, err = fs.Stat(p.fsys, name)
	return starlark.Bool(err == nil), nil
}

func (p *projectFS) glob(pattern string) (starlark.Value, error) {
	matches, err := fs.Glob(p.fsys, pattern)
	if err != nil {
		return starlark.None, err
	}
	return packList(matches), nil
}
