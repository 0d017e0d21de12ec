// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
)

// starPath returns the `path` module of toolchain.star. Paths are
// returned with '/' separators, except by native.
//
//	base(fname)
//	dir(fname)
//	join(...)
//	rel(basepath, targetpath)
//	isabs(fname)
//	native(fname)  rewrites separators for compiler flags
func starPath() starlark.Value {
	slash := func(f func(string) string) func(string) starlark.Value {
		return func(fname string) starlark.Value {
			return starlark.String(filepath.ToSlash(f(fname)))
		}
	}
	m := &starlarkstruct.Module{
		Name: "path",
		Members: starlark.StringDict{
			"base": pathBuiltin("base", slash(filepath.Base)),
			"dir":  pathBuiltin("dir", slash(filepath.Dir)),
			"isabs": pathBuiltin("isabs", func(fname string) starlark.Value {
				return starlark.Bool(filepath.IsAbs(fname))
			}),
			"native": pathBuiltin("native", func(fname string) starlark.Value {
				return starlark.String(buildopts.NormalizeSep(fname, os.PathSeparator))
			}),
			"join": starlark.NewBuiltin("join", starPathJoin),
			"rel":  starlark.NewBuiltin("rel", starPathRel),
		},
	}
	m.Freeze()
	return m
}

// pathBuiltin returns a builtin taking a single fname argument.
func pathBuiltin(name string, f func(fname string) starlark.Value) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var fname string
		if err := starlark.UnpackArgs(name, args, kwargs, "fname", &fname); err != nil {
			return starlark.None, err
		}
		return f(fname), nil
	})
}

func starPathJoin(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return starlark.None, fmt.Errorf("join: unexpected keyword arguments")
	}
	elems := make([]string, 0, len(args))
	for i, v := range args {
		s, ok := starlark.AsString(v)
		if !ok {
			return starlark.None, fmt.Errorf("join: argument %d: got %s, want string", i+1, v.Type())
		}
		elems = append(elems, s)
	}
	return starlark.String(filepath.ToSlash(filepath.Join(elems...))), nil
}

func starPathRel(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var basepath, targetpath string
	if err := starlark.UnpackArgs("rel", args, kwargs, "basepath", &basepath, "targetpath", &targetpath); err != nil {
		return starlark.None, err
	}
	rel, err := filepath.Rel(basepath, targetpath)
	if err != nil {
		return starlark.None, err
	}
	return starlark.String(filepath.ToSlash(rel)), nil
}
