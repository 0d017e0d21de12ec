// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"embed"
	"os"
	"runtime"

	starjson "go.starlark.net/lib/json"
	starmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// embeds these Starlark files for @builtin.
//
//go:embed builtin/*.star
var builtinStar embed.FS

func builtinModule() starlark.StringDict {
	runtimeModule := &starlarkstruct.Module{
		Name: "runtime",
		Members: starlark.StringDict{
			"num_cpu": starlark.MakeInt(runtime.NumCPU()),
			"os":      starlark.String(runtime.GOOS),
			"arch":    starlark.String(runtime.GOARCH),
			"sep":     starlark.String(string(os.PathSeparator)),
		},
	}
	runtimeModule.Freeze()

	return starlark.StringDict{
		"__builtin_runtime": runtimeModule,
		"__builtin_path":    starPath(),
		"__builtin_json":    starjson.Module,
		"__builtin_math":    starmath.Module,
		"__builtin_struct":  starlark.NewBuiltin("struct", starlarkstruct.Make),
		"__builtin_module":  starlark.NewBuiltin("module", starlarkstruct.MakeModule),
	}
}

// starWorkspace returns the roots of ws as a struct.
func starWorkspace(ws *workspace.Context) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("workspace"), starlark.StringDict{
		"work_root":   starlark.String(ws.WorkRoot),
		"pkg_root":    starlark.String(ws.PkgRoot),
		"project_dir": starlark.String(ws.ProjectDir),
		"xsrc_root":   starlark.String(ws.XsrcRoot),
		"xpkgs_root":  starlark.String(ws.XpkgsRoot()),
	})
}

func starFlags(flags map[string]string) starlark.Value {
	dict := starlark.NewDict(len(flags))
	for k, v := range flags {
		dict.SetKey(starlark.String(k), starlark.String(v))
	}
	dict.Freeze()
	return dict
}

// starEnv returns `env(key, default=None)`, which looks key up in the
// environment of ws.
func starEnv(ws *workspace.Context) starlark.Value {
	return starlark.NewBuiltin("env", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var key string
		var def starlark.Value = starlark.None
		err := starlark.UnpackArgs("env", args, kwargs, "key", &key, "default?", &def)
		if err != nil {
			return starlark.None, err
		}
		v, ok := ws.Getenv(key)
		if !ok {
			return def, nil
		}
		return starlark.String(v), nil
	})
}
