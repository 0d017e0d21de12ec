// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildconfig loads the toolchain of a project from its
// toolchain.star Starlark file.
package buildconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/nqbp/build/toolchain"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

const configEntryPoint = "init"

// FileName is the toolchain config of a project directory.
const FileName = "toolchain.star"

// Config is a loaded toolchain config.
type Config struct {
	fname string
	ws    *workspace.Context

	// flags used to run the build.
	flags map[string]string

	// global variables loaded by the config.
	globals starlark.StringDict

	// filesystem cache used by ctx.fs.
	fscache *fscache
}

// New loads fname. Relative loads resolve against the directory of the
// loading file; `@pkg//` loads against the package root and
// `@builtin//` loads the embedded library.
func New(ctx context.Context, fname string, ws *workspace.Context, flags map[string]string) (*Config, error) {
	fname, err := filepath.Abs(fname)
	if err != nil {
		return nil, err
	}
	builtin, err := fs.Sub(builtinStar, "builtin")
	if err != nil {
		return nil, err
	}
	repos := map[string]fs.FS{
		builtinRepo: builtin,
		pkgRepo:     os.DirFS(ws.PkgRoot),
	}
	loader := newStarLoader(ctx, repos)
	resolve.AllowRecursion = true

	globals, err := loader.exec(starModule{path: filepath.ToSlash(fname)})
	if err != nil {
		log.Warnf("failed to exec file %s: %v", fname, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, err
	}
	log.Debugf("config: %s", globals)
	v, ok := globals[configEntryPoint]
	if !ok {
		return nil, fmt.Errorf("%s is not defined in %s", configEntryPoint, fname)
	}
	if _, ok := v.(starlark.Callable); !ok {
		return nil, fmt.Errorf("%s %s is not callable in %s", configEntryPoint, v.Type(), fname)
	}
	return &Config{
		fname:   fname,
		ws:      ws,
		flags:   flags,
		globals: globals,
		fscache: newFSCache(),
	}, nil
}

// HandlerError is an error raised by a config function.
type HandlerError struct {
	entry string
	fn    starlark.Value
	err   *starlark.EvalError
}

func (e HandlerError) Error() string {
	if fn, ok := e.fn.(*starlark.Function); ok {
		return fmt.Sprintf("failed to run %s[%s:%s]: %v", e.entry, fn.Position(), fn.Name(), e.err)
	}
	return fmt.Sprintf("failed to run %s[%s]: %v", e.entry, e.fn, e.err)
}

func (e HandlerError) Backtrace() string {
	return e.err.CallStack.String()
}

func (e HandlerError) Unwrap() error {
	return e.err
}

// Init runs `init(ctx)` and returns the toolchain described by the
// module it returns.
func (cfg *Config) Init(ctx context.Context) (*toolchain.Toolchain, error) {
	fun := cfg.globals[configEntryPoint]
	thread := &starlark.Thread{
		Name: configEntryPoint,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load is not allowed in init")
		},
	}
	hctx := starlarkstruct.FromStringDict(starlark.String("ctx"), map[string]starlark.Value{
		"workspace": starWorkspace(cfg.ws),
		"flags":     starFlags(cfg.flags),
		"env":       starEnv(cfg.ws),
		"fs":        starFS(ctx, os.DirFS(cfg.ws.ProjectDir), cfg.ws.ProjectDir, cfg.fscache),
	})
	log.Debugf("hctx: %v", hctx)
	ret, err := starlark.Call(thread, fun, []starlark.Value{hctx}, nil)
	if err != nil {
		log.Warnf("thread:%s failed to run %s: %v", thread.Name, configEntryPoint, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
			return nil, HandlerError{entry: configEntryPoint, fn: fun, err: eerr}
		}
		return nil, fmt.Errorf("failed to run %s: %w", configEntryPoint, err)
	}
	m, ok := ret.(*starlarkstruct.Module)
	if !ok {
		return nil, fmt.Errorf("%s returned %s, want module", configEntryPoint, ret.Type())
	}
	tc, err := unpackToolchain(cfg.ws, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.fname, err)
	}
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.fname, err)
	}
	return tc, nil
}

// Load loads the toolchain.star of the project of ws.
func Load(ctx context.Context, ws *workspace.Context, flags map[string]string) (*toolchain.Toolchain, error) {
	cfg, err := New(ctx, filepath.Join(ws.ProjectDir, FileName), ws, flags)
	if err != nil {
		return nil, err
	}
	return cfg.Init(ctx)
}
