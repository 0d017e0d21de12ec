// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildcmd

import (
	"context"
	"flag"
	"fmt"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/nqbp/build/buildconfig"
	"go.chromium.org/infra/build/nqbp/build/libdirs"
	"go.chromium.org/infra/build/nqbp/build/project"
	"go.chromium.org/infra/build/nqbp/build/toolchain"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// ProjectFlags locate a project and select how its variant is composed.
// They are shared by the build, clean and query subcommands.
type ProjectFlags struct {
	Dir         string
	Variant     string
	Debug       bool
	BuildNumber int
	Defines     [toolchain.MaxDefines]string
	LogDebug    bool
}

// Register registers the flags on fs.
func (f *ProjectFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Dir, "project_dir", ".", "project directory, containing libdirs.b and toolchain.star")
	fs.StringVar(&f.Variant, "b", "", "build variant. the toolchain's default variant if empty")
	fs.BoolVar(&f.Debug, "g", false, "debug build (default is release build)")
	fs.IntVar(&f.BuildNumber, "bldnum", 0, "build number passed as BUILD_NUMBER")
	for i := range f.Defines {
		fs.StringVar(&f.Defines[i], fmt.Sprintf("def%d", i+1), "", fmt.Sprintf("defines the preprocessor symbol SYM%d", i+1))
	}
	fs.BoolVar(&f.LogDebug, "debug", false, "enables debug logs of nqbp")
}

func (f *ProjectFlags) defines() []string {
	var defs []string
	for _, d := range f.Defines {
		if d != "" {
			defs = append(defs, d)
		}
	}
	return defs
}

// starFlags are the flags visible to toolchain.star as ctx.flags.
func (f *ProjectFlags) starFlags() map[string]string {
	return map[string]string{
		"variant": f.Variant,
		"debug":   strconv.FormatBool(f.Debug),
		"bldnum":  strconv.Itoa(f.BuildNumber),
	}
}

// Open detects the workspace of the project, loads its toolchain and
// returns a driver for it. Fields of cfg set by the flags are
// overwritten.
func (f *ProjectFlags) Open(ctx context.Context, cfg project.Config) (*project.Driver, error) {
	if f.LogDebug {
		log.SetLevel(log.DebugLevel)
	}
	ws, err := workspace.Detect(f.Dir)
	if err != nil {
		return nil, err
	}
	if err := ws.LoadEnvFile(); err != nil {
		return nil, err
	}
	tc, err := buildconfig.Load(ctx, ws, f.starFlags())
	if err != nil {
		return nil, err
	}
	cfg.WS = ws
	cfg.Toolchain = tc
	cfg.Debug = f.Debug
	cfg.BuildNumber = f.BuildNumber
	cfg.Defines = f.defines()
	return project.New(cfg)
}

// FilterFlags filter the resolved directory list.
type FilterFlags struct {
	noExternal   bool
	onlyExternal bool
	noAbsolute   bool
	contains     string
	match        string
	notContains  string
	notMatch     string
	start        string
	stop         string

	AllowDuplicates bool
}

// Register registers the flags on fs.
func (f *FilterFlags) Register(fs *flag.FlagSet) {
	fs.BoolVar(&f.noExternal, "p", false, "skip directories of external packages")
	fs.BoolVar(&f.onlyExternal, "x", false, "only directories of external packages")
	fs.BoolVar(&f.noAbsolute, "noabs", false, "skip absolute directories")
	fs.StringVar(&f.contains, "q", "", "only directories containing the text")
	fs.StringVar(&f.match, "Q", "", "only directories matching the regexp")
	fs.StringVar(&f.notContains, "c", "", "skip directories containing the text")
	fs.StringVar(&f.notMatch, "C", "", "skip directories matching the regexp")
	fs.StringVar(&f.start, "s", "", "start at the first directory containing the text")
	fs.StringVar(&f.stop, "e", "", "stop at the first directory containing the text, after the start")
	fs.BoolVar(&f.AllowDuplicates, "allow_duplicates", false, "report duplicate directories as warnings. requires -1")
}

// Options returns the resolver options of the flags.
func (f *FilterFlags) Options() (libdirs.Options, error) {
	opts := libdirs.Options{
		NoExternal:      f.noExternal,
		OnlyExternal:    f.onlyExternal,
		NoAbsolute:      f.noAbsolute,
		Contains:        f.contains,
		NotContains:     f.notContains,
		Start:           f.start,
		Stop:            f.stop,
		AllowDuplicates: f.AllowDuplicates,
	}
	if f.noExternal && f.onlyExternal {
		return opts, FlagError{err: fmt.Errorf("-p and -x are mutually exclusive")}
	}
	var err error
	if f.match != "" {
		opts.Match, err = regexp.Compile(f.match)
		if err != nil {
			return opts, FlagError{err: fmt.Errorf("bad -Q: %w", err)}
		}
	}
	if f.notMatch != "" {
		opts.NotMatch, err = regexp.Compile(f.notMatch)
		if err != nil {
			return opts, FlagError{err: fmt.Errorf("bad -C: %w", err)}
		}
	}
	return opts, nil
}
