// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildcmd implements the subcommand `build` which generates
// build.ninja for a project variant and runs ninja on it.
package buildcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/nqbp/build/project"
	"go.chromium.org/infra/build/nqbp/toolsupport/shutil"
)

// EnvCmdOptions holds extra flags appended to the command line.
const EnvCmdOptions = "NQBP_CMD_OPTIONS"

const buildUsage = `build a project variant.

 $ nqbp build [-project_dir <dir>] [-b <variant>|-try <variant>|-bld_all] [options]

generates _<variant>/build.ninja from libdirs.b and toolchain.star
of the project directory and runs ninja in _<variant>.
flags in $NQBP_CMD_OPTIONS are appended to the command line.
`

// Cmd returns the Command for the `build` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "build [options]",
		ShortDesc: "build a project variant with ninja",
		LongDesc:  buildUsage,
		CommandRun: func() subcommands.CommandRun {
			r := &buildRun{}
			r.init()
			return r
		},
	}
}

type buildRun struct {
	subcommands.CommandRunBase

	pf ProjectFlags
	ff FilterFlags

	try       string
	bldAll    bool
	clean     bool
	serial    bool
	verbose   bool
	buildTime bool
	genOnly   bool
	ninja     string
}

func (c *buildRun) init() {
	c.pf.Register(&c.Flags)
	c.ff.Register(&c.Flags)
	c.Flags.StringVar(&c.try, "try", "", "same as -b, but a missing variant is not a failure")
	c.Flags.BoolVar(&c.bldAll, "bld_all", false, "build all variants not starting with '_'")
	c.Flags.BoolVar(&c.clean, "clean", false, "clean all variants before building")
	c.Flags.BoolVar(&c.serial, "1", false, "suppress parallel building")
	c.Flags.BoolVar(&c.verbose, "v", false, "display compiler/linker commands")
	c.Flags.BoolVar(&c.buildTime, "bldtime", false, "set BUILD_TIME_UTC to the current time (else 0)")
	c.Flags.BoolVar(&c.genOnly, "gen_only", false, "generate build.ninja without running ninja")
	c.Flags.StringVar(&c.ninja, "ninja", "ninja", "ninja executable")
}

// Run runs the `build` subcommand.
func (c *buildRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	started := time.Now()
	ctx := cli.GetContext(a, c, env)
	err := c.parseEnvFlags(os.Getenv(EnvCmdOptions), args)
	if err == nil {
		err = c.run(ctx)
	}
	return Report(os.Stderr, started, err)
}

// parseEnvFlags parses the flags of envOptions and args after the
// ones already parsed.
func (c *buildRun) parseEnvFlags(envOptions string, args []string) error {
	if strings.TrimSpace(envOptions) != "" {
		extra, err := shutil.Split(envOptions)
		if err != nil {
			return FlagError{err: fmt.Errorf("bad $%s: %w", EnvCmdOptions, err)}
		}
		log.Debugf("%s=%q", EnvCmdOptions, extra)
		args = append(args, extra...)
	}
	if len(args) == 0 {
		return nil
	}
	if err := c.Flags.Parse(args); err != nil {
		return FlagError{err: err}
	}
	if err := parseFlagsFully(&c.Flags); err != nil {
		return FlagError{err: err}
	}
	if c.Flags.NArg() > 0 {
		return FlagError{err: fmt.Errorf("unexpected arguments: %q", c.Flags.Args())}
	}
	return nil
}

func (c *buildRun) run(ctx context.Context) error {
	if c.ff.AllowDuplicates && !c.serial {
		return FlagError{err: errors.New("-allow_duplicates requires -1")}
	}
	if c.try != "" && c.bldAll {
		return FlagError{err: errors.New("-try and -bld_all are mutually exclusive")}
	}
	resolve, err := c.ff.Options()
	if err != nil {
		return err
	}
	d, err := c.pf.Open(ctx, project.Config{
		Resolve:   resolve,
		BuildTime: c.buildTime,
		Verbose:   c.verbose,
		Serial:    c.serial,
		GenOnly:   c.genOnly,
		Ninja:     c.ninja,
		Executor:  project.ExecExecutor{},
	})
	if err != nil {
		return err
	}
	if c.clean {
		if err := d.CleanAll(); err != nil {
			return err
		}
	}
	if c.bldAll {
		if err := d.BuildAll(ctx); err != nil {
			return buildError{err: err}
		}
		return nil
	}
	variant, ok, err := d.SelectVariant(c.pf.Variant, c.try)
	if err != nil {
		return FlagError{err: err}
	}
	if !ok {
		return errNothingToDo
	}
	if err := d.Build(ctx, variant); err != nil {
		return buildError{err: err}
	}
	return nil
}

// parse flags without stopping at non flags.
func parseFlagsFully(flagSet *flag.FlagSet) error {
	var rest []string
	for {
		args := flagSet.Args()
		if len(args) == 0 {
			break
		}
		argsRemaining := len(args)
		for i, arg := range args {
			if !strings.HasPrefix(arg, "-") {
				rest = append(rest, arg)
				argsRemaining--
				continue
			}
			err := flagSet.Parse(args[i:])
			if err != nil {
				return err
			}
			break
		}
		if argsRemaining == 0 {
			break
		}
	}
	// rest are non-flags. set it to Args.
	return flagSet.Parse(rest)
}
