// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cleancmd implements the subcommand `clean`.
package cleancmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/nqbp/build/project"
	"go.chromium.org/infra/build/nqbp/subcmd/buildcmd"
)

// Cmd returns the Command for the `clean` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "clean [-project_dir <dir>] [-all | -b <variant>]",
		ShortDesc: "remove build outputs of a project",
		LongDesc:  "Removes the _<variant> output directory of the selected variant, or of all variants with -all.",
		CommandRun: func() subcommands.CommandRun {
			r := &cleanRun{stdout: os.Stdout}
			r.init()
			return r
		},
	}
}

type cleanRun struct {
	subcommands.CommandRunBase
	pf  buildcmd.ProjectFlags
	all bool
	qry bool

	stdout io.Writer
}

func (c *cleanRun) init() {
	c.pf.Register(&c.Flags)
	c.Flags.BoolVar(&c.all, "all", false, "clean all variants and legacy output directories")
	c.Flags.BoolVar(&c.qry, "qry", false, "print the project directory first")
}

func (c *cleanRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	started := time.Now()
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		return buildcmd.Report(os.Stderr, started, err)
	}
	return 0
}

func (c *cleanRun) run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return buildcmd.NewFlagError(fmt.Errorf("unexpected arguments: %q", args))
	}
	d, err := c.pf.Open(ctx, project.Config{})
	if err != nil {
		return err
	}
	if c.qry {
		fmt.Fprintln(c.stdout, d.Workspace().ProjectDir)
	}
	if c.all {
		return d.CleanAll()
	}
	variant, _, err := d.SelectVariant(c.pf.Variant, "")
	if err != nil {
		return buildcmd.NewFlagError(err)
	}
	return d.Clean(variant)
}
