// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package query is the query subcommand to inspect a project without
// building it.
package query

import (
	"os"

	"github.com/maruel/subcommands"
)

func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "query <subcommand> [-project_dir <dir>] ...",
		ShortDesc: "query project directories, variants and options",
		LongDesc:  "query project directories, variants and options.",
		CommandRun: func() subcommands.CommandRun {
			c := &run{
				app: &subcommands.DefaultApplication{
					Name:  "nqbp query",
					Title: "tool to inspect a project",
					Commands: []*subcommands.Command{
						cmdPrjDir(),
						cmdVariants(),
						cmdDirs(),
						cmdOpts(),
						cmdCompileFlags(),
						cmdDeps(),
						subcommands.CmdHelp,
					},
				},
			}
			c.Flags.Usage = func() {
				subcommands.Usage(os.Stderr, c.app, true)
			}
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase
	app *subcommands.DefaultApplication
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	return subcommands.Run(c.app, args)
}
