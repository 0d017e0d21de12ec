// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"
	"io"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>|-advanced]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands and global flags, or help about a specific command.\nUse -advanced to display all commands.",
		CommandRun: func() subcommands.CommandRun {
			ret := &helpCmdRun{}
			ret.Flags.BoolVar(&ret.advanced, "advanced", false, "show advanced commands")
			return ret
		},
	}
}

type helpCmdRun struct {
	subcommands.CommandRunBase
	advanced bool
}

func (h *helpCmdRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) == 0 {
		out := a.GetOut()
		subcommands.Usage(out, a, h.advanced)
		printGlobalFlags(out, flag.CommandLine)
		return 0
	}
	// A command name prints the help of the command.
	return subcommands.CmdHelp.CommandRun().Run(a, args, env)
}

// printGlobalFlags prints the flags of fs, which are accepted before the
// command name.
func printGlobalFlags(w io.Writer, fs *flag.FlagSet) {
	n := 0
	fs.VisitAll(func(*flag.Flag) { n++ })
	if n == 0 {
		return
	}
	fmt.Fprintln(w, "Global flags, given before the command:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
