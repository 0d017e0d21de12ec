// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package query

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maruel/subcommands"
	"gopkg.in/yaml.v3"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/nqbp/build/libdirs"
	"go.chromium.org/infra/build/nqbp/build/project"
	"go.chromium.org/infra/build/nqbp/subcmd/buildcmd"
)

// queryRun is a query on the selected variant of a project.
type queryRun struct {
	subcommands.CommandRunBase
	pf buildcmd.ProjectFlags
	ff buildcmd.FilterFlags

	stdout io.Writer
	query  func(ctx context.Context, q *queryRun, d *project.Driver, variant string) error

	// flags of individual queries.
	yaml    bool
	filters bool
}

func newQueryRun(filters bool, query func(context.Context, *queryRun, *project.Driver, string) error) *queryRun {
	c := &queryRun{stdout: os.Stdout, query: query}
	c.pf.Register(&c.Flags)
	if filters {
		c.ff.Register(&c.Flags)
	}
	return c
}

func (c *queryRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	started := time.Now()
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		return buildcmd.Report(os.Stderr, started, err)
	}
	return 0
}

func (c *queryRun) run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return buildcmd.NewFlagError(fmt.Errorf("unexpected arguments: %q", args))
	}
	resolve, err := c.ff.Options()
	if err != nil {
		return err
	}
	d, err := c.pf.Open(ctx, project.Config{Resolve: resolve, Stdout: c.stdout})
	if err != nil {
		return err
	}
	variant, _, err := d.SelectVariant(c.pf.Variant, "")
	if err != nil {
		return buildcmd.NewFlagError(err)
	}
	return c.query(ctx, c, d, variant)
}

func cmdPrjDir() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "prjdir [-project_dir <dir>]",
		ShortDesc: "print the project directory",
		CommandRun: func() subcommands.CommandRun {
			return newQueryRun(false, func(ctx context.Context, q *queryRun, d *project.Driver, variant string) error {
				_, err := fmt.Fprintln(q.stdout, d.Workspace().ProjectDir)
				return err
			})
		},
	}
}

func cmdVariants() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "variants [-project_dir <dir>]",
		ShortDesc: "list the build variants of the toolchain",
		LongDesc:  "Lists the build variants of the toolchain. The default variant is marked with '*'.",
		CommandRun: func() subcommands.CommandRun {
			return newQueryRun(false, func(ctx context.Context, q *queryRun, d *project.Driver, variant string) error {
				tc := d.Toolchain()
				fmt.Fprintf(q.stdout, "Toolchain: %s\n", tc.Tools.Name)
				tc.ListVariants(q.stdout)
				return nil
			})
		},
	}
}

// dirEntry is the YAML form of a libdirs.Entry.
type dirEntry struct {
	Path   string   `yaml:"path"`
	Origin string   `yaml:"origin"`
	Filter string   `yaml:"filter,omitempty"`
	Files  []string `yaml:"files,omitempty"`
}

func cmdDirs() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "dirs [-project_dir <dir>] [-b <variant>] [-filters] [-yaml] [filter flags]",
		ShortDesc: "list the directories of libdirs.b in build order",
		LongDesc:  "Lists the directories of libdirs.b, in build order, for the selected variant.\nWith -filters, source file include/exclude lists are shown too.",
		CommandRun: func() subcommands.CommandRun {
			c := newQueryRun(true, queryDirs)
			c.Flags.BoolVar(&c.yaml, "yaml", false, "print as YAML")
			c.Flags.BoolVar(&c.filters, "filters", false, "show source file filters")
			return c
		},
	}
}

func queryDirs(ctx context.Context, q *queryRun, d *project.Driver, variant string) error {
	if !q.yaml {
		return d.WriteDirs(ctx, variant, q.filters)
	}
	entries, err := d.Resolve(ctx, variant)
	if err != nil {
		return err
	}
	out := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		de := dirEntry{Path: e.Path, Origin: e.Origin.String()}
		if e.Filter != libdirs.FilterNone {
			de.Filter = e.Filter.String()
			de.Files = e.Files
		}
		out = append(out, de)
	}
	enc := yaml.NewEncoder(q.stdout)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func cmdOpts() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "opts [-project_dir <dir>] [-b <variant>] [-g] [-all]",
		ShortDesc: "print the composed toolchain options",
		LongDesc:  "Prints the composed options of the selected variant.\nWith -all, prints every option layer of every variant.",
		CommandRun: func() subcommands.CommandRun {
			c := newQueryRun(false, func(ctx context.Context, q *queryRun, d *project.Driver, variant string) error {
				if q.filters {
					d.Toolchain().DumpVariants(q.stdout)
					return nil
				}
				return d.WriteOptions(variant)
			})
			c.Flags.BoolVar(&c.filters, "all", false, "print all layers of all variants")
			return c
		},
	}
}

func cmdCompileFlags() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "compile_flags [-project_dir <dir>] [-b <variant>] [-g]",
		ShortDesc: "write compile_flags.txt for clangd to the package root",
		CommandRun: func() subcommands.CommandRun {
			return newQueryRun(false, func(ctx context.Context, q *queryRun, d *project.Driver, variant string) error {
				fname, err := d.WriteCompileFlags(variant)
				if err != nil {
					return err
				}
				fmt.Fprintf(q.stdout, "wrote %s\n", fname)
				return nil
			})
		},
	}
}

func cmdDeps() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "deps [-project_dir <dir>] [-b <variant>]",
		ShortDesc: "show the header dependencies recorded by ninja",
		LongDesc:  "Runs `ninja -t deps` in the output directory of the variant. The variant must have been built.",
		CommandRun: func() subcommands.CommandRun {
			return newQueryRun(false, func(ctx context.Context, q *queryRun, d *project.Driver, variant string) error {
				return d.Deps(ctx, variant)
			})
		},
	}
}
