// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package bob implements the subcommand `bob`, which builds many
// projects of a package.
package bob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/cpuid/v2"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/nqbp/build/scheduler"
	"go.chromium.org/infra/build/nqbp/build/workspace"
	"go.chromium.org/infra/build/nqbp/subcmd/buildcmd"
	"go.chromium.org/infra/build/nqbp/toolsupport/shutil"
	"go.chromium.org/infra/build/nqbp/ui"
)

const usage = `Builds all projects of a directory tree matching a pattern.

 $ nqbp bob [flags] here|PATTERN [<build-opts>...]
 $ nqbp bob [flags] -file BLDLIST

Projects are the directories under -path containing -marker.
A project is selected when PATTERN matches one of the components of
its path relative to the package root. "here" selects every project.
Arguments after PATTERN are passed to the build command of each
project.

With -file, each line of BLDLIST (blank lines and lines starting with
'#' are ignored) is run as the arguments of a bob command, in order.

Flags:
`

// Cmd returns the Command for the `bob` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "bob [flags] here|PATTERN [<build-opts>...]",
		ShortDesc: "build many projects",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			r := &bobRun{}
			r.init()
			return r
		},
	}
}

type bobRun struct {
	subcommands.CommandRunBase

	path      string
	p2        string
	p3        string
	exclude   string
	e2        string
	e3        string
	marker    string
	file      string
	xconfig   string
	config    string
	buildCmd  string
	jobs      int
	verbose   bool
	keepGoing bool
	report    string

	// spawner and stdout are replaced in tests.
	spawner scheduler.Spawner
	stdout  io.Writer
}

func (c *bobRun) init() {
	c.Flags.StringVar(&c.path, "path", "", "directory to search for projects. current directory if empty")
	c.Flags.StringVar(&c.p2, "p2", "", "second pattern a project must also match")
	c.Flags.StringVar(&c.p3, "p3", "", "third pattern a project must also match")
	c.Flags.StringVar(&c.exclude, "exclude", "", "skip projects matching the pattern")
	c.Flags.StringVar(&c.e2, "e2", "", "second exclude pattern")
	c.Flags.StringVar(&c.e3, "e3", "", "third exclude pattern")
	c.Flags.StringVar(&c.marker, "marker", scheduler.DefaultMarker, "file marking a project directory")
	c.Flags.StringVar(&c.file, "file", "", "build list file")
	c.Flags.StringVar(&c.xconfig, "xconfig", "", "absolute path of a script to run before each build")
	c.Flags.StringVar(&c.config, "config", "", "script, relative to the package root, to run before each build")
	c.Flags.StringVar(&c.buildCmd, "x", "", `build command run in each project. "<nqbp> build" if empty`)
	c.Flags.IntVar(&c.jobs, "j", 1, "number of projects built in parallel. 0 means the number of physical cores")
	c.Flags.BoolVar(&c.verbose, "v", false, "list the selected projects and show the build command")
	c.Flags.BoolVar(&c.keepGoing, "keep_going", false, "keep building projects after a failure")
	c.Flags.StringVar(&c.report, "report", "", "write a YAML report of the builds to the file")
}

func (c *bobRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	started := time.Now()
	ctx := cli.GetContext(a, c, env)
	code, err := c.run(ctx, args)
	if err != nil {
		var errFlag buildcmd.FlagError
		if errors.As(err, &errFlag) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}
		return buildcmd.Report(os.Stderr, started, err)
	}
	return code
}

func (c *bobRun) out() io.Writer {
	if c.stdout == nil {
		return os.Stdout
	}
	return c.stdout
}

// run returns the exit code of the first failed build.
func (c *bobRun) run(ctx context.Context, args []string) (int, error) {
	if c.file != "" {
		if len(args) > 0 {
			return 0, buildcmd.NewFlagError(fmt.Errorf("unexpected arguments with -file: %q", args))
		}
		return c.runFile(ctx)
	}
	if len(args) == 0 {
		return 0, buildcmd.NewFlagError(errors.New("no pattern. use `here` to build all projects"))
	}
	if c.config != "" && c.xconfig != "" {
		return 0, buildcmd.NewFlagError(errors.New("-config and -xconfig are mutually exclusive"))
	}
	if c.xconfig != "" && !filepath.IsAbs(c.xconfig) {
		return 0, buildcmd.NewFlagError(fmt.Errorf("-xconfig %q is not an absolute path", c.xconfig))
	}
	buildCmd, err := c.buildCommand()
	if err != nil {
		return 0, err
	}
	root := c.path
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return 0, err
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return 0, err
	}
	pkgRoot := root
	if ws, err := workspace.Detect(root); err == nil {
		pkgRoot = ws.PkgRoot
	} else {
		log.Debugf("no package root for %s, matching relative to it: %v", root, err)
	}

	filter := scheduler.Filter{Pattern: args[0]}
	for _, p := range []string{c.p2, c.p3} {
		if p != "" {
			filter.Also = append(filter.Also, p)
		}
	}
	for _, p := range []string{c.exclude, c.e2, c.e3} {
		if p != "" {
			filter.Exclude = append(filter.Exclude, p)
		}
	}
	spin := ui.Default.NewSpinner()
	spin.Start("discovering projects in %s", root)
	dirs, err := scheduler.Discover(root, pkgRoot, c.marker, filter)
	if err != nil {
		spin.Stop(err)
		return 0, buildcmd.NewFlagError(err)
	}
	spin.Done("%d projects", len(dirs))
	if c.verbose && len(dirs) > 0 {
		lines := []string{"\n"}
		for _, dir := range dirs {
			lines = append(lines, "  "+relName(pkgRoot, dir))
		}
		ui.Default.PrintLines(lines...)
	}

	spawner := c.spawner
	if spawner == nil {
		es := scheduler.ExecSpawner{Setup: setupCommand(c.config, c.xconfig, pkgRoot)}
		if c.verbose {
			fmt.Fprintf(c.out(), "build command: %s\n", shutil.Join(es.Command(append(append([]string(nil), buildCmd...), args[1:]...))))
		}
		spawner = es
	}
	jobs := c.jobs
	if jobs == 0 {
		log.Infof("%s", cpuinfo())
		jobs = cpuid.CPU.PhysicalCores
		if jobs < 1 {
			jobs = runtime.NumCPU()
		}
	}
	if jobs < 0 {
		return 0, buildcmd.NewFlagError(fmt.Errorf("-j %d must not be negative", c.jobs))
	}

	res := scheduler.RunAll(ctx, dirs, buildCmd, args[1:], jobs, scheduler.Options{
		KeepGoing: c.keepGoing,
		Spawner:   spawner,
		OnDone:    c.printResult(pkgRoot),
	})
	c.printSummary(res)
	if c.report != "" {
		if err := scheduler.WriteReport(c.report, res); err != nil {
			return res.FirstExitCode, err
		}
	}
	return res.FirstExitCode, nil
}

// runFile runs every line of the build list in order, stopping at the
// first failure.
func (c *bobRun) runFile(ctx context.Context) (int, error) {
	lists, err := scheduler.ReadBuildList(c.file)
	if err != nil {
		return 0, err
	}
	for _, args := range lists {
		r := &bobRun{spawner: c.spawner, stdout: c.stdout}
		r.init()
		if err := r.Flags.Parse(args); err != nil {
			return 0, buildcmd.NewFlagError(fmt.Errorf("%s: %q: %w", c.file, args, err))
		}
		if r.file != "" {
			return 0, buildcmd.NewFlagError(fmt.Errorf("%s: nested -file is not supported: %q", c.file, args))
		}
		if r.path == "" {
			r.path = c.path
		}
		code, err := r.run(ctx, r.Flags.Args())
		if err != nil {
			return code, fmt.Errorf("%s: %q: %w", c.file, args, err)
		}
		if code != 0 {
			return code, nil
		}
	}
	return 0, nil
}

func (c *bobRun) buildCommand() ([]string, error) {
	if c.buildCmd != "" {
		argv, err := shutil.Split(c.buildCmd)
		if err != nil {
			return nil, buildcmd.NewFlagError(fmt.Errorf("bad -x: %w", err))
		}
		if len(argv) == 0 {
			return nil, buildcmd.NewFlagError(errors.New("empty -x"))
		}
		return argv, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return []string{exe, "build"}, nil
}

// setupCommand returns the shell command run before each build for the
// -config or -xconfig script.
func setupCommand(config, xconfig, pkgRoot string) string {
	script := xconfig
	if config != "" {
		script = filepath.Join(pkgRoot, filepath.FromSlash(config))
	}
	if script == "" {
		return ""
	}
	if runtime.GOOS == "windows" {
		return shutil.Quote(script)
	}
	return ". " + shutil.Quote(script)
}

func (c *bobRun) printResult(pkgRoot string) func(scheduler.ProjectResult) {
	return func(pr scheduler.ProjectResult) {
		name := relName(pkgRoot, pr.Dir)
		status := ui.Colorize(ui.Green, "PASS")
		if pr.ExitCode != 0 {
			status = ui.Colorize(ui.BackgroundRed, fmt.Sprintf("FAIL(%d)", pr.ExitCode))
		}
		fmt.Fprintf(c.out(), "%6s %s %s\n", ui.FormatDuration(pr.Duration), status, name)
		if pr.Error != "" {
			fmt.Fprintf(c.out(), "       %s\n", pr.Error)
		}
	}
}

// relName returns dir relative to pkgRoot, or dir if it is outside.
func relName(pkgRoot, dir string) string {
	rel, err := filepath.Rel(pkgRoot, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return dir
	}
	return filepath.ToSlash(rel)
}

func (c *bobRun) printSummary(res scheduler.Result) {
	built := 0
	for _, pr := range res.Projects {
		if !pr.Skipped {
			built++
		}
	}
	fmt.Fprintf(c.out(), "%d/%d projects built, %d failed\n", built, len(res.Projects), len(res.Failed))
	for _, dir := range res.Failed {
		fmt.Fprintf(c.out(), "  FAILED: %s\n", dir)
	}
}

func cpuinfo() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cpu brand=%q vendor=%q ", cpuid.CPU.BrandName, cpuid.CPU.VendorString)
	fmt.Fprintf(&sb, "physicalCores=%d threadsPerCore=%d logicalCores=%d ", cpuid.CPU.PhysicalCores, cpuid.CPU.ThreadsPerCore, cpuid.CPU.LogicalCores)
	fmt.Fprintf(&sb, "vm=%t", cpuid.CPU.VM())
	return sb.String()
}
