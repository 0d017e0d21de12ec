// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// nqbp is a meta build tool that generates ninja files for C/C++
// projects and builds them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/golang/glog"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/nqbp/build/workspace"
	"go.chromium.org/infra/build/nqbp/subcmd/bob"
	"go.chromium.org/infra/build/nqbp/subcmd/buildcmd"
	"go.chromium.org/infra/build/nqbp/subcmd/cleancmd"
	"go.chromium.org/infra/build/nqbp/subcmd/help"
	"go.chromium.org/infra/build/nqbp/subcmd/query"
	"go.chromium.org/infra/build/nqbp/subcmd/version"
)

const nqbpVersion = "nqbp v2.0.0"

var logLevel = flag.String("log_level", "info", "level of nqbp logs on stderr: debug, info, warn, error")

func main() {
	os.Exit(nqbpMain())
}

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "nqbp",
		Title: "meta build tool for C/C++ projects using ninja",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			buildcmd.Cmd(),
			cleancmd.Cmd(),
			query.Cmd(),
			bob.Cmd(),

			help.Cmd(),
			version.Cmd(nqbpVersion),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			workspace.EnvPkgRoot: {
				ShortDesc: "root of the package. detected from the project directory if unset",
			},
			workspace.EnvWorkRoot: {
				ShortDesc: "directory holding the package and external packages. parent of the package root if unset",
			},
			buildcmd.EnvCmdOptions: {
				ShortDesc: "options appended to the command line of the build command",
			},
		},
	}
}

func nqbpMain() int {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	lvl, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -log_level: %v\n", err)
		return 2
	}
	log.SetLevel(lvl)

	ctx, cancel := context.WithCancel(context.Background())
	defer signals.HandleInterrupt(cancel)()

	// Flush the log on exit to not lose any messages.
	defer glog.Flush()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			glog.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	// Print build information to the log.
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		glog.Infof("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		if glog.V(1) {
			for _, m := range buildinfo.Deps {
				glog.Infof("deps module: %s", moduleInfo(m))
			}
		}
	}
	return subcommands.Run(getApplication(ctx), flag.Args())
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
