// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package project builds the variants of a single project directory.
package project

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
	"go.chromium.org/infra/build/nqbp/build/builtdir"
	"go.chromium.org/infra/build/nqbp/build/libdirs"
	"go.chromium.org/infra/build/nqbp/build/ninjagen"
	"go.chromium.org/infra/build/nqbp/build/toolchain"
	"go.chromium.org/infra/build/nqbp/build/workspace"
	"go.chromium.org/infra/build/nqbp/toolsupport/ninjawriter"
	"go.chromium.org/infra/build/nqbp/ui"
)

// NinjaFile is the name of the generated build file in a variant output
// directory.
const NinjaFile = "build.ninja"

// CompileFlagsFile is the clangd flags file written to the package root.
const CompileFlagsFile = "compile_flags.txt"

// legacyDirs are output directories of older releases, removed by
// CleanAll.
var legacyDirs = []string{"src", "__pycache__", "xpkgs", "__abs"}

// Config configures a Driver.
type Config struct {
	WS        *workspace.Context
	Toolchain *toolchain.Toolchain

	// LibdirsFile is the dependency list. <project dir>/libdirs.b if
	// empty.
	LibdirsFile string
	Resolve     libdirs.Options

	Debug       bool
	BuildNumber int
	Defines     []string
	// BuildTime sets BUILD_TIME_UTC to the build start time instead
	// of 0.
	BuildTime bool

	Verbose bool
	// Serial runs ninja with a single job.
	Serial bool
	// GenOnly writes build.ninja without running ninja.
	GenOnly bool
	// Ninja is the ninja executable. "ninja" if empty.
	Ninja    string
	Executor Executor

	// Stdout receives banners and query output. os.Stdout if nil.
	Stdout io.Writer
	// Now returns the current time. time.Now if nil.
	Now func() time.Time
}

// Driver builds the variants of one project.
type Driver struct {
	cfg    Config
	lister *libdirs.Lister
}

// New returns a driver for cfg.
func New(cfg Config) (*Driver, error) {
	if cfg.WS == nil || cfg.Toolchain == nil {
		return nil, errors.New("project: workspace and toolchain are required")
	}
	if err := cfg.Toolchain.Validate(); err != nil {
		return nil, err
	}
	if cfg.LibdirsFile == "" {
		cfg.LibdirsFile = filepath.Join(cfg.WS.ProjectDir, libdirs.FileName)
	}
	if cfg.Ninja == "" {
		cfg.Ninja = "ninja"
	}
	if cfg.Executor == nil {
		cfg.Executor = ExecExecutor{}
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Driver{
		cfg:    cfg,
		lister: libdirs.NewLister(cfg.WS, cfg.Toolchain.AsmExts),
	}, nil
}

func (d *Driver) Toolchain() *toolchain.Toolchain { return d.cfg.Toolchain }

func (d *Driver) Workspace() *workspace.Context { return d.cfg.WS }

// OutputDir returns the output directory of variant.
func (d *Driver) OutputDir(variant string) string {
	return filepath.Join(d.cfg.WS.ProjectDir, "_"+variant)
}

// SelectVariant returns the variant to build.
// try, if set, names a variant that may not exist; ok is false in that
// case and nothing should be built. Otherwise name, or the default
// variant if name is empty, must exist.
func (d *Driver) SelectVariant(name, try string) (variant string, ok bool, err error) {
	tc := d.cfg.Toolchain
	if try != "" {
		if _, found := tc.Variants[try]; !found {
			fmt.Fprintf(d.cfg.Stdout, "Tried (and failed) to build a non-existent variant: %s\n", try)
			return "", false, nil
		}
		return try, true, nil
	}
	if name == "" {
		return tc.DefaultVariant, true, nil
	}
	if _, found := tc.Variants[name]; !found {
		return "", false, &toolchain.UnknownVariantError{Variant: name, Known: tc.VariantNames()}
	}
	return name, true, nil
}

// AllVariants returns the variants built by BuildAll: all but the
// ones with a leading '_'.
func (d *Driver) AllVariants() []string {
	var out []string
	for _, v := range d.cfg.Toolchain.VariantNames() {
		if strings.HasPrefix(v, "_") {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Options returns the composed options of variant.
func (d *Driver) Options(variant string) (*buildopts.Options, error) {
	return toolchain.Compose(d.cfg.Toolchain, variant, toolchain.Selection{
		Debug:       d.cfg.Debug,
		BuildNumber: d.cfg.BuildNumber,
		Defines:     d.cfg.Defines,
	})
}

// Resolve returns the directory list of variant.
func (d *Driver) Resolve(ctx context.Context, variant string) ([]libdirs.Entry, error) {
	return libdirs.Resolve(ctx, d.cfg.WS, d.cfg.LibdirsFile, variant, d.cfg.Resolve)
}

// BuildAll builds every variant returned by AllVariants, stopping at the
// first failure.
func (d *Driver) BuildAll(ctx context.Context) error {
	for _, v := range d.AllVariants() {
		if err := d.Build(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Build generates build.ninja for variant in its output directory and
// runs ninja there.
func (d *Driver) Build(ctx context.Context, variant string) error {
	started := d.cfg.Now()
	opts, err := d.Options(variant)
	if err != nil {
		return err
	}
	entries, err := d.Resolve(ctx, variant)
	if err != nil {
		return err
	}
	outDir := d.OutputDir(variant)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	banner := ui.Banner{
		Output:     d.cfg.Toolchain.OutputName,
		ProjectDir: d.cfg.WS.ProjectDir,
		Toolchain:  d.cfg.Toolchain.Tools.Name,
		Variant:    variant,
		Started:    started,
	}
	banner.WriteStart(d.cfg.Stdout)
	log.Debugf("work root=%s pkg root=%s project dir=%s", d.cfg.WS.WorkRoot, d.cfg.WS.PkgRoot, d.cfg.WS.ProjectDir)

	var buildTime int64
	if d.cfg.BuildTime {
		buildTime = started.Unix()
	}
	fname := filepath.Join(outDir, NinjaFile)
	if err := d.writeNinjaFile(ctx, fname, opts, entries, buildTime); err != nil {
		return err
	}
	if d.cfg.GenOnly {
		log.Infof("generated %s", fname)
		return nil
	}
	args := d.ninjaArgs()
	log.Debugf("ninja command = %s %s", d.cfg.Ninja, strings.Join(args, " "))
	if err := d.cfg.Executor.Run(ctx, outDir, d.cfg.Ninja, args); err != nil {
		return err
	}
	banner.WriteEnd(d.cfg.Stdout, d.cfg.Now())
	return nil
}

func (d *Driver) ninjaArgs() []string {
	var args []string
	if d.cfg.Verbose {
		args = append(args, "-v")
	}
	if d.cfg.Serial {
		args = append(args, "-j", "1")
	}
	return append(args, "-d", "keepdepfile")
}

func (d *Driver) writeNinjaFile(ctx context.Context, fname string, opts *buildopts.Options, entries []libdirs.Entry, buildTime int64) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	err = d.Generate(ctx, bw, opts, entries, buildTime)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", fname, err)
	}
	return nil
}

// Generate writes the build graph of entries with opts to w.
// Objects are written relative to the directory w's file is in.
func (d *Driver) Generate(ctx context.Context, w io.Writer, opts *buildopts.Options, entries []libdirs.Entry, buildTime int64) error {
	ws := d.cfg.WS
	tc := d.cfg.Toolchain
	const objectRoot = "."
	gen := ninjagen.New(ninjawriter.New(w), ninjagen.Config{
		Toolchain:  tc,
		Options:    opts,
		Lister:     d.lister,
		ObjectRoot: objectRoot,
		BuildTime:  buildTime,
	})
	if err := gen.Start(); err != nil {
		return err
	}
	units := make([]ninjagen.Unit, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		srcDir := libdirs.SourceDir(ws, e)
		if _, err := os.Stat(srcDir); err != nil {
			return fmt.Errorf("directory does not exist: %s: %w", srcDir, err)
		}
		log.Debugf("entry=%s objdir=%s srcdir=%s", e, libdirs.ObjectDir(ws, e), srcDir)
		u, err := gen.EmitCompileUnit(e, srcDir, libdirs.ObjectDir(ws, e))
		if err != nil {
			return err
		}
		units = append(units, u)
	}
	projectObjs, err := gen.EmitProject(ws.ProjectDir)
	if err != nil {
		return err
	}

	x := &builtdir.Expander{
		WS:         ws,
		Entries:    entries,
		ObjectRoot: objectRoot,
		ObjExt:     tc.ObjExt,
		Lister:     d.lister,
	}
	var li ninjagen.LinkInputs
	for _, f := range []struct {
		refs       []buildopts.ObjRef
		words, obj *[]string
	}{
		{opts.FirstObjs, &li.First, &li.FirstObjs},
		{opts.LastObjs, &li.Last, &li.LastObjs},
	} {
		*f.words, err = x.Expand(f.refs)
		if err != nil {
			return err
		}
		*f.obj, err = x.Objects(f.refs)
		if err != nil {
			return err
		}
	}
	if err := gen.EmitLink(units, projectObjs, li); err != nil {
		return err
	}
	return gen.Finish()
}

// Clean removes the output directory of variant.
func (d *Driver) Clean(variant string) error {
	dir := d.OutputDir(variant)
	log.Infof("clean %s", dir)
	return os.RemoveAll(dir)
}

// CleanAll removes the output directories of every variant and the
// legacy output directories.
func (d *Driver) CleanAll() error {
	var errs []error
	for _, v := range d.cfg.Toolchain.VariantNames() {
		errs = append(errs, d.Clean(v))
	}
	for _, dir := range legacyDirs {
		errs = append(errs, os.RemoveAll(filepath.Join(d.cfg.WS.ProjectDir, dir)))
	}
	return errors.Join(errs...)
}

// Deps runs ninja's deps tool in the output directory of variant.
func (d *Driver) Deps(ctx context.Context, variant string) error {
	dir := d.OutputDir(variant)
	if _, err := os.Stat(filepath.Join(dir, NinjaFile)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("variant %s has not been built: %w", variant, err)
	}
	return d.cfg.Executor.Run(ctx, dir, d.cfg.Ninja, []string{"-t", "deps"})
}

// WriteDirs writes the directory list of variant, with filters if
// withFilters is set.
func (d *Driver) WriteDirs(ctx context.Context, variant string, withFilters bool) error {
	entries, err := d.Resolve(ctx, variant)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !withFilters || e.Filter == libdirs.FilterNone {
			fmt.Fprintf(d.cfg.Stdout, "%-5s  %s\n", e.Origin, e.Path)
			continue
		}
		fmt.Fprintf(d.cfg.Stdout, "%-5s  %s  %s %s\n", e.Origin, e.Path, strings.Repeat(e.Filter.String(), 3), strings.Join(e.Files, " "))
	}
	return nil
}

// WriteOptions writes the composed options of variant.
func (d *Driver) WriteOptions(variant string) error {
	opts, err := d.Options(variant)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.cfg.Stdout, "VARIANT: %s\n", variant)
	fmt.Fprint(d.cfg.Stdout, opts.String())
	return nil
}

// WriteCompileFlags writes compile_flags.txt for variant to the package
// root and returns its path.
func (d *Driver) WriteCompileFlags(variant string) (string, error) {
	opts, err := d.Options(variant)
	if err != nil {
		return "", err
	}
	fname := filepath.Join(d.cfg.WS.PkgRoot, CompileFlagsFile)
	lines := toolchain.CompileFlags(opts)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(fname, []byte(content), 0o644); err != nil {
		return "", err
	}
	return fname, nil
}
