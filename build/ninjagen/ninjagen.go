// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ninjagen generates the ninja build graph of a project.
package ninjagen

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
	"go.chromium.org/infra/build/nqbp/build/libdirs"
	"go.chromium.org/infra/build/nqbp/build/toolchain"
	"go.chromium.org/infra/build/nqbp/toolsupport/ninjawriter"
)

// BaseFilenameVar in flags is replaced by the basename of the source
// file being compiled.
const BaseFilenameVar = "ME_CC_BASE_FILENAME"

// Rule names.
const (
	RuleCompile  = "compile"
	RuleAssemble = "assemble"
	RuleArchive  = "ar"
	RuleLink     = "link"
)

// Writer writes build statements.
type Writer interface {
	Comment(text string) error
	Newline() error
	Variable(name, value string) error
	Rule(name, command string, opts ninjawriter.RuleOptions) error
	Build(outputs []string, rule string, inputs []string, opts ninjawriter.BuildOptions) error
	Default(targets ...string) error
}

// SourceLister lists the sources of an entry read from a directory.
type SourceLister interface {
	SourcesIn(dir string, e libdirs.Entry) ([]string, error)
}

// Config configures a Generator.
type Config struct {
	Toolchain *toolchain.Toolchain
	// Options are the composed options of the variant.
	Options *buildopts.Options
	Lister  SourceLister
	// ObjectRoot is the directory objects are written under, relative
	// to the directory ninja runs in.
	ObjectRoot string
	// BuildTime is the value of BUILD_TIME_UTC.
	BuildTime int64
}

// Generator emits the build graph of one project variant.
type Generator struct {
	w   Writer
	cfg Config
}

// Unit is the result of a compiled directory.
type Unit struct {
	Entry   libdirs.Entry
	SrcDir  string
	ObjDir  string
	Objects []string
	Archive string
}

// New returns a generator writing to w.
func New(w Writer, cfg Config) *Generator {
	if cfg.ObjectRoot == "" {
		cfg.ObjectRoot = "."
	}
	return &Generator{w: w, cfg: cfg}
}

// Start writes the header: tool variables and rules.
func (g *Generator) Start() error {
	tc := g.cfg.Toolchain
	ew := &errWriter{w: g.w}
	ew.comment("Project Build")
	ew.comment("This file is auto generated by nqbp")
	ew.newline()
	ew.variable("ninja_required_version", "1.3")
	ew.newline()
	for _, v := range []struct {
		name, value string
	}{
		{"cc", tc.Tools.CC},
		{"ld", tc.Tools.LD},
		{"asm", tc.Tools.ASM},
		{"ar", tc.Tools.AR},
		{"objcpy", tc.Tools.ObjCopy},
		{"objdmp", tc.Tools.ObjDump},
		{"shell", tc.Tools.Shell},
		{"rm", tc.Tools.RM},
		{"buildtime", strconv.FormatInt(g.cfg.BuildTime, 10)},
	} {
		ew.variable(v.name, v.value)
	}
	ew.newline()
	for _, r := range g.rules() {
		ew.rule(r.name, r.command, r.opts)
		ew.newline()
	}
	return ew.err
}

type rule struct {
	name    string
	command string
	opts    ninjawriter.RuleOptions
}

func (g *Generator) rules() []rule {
	tc := g.cfg.Toolchain
	ccTime := tc.CSymDef + "BUILD_TIME_UTC=$buildtime"
	asmTime := tc.AsmSymDef + "BUILD_TIME_UTC=$buildtime"
	compile := rule{
		name:    RuleCompile,
		command: "$cc -MMD -MT $out -MF $out.d " + ccTime + " $ccopts $in -o $out",
		opts: ninjawriter.RuleOptions{
			Description: "Compiling: $in",
			Depfile:     "$out.d",
			Deps:        "gcc",
		},
	}
	assemble := rule{
		name:    RuleAssemble,
		command: "$asm -MMD -MT $out -MF $out.d " + asmTime + " $asmopts $in -o $out",
		opts: ninjawriter.RuleOptions{
			Description: "Assembling: $in",
			Depfile:     "$out.d",
			Deps:        "gcc",
		},
	}
	ar := rule{
		name:    RuleArchive,
		command: "$rm $out && $ar $aropts ${arout}${out} $in",
		opts: ninjawriter.RuleOptions{
			Description: "Archiving Directory: $out",
		},
	}
	link := rule{
		name:    RuleLink,
		command: "$ld ${ldout}${out} $ldopts",
		opts: ninjawriter.RuleOptions{
			Description: "Linking: $out",
		},
	}
	if tc.UseRSPFile {
		compile.command = "$cc -MMD -MT $out -MF $out.d " + ccTime + " @$out.rsp $in -o $out"
		compile.opts.RSPFile = "$out.rsp"
		compile.opts.RSPFileContent = "$ccopts"
		assemble.command = "$asm -MMD -MT $out -MF $out.d " + asmTime + " @$out.rsp $in -o $out"
		assemble.opts.RSPFile = "$out.rsp"
		assemble.opts.RSPFileContent = "$asmopts"
		ar.command = "$rm $out && $ar $aropts ${arout}${out} @$out.rsp"
		ar.opts.RSPFile = "$out.rsp"
		ar.opts.RSPFileContent = "$in"
		link.command = "$ld ${ldout}${out} @$out.rsp"
		link.opts.RSPFile = "$out.rsp"
		link.opts.RSPFileContent = "$ldopts"
	}
	return []rule{compile, assemble, ar, link}
}

// EmitCompileUnit writes one compile or assemble statement per source of
// e found in srcDir, and one archive statement of those objects under
// objDir.
func (g *Generator) EmitCompileUnit(e libdirs.Entry, srcDir, objDir string) (Unit, error) {
	srcs, err := g.cfg.Lister.SourcesIn(srcDir, e)
	if err != nil {
		return Unit{}, fmt.Errorf("%s: %w", e.Path, err)
	}
	u := Unit{
		Entry:  e,
		SrcDir: srcDir,
		ObjDir: objDir,
	}
	ew := &errWriter{w: g.w}
	ew.newline()
	ew.comment("Directory: " + srcDir)
	ew.newline()
	if ew.err != nil {
		return Unit{}, ew.err
	}
	u.Objects, err = g.compile(srcDir, objDir, srcs)
	if err != nil {
		return Unit{}, fmt.Errorf("%s: %w", e.Path, err)
	}
	tc := g.cfg.Toolchain
	u.Archive = filepath.Join(g.cfg.ObjectRoot, filepath.FromSlash(objDir), tc.ArchiveName)
	ew.build([]string{u.Archive}, RuleArchive, u.Objects, ninjawriter.BuildOptions{
		Variables: map[string]string{
			"aropts": tc.ArchiveOptions,
			"arout":  tc.ArchiveOut,
		},
	})
	ew.newline()
	log.Debugf("unit %s: %d objects -> %s", e.Path, len(u.Objects), u.Archive)
	return u, ew.err
}

// EmitProject writes the compile statements of the project directory
// sources. Their objects are written directly under the object root.
func (g *Generator) EmitProject(srcDir string) ([]string, error) {
	srcs, err := g.cfg.Lister.SourcesIn(srcDir, libdirs.Entry{Path: "."})
	if err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	}
	ew := &errWriter{w: g.w}
	ew.newline()
	ew.comment("Project Directory:")
	ew.newline()
	if ew.err != nil {
		return nil, ew.err
	}
	return g.compile(srcDir, "", srcs)
}

func (g *Generator) compile(srcDir, objDir string, srcs []string) ([]string, error) {
	tc := g.cfg.Toolchain
	opts := g.cfg.Options
	ew := &errWriter{w: g.w}
	objs := make([]string, 0, len(srcs))
	for _, src := range srcs {
		in := filepath.Join(srcDir, filepath.FromSlash(src))
		out := libdirs.ObjectFile(g.cfg.ObjectRoot, objDir, src, tc.ObjExt)
		ext := strings.ToLower(filepath.Ext(src))
		var ruleName, varName, flags string
		switch {
		case ext == ".c":
			ruleName, varName = RuleCompile, "ccopts"
			flags = join(opts.CFlags, opts.Inc, opts.COnlyFlags)
		case ext == ".cpp" || ext == ".cc" || ext == ".cxx":
			ruleName, varName = RuleCompile, "ccopts"
			flags = join(opts.CFlags, opts.Inc, opts.CppFlags)
		case tc.IsAsm(src):
			ruleName, varName = RuleAssemble, "asmopts"
			flags = join(opts.AsmFlags, opts.AsmInc)
		default:
			return nil, fmt.Errorf("no rule to compile the file: %s", src)
		}
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		flags = strings.ReplaceAll(flags, BaseFilenameVar, base)
		ew.build([]string{out}, ruleName, []string{in}, ninjawriter.BuildOptions{
			Variables: map[string]string{varName: ninjawriter.Escape(flags)},
		})
		ew.newline()
		if ew.err != nil {
			return nil, ew.err
		}
		objs = append(objs, out)
	}
	return objs, nil
}

// LinkInputs are the expanded firstobjs/lastobjs of the link.
type LinkInputs struct {
	// First and Last are the words placed on the command line.
	First []string
	Last  []string
	// FirstObjs and LastObjs are the objects among them, used as
	// inputs of the link statement.
	FirstObjs []string
	LastObjs  []string
}

// EmitLink writes the link statement of the output image.
func (g *Generator) EmitLink(units []Unit, projectObjs []string, li LinkInputs) error {
	tc := g.cfg.Toolchain
	opts := g.cfg.Options
	archives := make([]string, 0, len(units))
	for _, u := range units {
		archives = append(archives, u.Archive)
	}
	var groupStart, groupEnd string
	if len(archives) > 1 {
		groupStart, groupEnd = tc.LibGroupStart, tc.LibGroupEnd
	}
	ldopts := join(
		strings.Join(li.First, " "),
		strings.Join(projectObjs, " "),
		opts.LinkFlags,
		opts.LinkScript,
		groupStart,
		strings.Join(archives, " "),
		groupEnd,
		opts.LinkLibs,
		strings.Join(li.Last, " "),
	)

	var inputs []string
	inputs = append(inputs, li.FirstObjs...)
	inputs = append(inputs, projectObjs...)
	inputs = append(inputs, archives...)
	inputs = append(inputs, li.LastObjs...)

	bo := ninjawriter.BuildOptions{
		Variables: map[string]string{
			"ldopts": ninjawriter.Escape(ldopts),
			"ldout":  tc.LinkOutput,
		},
	}
	if tc.UseRSPFile {
		bo.Implicit = append(bo.Implicit, archives...)
		bo.Implicit = append(bo.Implicit, projectObjs...)
		bo.Implicit = append(bo.Implicit, li.FirstObjs...)
		bo.Implicit = append(bo.Implicit, li.LastObjs...)
	}
	ew := &errWriter{w: g.w}
	ew.newline()
	ew.comment("Linking:")
	ew.newline()
	ew.build([]string{tc.OutputName}, RuleLink, inputs, bo)
	ew.newline()
	return ew.err
}

// Finish writes the default target.
func (g *Generator) Finish() error {
	return g.w.Default(g.cfg.Toolchain.OutputName)
}

func join(parts ...string) string {
	var s string
	for _, p := range parts {
		s = buildopts.JoinFlags(s, strings.TrimSpace(p))
	}
	return s
}

// errWriter keeps the first error of a sequence of writes.
type errWriter struct {
	w   Writer
	err error
}

func (ew *errWriter) comment(text string) {
	if ew.err == nil {
		ew.err = ew.w.Comment(text)
	}
}

func (ew *errWriter) newline() {
	if ew.err == nil {
		ew.err = ew.w.Newline()
	}
}

func (ew *errWriter) variable(name, value string) {
	if ew.err == nil {
		ew.err = ew.w.Variable(name, value)
	}
}

func (ew *errWriter) rule(name, command string, opts ninjawriter.RuleOptions) {
	if ew.err == nil {
		ew.err = ew.w.Rule(name, command, opts)
	}
}

func (ew *errWriter) build(outputs []string, rule string, inputs []string, opts ninjawriter.BuildOptions) {
	if ew.err == nil {
		ew.err = ew.w.Build(outputs, rule, inputs, opts)
	}
}
