// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package toolchain describes compiler toolchains and their build
// variants.
package toolchain

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// Tools are the command names of a toolchain.
type Tools struct {
	// Name is the human readable toolchain name.
	Name    string
	CC      string
	LD      string
	ASM     string
	AR      string
	ObjCopy string
	ObjDump string
	Size    string
	RM      string
	Shell   string
}

// Layers are the option layers of one variant. Nil layers fall back to
// the toolchain defaults (Base, Optimized, Debug) or to nothing (User*).
type Layers struct {
	Base      *buildopts.Options
	Optimized *buildopts.Options
	Debug     *buildopts.Options

	UserBase      *buildopts.Options
	UserOptimized *buildopts.Options
	UserDebug     *buildopts.Options
}

// Toolchain is a compiler toolchain with its variants.
type Toolchain struct {
	Tools Tools

	// ObjExt is the object file extension, without dot.
	ObjExt string
	// AsmExts are the assembler source extensions, without dot.
	AsmExts []string

	ArchiveName    string
	ArchiveOptions string
	// ArchiveOut is the archiver flag placed before the output name.
	ArchiveOut string

	LibGroupStart string
	LibGroupEnd   string
	// LinkOutput is the linker flag placed before the output name.
	LinkOutput string

	// CSymDef and AsmSymDef define a preprocessor symbol.
	CSymDef   string
	AsmSymDef string

	// UseRSPFile passes options through response files.
	UseRSPFile bool

	// OutputName is the name of the linked image.
	OutputName string

	DefaultVariant string
	Variants       map[string]*Layers
	// VariantOrder is the declaration order of Variants.
	VariantOrder []string

	// Defaults are used for missing Base/Optimized/Debug layers.
	Defaults Layers
}

// DefaultOutputName is the linked image name of the GCC template.
const DefaultOutputName = "a.out"

// GCC returns the generic GCC toolchain with a single "release" variant.
// An empty outputName means DefaultOutputName.
func GCC(ws *workspace.Context, outputName string) *Toolchain {
	if outputName == "" {
		outputName = DefaultOutputName
	}
	sep := string(filepath.Separator)
	inc := fmt.Sprintf("-I. -I%s%ssrc -I%s -I%s", ws.PkgRoot, sep, ws.ProjectDir, ws.XsrcRoot)
	return &Toolchain{
		Tools: Tools{
			Name:    "Generic GCC",
			CC:      "gcc",
			LD:      "gcc",
			ASM:     "as",
			AR:      "ar",
			ObjCopy: "objcopy",
			ObjDump: "objdump",
			Size:    "size",
			RM:      "rm -f",
		},
		ObjExt:         "o",
		AsmExts:        []string{"s"},
		ArchiveName:    "library.a",
		ArchiveOptions: "crs",
		LibGroupStart:  "-Wl,--start-group",
		LibGroupEnd:    "-Wl,--end-group",
		LinkOutput:     "-o ",
		CSymDef:        "-D",
		AsmSymDef:      "-D",
		OutputName:     outputName,
		DefaultVariant: "release",
		Variants: map[string]*Layers{
			"release": {},
		},
		VariantOrder: []string{"release"},
		Defaults: Layers{
			Base: &buildopts.Options{
				Inc:           inc,
				AsmInc:        inc,
				CFlags:        "-c",
				AsmFlags:      "-c",
				LinkLibs:      "-Wl,-lstdc++ -Wl,-lm",
				ClangdExclude: []string{"-x c++", "-c", "-std=c++11", "-std=c++14", "-std=c++17", "-std=gnu++11", "-std=gnu++14", "-std=gnu++17"},
				ClangdInclude: []string{"-xc++"},
			},
			Optimized: &buildopts.Options{},
			Debug: &buildopts.Options{
				CFlags: "-g -DDEBUG_BUILD",
			},
		},
	}
}

// Validate checks that tc has a default variant.
func (tc *Toolchain) Validate() error {
	if len(tc.Variants) == 0 {
		return errors.New("toolchain has no variants")
	}
	if _, ok := tc.Variants[tc.DefaultVariant]; !ok {
		return fmt.Errorf("default variant %q is not defined; variants: %s", tc.DefaultVariant, strings.Join(tc.VariantNames(), ", "))
	}
	if tc.OutputName == "" {
		return errors.New("toolchain has no output name")
	}
	return nil
}

// VariantNames returns the variant names in declaration order.
func (tc *Toolchain) VariantNames() []string {
	if len(tc.VariantOrder) == len(tc.Variants) {
		return slices.Clone(tc.VariantOrder)
	}
	names := make([]string, 0, len(tc.Variants))
	for name := range tc.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAsm reports whether fname is an assembler source.
func (tc *Toolchain) IsAsm(fname string) bool {
	ext := strings.TrimPrefix(filepath.Ext(fname), ".")
	return slices.Contains(tc.AsmExts, ext)
}

// ListVariants writes the variants, marking the default one.
func (tc *Toolchain) ListVariants(w io.Writer) {
	fmt.Fprintln(w, "Available Build Configurations/Variants:")
	for _, name := range tc.VariantNames() {
		marker := ""
		if name == tc.DefaultVariant {
			marker = " *"
		}
		fmt.Fprintf(w, "  %s%s\n", name, marker)
	}
}

// DumpVariants writes every layer of every variant.
func (tc *Toolchain) DumpVariants(w io.Writer) {
	for _, name := range tc.VariantNames() {
		fmt.Fprintf(w, "VARIANT: %s\n", name)
		l := tc.Variants[name]
		for _, layer := range []struct {
			name string
			opts *buildopts.Options
		}{
			{"base", l.Base},
			{"optimized", l.Optimized},
			{"debug", l.Debug},
			{"user_base", l.UserBase},
			{"user_optimized", l.UserOptimized},
			{"user_debug", l.UserDebug},
		} {
			if layer.opts == nil {
				continue
			}
			fmt.Fprintf(w, "  %s:\n", layer.name)
			for _, f := range layer.opts.Fields() {
				if f.Value == "" {
					continue
				}
				fmt.Fprintf(w, "    %-13s %s\n", f.Name+":", f.Value)
			}
		}
	}
}
