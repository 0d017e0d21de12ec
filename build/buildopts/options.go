// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildopts provides the option bundle shared by the toolchain,
// the composer and the graph emitter.
package buildopts

import (
	"fmt"
	"slices"
	"strings"
)

// Options is a bundle of compiler, assembler and linker options for one
// layer of a build variant.
//
// Flag text is kept verbatim. Order matters to the compiler, so Append
// always places the appended text after the existing text.
type Options struct {
	Inc        string
	AsmInc     string
	CFlags     string
	COnlyFlags string
	CppFlags   string
	AsmFlags   string
	LinkFlags  string
	LinkLibs   string
	LinkScript string

	// FirstObjs and LastObjs are placed immediately before/after the
	// main object list on the link line.
	FirstObjs []ObjRef
	LastObjs  []ObjRef

	// ClangdExclude and ClangdInclude adjust the flags exported for
	// clangd (compile_flags.txt).
	ClangdExclude []string
	ClangdInclude []string
}

// Append appends src to o and returns o.
// A nil src is a no-op.
func (o *Options) Append(src *Options) *Options {
	if src == nil {
		return o
	}
	o.Inc = JoinFlags(o.Inc, src.Inc)
	o.AsmInc = JoinFlags(o.AsmInc, src.AsmInc)
	o.CFlags = JoinFlags(o.CFlags, src.CFlags)
	o.COnlyFlags = JoinFlags(o.COnlyFlags, src.COnlyFlags)
	o.CppFlags = JoinFlags(o.CppFlags, src.CppFlags)
	o.AsmFlags = JoinFlags(o.AsmFlags, src.AsmFlags)
	o.LinkFlags = JoinFlags(o.LinkFlags, src.LinkFlags)
	o.LinkLibs = JoinFlags(o.LinkLibs, src.LinkLibs)
	o.LinkScript = JoinFlags(o.LinkScript, src.LinkScript)
	o.FirstObjs = append(o.FirstObjs, src.FirstObjs...)
	o.LastObjs = append(o.LastObjs, src.LastObjs...)
	o.ClangdExclude = append(o.ClangdExclude, src.ClangdExclude...)
	o.ClangdInclude = append(o.ClangdInclude, src.ClangdInclude...)
	return o
}

// Copy returns a deep copy of o.
// A nil o copies as empty options.
func (o *Options) Copy() *Options {
	if o == nil {
		return &Options{}
	}
	n := *o
	n.FirstObjs = slices.Clone(o.FirstObjs)
	n.LastObjs = slices.Clone(o.LastObjs)
	n.ClangdExclude = slices.Clone(o.ClangdExclude)
	n.ClangdInclude = slices.Clone(o.ClangdInclude)
	return &n
}

// NormalizePaths rewrites directory separators of path-valued fields
// (include paths, link script and literal objects) to sep.
// Forward references are rewritten to '/', the separator used by
// libdirs entries. Flag fields are left untouched.
func (o *Options) NormalizePaths(sep rune) {
	o.Inc = NormalizeSep(o.Inc, sep)
	o.AsmInc = NormalizeSep(o.AsmInc, sep)
	o.LinkScript = NormalizeSep(o.LinkScript, sep)
	normalizeRefs(o.FirstObjs, sep)
	normalizeRefs(o.LastObjs, sep)
}

func normalizeRefs(refs []ObjRef, sep rune) {
	for i, r := range refs {
		if r.IsForward() {
			refs[i].Dir = NormalizeSep(r.Dir, '/')
			continue
		}
		refs[i].Literal = NormalizeSep(r.Literal, sep)
	}
}

// Field is a named option value, used for dumps.
type Field struct {
	Name  string
	Value string
}

// Fields returns all fields of o in a fixed order.
func (o *Options) Fields() []Field {
	return []Field{
		{"inc", o.Inc},
		{"asminc", o.AsmInc},
		{"cflags", o.CFlags},
		{"c_only_flags", o.COnlyFlags},
		{"cppflags", o.CppFlags},
		{"asmflags", o.AsmFlags},
		{"linkflags", o.LinkFlags},
		{"linklibs", o.LinkLibs},
		{"linkscript", o.LinkScript},
		{"firstobjs", FormatObjRefs(o.FirstObjs)},
		{"lastobjs", FormatObjRefs(o.LastObjs)},
	}
}

func (o *Options) String() string {
	var sb strings.Builder
	for _, f := range o.Fields() {
		fmt.Fprintf(&sb, "%-13s %s\n", f.Name+":", f.Value)
	}
	return sb.String()
}

// JoinFlags joins two flag strings with a single space.
// An empty string contributes nothing.
func JoinFlags(a, b string) string {
	switch {
	case b == "":
		return a
	case a == "":
		return b
	}
	return a + " " + b
}

// NormalizeSep replaces both '/' and '\' in s with sep.
func NormalizeSep(s string, sep rune) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return sep
		}
		return r
	}, s)
}
