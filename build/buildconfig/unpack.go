// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
	"go.chromium.org/infra/build/nqbp/build/toolchain"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// unpackToolchain converts the module returned by init.
//
//	module(
//	    template = "gcc",        # or "none"
//	    output_name = "a.out",
//	    tools = struct(cc = "arm-none-eabi-gcc", ...),
//	    defaults = nqbp.variant(base = ..., optimized = ..., debug = ...),
//	    default_variant = "release",
//	    variants = {"release": nqbp.variant(user_base = ...)},
//	    use_rsp_file = False,
//	    ...
//	)
func unpackToolchain(ws *workspace.Context, m *starlarkstruct.Module) (*toolchain.Toolchain, error) {
	template := "gcc"
	if v, ok := m.Members["template"]; ok {
		s, err := unpackString("template", v)
		if err != nil {
			return nil, err
		}
		template = s
	}
	var tc *toolchain.Toolchain
	switch template {
	case "gcc":
		tc = toolchain.GCC(ws, "")
	case "none":
		tc = &toolchain.Toolchain{
			ObjExt:      "o",
			ArchiveName: "library.a",
			Variants:    map[string]*toolchain.Layers{},
		}
	default:
		return nil, fmt.Errorf("unknown template %q; want gcc or none", template)
	}

	fields, err := unpackFields(m)
	if err != nil {
		return nil, err
	}
	strs := map[string]*string{
		"output_name":     &tc.OutputName,
		"obj_ext":         &tc.ObjExt,
		"archive_name":    &tc.ArchiveName,
		"archive_options": &tc.ArchiveOptions,
		"archive_out":     &tc.ArchiveOut,
		"lib_group_start": &tc.LibGroupStart,
		"lib_group_end":   &tc.LibGroupEnd,
		"link_output":     &tc.LinkOutput,
		"c_symdef":        &tc.CSymDef,
		"asm_symdef":      &tc.AsmSymDef,
		"default_variant": &tc.DefaultVariant,
	}
	for _, f := range fields {
		if p, ok := strs[f.name]; ok {
			*p, err = unpackString(f.name, f.value)
			if err != nil {
				return nil, err
			}
			continue
		}
		switch f.name {
		case "template":
		case "use_rsp_file":
			tc.UseRSPFile, err = unpackBool(f.name, f.value)
		case "asm_exts":
			tc.AsmExts, err = unpackList(f.value)
		case "tools":
			err = unpackTools(&tc.Tools, f.value)
		case "defaults":
			var l *toolchain.Layers
			l, err = unpackLayers(f.value)
			if err == nil {
				tc.Defaults.Base = appendLayer(tc.Defaults.Base, l.Base)
				tc.Defaults.Optimized = appendLayer(tc.Defaults.Optimized, l.Optimized)
				tc.Defaults.Debug = appendLayer(tc.Defaults.Debug, l.Debug)
			}
		case "variants":
			err = unpackVariants(tc, f.value)
		default:
			err = fmt.Errorf("unknown field %q", f.name)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return tc, nil
}

func appendLayer(dst, src *buildopts.Options) *buildopts.Options {
	if src == nil {
		return dst
	}
	return dst.Copy().Append(src)
}

func unpackTools(t *toolchain.Tools, v starlark.Value) error {
	fields, err := unpackFields(v)
	if err != nil {
		return err
	}
	strs := map[string]*string{
		"name":    &t.Name,
		"cc":      &t.CC,
		"ld":      &t.LD,
		"asm":     &t.ASM,
		"ar":      &t.AR,
		"objcopy": &t.ObjCopy,
		"objdump": &t.ObjDump,
		"size":    &t.Size,
		"rm":      &t.RM,
		"shell":   &t.Shell,
	}
	for _, f := range fields {
		p, ok := strs[f.name]
		if !ok {
			return fmt.Errorf("unknown tool %q", f.name)
		}
		*p, err = unpackString(f.name, f.value)
		if err != nil {
			return err
		}
	}
	return nil
}

func unpackVariants(tc *toolchain.Toolchain, v starlark.Value) error {
	d, ok := v.(*starlark.Dict)
	if !ok {
		return fmt.Errorf("got %v; want dict", v.Type())
	}
	fields, err := unpackFields(d)
	if err != nil {
		return err
	}
	tc.Variants = make(map[string]*toolchain.Layers, len(fields))
	tc.VariantOrder = nil
	for _, f := range fields {
		l, err := unpackLayers(f.value)
		if err != nil {
			return fmt.Errorf("variant %q: %w", f.name, err)
		}
		tc.Variants[f.name] = l
		tc.VariantOrder = append(tc.VariantOrder, f.name)
	}
	return nil
}

func unpackLayers(v starlark.Value) (*toolchain.Layers, error) {
	fields, err := unpackFields(v)
	if err != nil {
		return nil, err
	}
	l := &toolchain.Layers{}
	layers := map[string]**buildopts.Options{
		"base":           &l.Base,
		"optimized":      &l.Optimized,
		"debug":          &l.Debug,
		"user_base":      &l.UserBase,
		"user_optimized": &l.UserOptimized,
		"user_debug":     &l.UserDebug,
	}
	for _, f := range fields {
		p, ok := layers[f.name]
		if !ok {
			return nil, fmt.Errorf("unknown layer %q", f.name)
		}
		*p, err = unpackOptions(f.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return l, nil
}

func unpackOptions(v starlark.Value) (*buildopts.Options, error) {
	fields, err := unpackFields(v)
	if err != nil {
		return nil, err
	}
	o := &buildopts.Options{}
	strs := map[string]*string{
		"inc":          &o.Inc,
		"asminc":       &o.AsmInc,
		"cflags":       &o.CFlags,
		"c_only_flags": &o.COnlyFlags,
		"cppflags":     &o.CppFlags,
		"asmflags":     &o.AsmFlags,
		"linkflags":    &o.LinkFlags,
		"linklibs":     &o.LinkLibs,
		"linkscript":   &o.LinkScript,
	}
	for _, f := range fields {
		if p, ok := strs[f.name]; ok {
			*p, err = unpackString(f.name, f.value)
			if err != nil {
				return nil, err
			}
			continue
		}
		var s string
		switch f.name {
		case "firstobjs":
			s, err = unpackString(f.name, f.value)
			o.FirstObjs = buildopts.ParseObjRefs(s)
		case "lastobjs":
			s, err = unpackString(f.name, f.value)
			o.LastObjs = buildopts.ParseObjRefs(s)
		case "clangd_exclude":
			o.ClangdExclude, err = unpackList(f.value)
		case "clangd_include":
			o.ClangdInclude, err = unpackList(f.value)
		default:
			err = fmt.Errorf("unknown option %q", f.name)
		}
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}
