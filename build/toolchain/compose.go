// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"fmt"
	"os"
	"strings"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
)

// MaxDefines is the maximum number of custom preprocessor defines.
const MaxDefines = 5

// Selection selects how a variant is composed.
type Selection struct {
	// Debug selects the debug layers instead of the optimized ones.
	Debug       bool
	BuildNumber int
	// Defines are extra preprocessor symbols, e.g. "FOO" or "BAR=1".
	Defines []string
}

// UnknownVariantError is a variant not defined by the toolchain.
type UnknownVariantError struct {
	Variant string
	Known   []string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("invalid variant %q; variants: %s", e.Variant, strings.Join(e.Known, ", "))
}

// Compose returns the effective options of variant.
//
// Layers are appended in order user_base, base, then debug, user_debug
// or optimized, user_optimized. Base gets the BUILD_VARIANT_<VARIANT>
// and BUILD_NUMBER symbols and the custom defines appended to its C and
// assembler flags. The table of tc is not modified.
func Compose(tc *Toolchain, variant string, sel Selection) (*buildopts.Options, error) {
	layers, ok := tc.Variants[variant]
	if !ok {
		return nil, &UnknownVariantError{Variant: variant, Known: tc.VariantNames()}
	}
	if len(sel.Defines) > MaxDefines {
		return nil, fmt.Errorf("too many custom defines: %d > %d", len(sel.Defines), MaxDefines)
	}
	orDefault := func(o, def *buildopts.Options) *buildopts.Options {
		if o != nil {
			return o
		}
		return def
	}

	base := orDefault(layers.Base, tc.Defaults.Base).Copy()
	base.CFlags = buildopts.JoinFlags(base.CFlags, symbols(tc.CSymDef, variant, sel))
	base.AsmFlags = buildopts.JoinFlags(base.AsmFlags, symbols(tc.AsmSymDef, variant, sel))

	opts := layers.UserBase.Copy()
	opts.Append(base)
	if sel.Debug {
		opts.Append(orDefault(layers.Debug, tc.Defaults.Debug))
		opts.Append(layers.UserDebug)
	} else {
		opts.Append(orDefault(layers.Optimized, tc.Defaults.Optimized))
		opts.Append(layers.UserOptimized)
	}
	opts.NormalizePaths(os.PathSeparator)
	return opts, nil
}

func symbols(symdef, variant string, sel Selection) string {
	syms := []string{
		symdef + "BUILD_VARIANT_" + strings.ToUpper(variant),
		fmt.Sprintf("%sBUILD_NUMBER=%d", symdef, sel.BuildNumber),
	}
	for _, d := range sel.Defines {
		if d == "" {
			continue
		}
		syms = append(syms, symdef+d)
	}
	return strings.Join(syms, " ")
}
