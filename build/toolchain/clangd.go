// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"slices"
	"strings"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
)

// CompileFlags returns the lines of a clangd compile_flags.txt for opts:
// the include paths followed by the C/C++ options.
func CompileFlags(opts *buildopts.Options) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, inc := range strings.Fields(opts.Inc) {
		if inc == "-I." || inc == "/I." {
			continue
		}
		add(inc)
	}

	flags := buildopts.JoinFlags(buildopts.JoinFlags(opts.CFlags, opts.CppFlags), opts.COnlyFlags)
	tokens := strings.Fields(flags)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		// "-x c++" and similar two word options.
		if (tok == "-x" || tok == "-include") && i+1 < len(tokens) {
			tok += " " + tokens[i+1]
			i++
		}
		if tok == "-" || slices.Contains(opts.ClangdExclude, tok) {
			continue
		}
		add(tok)
	}
	for _, inc := range opts.ClangdInclude {
		add(inc)
	}
	return out
}
