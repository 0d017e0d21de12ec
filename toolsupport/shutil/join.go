// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import "strings"

const special = " \t\n\"'\\$;&|<>#`*?()[]{}~"

// Join joins args to a single command line for sh.
// Args with characters special to the shell are single quoted, so
// Split(Join(args)) == args.
func Join(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		quoted = append(quoted, Quote(arg))
	}
	return strings.Join(quoted, " ")
}

// Quote quotes arg for sh if needed.
func Quote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, special) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
