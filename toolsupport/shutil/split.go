// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil splits and joins shell-like command lines.
package shutil

import (
	"fmt"
	"strings"
)

// Split splits a command line into args.
// It understands single quotes, double quotes and backslash escapes,
// and returns error for shell metacharacters (pipes, redirects,
// variables, comments).
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	inArg := false
	for i := 0; i < len(cmdline); i++ {
		ch := cmdline[i]
		switch ch {
		case ' ', '\t':
			if inArg {
				args = append(args, sb.String())
				sb.Reset()
				inArg = false
			}
		case '\\':
			if i+1 >= len(cmdline) {
				return nil, fmt.Errorf("failed to split: trailing backslash in %q", cmdline)
			}
			i++
			sb.WriteByte(cmdline[i])
			inArg = true
		case '\'':
			j := strings.IndexByte(cmdline[i+1:], '\'')
			if j < 0 {
				return nil, fmt.Errorf("failed to split: unterminated single quote in %q", cmdline)
			}
			sb.WriteString(cmdline[i+1 : i+1+j])
			i += j + 1
			inArg = true
		case '"':
			n, err := doubleQuoted(&sb, cmdline[i+1:])
			if err != nil {
				return nil, fmt.Errorf("failed to split %q: %w", cmdline, err)
			}
			i += n + 1
			inArg = true
		case ';', '&', '|', '<', '>', '$', '#', '`':
			return nil, fmt.Errorf("failed to split: cmdline contains shell metachar %c", ch)
		default:
			sb.WriteByte(ch)
			inArg = true
		}
	}
	if inArg {
		args = append(args, sb.String())
	}
	return args, nil
}

// doubleQuoted writes the contents of a double quoted string, s being
// the text after the opening quote, and returns the number of bytes
// consumed including the closing quote.
func doubleQuoted(sb *strings.Builder, s string) (int, error) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			return i + 1, nil
		case '\\':
			if i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
				i++
			}
		}
		sb.WriteByte(s[i])
	}
	return 0, fmt.Errorf("unterminated double quote")
}
