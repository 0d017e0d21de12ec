// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ninjawriter writes ninja build files.
package ninjawriter

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const indentWidth = 2

// DefaultWidth is the line width long lines are wrapped at.
const DefaultWidth = 78

// Writer writes ninja statements to an io.Writer.
type Writer struct {
	w io.Writer
	// Width wraps lines longer than Width. No wrapping if <= 0.
	Width int
}

// New returns a writer to w.
func New(w io.Writer) *Writer {
	return &Writer{w: w, Width: DefaultWidth}
}

// RuleOptions are the optional bindings of a rule.
type RuleOptions struct {
	Description    string
	Depfile        string
	Deps           string
	RSPFile        string
	RSPFileContent string
}

// BuildOptions are the optional parts of a build statement.
type BuildOptions struct {
	Implicit  []string
	OrderOnly []string
	// Variables are written in sorted key order.
	Variables map[string]string
}

// Comment writes text as comment lines.
func (w *Writer) Comment(text string) error {
	for _, line := range strings.Split(text, "\n") {
		if _, err := fmt.Fprintf(w.w, "# %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// Newline writes an empty line.
func (w *Writer) Newline() error {
	_, err := io.WriteString(w.w, "\n")
	return err
}

// Variable writes a top level variable binding.
func (w *Writer) Variable(name, value string) error {
	return w.variable(name, value, 0)
}

func (w *Writer) variable(name, value string, indent int) error {
	return w.line(fmt.Sprintf("%s = %s", name, value), indent)
}

// Rule writes a rule.
func (w *Writer) Rule(name, command string, opts RuleOptions) error {
	if err := w.line("rule "+name, 0); err != nil {
		return err
	}
	for _, b := range []struct {
		name, value string
	}{
		{"command", command},
		{"description", opts.Description},
		{"depfile", opts.Depfile},
		{"deps", opts.Deps},
		{"rspfile", opts.RSPFile},
		{"rspfile_content", opts.RSPFileContent},
	} {
		if b.value == "" {
			continue
		}
		if err := w.variable(b.name, b.value, 1); err != nil {
			return err
		}
	}
	return nil
}

// Build writes a build statement.
func (w *Writer) Build(outputs []string, rule string, inputs []string, opts BuildOptions) error {
	var sb strings.Builder
	sb.WriteString("build ")
	sb.WriteString(strings.Join(escapePaths(outputs), " "))
	sb.WriteString(": ")
	sb.WriteString(rule)
	all := escapePaths(inputs)
	if len(opts.Implicit) > 0 {
		all = append(all, "|")
		all = append(all, escapePaths(opts.Implicit)...)
	}
	if len(opts.OrderOnly) > 0 {
		all = append(all, "||")
		all = append(all, escapePaths(opts.OrderOnly)...)
	}
	if len(all) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(all, " "))
	}
	if err := w.line(sb.String(), 0); err != nil {
		return err
	}
	keys := make([]string, 0, len(opts.Variables))
	for k := range opts.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.variable(k, opts.Variables[k], 1); err != nil {
			return err
		}
	}
	return nil
}

// Default writes a default statement.
func (w *Writer) Default(targets ...string) error {
	return w.line("default "+strings.Join(escapePaths(targets), " "), 0)
}

// line writes text, wrapping it with "$" continuations at unescaped
// spaces when it is longer than Width.
func (w *Writer) line(text string, indent int) error {
	leading := strings.Repeat(" ", indent*indentWidth)
	for w.Width > 0 && len(leading)+len(text) > w.Width {
		avail := w.Width - len(leading) - len(" $")
		space := wrapPoint(text, avail)
		if space < 0 {
			break
		}
		if _, err := fmt.Fprintf(w.w, "%s%s $\n", leading, text[:space]); err != nil {
			return err
		}
		text = text[space+1:]
		leading = strings.Repeat(" ", (indent+2)*indentWidth)
	}
	_, err := fmt.Fprintf(w.w, "%s%s\n", leading, text)
	return err
}

// wrapPoint returns the index of the rightmost unescaped space before
// avail, or the leftmost one after it, or -1.
func wrapPoint(text string, avail int) int {
	if avail > len(text) {
		avail = len(text)
	}
	for i := avail - 1; i > 0; i-- {
		if text[i] == ' ' && !escaped(text, i) {
			return i
		}
	}
	for i := max(avail, 1); i < len(text); i++ {
		if text[i] == ' ' && !escaped(text, i) {
			return i
		}
	}
	return -1
}

// escaped reports whether text[i] is preceded by an odd number of '$'.
func escaped(text string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '$'; j-- {
		n++
	}
	return n%2 == 1
}

// EscapePath escapes a path for a build or default statement.
func EscapePath(s string) string {
	r := strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:")
	return r.Replace(s)
}

// Escape escapes '$' in a variable value.
func Escape(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func escapePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, EscapePath(p))
	}
	return out
}
