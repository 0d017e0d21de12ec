// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui is the console of nqbp: project discovery progress, bob's
// project lists, build banners and colored results.
package ui

import (
	"os"
	"regexp"
	"strings"

	"golang.org/x/term"
)

// Spinner shows that a long operation, such as walking a package for
// projects, is in progress.
type Spinner interface {
	// Start shows the formatted operation name.
	Start(format string, args ...any)
	// Stop ends the operation, reporting err if not nil.
	Stop(err error)
	// Done ends the operation with a formatted result.
	Done(format string, args ...any)
}

// UI is where nqbp reports progress.
type UI interface {
	// PrintLines prints msgs, one per line.
	// A leading "\n" element appends the lines after the current line
	// and ends them with a newline. Otherwise the lines overwrite the
	// last len(msgs) lines of the console.
	PrintLines(msgs ...string)
	// NewSpinner returns a spinner for one operation.
	NewSpinner() Spinner
}

// Default is the console of the process, set up at init from stdout.
var Default UI

func init() {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		Default = NewTermUI(os.Stdout)
		return
	}
	Default = LogUI{}
}

// IsTerminal reports whether Default writes to a terminal.
func IsTerminal() bool {
	_, ok := Default.(*TermUI)
	return ok
}

// elideMiddle shortens msg to width by replacing its middle with "...".
// Messages with escape sequences are returned as is.
func elideMiddle(msg string, width int) string {
	const dots = "..."
	if width <= len(dots)+1 || len(msg) < width || strings.ContainsRune(msg, '\033') {
		return msg
	}
	keep := (width - len(dots) - 1) / 2
	return msg[:keep] + dots + msg[len(msg)-keep:]
}

// SGRCode is a SGR (select graphic rendition) parameter.
// https://en.wikipedia.org/wiki/ANSI_escape_code#SGR_(Select_Graphic_Rendition)_parameters
type SGRCode int

const (
	Bold SGRCode = iota
	Red
	Green
	BackgroundRed
	Reset
)

func (s SGRCode) String() string {
	switch s {
	case Bold:
		return "\033[1m"
	case Red:
		return "\033[31;1m"
	case Green:
		return "\033[32m"
	case BackgroundRed:
		return "\033[41;37m"
	case Reset:
		return "\033[0m"
	}
	return ""
}

// SGR wraps s in the escape sequence of n.
func SGR(n SGRCode, s string) string {
	return n.String() + s + Reset.String()
}

// Colorize is SGR on a terminal, and s unchanged otherwise.
func Colorize(n SGRCode, s string) string {
	if IsTerminal() {
		return SGR(n, s)
	}
	return s
}

// csiSeq matches an ANSI CSI sequence, or an escape not starting one.
var csiSeq = regexp.MustCompile(`\x1b(\[[^a-zA-Z]*[a-zA-Z]?)?`)

// StripANSIEscapeCodes removes ANSI CSI escape sequences from s, such as
// the colors of compiler diagnostics.
func StripANSIEscapeCodes(s string) string {
	return csiSeq.ReplaceAllString(s, "")
}
