// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildcmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.chromium.org/infra/build/nqbp/build/project"
	"go.chromium.org/infra/build/nqbp/ui"
)

// FlagError is a bad command line.
type FlagError struct {
	err error
}

// NewFlagError returns a FlagError for err.
func NewFlagError(err error) FlagError {
	return FlagError{err: err}
}

func (f FlagError) Error() string {
	return f.err.Error()
}

func (f FlagError) Unwrap() error {
	return f.err
}

// buildError is a failure of the build itself, after the project was
// loaded.
type buildError struct {
	err error
}

func (b buildError) Error() string {
	return b.err.Error()
}

func (b buildError) Unwrap() error {
	return b.err
}

// errNothingToDo is returned when -try names a variant the toolchain
// does not have.
var errNothingToDo = errors.New("nothing to do")

// ExitCode returns the exit code of a subcommand failing with err:
// 2 for flag errors, the exit code of ninja for build failures, 1
// otherwise.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, errNothingToDo) {
		return 0
	}
	var errFlag FlagError
	if errors.As(err, &errFlag) {
		return 2
	}
	return project.ExitCode(err)
}

// Report writes the outcome of a subcommand started at started to w and
// returns its exit code.
func Report(w io.Writer, started time.Time, err error) int {
	dur := ui.FormatDuration(time.Since(started))
	var errFlag FlagError
	var errBuild buildError
	switch {
	case err == nil:
		msgPrefix := "Build Succeeded"
		if ui.IsTerminal() {
			dur = ui.SGR(ui.Bold, dur)
			msgPrefix = ui.SGR(ui.Green, msgPrefix)
		}
		fmt.Fprintf(w, "%6s %s\n", dur, msgPrefix)
	case errors.Is(err, errNothingToDo):
		fmt.Fprintln(w, "Nothing to do.")
	case errors.As(err, &errFlag):
		fmt.Fprintf(w, "%v\n", err)
	case errors.As(err, &errBuild):
		msgPrefix := "Build Failure"
		if ui.IsTerminal() {
			dur = ui.SGR(ui.Bold, dur)
			msgPrefix = ui.SGR(ui.BackgroundRed, msgPrefix)
		}
		fmt.Fprintf(w, "\n%6s %s: %v\n", dur, msgPrefix, errBuild.err)
	default:
		msgPrefix := "Error"
		if ui.IsTerminal() {
			msgPrefix = ui.SGR(ui.BackgroundRed, msgPrefix)
		}
		fmt.Fprintf(w, "\n%6s %s: %v\n", dur, msgPrefix, err)
	}
	return ExitCode(err)
}
