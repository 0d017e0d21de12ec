// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor runs the low level build tool.
type Executor interface {
	// Run runs name with args in dir. A non-zero exit is reported as
	// *ExitError.
	Run(ctx context.Context, dir, name string, args []string) error
}

// ExitError is a command that exited with a non-zero code.
type ExitError struct {
	Cmd  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
}

// ExitCode returns the exit code carried by err: the code of an
// *ExitError, 0 for nil, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *ExitError
	if errors.As(err, &eerr) {
		return eerr.Code
	}
	return 1
}

// ExecExecutor runs commands as child processes.
type ExecExecutor struct {
	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Executor.
func (x ExecExecutor) Run(ctx context.Context, dir, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = x.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = x.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	err := cmd.Run()
	var eerr *exec.ExitError
	if errors.As(err, &eerr) {
		code := eerr.ExitCode()
		if code < 0 {
			// killed by signal
			code = 1
		}
		return &ExitError{
			Cmd:  strings.Join(append([]string{name}, args...), " "),
			Code: code,
		}
	}
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}
