// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scheduler

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"

	"go.chromium.org/infra/build/nqbp/toolsupport/shutil"
)

// ExecSpawner starts children with os/exec.
type ExecSpawner struct {
	// Setup is a script run in the same shell before every build
	// command.
	Setup string

	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	var eerr *exec.ExitError
	if errors.As(err, &eerr) {
		if code := eerr.ExitCode(); code > 0 {
			return code, nil
		}
		return 1, nil
	}
	if err != nil {
		return 1, err
	}
	return 0, nil
}

// Command returns the command line run for argv.
func (s ExecSpawner) Command(argv []string) []string {
	if s.Setup == "" {
		return argv
	}
	line := s.Setup + " && " + shutil.Join(argv)
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C", line}
	}
	return []string{"/bin/sh", "-c", line}
}

// Start implements Spawner.
func (s ExecSpawner) Start(ctx context.Context, dir string, argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	args := s.Command(argv)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = s.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return execProcess{cmd: cmd}, nil
}
