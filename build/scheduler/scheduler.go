// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scheduler runs the build of many projects, each as a child
// process in its project directory, with bounded parallelism.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/nqbp/o11y/clog"
	"go.chromium.org/infra/build/nqbp/sync/semaphore"
)

// DefaultPollInterval is the interval running children are polled at.
const DefaultPollInterval = 10 * time.Millisecond

// SemaphoreName is the name of the semaphore handing out slots.
const SemaphoreName = "bob"

// Process is a started child.
type Process interface {
	// Wait waits for the child to exit and returns its exit code.
	// err is set only if the child could not be waited for.
	Wait() (code int, err error)
}

// Spawner starts children.
type Spawner interface {
	Start(ctx context.Context, dir string, argv []string) (Process, error)
}

// Options configure RunAll.
type Options struct {
	// KeepGoing keeps starting projects after a failure.
	KeepGoing bool
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// Spawner defaults to ExecSpawner{}.
	Spawner Spawner
	// OnDone, if set, is called on the scheduler goroutine as each
	// project finishes.
	OnDone func(ProjectResult)
}

// ProjectResult is the outcome of one project.
type ProjectResult struct {
	Dir      string        `yaml:"dir"`
	ExitCode int           `yaml:"exit_code"`
	Duration time.Duration `yaml:"duration"`
	Slot     int           `yaml:"slot"`
	// Skipped is set for projects never started.
	Skipped bool   `yaml:"skipped,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

// Result is the outcome of RunAll.
type Result struct {
	RunID string `yaml:"run_id"`
	// Failed are the directories of the projects that exited non-zero
	// or failed to start, in completion order.
	Failed []string `yaml:"failed,omitempty"`
	// FirstExitCode is the exit code of the first failure, 0 if none.
	FirstExitCode int `yaml:"first_exit_code"`
	// Projects are in input order.
	Projects []ProjectResult `yaml:"projects"`
}

type slotState int

const (
	idle slotState = iota
	running
)

type exitStatus struct {
	code int
	err  error
}

type slot struct {
	state   slotState
	project int
	started time.Time
	release func()
	done    chan exitStatus
	ctx     context.Context
}

// RunAll runs buildCmd followed by args in each of projectDirs, at most
// maxParallel at a time.
//
// Without KeepGoing no project is started after the first failure.
// Running children are always waited for, also when ctx is canceled;
// cancellation only stops new starts.
func RunAll(ctx context.Context, projectDirs []string, buildCmd, args []string, maxParallel int, opts Options) Result {
	if maxParallel < 1 {
		maxParallel = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Spawner == nil {
		opts.Spawner = ExecSpawner{}
	}
	runID := uuid.NewString()
	logger := clog.New(runID).With(map[string]string{"run": runID})
	defer logger.Close()
	ctx = clog.NewContext(ctx, logger)

	res := Result{
		RunID:    runID,
		Projects: make([]ProjectResult, len(projectDirs)),
	}
	for i, dir := range projectDirs {
		res.Projects[i] = ProjectResult{Dir: dir, Slot: -1, Skipped: true}
	}
	fail := func(i, code int) {
		res.Failed = append(res.Failed, projectDirs[i])
		if res.FirstExitCode == 0 {
			res.FirstExitCode = code
		}
	}
	finish := func(pr ProjectResult) {
		if opts.OnDone != nil {
			opts.OnDone(pr)
		}
	}

	argv := append(append([]string(nil), buildCmd...), args...)
	sema := semaphore.New(SemaphoreName, maxParallel)
	slots := make([]slot, maxParallel)
	var eg errgroup.Group
	next, active := 0, 0
	stop := false
	for {
		// Poll running slots.
		for id := range slots {
			s := &slots[id]
			if s.state != running {
				continue
			}
			var st exitStatus
			select {
			case st = <-s.done:
			default:
				continue
			}
			pr := &res.Projects[s.project]
			pr.Skipped = false
			pr.Slot = id
			pr.Duration = time.Since(s.started)
			pr.ExitCode = st.code
			if st.err != nil {
				pr.Error = st.err.Error()
				if pr.ExitCode == 0 {
					pr.ExitCode = 1
				}
			}
			if pr.ExitCode != 0 {
				clog.Warningf(s.ctx, "failed with exit code %d in %s", pr.ExitCode, pr.Duration)
				fail(s.project, pr.ExitCode)
				if !opts.KeepGoing {
					stop = true
				}
			} else {
				clog.Infof(s.ctx, "done in %s", pr.Duration)
			}
			s.release()
			s.state = idle
			active--
			finish(*pr)
		}
		if ctx.Err() != nil && !stop {
			log.Warnf("canceled: %v; waiting for %d running builds", ctx.Err(), active)
			stop = true
		}

		// Fill idle slots.
		for !stop && next < len(projectDirs) {
			id, release, ok := sema.TryAcquire()
			if !ok {
				break
			}
			i := next
			next++
			dir := projectDirs[i]
			sctx := clog.WithLabels(ctx, map[string]string{
				"project": dir,
				"slot":    strconv.Itoa(id),
			})
			log.Infof("BUILDING [%d/%d]: %s", i+1, len(projectDirs), dir)
			clog.Infof(sctx, "start %q", argv)
			started := time.Now()
			// Children are not killed on cancellation; they are drained.
			p, err := opts.Spawner.Start(context.WithoutCancel(sctx), dir, argv)
			if err != nil {
				release()
				pr := &res.Projects[i]
				pr.Skipped = false
				pr.Slot = id
				pr.ExitCode = 1
				pr.Error = fmt.Sprintf("failed to start: %v", err)
				clog.Errorf(sctx, "%s", pr.Error)
				fail(i, 1)
				if !opts.KeepGoing {
					stop = true
				}
				finish(*pr)
				continue
			}
			done := make(chan exitStatus, 1)
			slots[id] = slot{
				state:   running,
				project: i,
				started: started,
				release: release,
				done:    done,
				ctx:     sctx,
			}
			active++
			eg.Go(func() error {
				code, err := p.Wait()
				done <- exitStatus{code: code, err: err}
				return nil
			})
		}
		if active == 0 && (stop || next >= len(projectDirs)) {
			break
		}
		time.Sleep(opts.PollInterval)
	}
	// All waiters have sent their status by now.
	_ = eg.Wait()
	log.Infof("%s: %d builds in %d slots, %d failed", sema.Name(), sema.NumRequests(), sema.Capacity(), len(res.Failed))
	return res
}
