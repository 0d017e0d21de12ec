// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	eraseLine = "\r\033[K"
	cursorUp  = "\033[A"
)

// TermUI is the console on a terminal. Overwritten lines are elided to
// the terminal width.
type TermUI struct {
	out   io.Writer
	width int
}

// NewTermUI returns a TermUI writing to f, sized from its terminal.
func NewTermUI(f *os.File) *TermUI {
	width, _, _ := term.GetSize(int(f.Fd()))
	return &TermUI{out: f, width: width}
}

// PrintLines implements UI.
func (t *TermUI) PrintLines(msgs ...string) {
	var sb strings.Builder
	appendLines := len(msgs) > 0 && msgs[0] == "\n"
	if appendLines {
		msgs = msgs[1:]
	} else if len(msgs) > 0 {
		sb.WriteString(strings.Repeat(eraseLine+cursorUp, len(msgs)-1))
		sb.WriteString(eraseLine)
	}
	first := true
	for _, msg := range msgs {
		if msg == "" {
			continue
		}
		if !first {
			sb.WriteByte('\n')
		}
		first = false
		if !strings.Contains(msg, "\n") {
			msg = elideMiddle(msg, t.width)
		}
		sb.WriteString(msg)
	}
	if appendLines {
		sb.WriteByte('\n')
	}
	io.WriteString(t.out, sb.String())
}

// NewSpinner implements UI.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{out: t.out, tick: time.Second}
}

// termSpinner rotates a character after the operation name until the
// operation ends, then replaces the line with the elapsed time.
type termSpinner struct {
	out  io.Writer
	tick time.Duration

	msg     string
	started time.Time
	quit    chan struct{}
	wg      sync.WaitGroup
}

func (s *termSpinner) Start(format string, args ...any) {
	s.msg = fmt.Sprintf(format, args...)
	s.started = time.Now()
	s.quit = make(chan struct{})
	fmt.Fprintf(s.out, "%s... ", s.msg)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		const frames = `/-\|`
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for n := 0; ; n++ {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\b%c", frames[n%len(frames)])
			}
		}
	}()
}

func (s *termSpinner) finish() time.Duration {
	close(s.quit)
	s.wg.Wait()
	return time.Since(s.started)
}

func (s *termSpinner) Stop(err error) {
	d := s.finish()
	switch {
	case err != nil:
		fmt.Fprintf(s.out, "%s%6s %s failed %v\n", eraseLine, FormatDuration(d), s.msg, err)
	case d < DurationThreshold:
		io.WriteString(s.out, eraseLine)
	default:
		fmt.Fprintf(s.out, "%s%6s %s\n", eraseLine, FormatDuration(d), s.msg)
	}
}

func (s *termSpinner) Done(format string, args ...any) {
	d := s.finish()
	fmt.Fprintf(s.out, "%s%6s %s %s\n", eraseLine, FormatDuration(d), s.msg, fmt.Sprintf(format, args...))
}
