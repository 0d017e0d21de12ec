// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type logSpinner struct {
	started time.Time
	msg     string
}

// Start logs the start of the operation.
func (l *logSpinner) Start(format string, args ...any) {
	l.started = time.Now()
	l.msg = fmt.Sprintf(format, args...)
	log.Info(l.msg)
}

// Stop logs how long the operation took, or its error.
func (l *logSpinner) Stop(err error) {
	if err != nil {
		log.Warnf("%s -> failed %s %v", l.msg, FormatDuration(time.Since(l.started)), err)
		return
	}
	log.Infof("%s -> done %s", l.msg, FormatDuration(time.Since(l.started)))
}

// Done logs the message with the elapsed time.
func (l *logSpinner) Done(format string, args ...any) {
	log.Infof("%s -> %s %s", l.msg, fmt.Sprintf(format, args...), FormatDuration(time.Since(l.started)))
}

// LogUI is a log-based UI.
type LogUI struct{}

// PrintLines logs each message, stripping ansi escape sequences.
func (LogUI) PrintLines(msgs ...string) {
	for _, msg := range msgs {
		msg = strings.TrimSpace(msg)
		if msg == "" {
			continue
		}
		log.Info(StripANSIEscapeCodes(msg))
	}
}

// NewSpinner returns a log-based spinner.
func (LogUI) NewSpinner() Spinner {
	return &logSpinner{}
}
