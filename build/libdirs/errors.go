// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package libdirs

import (
	"fmt"
	"strings"
)

// SyntaxError is a malformed line in a libdirs.b file.
type SyntaxError struct {
	File string
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.File, e.Line, e.Msg, e.Text)
}

// ResolveError is a well-formed line that could not be resolved, e.g.
// an undefined environment variable or a missing nested libdirs.b.
type ResolveError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, e.Err, e.Text)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// UndefinedEnvError is an environment variable referenced by $NAME$ that
// is not set.
type UndefinedEnvError struct {
	Name string
}

func (e UndefinedEnvError) Error() string {
	return fmt.Sprintf("environment variable %q is not defined", e.Name)
}

// DuplicateError reports directories listed more than once.
type DuplicateError struct {
	File  string
	Paths []string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: duplicate directories: %s", e.File, strings.Join(e.Paths, ", "))
}
