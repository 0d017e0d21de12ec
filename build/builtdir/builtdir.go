// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package builtdir expands _BUILT_DIR_ references into object files.
package builtdir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/nqbp/build/buildopts"
	"go.chromium.org/infra/build/nqbp/build/libdirs"
	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// SourceLister lists the sources of an entry.
type SourceLister interface {
	Sources(e libdirs.Entry) ([]string, error)
}

// MissingReferenceError is a reference to a directory that is not in
// the resolved list.
type MissingReferenceError struct {
	Dir  string
	Text string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("missing dependency reference %s%s in %q", buildopts.BuiltDirMarker, e.Dir, e.Text)
}

// Expander expands forward references against a resolved list.
type Expander struct {
	WS      *workspace.Context
	Entries []libdirs.Entry
	// ObjectRoot is the directory objects are written under.
	ObjectRoot string
	ObjExt     string
	Lister     SourceLister
}

// Expand returns refs with every forward reference replaced by the
// objects of the referenced directory, in source list order.
// Literal refs are split into their whitespace separated words.
func (x *Expander) Expand(refs []buildopts.ObjRef) ([]string, error) {
	return x.expand(refs, true)
}

// Objects returns only the objects of the forward references in refs.
// These are the link inputs; literal text only appears on the command
// line.
func (x *Expander) Objects(refs []buildopts.ObjRef) ([]string, error) {
	return x.expand(refs, false)
}

func (x *Expander) expand(refs []buildopts.ObjRef, literals bool) ([]string, error) {
	var out []string
	for _, r := range refs {
		if !r.IsForward() {
			if literals {
				out = append(out, strings.Fields(r.Literal)...)
			}
			continue
		}
		objs, err := x.objects(r.Dir)
		if err != nil {
			var merr *MissingReferenceError
			if errors.As(err, &merr) {
				merr.Text = buildopts.FormatObjRefs(refs)
			}
			return nil, err
		}
		out = append(out, objs...)
	}
	return out, nil
}

// ExpandText is like Expand on the textual form of a firstobjs/lastobjs
// field.
func (x *Expander) ExpandText(text string) (string, error) {
	objs, err := x.Expand(buildopts.ParseObjRefs(text))
	if err != nil {
		return "", err
	}
	return strings.Join(objs, " "), nil
}

func (x *Expander) objects(dir string) ([]string, error) {
	e, ok := libdirs.Lookup(x.Entries, dir)
	if !ok {
		return nil, &MissingReferenceError{Dir: dir}
	}
	srcs, err := x.Lister.Sources(e)
	if err != nil {
		return nil, fmt.Errorf("%s%s: %w", buildopts.BuiltDirMarker, dir, err)
	}
	objDir := libdirs.ObjectDir(x.WS, e)
	objs := make([]string, 0, len(srcs))
	for _, src := range srcs {
		objs = append(objs, libdirs.ObjectFile(x.ObjectRoot, objDir, src, x.ObjExt))
	}
	log.Debugf("%s%s: %d objects", buildopts.BuiltDirMarker, dir, len(objs))
	return objs, nil
}
