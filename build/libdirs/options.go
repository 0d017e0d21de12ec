// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package libdirs

import (
	"errors"
	"regexp"
	"strings"
)

// Options are the filters applied to a resolved list.
type Options struct {
	// NoExternal drops external package entries (-p).
	NoExternal bool
	// OnlyExternal keeps only external package entries (-x).
	OnlyExternal bool
	// NoAbsolute drops absolute entries (--noabs).
	NoAbsolute bool

	// Contains keeps entries whose path contains it (-q).
	Contains string
	// Match keeps entries whose path matches it (-Q).
	Match *regexp.Regexp
	// NotContains drops entries whose path contains it (-c).
	NotContains string
	// NotMatch drops entries whose path matches it (-C).
	NotMatch *regexp.Regexp

	// Start and Stop select the range of entries from the first whose
	// path contains Start up to the first one after it whose path
	// contains Stop (-s, -e).
	Start string
	Stop  string

	// AllowDuplicates downgrades duplicate directories to warnings.
	AllowDuplicates bool
}

func (o Options) validate() error {
	if o.NoExternal && o.OnlyExternal {
		return errors.New("-p and -x are mutually exclusive")
	}
	return nil
}

func (o Options) keep(e Entry) bool {
	switch {
	case o.NoExternal && e.Origin == ExternalPackage:
		return false
	case o.OnlyExternal && e.Origin != ExternalPackage:
		return false
	case o.NoAbsolute && e.Origin == Absolute:
		return false
	case o.Contains != "" && !strings.Contains(e.Path, o.Contains):
		return false
	case o.Match != nil && !o.Match.MatchString(e.Path):
		return false
	case o.NotContains != "" && strings.Contains(e.Path, o.NotContains):
		return false
	case o.NotMatch != nil && o.NotMatch.MatchString(e.Path):
		return false
	}
	return true
}

func (o Options) apply(entries []Entry) []Entry {
	var out []Entry
	started := o.Start == ""
	for _, e := range entries {
		if !started {
			if !strings.Contains(e.Path, o.Start) {
				continue
			}
			started = true
		}
		if o.keep(e) {
			out = append(out, e)
		}
		if o.Stop != "" && strings.Contains(e.Path, o.Stop) {
			break
		}
	}
	return out
}
