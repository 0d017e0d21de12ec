// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildopts

import "strings"

// BuiltDirMarker is the textual prefix of a forward reference in
// firstobjs/lastobjs. `_BUILT_DIR_.src/foo` means "all objects built
// from the libdirs.b directory src/foo".
const BuiltDirMarker = "_BUILT_DIR_."

// ObjRef is an entry of a firstobjs/lastobjs list.
// It is either literal link-line text or a forward reference to the
// objects of a libdirs.b directory, resolved at link time.
type ObjRef struct {
	// Literal is link-line text. Empty for a forward reference.
	Literal string
	// Dir is the referenced libdirs.b directory. Empty for a literal.
	Dir string
	// forward distinguishes Forward("") from Literal("").
	forward bool
}

// Literal returns a literal object reference.
func Literal(s string) ObjRef {
	return ObjRef{Literal: s}
}

// Forward returns a forward reference to the objects of dir.
func Forward(dir string) ObjRef {
	return ObjRef{Dir: dir, forward: true}
}

// IsForward reports whether r is a forward reference.
func (r ObjRef) IsForward() bool {
	return r.forward
}

func (r ObjRef) String() string {
	if r.forward {
		return BuiltDirMarker + r.Dir
	}
	return r.Literal
}

// ParseObjRefs parses firstobjs/lastobjs text.
// Whitespace separated tokens starting with BuiltDirMarker become forward
// references; runs of other tokens are kept as one literal.
func ParseObjRefs(text string) []ObjRef {
	var refs []ObjRef
	var lit []string
	flush := func() {
		if len(lit) > 0 {
			refs = append(refs, Literal(strings.Join(lit, " ")))
			lit = nil
		}
	}
	for _, tok := range strings.Fields(text) {
		dir, ok := strings.CutPrefix(tok, BuiltDirMarker)
		if !ok {
			lit = append(lit, tok)
			continue
		}
		flush()
		refs = append(refs, Forward(dir))
	}
	flush()
	return refs
}

// FormatObjRefs formats refs back into authoring text.
func FormatObjRefs(refs []ObjRef) string {
	var sb strings.Builder
	for _, r := range refs {
		s := r.String()
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// HasForward reports whether refs contains any forward reference.
func HasForward(refs []ObjRef) bool {
	for _, r := range refs {
		if r.forward {
			return true
		}
	}
	return false
}
