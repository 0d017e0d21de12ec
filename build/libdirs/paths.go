// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package libdirs

import (
	"path"
	"path/filepath"
	"strings"

	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// AbsObjDir is the object directory prefix of absolute entries.
const AbsObjDir = "__abs"

// SourceDir returns the directory holding the sources of e.
func SourceDir(ws *workspace.Context, e Entry) string {
	switch e.Origin {
	case ExternalPackage:
		return filepath.Join(ws.XpkgsRoot(), filepath.FromSlash(e.Path))
	case Absolute:
		return filepath.FromSlash(e.Path)
	}
	return filepath.Join(ws.PkgRoot, filepath.FromSlash(e.Path))
}

// ObjectDir returns the slash separated directory, relative to the
// object root, where the objects of e are written.
func ObjectDir(ws *workspace.Context, e Entry) string {
	switch e.Origin {
	case ExternalPackage:
		return path.Join(ws.XpkgsDir, e.Path)
	case Absolute:
		p := strings.Replace(e.Path, ":", "", 1)
		return path.Join(AbsObjDir, strings.TrimLeft(p, "/"))
	}
	return e.Path
}

// ObjectFile returns the object file of src, a source of an entry whose
// object directory is objDir, under objectRoot.
func ObjectFile(objectRoot, objDir, src, objExt string) string {
	base := path.Base(filepath.ToSlash(src))
	base = strings.TrimSuffix(base, path.Ext(base))
	return filepath.Join(objectRoot, filepath.FromSlash(objDir), base+"."+objExt)
}
