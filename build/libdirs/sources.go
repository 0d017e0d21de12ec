// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package libdirs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// SourcesFile is the optional per directory list of sources.
const SourcesFile = "sources.b"

// sourceExts are the recognized non-assembler source extensions.
var sourceExts = []string{"c", "cpp"}

// Lister lists the source files of entries.
// Directory contents are memoized.
type Lister struct {
	ws      *workspace.Context
	asmExts []string
	cache   *lru.Cache[string, []string]
}

// NewLister returns a lister recognizing asmExts as assembler sources.
func NewLister(ws *workspace.Context, asmExts []string) *Lister {
	cache, err := lru.New[string, []string](1024)
	if err != nil {
		panic(err)
	}
	return &Lister{
		ws:      ws,
		asmExts: asmExts,
		cache:   cache,
	}
}

// Sources returns the source files of e, relative to its source
// directory, after applying its filter.
func (l *Lister) Sources(e Entry) ([]string, error) {
	return l.SourcesIn(SourceDir(l.ws, e), e)
}

// SourcesIn is like Sources but reads dir instead of the source
// directory of e.
func (l *Lister) SourcesIn(dir string, e Entry) ([]string, error) {
	files, err := l.list(dir)
	if err != nil {
		return nil, err
	}
	switch e.Filter {
	case FilterInclude:
		return slices.Clone(e.Files), nil
	case FilterExclude:
		return slices.DeleteFunc(slices.Clone(files), func(f string) bool {
			return slices.Contains(e.Files, f)
		}), nil
	}
	return slices.Clone(files), nil
}

func (l *Lister) list(dir string) ([]string, error) {
	if files, ok := l.cache.Get(dir); ok {
		return files, nil
	}
	files, err := readSourcesFile(filepath.Join(dir, SourcesFile))
	if errors.Is(err, fs.ErrNotExist) {
		files, err = l.scan(dir)
	}
	if err != nil {
		return nil, err
	}
	l.cache.Add(dir, files)
	return files, nil
}

func readSourcesFile(fname string) ([]string, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	log.Debugf("sources from %s", fname)
	var files []string
	s := bufio.NewScanner(bytes.NewReader(buf))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		files = append(files, filepath.ToSlash(line))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fname, err)
	}
	return files, nil
}

func (l *Lister) scan(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("directory %s: %w", dir, err)
	}
	var files []string
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		if l.IsSource(ent.Name()) {
			files = append(files, ent.Name())
		}
	}
	return files, nil
}

// IsSource reports whether name has a recognized source extension.
func (l *Lister) IsSource(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return slices.Contains(sourceExts, ext) || slices.Contains(l.asmExts, ext)
}
