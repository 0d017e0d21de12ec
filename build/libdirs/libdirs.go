// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package libdirs resolves libdirs.b files into the ordered list of
// directories that make up a project.
//
// Each non-comment line names one directory:
//
//	src/core                 local to the package
//	/src/core                relative to the package root
//	//pkg/src/foo            external package under <work_root>/xpkgs
//	$SDK$/src/hal            environment variable, absolute path
//	../common/libdirs.b      nested libdirs.b, relative to the project
//	[debug|test] src/trace   only for the listed variants
//	src/io < a.c b.c         build only a.c and b.c
//	src/io > a.c             build everything except a.c
//
// A line naming a libdirs.b file splices the entries of that file.
package libdirs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/nqbp/build/workspace"
)

// FileName is the name of a dependency list file.
const FileName = "libdirs.b"

// MaxDepth is the maximum nesting of libdirs.b files.
const MaxDepth = 64

// Origin classifies where an entry's directory lives.
type Origin int

const (
	// Local is a directory in the current package.
	Local Origin = iota
	// SiblingPackage is a directory named from the package root ("/dir").
	SiblingPackage
	// Absolute is a directory named through an environment variable.
	Absolute
	// ExternalPackage is a directory of an external package ("//pkg/dir").
	ExternalPackage
)

func (o Origin) String() string {
	switch o {
	case Local:
		return "local"
	case SiblingPackage:
		return "pkg"
	case Absolute:
		return "absolute"
	case ExternalPackage:
		return "xpkg"
	}
	return fmt.Sprintf("Origin(%d)", int(o))
}

// FilterKind is the kind of source file filter of an entry.
type FilterKind int

const (
	FilterNone FilterKind = iota
	// FilterInclude builds only the listed files.
	FilterInclude
	// FilterExclude builds all but the listed files.
	FilterExclude
)

func (k FilterKind) String() string {
	switch k {
	case FilterInclude:
		return "<"
	case FilterExclude:
		return ">"
	}
	return ""
}

// Entry is a resolved directory.
type Entry struct {
	// Path uses '/' as separator. For Absolute entries it is the
	// expanded absolute path.
	Path   string
	Filter FilterKind
	Files  []string
	Origin Origin
}

func (e Entry) String() string {
	if e.Filter == FilterNone {
		return e.Path
	}
	return fmt.Sprintf("%s %s %s", e.Path, e.Filter, strings.Join(e.Files, " "))
}

// scope is the include context of a libdirs.b file.
type scope struct {
	origin Origin
	parent string
	depth  int
}

type resolver struct {
	ws      *workspace.Context
	variant string
	entries []Entry
}

// Resolve reads specFile and returns its entries for variant, after
// applying the filters of opts.
func Resolve(ctx context.Context, ws *workspace.Context, specFile, variant string, opts Options) ([]Entry, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	r := &resolver{
		ws:      ws,
		variant: variant,
	}
	err := r.resolveFile(ctx, specFile, scope{origin: Local})
	if err != nil {
		return nil, err
	}
	entries := opts.apply(r.entries)
	dups := duplicates(entries)
	if len(dups) > 0 {
		if !opts.AllowDuplicates {
			return nil, &DuplicateError{File: specFile, Paths: dups}
		}
		for _, d := range dups {
			log.Warnf("%s: duplicate directory %s", specFile, d)
		}
	}
	log.Debugf("resolved %s variant=%s: %d entries", specFile, variant, len(entries))
	return entries, nil
}

func (r *resolver) resolveFile(ctx context.Context, fname string, sc scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	lineno := 0
	for s.Scan() {
		lineno++
		text := s.Text()
		err := r.resolveLine(ctx, fname, lineno, text, sc)
		if err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", fname, err)
	}
	return nil
}

func (r *resolver) resolveLine(ctx context.Context, fname string, lineno int, text string, sc scope) error {
	syntaxErr := func(msg string) error {
		return &SyntaxError{File: fname, Line: lineno, Text: text, Msg: msg}
	}
	resolveErr := func(err error) error {
		return &ResolveError{File: fname, Line: lineno, Text: text, Err: err}
	}

	line := strings.TrimSpace(strings.ReplaceAll(text, `\`, "/"))
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	if strings.HasPrefix(line, "[") {
		variants, rest, ok := strings.Cut(line[1:], "]")
		if !ok {
			return syntaxErr("variant filter without closing ']'")
		}
		if !matchVariant(variants, r.variant) {
			return nil
		}
		line = strings.TrimSpace(rest)
		if line == "" {
			return syntaxErr("variant filter without entry")
		}
	}

	dir, filter, files, err := splitFilter(line)
	if err != nil {
		return syntaxErr(err.Error())
	}

	e := Entry{Filter: filter, Files: files}
	next := sc
	relative := false
	switch {
	case strings.HasPrefix(dir, "//"):
		e.Origin = ExternalPackage
		dir = dir[2:]
		pkg, _, _ := strings.Cut(dir, "/")
		if pkg == "" {
			return syntaxErr("external package without name")
		}
		next = scope{origin: ExternalPackage, parent: pkg}
	case strings.HasPrefix(dir, "$"):
		e.Origin = Absolute
		// Absolute entries carry an absolute path, so the entries of a
		// nested file are package relative.
		next = scope{origin: Local}
	case strings.HasPrefix(dir, "/"):
		e.Origin = SiblingPackage
		dir = strings.TrimLeft(dir, "/")
		next = scope{origin: SiblingPackage}
	case strings.HasPrefix(dir, "."):
		if path.Base(dir) != FileName {
			return syntaxErr("relative entry must name a nested " + FileName)
		}
		e.Origin = sc.origin
		relative = true
	default:
		e.Origin = sc.origin
		if sc.parent != "" {
			dir = sc.parent + "/" + dir
		}
	}

	expand := func(s string) (string, error) {
		v, err := r.expandEnv(s)
		if err != nil {
			var serr *SyntaxError
			if errors.As(err, &serr) {
				return "", syntaxErr(serr.Msg)
			}
			return "", resolveErr(err)
		}
		return v, nil
	}
	dir, err = expand(dir)
	if err != nil {
		return err
	}
	dir = path.Clean(dir)
	for i, f := range e.Files {
		e.Files[i], err = expand(f)
		if err != nil {
			return err
		}
	}

	if path.Base(dir) == FileName {
		if filter != FilterNone {
			return syntaxErr("source filter on nested " + FileName)
		}
		if sc.depth >= MaxDepth {
			return resolveErr(fmt.Errorf("%s nested deeper than %d", FileName, MaxDepth))
		}
		nested := SourceDir(r.ws, Entry{Path: dir, Origin: e.Origin})
		if relative {
			nested = filepath.Join(r.ws.ProjectDir, filepath.FromSlash(dir))
		}
		if _, err := os.Stat(nested); err != nil {
			return resolveErr(fmt.Errorf("nested %s not found: %w", FileName, err))
		}
		log.Debugf("%s:%d: include %s", fname, lineno, nested)
		next.depth = sc.depth + 1
		return r.resolveFile(ctx, nested, next)
	}
	e.Path = dir
	r.entries = append(r.entries, e)
	return nil
}

// expandEnv expands every $NAME$ in s.
func (r *resolver) expandEnv(s string) (string, error) {
	var sb strings.Builder
	for {
		i := strings.IndexByte(s, '$')
		if i < 0 {
			sb.WriteString(s)
			return sb.String(), nil
		}
		sb.WriteString(s[:i])
		name, rest, ok := strings.Cut(s[i+1:], "$")
		if !ok {
			return "", &SyntaxError{Msg: "environment variable without closing '$'"}
		}
		v, ok := r.ws.Getenv(name)
		if !ok {
			return "", UndefinedEnvError{Name: name}
		}
		sb.WriteString(strings.ReplaceAll(strings.TrimSpace(v), `\`, "/"))
		s = rest
	}
}

func matchVariant(list, variant string) bool {
	for _, v := range strings.Split(list, "|") {
		if strings.TrimSpace(v) == variant {
			return true
		}
	}
	return false
}

// splitFilter splits "dir < a b" into its directory and filter.
// The filter marker is a separate whitespace delimited field.
func splitFilter(line string) (string, FilterKind, []string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", 0, nil, errors.New("missing directory")
	}
	dir := fields[0]
	if strings.ContainsAny(dir, "<>") {
		return "", 0, nil, errors.New("source filter must be separated from the directory by whitespace")
	}
	if len(fields) == 1 {
		return dir, FilterNone, nil, nil
	}
	var kind FilterKind
	switch fields[1] {
	case "<":
		kind = FilterInclude
	case ">":
		kind = FilterExclude
	default:
		if strings.ContainsAny(fields[1], "<>") {
			return "", 0, nil, errors.New("source filter must be followed by whitespace")
		}
		return "", 0, nil, errors.New("unexpected text after directory")
	}
	files := fields[2:]
	if len(files) == 0 {
		return "", 0, nil, fmt.Errorf("source filter %q without file names", fields[1])
	}
	for _, f := range files {
		if strings.ContainsAny(f, "<>") {
			return "", 0, nil, errors.New("more than one source filter")
		}
	}
	return dir, kind, files, nil
}

func duplicates(entries []Entry) []string {
	seen := make(map[string]int, len(entries))
	var dups []string
	for _, e := range entries {
		seen[e.Path]++
		if seen[e.Path] == 2 {
			dups = append(dups, e.Path)
		}
	}
	return dups
}

// Paths returns the paths of entries.
func Paths(entries []Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	return paths
}

// Lookup returns the entry whose path is dir.
func Lookup(entries []Entry, dir string) (Entry, bool) {
	i := slices.IndexFunc(entries, func(e Entry) bool { return e.Path == dir })
	if i < 0 {
		return Entry{}, false
	}
	return entries[i], true
}
