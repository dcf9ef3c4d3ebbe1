// Package fileset expands glob patterns into the list of DY documents a run
// should check.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultPattern matches the DY documents in the current directory.
const DefaultPattern = "*.dy"

// ErrNoPatterns indicates that Resolve was invoked without any glob patterns.
var ErrNoPatterns = errors.New("fileset: no patterns provided")

// PatternError wraps a syntax issue in a glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Err)
}

func (e PatternError) Unwrap() error { return e.Err }

// NoMatchError lists the patterns that matched no documents. A pattern with
// zero matches usually means a typo in the configuration, so it is an error
// rather than a silent empty run.
type NoMatchError struct {
	Patterns []string
}

func (e NoMatchError) Error() string {
	return "patterns matched no files: " + strings.Join(e.Patterns, ", ")
}

// Resolver expands glob patterns against a filesystem and rewrites matches
// into the paths the pipeline should open.
type Resolver struct {
	fsys fs.FS
	join func(name string) string
}

// NewResolver wraps an fs.FS without path rewriting. Matches keep their
// slash-separated names, which suits tests built on fstest.MapFS.
func NewResolver(fsys fs.FS) Resolver {
	return Resolver{fsys: fsys, join: func(name string) string { return name }}
}

// NewOSResolver roots a resolver at the given directory and rewrites matches
// into absolute OS paths.
func NewOSResolver(base string) (Resolver, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return Resolver{}, fmt.Errorf("resolve base %q: %w", base, err)
	}
	info, err := os.Stat(absBase)
	if err != nil {
		return Resolver{}, fmt.Errorf("stat base %q: %w", absBase, err)
	}
	if !info.IsDir() {
		return Resolver{}, fmt.Errorf("base %q is not a directory", absBase)
	}
	return Resolver{
		fsys: os.DirFS(absBase),
		join: func(name string) string {
			return filepath.Join(absBase, filepath.FromSlash(name))
		},
	}, nil
}

// Resolve evaluates every pattern and returns the matched document paths,
// sorted and de-duplicated so runs are deterministic.
func (r Resolver) Resolve(patterns []string) ([]string, error) {
	if r.fsys == nil {
		return nil, errors.New("fileset: resolver has no filesystem")
	}
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	var matchedPaths []string
	var missing []string
	for _, pattern := range patterns {
		matches, err := fs.Glob(r.fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, PatternError{Pattern: pattern, Err: err}
		}
		if len(matches) == 0 {
			missing = append(missing, pattern)
			continue
		}
		for _, match := range matches {
			matchedPaths = append(matchedPaths, r.join(match))
		}
	}
	if len(missing) > 0 {
		return nil, NoMatchError{Patterns: missing}
	}

	slices.Sort(matchedPaths)
	return slices.Compact(matchedPaths), nil
}

// Open reads one resolved document from the underlying filesystem. Paths
// produced by an OS-rooted resolver are absolute and read directly.
func (r Resolver) Open(path string) ([]byte, error) {
	if filepath.IsAbs(path) {
		return os.ReadFile(path)
	}
	return fs.ReadFile(r.fsys, filepath.ToSlash(path))
}
