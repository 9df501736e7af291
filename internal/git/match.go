package git

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternMatcher matches changed files against a hook's glob patterns.
// A pattern matches a file if it matches the repo-relative path or the
// bare filename. An empty pattern list matches everything.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher validates and compiles the given glob patterns.
func NewPatternMatcher(patterns []string) (*PatternMatcher, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern: %s", p)
		}
	}
	return &PatternMatcher{patterns: patterns}, nil
}

// Matches reports whether any pattern matches the file.
func (m *PatternMatcher) Matches(file string) bool {
	if len(m.patterns) == 0 {
		return true
	}
	base := filepath.Base(file)
	for _, p := range m.patterns {
		if doublestar.MatchUnvalidated(p, file) || doublestar.MatchUnvalidated(p, base) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether any file matches any pattern.
func (m *PatternMatcher) MatchesAny(files []string) bool {
	if len(m.patterns) == 0 {
		return true
	}
	for _, f := range files {
		if m.Matches(f) {
			return true
		}
	}
	return false
}

// Filter returns the files that match, preserving input order.
func (m *PatternMatcher) Filter(files []string) []string {
	if len(m.patterns) == 0 {
		return files
	}
	var out []string
	for _, f := range files {
		if m.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}
