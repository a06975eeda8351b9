package fstree

import (
	"path/filepath"
	"strings"
)

// DefaultExclude lists patterns that are usually noise in a space report.
// It is applied only when the caller asks for it (see config defaults).
var DefaultExclude = []string{
	".git/",
	".svn/",
	".hg/",
	".DS_Store",
	"Thumbs.db",
}

// Matcher decides whether a path below the scan root is excluded.
//
// A pattern ending in "/" matches any directory whose name matches the glob.
// Other patterns match the base name; patterns containing "/" additionally
// match the slash-separated path relative to the scan root.
type Matcher struct {
	dirs  []string
	files []string
	paths []string
}

// NewMatcher compiles patterns into a Matcher. Malformed patterns never match.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case strings.HasSuffix(p, "/"):
			m.dirs = append(m.dirs, strings.TrimSuffix(p, "/"))
		default:
			m.files = append(m.files, p)
			if strings.Contains(p, "/") {
				m.paths = append(m.paths, p)
			}
		}
	}
	return m
}

// Empty reports whether m has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.dirs)+len(m.files) == 0
}

// Match reports whether the entry at rel (relative to the scan root) is
// excluded.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m.Empty() {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}

	if isDir {
		for _, pattern := range m.dirs {
			if base == pattern {
				return true
			}
			if matched, _ := filepath.Match(pattern, base); matched {
				return true
			}
		}
	}
	for _, pattern := range m.files {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	for _, pattern := range m.paths {
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
