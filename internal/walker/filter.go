package walker

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude matches every markdown lesson.
var DefaultInclude = []string{"**/*.md", "**/*.markdown"}

// DefaultExcludes are directory names never descended into. Directories
// starting with "." or "_" are skipped as well.
var DefaultExcludes = []string{"node_modules", "drafts"}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// MatchesInclude reports whether a slash-separated relative path is a lesson
// under patterns, or under DefaultInclude when patterns is empty.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		patterns = DefaultInclude
	}
	return globs(patterns).match(relPath)
}

// MatchesExclude reports whether relPath matches one of patterns.
func MatchesExclude(relPath string, patterns []string) bool {
	return globs(patterns).match(relPath)
}

type globs []string

// match tries each pattern against the full path, then the file name alone,
// so "*.md" also matches lessons inside category directories.
func (g globs) match(relPath string) bool {
	name := path.Base(relPath)
	for _, p := range g {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
