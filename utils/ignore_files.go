package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the optional per-project file with extra ignore patterns.
const IgnoreFileName = ".devcli-ignore"

// DefaultIgnorePatterns are applied before any configured pattern.
var DefaultIgnorePatterns = []string{
	// dependency caches and virtual environments
	"node_modules", "venv", "env", ".venv",
	// vcs metadata
	".git", ".svn", ".hg",
	// tool caches and build output
	"__pycache__", ".pytest_cache", ".mypy_cache",
	"dist/", "build/", ".next/", ".nuxt/",
	"target/", "out/", "bin/", "obj/",
	".idea", ".vscode", ".DS_Store",
	// hidden directories, except CI workflows
	".*/", "!.github/",
	// compiled and generated artefacts
	"*.pyc", "*.pyo", "*.pyd",
	"*.so", "*.dll", "*.dylib", "*.exe",
	"*.class", "*.jar", "*.war",
	"*.min.js", "*.min.css",
	"*.map", "*.lock",
	".env", ".env.*",
	"*.log", "*.sqlite", "*.db",
}

type ignoreRule struct {
	pattern  string
	negate   bool
	dirOnly  bool
	hasSlash bool
}

// IgnoreRuleSet is an ordered set of gitignore-style patterns.
// Later rules take precedence, so a "!pattern" re-includes what an earlier rule excluded.
type IgnoreRuleSet struct {
	rules []ignoreRule
}

// NewIgnoreRuleSet compiles patterns in order. Blank lines and '#' comments are dropped.
func NewIgnoreRuleSet(patterns ...[]string) *IgnoreRuleSet {
	set := &IgnoreRuleSet{}
	for _, group := range patterns {
		for _, p := range group {
			if rule, ok := parseIgnoreRule(p); ok {
				set.rules = append(set.rules, rule)
			}
		}
	}
	return set
}

// Append adds the rules of other after the existing ones.
func (s *IgnoreRuleSet) Append(other *IgnoreRuleSet) {
	if other == nil {
		return
	}
	s.rules = append(s.rules, other.rules...)
}

// Len returns the number of compiled rules.
func (s *IgnoreRuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

func parseIgnoreRule(raw string) (ignoreRule, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	var rule ignoreRule
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = strings.TrimSpace(line[1:])
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	// Patterns match at any depth, so root anchors are dropped.
	line = strings.TrimPrefix(line, "/")
	for strings.HasPrefix(line, "**/") {
		line = strings.TrimPrefix(line, "**/")
	}
	if line == "" {
		return ignoreRule{}, false
	}

	rule.pattern = line
	rule.hasSlash = strings.Contains(line, "/")
	return rule, true
}

// ShouldInclude reports whether the entry at relativePath survives the rule set.
// relativePath is relative to the scan root and uses forward slashes. An entry is
// excluded when any of its ancestor directories is excluded.
func ShouldInclude(relativePath string, isDirectory bool, rules *IgnoreRuleSet) bool {
	if rules.Len() == 0 {
		return true
	}

	rel := strings.Trim(filepath.ToSlash(relativePath), "/")
	if rel == "" || rel == "." {
		return true
	}

	segments := strings.Split(rel, "/")
	for i := 1; i < len(segments); i++ {
		if rules.ignores(segments[:i], true) {
			return false
		}
	}
	return !rules.ignores(segments, isDirectory)
}

func (s *IgnoreRuleSet) ignores(segments []string, isDir bool) bool {
	ignored := false
	for _, rule := range s.rules {
		if rule.matches(segments, isDir) {
			ignored = !rule.negate
		}
	}
	return ignored
}

func (r ignoreRule) matches(segments []string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	if !r.hasSlash {
		return globMatch(r.pattern, segments[len(segments)-1])
	}
	// Multi-segment patterns are tried against every trailing sub-path.
	for start := 0; start < len(segments); start++ {
		if globMatch(r.pattern, strings.Join(segments[start:], "/")) {
			return true
		}
	}
	return false
}

// globMatch is path.Match with malformed patterns treated as literals.
func globMatch(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return matched
}

// GetIgnoreFilePatterns reads the project's .devcli-ignore file.
// A missing file yields an empty list.
func GetIgnoreFilePatterns(root string) ([]string, error) {
	ignorePath := filepath.Join(root, IgnoreFileName)

	file, err := os.Open(ignorePath)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", IgnoreFileName, err)
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}
	return patterns, nil
}
