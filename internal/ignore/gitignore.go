package ignore

import (
	gitignore "github.com/sabhiram/go-gitignore"
)

const directorySuffix = "/"

// GitignoreMatcher interprets rules with full gitignore semantics, including
// negation, directory-only and anchored patterns.
type GitignoreMatcher struct {
	compiled *gitignore.GitIgnore
}

// NewGitignoreMatcher compiles rules in file order.
func NewGitignoreMatcher(rules []Rule) *GitignoreMatcher {
	lines := make([]string, 0, len(rules))
	for _, rule := range rules {
		lines = append(lines, string(rule))
	}
	return &GitignoreMatcher{compiled: gitignore.CompileIgnoreLines(lines...)}
}

// ShouldIgnore implements Matcher. Directories are matched with a trailing slash
// so that directory-only patterns apply to them.
func (matcher *GitignoreMatcher) ShouldIgnore(relativePath string, isDirectory bool) bool {
	if matcher == nil || matcher.compiled == nil {
		return false
	}
	candidate := relativePath
	if isDirectory {
		candidate += directorySuffix
	}
	return matcher.compiled.MatchesPath(candidate)
}

var _ Matcher = (*GitignoreMatcher)(nil)
