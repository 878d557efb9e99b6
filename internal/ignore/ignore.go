// Package ignore loads exclusion rules from a .gitignore-style file and decides
// which paths are left out of the tree diagram and the content dump.
//
// The default glob mode is a small subset of gitignore: every rule
// is a shell glob matched with path.Match against the slash separated path
// relative to the scan root and against the base name alone. Negation ("!"),
// directory-only ("dir/") and recursive "**" semantics are not interpreted in
// that mode. The gitignore mode is an opt-in extension with full gitignore
// semantics.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/temirov/ctxt/internal/utils"
	"go.uber.org/zap"
)

// Rule is a single glob pattern read from the rules file.
type Rule string

// Mode selects the matching semantics applied to the loaded rules.
type Mode string

const (
	// ModeGlob matches rules with shell-glob semantics against the path and its base name.
	ModeGlob Mode = "glob"
	// ModeGitignore matches rules with full gitignore semantics.
	ModeGitignore Mode = "gitignore"

	commentPrefix = "#"

	errorOpenRulesFormat   = "opening ignore rules %s: %w"
	errorReadRulesFormat   = "reading ignore rules %s: %w"
	errorUnknownModeFormat = "unsupported matcher mode %q"

	invalidPatternMessage = "ignore rule is not a valid glob and will never match"
)

// Matcher decides whether a path relative to the scan root is excluded.
type Matcher interface {
	ShouldIgnore(relativePath string, isDirectory bool) bool
}

// LoadRules reads rulesFilePath and returns one rule per non-empty line that is
// not a "#" comment, with surrounding whitespace trimmed. A missing file yields
// no rules and no error; any other failure is returned.
//
// #nosec G304
func LoadRules(rulesFilePath string) ([]Rule, error) {
	fileHandle, openFileError := os.Open(rulesFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorOpenRulesFormat, rulesFilePath, openFileError)
	}
	defer fileHandle.Close()

	var rules []Rule
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		rules = append(rules, Rule(trimmedLine))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorReadRulesFormat, rulesFilePath, scanError)
	}
	return rules, nil
}

// ShouldIgnore reports whether candidatePath, or its base name alone, matches
// any rule with shell-glob semantics. Invalid patterns never match.
func ShouldIgnore(candidatePath string, rules []Rule) bool {
	normalizedPath := utils.NormalizeSlashPath(candidatePath)
	baseName := path.Base(normalizedPath)
	for _, rule := range rules {
		pattern := string(rule)
		if pathMatched, _ := path.Match(pattern, normalizedPath); pathMatched {
			return true
		}
		if nameMatched, _ := path.Match(pattern, baseName); nameMatched {
			return true
		}
	}
	return false
}

// GlobMatcher applies ShouldIgnore with a fixed rule set.
type GlobMatcher struct {
	rules []Rule
}

// NewGlobMatcher copies rules into a matcher.
func NewGlobMatcher(rules []Rule) *GlobMatcher {
	return &GlobMatcher{rules: append([]Rule(nil), rules...)}
}

// ShouldIgnore implements Matcher. The entry kind does not influence glob matching.
func (matcher *GlobMatcher) ShouldIgnore(relativePath string, isDirectory bool) bool {
	return ShouldIgnore(relativePath, matcher.rules)
}

// Rules returns a copy of the matcher's rules.
func (matcher *GlobMatcher) Rules() []Rule {
	return append([]Rule(nil), matcher.rules...)
}

// InvalidRules returns the rules rejected by the glob primitive.
func InvalidRules(rules []Rule) []Rule {
	var invalid []Rule
	for _, rule := range rules {
		if _, matchError := path.Match(string(rule), ""); matchError != nil {
			invalid = append(invalid, rule)
		}
	}
	return invalid
}

// NewMatcher builds the matcher selected by mode. Glob rules that can never
// match are reported through logger.
func NewMatcher(mode Mode, rules []Rule, logger *zap.Logger) (Matcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch mode {
	case ModeGlob, "":
		for _, invalidRule := range InvalidRules(rules) {
			logger.Warn(invalidPatternMessage, zap.String("rule", string(invalidRule)))
		}
		return NewGlobMatcher(rules), nil
	case ModeGitignore:
		return NewGitignoreMatcher(rules), nil
	default:
		return nil, fmt.Errorf(errorUnknownModeFormat, mode)
	}
}

var _ Matcher = (*GlobMatcher)(nil)
