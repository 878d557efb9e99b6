package ignore_test

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/temirov/ctxt/internal/ignore"
	"go.uber.org/zap/zaptest"
)

// writeRulesFile creates a rules file with the given content, failing the test on error.
func writeRulesFile(testingHandle *testing.T, content string) string {
	testingHandle.Helper()
	rulesPath := filepath.Join(testingHandle.TempDir(), ".gitignore")
	if writeError := os.WriteFile(rulesPath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", rulesPath, writeError)
	}
	return rulesPath
}

// TestLoadRules verifies trimming and skipping of blank and comment lines.
func TestLoadRules(testingHandle *testing.T) {
	rulesPath := writeRulesFile(testingHandle, "# comment\n\n  *.log  \nbuild\r\n\t\n  # indented comment\nnode_modules/\n")

	rules, loadError := ignore.LoadRules(rulesPath)
	if loadError != nil {
		testingHandle.Fatalf("LoadRules failed: %v", loadError)
	}
	expected := []ignore.Rule{"*.log", "build", "node_modules/"}
	if !reflect.DeepEqual(rules, expected) {
		testingHandle.Fatalf("unexpected rules: got %v want %v", rules, expected)
	}
}

// TestLoadRulesMissingFile verifies that an absent rules file yields no rules and no error.
func TestLoadRulesMissingFile(testingHandle *testing.T) {
	rules, loadError := ignore.LoadRules(filepath.Join(testingHandle.TempDir(), ".gitignore"))
	if loadError != nil {
		testingHandle.Fatalf("expected no error for missing file, got %v", loadError)
	}
	if len(rules) != 0 {
		testingHandle.Fatalf("expected no rules, got %v", rules)
	}
	for _, candidate := range []string{"a.txt", "sub/b.log", ".env", "deep/nested/dir"} {
		if ignore.ShouldIgnore(candidate, rules) {
			testingHandle.Fatalf("expected %s to be kept without rules", candidate)
		}
	}
}

// TestLoadRulesUnreadableFile verifies that a rules path that cannot be read surfaces an error.
func TestLoadRulesUnreadableFile(testingHandle *testing.T) {
	if runtime.GOOS == "windows" {
		testingHandle.Skip("permission bits are not enforced on windows")
	}
	directoryAsRules := filepath.Join(testingHandle.TempDir(), ".gitignore")
	if makeDirError := os.Mkdir(directoryAsRules, 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir: %v", makeDirError)
	}
	if _, loadError := ignore.LoadRules(directoryAsRules); loadError == nil {
		testingHandle.Fatalf("expected error when the rules path is a directory")
	}
}

// TestShouldIgnore verifies glob matching against the relative path and the base name.
func TestShouldIgnore(testingHandle *testing.T) {
	testCases := []struct {
		testName       string
		candidatePath  string
		rules          []ignore.Rule
		expectedIgnore bool
	}{
		{testName: "extension glob matches root file", candidatePath: "a.log", rules: []ignore.Rule{"*.log"}, expectedIgnore: true},
		{testName: "extension glob keeps other file", candidatePath: "a.txt", rules: []ignore.Rule{"*.log"}, expectedIgnore: false},
		{testName: "extension glob matches nested base name", candidatePath: "sub/deeper/a.log", rules: []ignore.Rule{"*.log"}, expectedIgnore: true},
		{testName: "exact name matches nested directory", candidatePath: "src/build", rules: []ignore.Rule{"build"}, expectedIgnore: true},
		{testName: "relative path pattern", candidatePath: "docs/draft.md", rules: []ignore.Rule{"docs/*.md"}, expectedIgnore: true},
		{testName: "relative path pattern does not cross separators", candidatePath: "docs/sub/draft.md", rules: []ignore.Rule{"docs/*.md"}, expectedIgnore: false},
		{testName: "question mark", candidatePath: "file1.txt", rules: []ignore.Rule{"file?.txt"}, expectedIgnore: true},
		{testName: "character class", candidatePath: "v2.bak", rules: []ignore.Rule{"v[0-9].bak"}, expectedIgnore: true},
		{testName: "trailing slash is literal in glob mode", candidatePath: "node_modules", rules: []ignore.Rule{"node_modules/"}, expectedIgnore: false},
		{testName: "negation is literal in glob mode", candidatePath: "keep.log", rules: []ignore.Rule{"!keep.log"}, expectedIgnore: false},
		{testName: "backslash separators are normalized", candidatePath: `docs\draft.md`, rules: []ignore.Rule{"docs/*.md"}, expectedIgnore: true},
		{testName: "invalid pattern never matches", candidatePath: "a[", rules: []ignore.Rule{"a["}, expectedIgnore: false},
		{testName: "any rule matching is enough", candidatePath: "x.tmp", rules: []ignore.Rule{"*.log", "*.tmp"}, expectedIgnore: true},
	}

	for index, testCase := range testCases {
		actual := ignore.ShouldIgnore(testCase.candidatePath, testCase.rules)
		if actual != testCase.expectedIgnore {
			testingHandle.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expectedIgnore, actual)
		}
	}
}

// TestInvalidRules verifies detection of patterns rejected by the glob primitive.
func TestInvalidRules(testingHandle *testing.T) {
	invalid := ignore.InvalidRules([]ignore.Rule{"*.log", "a[", "ok"})
	expected := []ignore.Rule{"a["}
	if !reflect.DeepEqual(invalid, expected) {
		testingHandle.Fatalf("unexpected invalid rules: got %v want %v", invalid, expected)
	}
}

// TestNewMatcher verifies matcher selection by mode.
func TestNewMatcher(testingHandle *testing.T) {
	logger := zaptest.NewLogger(testingHandle)
	rules := []ignore.Rule{"*.log", "!keep.log", "build/"}

	globMatcher, globError := ignore.NewMatcher(ignore.ModeGlob, rules, logger)
	if globError != nil {
		testingHandle.Fatalf("glob matcher: %v", globError)
	}
	if _, isGlob := globMatcher.(*ignore.GlobMatcher); !isGlob {
		testingHandle.Fatalf("expected *ignore.GlobMatcher, got %T", globMatcher)
	}

	defaultMatcher, defaultError := ignore.NewMatcher("", rules, logger)
	if defaultError != nil {
		testingHandle.Fatalf("default matcher: %v", defaultError)
	}
	if _, isGlob := defaultMatcher.(*ignore.GlobMatcher); !isGlob {
		testingHandle.Fatalf("expected empty mode to select glob matching, got %T", defaultMatcher)
	}

	gitMatcher, gitError := ignore.NewMatcher(ignore.ModeGitignore, rules, logger)
	if gitError != nil {
		testingHandle.Fatalf("gitignore matcher: %v", gitError)
	}
	if _, isGitignore := gitMatcher.(*ignore.GitignoreMatcher); !isGitignore {
		testingHandle.Fatalf("expected *ignore.GitignoreMatcher, got %T", gitMatcher)
	}

	if _, unknownError := ignore.NewMatcher("regex", rules, logger); unknownError == nil {
		testingHandle.Fatalf("expected error for unknown mode")
	}
}

// TestGlobMatcherIgnoresEntryKind verifies that glob matching does not depend on the entry kind.
func TestGlobMatcherIgnoresEntryKind(testingHandle *testing.T) {
	matcher := ignore.NewGlobMatcher([]ignore.Rule{"vendor"})
	if !matcher.ShouldIgnore("vendor", true) || !matcher.ShouldIgnore("vendor", false) {
		testingHandle.Fatalf("expected vendor to be ignored regardless of kind")
	}
	if len(matcher.Rules()) != 1 {
		testingHandle.Fatalf("expected one rule, got %v", matcher.Rules())
	}
}

// TestGitignoreMatcher verifies the gitignore extension semantics.
func TestGitignoreMatcher(testingHandle *testing.T) {
	matcher := ignore.NewGitignoreMatcher([]ignore.Rule{"*.log", "!keep.log", "build/", "/root-only.txt"})

	testCases := []struct {
		testName       string
		relativePath   string
		isDirectory    bool
		expectedIgnore bool
	}{
		{testName: "glob file", relativePath: "debug.log", expectedIgnore: true},
		{testName: "nested glob file", relativePath: "sub/debug.log", expectedIgnore: true},
		{testName: "negated file", relativePath: "keep.log", expectedIgnore: false},
		{testName: "directory-only pattern on directory", relativePath: "build", isDirectory: true, expectedIgnore: true},
		{testName: "directory-only pattern on file", relativePath: "build", isDirectory: false, expectedIgnore: false},
		{testName: "anchored pattern at root", relativePath: "root-only.txt", expectedIgnore: true},
		{testName: "anchored pattern below root", relativePath: "sub/root-only.txt", expectedIgnore: false},
		{testName: "unrelated file", relativePath: "main.go", expectedIgnore: false},
	}

	for index, testCase := range testCases {
		actual := matcher.ShouldIgnore(testCase.relativePath, testCase.isDirectory)
		if actual != testCase.expectedIgnore {
			testingHandle.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expectedIgnore, actual)
		}
	}
}
