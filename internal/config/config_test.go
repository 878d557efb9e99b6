package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/ctxt/internal/utils"
)

// isolateEnvironment points configuration discovery at an empty directory and clears overrides.
func isolateEnvironment(t *testing.T) string {
	t.Helper()
	configurationHome := t.TempDir()
	t.Setenv(xdgConfigHomeVariable, configurationHome)
	for _, variable := range []string{"CTXT_GIT_DIR", "CTXT_IGNORE_FILE", "CTXT_OUTPUT_FILE", "CTXT_ROOT_LABEL", "CTXT_MATCHER", "CTXT_REPORT_COPY", "CTXT_REPORT_DIFF", "CTXT_REPORT_TOKENS", "CTXT_REPORT_MODEL"} {
		t.Setenv(variable, "")
		os.Unsetenv(variable)
	}
	return configurationHome
}

func writeConfigurationFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnvironment(t)

	configuration, err := Load(LoadOptions{WorkingDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if configuration.GitDirectoryName != utils.DefaultGitDirectoryName {
		t.Fatalf("expected git dir %q, got %q", utils.DefaultGitDirectoryName, configuration.GitDirectoryName)
	}
	if configuration.IgnoreFileName != utils.DefaultIgnoreFileName {
		t.Fatalf("expected ignore file %q, got %q", utils.DefaultIgnoreFileName, configuration.IgnoreFileName)
	}
	if configuration.OutputFileName != utils.DefaultOutputFileName {
		t.Fatalf("expected output file %q, got %q", utils.DefaultOutputFileName, configuration.OutputFileName)
	}
	if configuration.MatcherMode != "glob" {
		t.Fatalf("expected glob matcher, got %q", configuration.MatcherMode)
	}
	if configuration.Report.TokenModel != DefaultTokenModel {
		t.Fatalf("expected token model %q, got %q", DefaultTokenModel, configuration.Report.TokenModel)
	}
	if configuration.RootLabel != "" || configuration.Report.Copy || configuration.Report.Diff || configuration.Report.Tokens {
		t.Fatalf("unexpected non-default values: %+v", configuration)
	}
}

func TestLoadSources(t *testing.T) {
	testCases := []struct {
		name           string
		globalContent  string
		explicitName   string
		explicitBody   string
		environment    map[string]string
		expectOutput   string
		expectIgnore   string
		expectLabel    string
		expectMatcher  string
		expectDiff     bool
		expectTokenMdl string
	}{
		{
			name:           "global_file_applies",
			globalContent:  "output_file: snapshot.txt\nroot_label: .\nreport:\n  diff: true\n",
			expectOutput:   "snapshot.txt",
			expectIgnore:   utils.DefaultIgnoreFileName,
			expectLabel:    ".",
			expectMatcher:  "glob",
			expectDiff:     true,
			expectTokenMdl: DefaultTokenModel,
		},
		{
			name:           "explicit_file_replaces_global",
			globalContent:  "output_file: global.txt\n",
			explicitName:   "custom.yaml",
			explicitBody:   "ignore_file: .ctxtignore\nmatcher: GitIgnore\nreport:\n  model: gpt-4\n",
			expectOutput:   utils.DefaultOutputFileName,
			expectIgnore:   ".ctxtignore",
			expectMatcher:  "gitignore",
			expectTokenMdl: "gpt-4",
		},
		{
			name:          "environment_overrides_file",
			globalContent: "output_file: from-file.txt\n",
			environment: map[string]string{
				"CTXT_OUTPUT_FILE": "from-env.txt",
				"CTXT_REPORT_DIFF": "true",
			},
			expectOutput:   "from-env.txt",
			expectIgnore:   utils.DefaultIgnoreFileName,
			expectMatcher:  "glob",
			expectDiff:     true,
			expectTokenMdl: DefaultTokenModel,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configurationHome := isolateEnvironment(t)
			workingDirectory := t.TempDir()
			if testCase.globalContent != "" {
				writeConfigurationFile(t, filepath.Join(configurationHome, GlobalConfigDirectoryName, ConfigFileName), testCase.globalContent)
			}
			if testCase.explicitName != "" {
				writeConfigurationFile(t, filepath.Join(workingDirectory, testCase.explicitName), testCase.explicitBody)
			}
			for variable, value := range testCase.environment {
				t.Setenv(variable, value)
			}

			configuration, err := Load(LoadOptions{WorkingDirectory: workingDirectory, ExplicitFilePath: testCase.explicitName})
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if configuration.OutputFileName != testCase.expectOutput {
				t.Fatalf("output file: expected %q, got %q", testCase.expectOutput, configuration.OutputFileName)
			}
			if configuration.IgnoreFileName != testCase.expectIgnore {
				t.Fatalf("ignore file: expected %q, got %q", testCase.expectIgnore, configuration.IgnoreFileName)
			}
			if configuration.RootLabel != testCase.expectLabel {
				t.Fatalf("root label: expected %q, got %q", testCase.expectLabel, configuration.RootLabel)
			}
			if configuration.MatcherMode != testCase.expectMatcher {
				t.Fatalf("matcher: expected %q, got %q", testCase.expectMatcher, configuration.MatcherMode)
			}
			if configuration.Report.Diff != testCase.expectDiff {
				t.Fatalf("diff: expected %t, got %t", testCase.expectDiff, configuration.Report.Diff)
			}
			if configuration.Report.TokenModel != testCase.expectTokenMdl {
				t.Fatalf("model: expected %q, got %q", testCase.expectTokenMdl, configuration.Report.TokenModel)
			}
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name          string
		body          string
		expectMessage string
	}{
		{name: "unknown_matcher", body: "matcher: regex\n", expectMessage: matcherModeKey},
		{name: "nested_output_path", body: "output_file: out/.ctxt\n", expectMessage: outputFileKey},
		{name: "empty_git_dir", body: "git_dir: \"  \"\n", expectMessage: gitDirectoryKey},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			isolateEnvironment(t)
			workingDirectory := t.TempDir()
			writeConfigurationFile(t, filepath.Join(workingDirectory, "bad.yaml"), testCase.body)
			_, err := Load(LoadOptions{WorkingDirectory: workingDirectory, ExplicitFilePath: "bad.yaml"})
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), testCase.expectMessage) {
				t.Fatalf("expected error mentioning %q, got %v", testCase.expectMessage, err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolateEnvironment(t)
	if _, err := Load(LoadOptions{WorkingDirectory: t.TempDir(), ExplicitFilePath: "absent.yaml"}); err == nil {
		t.Fatalf("expected error for missing explicit configuration file")
	}
}

func TestIsStructuralName(t *testing.T) {
	configuration := Default()
	for _, name := range []string{".git", ".gitignore", ".ctxt"} {
		if !configuration.IsStructuralName(name) {
			t.Fatalf("expected %s to be structural", name)
		}
	}
	if configuration.IsStructuralName("main.go") {
		t.Fatalf("expected main.go to be regular")
	}
}
