// Package config builds the immutable run configuration of the ctxt CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/temirov/ctxt/internal/ignore"
	"github.com/temirov/ctxt/internal/utils"
)

const (
	// DefaultTokenModel names the tokenizer model used when none is configured.
	DefaultTokenModel = "gpt-4o"

	errorEmptyNameFormat     = "configuration key %s must not be empty"
	errorNameSeparatorFormat = "configuration key %s must be a plain file name, got %q"
	errorMatcherModeFormat   = "configuration key %s must be %q or %q, got %q"
)

// Configuration holds the values read once at process start. It is passed by
// value to every component and never modified afterwards.
type Configuration struct {
	// GitDirectoryName is always excluded from traversal.
	GitDirectoryName string `mapstructure:"git_dir"`
	// IgnoreFileName is the rules file read from the scan root. It is always excluded from output.
	IgnoreFileName string `mapstructure:"ignore_file"`
	// OutputFileName is the artifact written at the scan root. It is always excluded from output.
	OutputFileName string `mapstructure:"output_file"`
	// RootLabel replaces the root directory's base name on the first line of the artifact when set.
	RootLabel string `mapstructure:"root_label"`
	// MatcherMode selects glob or gitignore rule semantics.
	MatcherMode string `mapstructure:"matcher"`

	Report ReportConfiguration `mapstructure:"report"`
}

// ReportConfiguration holds defaults for the optional post-run reporters.
type ReportConfiguration struct {
	Copy       bool   `mapstructure:"copy"`
	Diff       bool   `mapstructure:"diff"`
	Tokens     bool   `mapstructure:"tokens"`
	TokenModel string `mapstructure:"model"`
}

// Default returns the configuration used when no source overrides a key.
func Default() Configuration {
	return Configuration{
		GitDirectoryName: utils.DefaultGitDirectoryName,
		IgnoreFileName:   utils.DefaultIgnoreFileName,
		OutputFileName:   utils.DefaultOutputFileName,
		MatcherMode:      string(ignore.ModeGlob),
		Report: ReportConfiguration{
			TokenModel: DefaultTokenModel,
		},
	}
}

// Validate reports the first invalid value.
func (configuration Configuration) Validate() error {
	namedValues := []struct {
		key   string
		value string
	}{
		{key: gitDirectoryKey, value: configuration.GitDirectoryName},
		{key: ignoreFileKey, value: configuration.IgnoreFileName},
		{key: outputFileKey, value: configuration.OutputFileName},
	}
	for _, namedValue := range namedValues {
		trimmed := strings.TrimSpace(namedValue.value)
		if trimmed == "" {
			return fmt.Errorf(errorEmptyNameFormat, namedValue.key)
		}
		if strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." {
			return fmt.Errorf(errorNameSeparatorFormat, namedValue.key, namedValue.value)
		}
	}
	switch ignore.Mode(configuration.MatcherMode) {
	case ignore.ModeGlob, ignore.ModeGitignore:
	default:
		return fmt.Errorf(errorMatcherModeFormat, matcherModeKey, ignore.ModeGlob, ignore.ModeGitignore, configuration.MatcherMode)
	}
	return nil
}

// IsStructuralName reports whether name is excluded regardless of ignore rules.
func (configuration Configuration) IsStructuralName(name string) bool {
	return name == configuration.GitDirectoryName ||
		name == configuration.IgnoreFileName ||
		name == configuration.OutputFileName
}
