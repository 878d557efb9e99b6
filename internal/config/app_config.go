package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/ctxt/internal/utils"
)

const (
	gitDirectoryKey = "git_dir"
	ignoreFileKey   = "ignore_file"
	outputFileKey   = "output_file"
	rootLabelKey    = "root_label"
	matcherModeKey  = "matcher"
	reportCopyKey   = "report.copy"
	reportDiffKey   = "report.diff"
	reportTokensKey = "report.tokens"
	reportModelKey  = "report.model"

	// GlobalConfigDirectoryName is the directory below the user configuration root holding ctxt settings.
	GlobalConfigDirectoryName = "ctxt"
	// ConfigFileName is the configuration file looked up in GlobalConfigDirectoryName.
	ConfigFileName = "config.yaml"

	xdgConfigHomeVariable = "XDG_CONFIG_HOME"
	dotConfigDirectory    = ".config"
)

// LoadOptions controls how the configuration is discovered.
type LoadOptions struct {
	// ExplicitFilePath, when set, must name a readable configuration file.
	ExplicitFilePath string
	// WorkingDirectory resolves a relative ExplicitFilePath. Defaults to the process working directory.
	WorkingDirectory string
}

// Load reads the configuration once from defaults, an optional file and
// CTXT_* environment variables (highest precedence), then validates it.
func Load(options LoadOptions) (Configuration, error) {
	reader := viper.New()
	defaults := Default()
	reader.SetDefault(gitDirectoryKey, defaults.GitDirectoryName)
	reader.SetDefault(ignoreFileKey, defaults.IgnoreFileName)
	reader.SetDefault(outputFileKey, defaults.OutputFileName)
	reader.SetDefault(rootLabelKey, defaults.RootLabel)
	reader.SetDefault(matcherModeKey, defaults.MatcherMode)
	reader.SetDefault(reportCopyKey, defaults.Report.Copy)
	reader.SetDefault(reportDiffKey, defaults.Report.Diff)
	reader.SetDefault(reportTokensKey, defaults.Report.Tokens)
	reader.SetDefault(reportModelKey, defaults.Report.TokenModel)

	reader.SetEnvPrefix(utils.ConfigEnvironmentPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	reader.AutomaticEnv()

	configurationPath, resolveError := resolveConfigurationPath(options)
	if resolveError != nil {
		return Configuration{}, resolveError
	}
	if configurationPath != "" {
		reader.SetConfigFile(configurationPath)
		if readError := reader.ReadInConfig(); readError != nil {
			return Configuration{}, fmt.Errorf("read configuration from %s: %w", configurationPath, readError)
		}
	}

	var configuration Configuration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return Configuration{}, fmt.Errorf("decode configuration: %w", decodeError)
	}
	configuration.GitDirectoryName = strings.TrimSpace(configuration.GitDirectoryName)
	configuration.IgnoreFileName = strings.TrimSpace(configuration.IgnoreFileName)
	configuration.OutputFileName = strings.TrimSpace(configuration.OutputFileName)
	configuration.MatcherMode = strings.ToLower(strings.TrimSpace(configuration.MatcherMode))
	if validationError := configuration.Validate(); validationError != nil {
		return Configuration{}, validationError
	}
	return configuration, nil
}

// resolveConfigurationPath returns the explicit path, or the global file when it exists, or "".
func resolveConfigurationPath(options LoadOptions) (string, error) {
	if options.ExplicitFilePath != "" {
		explicitPath := options.ExplicitFilePath
		if !filepath.IsAbs(explicitPath) {
			workingDirectory := options.WorkingDirectory
			if workingDirectory == "" {
				currentDirectory, err := os.Getwd()
				if err != nil {
					return "", fmt.Errorf("determine working directory: %w", err)
				}
				workingDirectory = currentDirectory
			}
			explicitPath = filepath.Join(workingDirectory, explicitPath)
		}
		info, statErr := os.Stat(explicitPath)
		if statErr != nil {
			return "", fmt.Errorf("stat configuration %s: %w", explicitPath, statErr)
		}
		if info.IsDir() {
			return "", fmt.Errorf("configuration path %s is a directory", explicitPath)
		}
		return explicitPath, nil
	}

	configurationDirectory, directoryError := GlobalConfigDirectory()
	if directoryError != nil {
		return "", nil
	}
	globalPath := filepath.Join(configurationDirectory, ConfigFileName)
	info, statErr := os.Stat(globalPath)
	if statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat configuration %s: %w", globalPath, statErr)
	}
	if info.IsDir() {
		return "", fmt.Errorf("configuration path %s is a directory", globalPath)
	}
	return globalPath, nil
}

// GlobalConfigDirectory returns $XDG_CONFIG_HOME/ctxt when XDG_CONFIG_HOME is an
// absolute path, otherwise ~/.config/ctxt.
func GlobalConfigDirectory() (string, error) {
	if directory := os.Getenv(xdgConfigHomeVariable); directory != "" && filepath.IsAbs(directory) {
		return filepath.Join(directory, GlobalConfigDirectoryName), nil
	}
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDirectory, dotConfigDirectory, GlobalConfigDirectoryName), nil
}
