// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/temirov/ctxt/internal/commands"
	"github.com/temirov/ctxt/internal/config"
	"github.com/temirov/ctxt/internal/ignore"
	"github.com/temirov/ctxt/internal/output"
	"github.com/temirov/ctxt/internal/services/clipboard"
	"github.com/temirov/ctxt/internal/tokenizer"
	"github.com/temirov/ctxt/internal/types"
	"github.com/temirov/ctxt/internal/utils"
	"go.uber.org/zap"
)

const (
	rootUse              = "ctxt [flags] <source-directory>"
	rootShortDescription = "snapshot a directory into a single text file"
	rootLongDescription  = `ctxt walks a source directory and writes a snapshot file at its root.
The snapshot starts with a tree diagram of the directory followed by the
content of every text file. Entries matched by the rules in the directory's
ignore file are left out, as are the version-control directory, the ignore
file and the snapshot itself.`
	rootUsageExample = `  # Snapshot the current project into ./.ctxt
  ctxt .

  # Snapshot, report the token count and copy the result
  ctxt --tokens --copy ./service

  # Show what changed since the previous snapshot
  ctxt --diff .`

	configFlagName   = "config"
	copyFlagName     = "copy"
	tokensFlagName   = "tokens"
	modelFlagName    = "model"
	diffFlagName     = "diff"
	verboseFlagName  = "verbose"
	versionFlagName  = "version"
	versionTemplate  = "ctxt version: %s\n"
	expectedArgCount = 1

	configFlagDescription  = "configuration file (defaults to the user configuration directory)"
	copyFlagDescription    = "copy the snapshot to the system clipboard"
	tokensFlagDescription  = "report the token count of the snapshot"
	modelFlagDescription   = "tokenizer model used by --tokens"
	diffFlagDescription    = "report line changes against the previous snapshot"
	verboseFlagDescription = "log skipped entries"
	versionFlagDescription = "display application version"

	reportWrittenFormat   = "wrote %s (%d bytes, %d entries, %d files)\n"
	reportChangesFormat   = "changes since previous snapshot: +%d -%d lines\n"
	reportUnchangedLine   = "no changes since previous snapshot\n"
	reportNoPreviousLine  = "no previous snapshot to compare\n"
	reportTokensFormat    = "tokens: %d (%s)\n"
	reportSkippedTokens   = "tokens: not counted\n"
	reportCopiedLine      = "copied to clipboard\n"
	errorArgumentCountFmt = "expected exactly %d source directory argument, got %d"
	errorSourceFormat     = "source directory %s: %w"
	errorSourceNotDirFmt  = "source directory %s is not a directory"
	errorLoadRulesFormat  = "loading ignore rules: %w"
	errorAbsolutePathFmt  = "abs failed for '%s': %w"

	tokenCountFailedMessage = "token count failed"
	clipboardFailedMessage  = "clipboard copy failed"
	snapshotWrittenMessage  = "snapshot written"
)

// errUsage marks argument errors that are reported together with the usage text.
var errUsage = errors.New("usage error")

// CounterFactory builds the token counter used by --tokens.
type CounterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// Dependencies holds the collaborators of the root command.
type Dependencies struct {
	Logger *zap.Logger
	// LoggerLevel, when set, is lowered to debug by --verbose.
	LoggerLevel *zap.AtomicLevel
	Clipboard   clipboard.Copier
	NewCounter  CounterFactory
}

type runOptions struct {
	configPath  string
	copy        bool
	tokens      bool
	diff        bool
	verbose     bool
	showVersion bool
	model       string
}

// Execute runs the ctxt application with the process arguments.
func Execute(ctx context.Context, logger *zap.Logger, level *zap.AtomicLevel) error {
	rootCommand := NewRootCommand(Dependencies{
		Logger:      logger,
		LoggerLevel: level,
		Clipboard:   clipboard.NewService(),
		NewCounter:  tokenizer.NewCounter,
	})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}

	var options runOptions
	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(command *cobra.Command, arguments []string) error {
			if options.showVersion || len(arguments) == expectedArgCount {
				return nil
			}
			_ = command.Usage()
			return fmt.Errorf("%w: "+errorArgumentCountFmt, errUsage, expectedArgCount, len(arguments))
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, printError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			if options.verbose && dependencies.LoggerLevel != nil {
				dependencies.LoggerLevel.SetLevel(zap.DebugLevel)
			}
			return runSnapshot(command, dependencies, options, arguments[0])
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	registerToggleFlag(flagSet, &options.copy, copyFlagName, copyFlagDescription)
	registerToggleFlag(flagSet, &options.tokens, tokensFlagName, tokensFlagDescription)
	registerToggleFlag(flagSet, &options.diff, diffFlagName, diffFlagDescription)
	registerToggleFlag(flagSet, &options.verbose, verboseFlagName, verboseFlagDescription)
	flagSet.StringVar(&options.model, modelFlagName, config.DefaultTokenModel, modelFlagDescription)
	flagSet.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)
	return rootCommand
}

// applyFlagOverrides lets explicitly set flags win over configured report defaults.
func applyFlagOverrides(command *cobra.Command, options runOptions, configuration config.Configuration) config.Configuration {
	flagSet := command.Flags()
	if flagSet.Changed(copyFlagName) {
		configuration.Report.Copy = options.copy
	}
	if flagSet.Changed(tokensFlagName) {
		configuration.Report.Tokens = options.tokens
	}
	if flagSet.Changed(diffFlagName) {
		configuration.Report.Diff = options.diff
	}
	if flagSet.Changed(modelFlagName) {
		configuration.Report.TokenModel = options.model
	}
	return configuration
}

// resolveSourceDirectory returns the absolute, clean path of an existing directory.
func resolveSourceDirectory(sourceDirectory string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(sourceDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf(errorAbsolutePathFmt, sourceDirectory, absoluteError)
	}
	info, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(errorSourceFormat, sourceDirectory, statError)
	}
	if !info.IsDir() {
		return "", fmt.Errorf(errorSourceNotDirFmt, sourceDirectory)
	}
	return filepath.Clean(absolutePath), nil
}

// runSnapshot builds the artifact for sourceDirectory, replaces the output file
// and runs the requested reporters.
func runSnapshot(command *cobra.Command, dependencies Dependencies, options runOptions, sourceDirectory string) error {
	logger := dependencies.Logger
	loadedConfiguration, loadError := config.Load(config.LoadOptions{ExplicitFilePath: options.configPath})
	if loadError != nil {
		return loadError
	}
	configuration := applyFlagOverrides(command, options, loadedConfiguration)

	rootPath, sourceError := resolveSourceDirectory(sourceDirectory)
	if sourceError != nil {
		return sourceError
	}
	rules, rulesError := ignore.LoadRules(filepath.Join(rootPath, configuration.IgnoreFileName))
	if rulesError != nil {
		return fmt.Errorf(errorLoadRulesFormat, rulesError)
	}
	matcher, matcherError := ignore.NewMatcher(ignore.Mode(configuration.MatcherMode), rules, logger)
	if matcherError != nil {
		return matcherError
	}

	serializer := commands.NewTreeSerializer(configuration, matcher, utils.TextClassifier{}, logger)
	rootLabel := configuration.RootLabel
	if rootLabel == "" {
		rootLabel = filepath.Base(rootPath)
	}
	artifact, buildError := output.BuildArtifact(serializer, rootPath, rootLabel)
	if buildError != nil {
		return buildError
	}

	outputPath := filepath.Join(rootPath, configuration.OutputFileName)
	var previousContent string
	var previousFound bool
	if configuration.Report.Diff {
		var previousError error
		previousContent, previousFound, previousError = output.ReadPrevious(outputPath)
		if previousError != nil {
			return previousError
		}
	}

	if contextError := command.Context().Err(); contextError != nil {
		return contextError
	}
	sizeBytes, writeError := artifact.WriteFile(outputPath)
	if writeError != nil {
		return writeError
	}

	report := types.RunReport{
		OutputPath:  outputPath,
		SizeBytes:   sizeBytes,
		TreeEntries: artifact.TreeEntries(),
		DumpedFiles: artifact.DumpedFiles(),
	}
	if configuration.Report.Diff && previousFound {
		changes := output.SummarizeChanges(previousContent, string(artifact.Bytes()))
		report.Changes = &changes
	}
	if configuration.Report.Tokens {
		report.Tokens, report.Model = countTokens(dependencies, configuration.Report.TokenModel, artifact.Bytes())
	}
	if configuration.Report.Copy {
		if copyError := dependencies.Clipboard.Copy(string(artifact.Bytes())); copyError != nil {
			logger.Warn(clipboardFailedMessage, zap.Error(copyError))
		} else {
			report.CopiedToClip = true
		}
	}

	logger.Debug(snapshotWrittenMessage,
		zap.String("path", report.OutputPath),
		zap.Int64("bytes", report.SizeBytes),
		zap.Int("entries", report.TreeEntries),
		zap.Int("files", report.DumpedFiles),
	)
	return printReport(command.OutOrStdout(), report, configuration.Report)
}

// countTokens returns -1 when counting is unavailable; the failure is logged.
func countTokens(dependencies Dependencies, model string, content []byte) (int, string) {
	counter, resolvedModel, counterError := dependencies.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		dependencies.Logger.Warn(tokenCountFailedMessage, zap.String("model", model), zap.Error(counterError))
		return -1, model
	}
	result, countError := tokenizer.CountBytes(counter, content)
	if countError != nil || !result.Counted {
		dependencies.Logger.Warn(tokenCountFailedMessage, zap.String("model", resolvedModel), zap.Error(countError))
		return -1, resolvedModel
	}
	return result.Tokens, resolvedModel
}

func printReport(writer io.Writer, report types.RunReport, requested config.ReportConfiguration) error {
	lines := []string{fmt.Sprintf(reportWrittenFormat, report.OutputPath, report.SizeBytes, report.TreeEntries, report.DumpedFiles)}
	if requested.Diff {
		switch {
		case report.Changes == nil:
			lines = append(lines, reportNoPreviousLine)
		case report.Changes.Unchanged():
			lines = append(lines, reportUnchangedLine)
		default:
			lines = append(lines, fmt.Sprintf(reportChangesFormat, report.Changes.InsertedLines, report.Changes.DeletedLines))
		}
	}
	if requested.Tokens {
		if report.Tokens < 0 {
			lines = append(lines, reportSkippedTokens)
		} else {
			lines = append(lines, fmt.Sprintf(reportTokensFormat, report.Tokens, report.Model))
		}
	}
	if report.CopiedToClip {
		lines = append(lines, reportCopiedLine)
	}
	for _, line := range lines {
		if _, printError := io.WriteString(writer, line); printError != nil {
			return printError
		}
	}
	return nil
}

var _ output.Serializer = (*commands.TreeSerializer)(nil)
