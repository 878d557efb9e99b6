package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/temirov/ctxt/internal/types"
)

const errorReadPreviousFormat = "reading previous artifact %s: %w"

// ReadPrevious returns the artifact currently stored at outputPath. A missing
// file is reported with found set to false.
//
// #nosec G304
func ReadPrevious(outputPath string) (content string, found bool, err error) {
	previousBytes, readError := os.ReadFile(outputPath)
	if errors.Is(readError, fs.ErrNotExist) {
		return "", false, nil
	}
	if readError != nil {
		return "", false, fmt.Errorf(errorReadPreviousFormat, outputPath, readError)
	}
	return string(previousBytes), true, nil
}

// SummarizeChanges counts the lines inserted and deleted between two artifacts.
func SummarizeChanges(previous string, current string) types.ChangeSummary {
	differ := diffmatchpatch.New()
	previousRunes, currentRunes, lineArray := differ.DiffLinesToRunes(previous, current)
	lineDiffs := differ.DiffMainRunes(previousRunes, currentRunes, false)
	lineDiffs = differ.DiffCharsToLines(lineDiffs, lineArray)

	var summary types.ChangeSummary
	for _, lineDiff := range lineDiffs {
		lineCount := countLines(lineDiff.Text)
		switch lineDiff.Type {
		case diffmatchpatch.DiffInsert:
			summary.InsertedLines += lineCount
		case diffmatchpatch.DiffDelete:
			summary.DeletedLines += lineCount
		}
	}
	return summary
}

// countLines counts newline-terminated lines plus a trailing unterminated one.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	lineCount := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		lineCount++
	}
	return lineCount
}
