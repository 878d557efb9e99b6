package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/temirov/ctxt/internal/types"
	"github.com/temirov/ctxt/internal/utils"
	"go.uber.org/zap"
)

const (
	// FileHeaderFormat introduces every file block of the dump. It is preceded by a newline.
	FileHeaderFormat = "\nFile: %s\n\n"
	// NonTextPlaceholder replaces the content of files not recognized as text.
	NonTextPlaceholder = "(content omitted: file is not recognized as text)\n"
	// UnavailablePlaceholderFormat replaces the content of files that could not be read.
	UnavailablePlaceholderFormat = "(content unavailable: %v)\n"

	errorWriteDumpFormat = "writing content of %s: %w"

	unreadableFileMessage = "file could not be read; writing placeholder"
)

// DumpContents writes one block per kept file under rootPath to sink, in the
// same order and with the same exclusions as RenderTree. Directories produce
// no output of their own. Text files are written leniently decoded; other
// files get a placeholder line. A file that cannot be read gets an
// unavailable note and the dump continues. Errors from sink abort the dump.
// It returns the number of file blocks written.
func (serializer *TreeSerializer) DumpContents(rootPath string, sink io.Writer) (int, error) {
	rootEntry, rootError := resolveRoot(rootPath)
	if rootError != nil {
		return 0, rootError
	}

	dumpedFiles := 0
	walkError := serializer.walk(rootEntry, func(line types.TreeLine) error {
		if line.Entry.IsDirectory() {
			return nil
		}
		if writeError := serializer.dumpFile(line.Entry, sink); writeError != nil {
			return fmt.Errorf(errorWriteDumpFormat, line.Entry.RelativePath, writeError)
		}
		dumpedFiles++
		return nil
	})
	return dumpedFiles, walkError
}

// dumpFile writes the header and body of a single file block.
func (serializer *TreeSerializer) dumpFile(entry types.DirectoryEntry, sink io.Writer) error {
	if _, headerError := fmt.Fprintf(sink, FileHeaderFormat, entry.RelativePath); headerError != nil {
		return headerError
	}
	body := serializer.fileBody(entry)
	_, bodyError := io.WriteString(sink, body)
	return bodyError
}

// fileBody returns the text written below a file header.
//
// #nosec G304
func (serializer *TreeSerializer) fileBody(entry types.DirectoryEntry) string {
	isText, classifyError := serializer.classifier.IsTextFile(entry.AbsolutePath)
	if classifyError != nil {
		serializer.logger.Warn(unreadableFileMessage, zap.String("path", entry.RelativePath), zap.Error(classifyError))
		return fmt.Sprintf(UnavailablePlaceholderFormat, classifyError)
	}
	if !isText {
		return NonTextPlaceholder
	}
	fileBytes, readError := os.ReadFile(entry.AbsolutePath)
	if readError != nil {
		serializer.logger.Warn(unreadableFileMessage, zap.String("path", entry.RelativePath), zap.Error(readError))
		return fmt.Sprintf(UnavailablePlaceholderFormat, readError)
	}
	return utils.DecodeLenient(fileBytes)
}
