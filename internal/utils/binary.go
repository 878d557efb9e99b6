package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextProbeLength is the number of leading bytes inspected by IsTextFile.
const TextProbeLength = 1024

const replacementCharacter = "\uFFFD"

const (
	errorOpenProbeFormat = "opening %s for classification: %w"
	errorReadProbeFormat = "reading %s for classification: %w"
)

// IsText reports whether probe decodes as UTF-8. atEOF tells whether probe
// ends at the end of the file; when it does not, a rune cut off by the probe
// boundary is tolerated.
func IsText(probe []byte, atEOF bool) bool {
	if len(probe) == 0 {
		return true
	}
	destination := make([]byte, len(probe))
	_, _, validationError := encoding.UTF8Validator.Transform(destination, probe, atEOF)
	if errors.Is(validationError, encoding.ErrInvalidUTF8) {
		return false
	}
	return validationError == nil || errors.Is(validationError, transform.ErrShortSrc)
}

// IsTextFile reads up to TextProbeLength bytes from the file at path and reports
// whether they decode as UTF-8. Empty and short files are text. A file whose
// leading bytes are valid UTF-8 is text even if the rest is not.
// Failure to open or read the file is returned as an error.
//
// #nosec G304
func IsTextFile(path string) (bool, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, fmt.Errorf(errorOpenProbeFormat, path, openError)
	}
	defer fileHandle.Close()

	buffer := make([]byte, TextProbeLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	atEOF := false
	switch {
	case readError == nil:
	case errors.Is(readError, io.EOF), errors.Is(readError, io.ErrUnexpectedEOF):
		atEOF = true
	default:
		return false, fmt.Errorf(errorReadProbeFormat, path, readError)
	}
	return IsText(buffer[:bytesRead], atEOF), nil
}

// DecodeLenient converts data to a string, replacing every invalid UTF-8
// sequence with U+FFFD instead of failing.
func DecodeLenient(data []byte) string {
	decoded, _, decodeError := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if decodeError != nil {
		return strings.ToValidUTF8(string(data), replacementCharacter)
	}
	return string(decoded)
}

// TextClassifier classifies files with IsTextFile.
type TextClassifier struct{}

// IsTextFile reports whether the file at path is rendered inline.
func (TextClassifier) IsTextFile(path string) (bool, error) {
	return IsTextFile(path)
}
