// Package clipboard copies finished snapshots to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const errorClipboardWriteFormat = "writing %d bytes to clipboard: %w"

var errClipboardUnsupported = errors.New("no clipboard utility available")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy replaces the clipboard content with text. It fails on systems without
// a clipboard utility such as headless Linux hosts.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf(errorClipboardWriteFormat, len(text), errClipboardUnsupported)
	}
	if writeError := clipboard.WriteAll(text); writeError != nil {
		return fmt.Errorf(errorClipboardWriteFormat, len(text), writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
