// Package output assembles the snapshot artifact and writes it to disk.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/temirov/ctxt/internal/types"
)

const (
	lineTerminator = "\n"

	errorRenderTreeFormat   = "rendering tree of %s: %w"
	errorDumpContentsFormat = "dumping contents of %s: %w"
	errorWriteArtifactFmt   = "writing artifact %s: %w"
	errorCloseArtifactFmt   = "closing artifact %s: %w"

	artifactFilePermissions = 0o644
)

// Serializer is the pair of passes that make up an artifact.
type Serializer interface {
	RenderTree(rootPath string, visitor func(types.TreeLine) error) error
	DumpContents(rootPath string, sink io.Writer) (int, error)
}

// Artifact is the fully assembled snapshot of one directory.
type Artifact struct {
	content     bytes.Buffer
	treeEntries int
	dumpedFiles int
}

// BuildArtifact renders the header line, the tree pass and the dump pass of
// rootPath into memory. Nothing is written to disk.
func BuildArtifact(serializer Serializer, rootPath string, rootLabel string) (*Artifact, error) {
	artifact := &Artifact{}
	artifact.content.WriteString(rootLabel + lineTerminator)

	renderError := serializer.RenderTree(rootPath, func(line types.TreeLine) error {
		artifact.content.WriteString(line.String() + lineTerminator)
		artifact.treeEntries++
		return nil
	})
	if renderError != nil {
		return nil, fmt.Errorf(errorRenderTreeFormat, rootPath, renderError)
	}

	dumpedFiles, dumpError := serializer.DumpContents(rootPath, &artifact.content)
	if dumpError != nil {
		return nil, fmt.Errorf(errorDumpContentsFormat, rootPath, dumpError)
	}
	artifact.dumpedFiles = dumpedFiles
	return artifact, nil
}

// Bytes returns the artifact content.
func (artifact *Artifact) Bytes() []byte {
	return artifact.content.Bytes()
}

// TreeEntries returns the number of lines produced by the tree pass.
func (artifact *Artifact) TreeEntries() int {
	return artifact.treeEntries
}

// DumpedFiles returns the number of file blocks produced by the dump pass.
func (artifact *Artifact) DumpedFiles() int {
	return artifact.dumpedFiles
}

// WriteFile replaces the file at outputPath with the artifact content,
// truncating any previous instance.
//
// #nosec G304
func (artifact *Artifact) WriteFile(outputPath string) (int64, error) {
	fileHandle, openError := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, artifactFilePermissions)
	if openError != nil {
		return 0, fmt.Errorf(errorWriteArtifactFmt, outputPath, openError)
	}
	bytesWritten, writeError := fileHandle.Write(artifact.content.Bytes())
	closeError := fileHandle.Close()
	if writeError != nil {
		return int64(bytesWritten), fmt.Errorf(errorWriteArtifactFmt, outputPath, writeError)
	}
	if closeError != nil {
		return int64(bytesWritten), fmt.Errorf(errorCloseArtifactFmt, outputPath, closeError)
	}
	return int64(bytesWritten), nil
}
