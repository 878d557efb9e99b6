// Package commands contains the traversal core: the tree-rendering pass and the
// content-dump pass over one scan root.
package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/temirov/ctxt/internal/config"
	"github.com/temirov/ctxt/internal/ignore"
	"github.com/temirov/ctxt/internal/types"
	"github.com/temirov/ctxt/internal/utils"
	"go.uber.org/zap"
)

const (
	// errorReadDirectoryFormat is used when a directory cannot be listed.
	errorReadDirectoryFormat = "reading directory %s: %w"
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorRootNotDirectoryFormat is used when the scan root is not a directory.
	errorRootNotDirectoryFormat = "scan root %s is not a directory"
	// errorStatRootFormat is used when the scan root cannot be inspected.
	errorStatRootFormat = "stat failed for %s: %w"

	skippedSubdirectoryMessage = "skipping unreadable subdirectory"
	skippedIgnoredEntryMessage = "skipping ignored entry"
	skippedStructuralMessage   = "skipping structural entry"
)

// ContentClassifier decides whether a file's content is inlined in the dump.
type ContentClassifier interface {
	IsTextFile(path string) (bool, error)
}

// TreeSerializer walks one directory tree and renders it as a diagram and as a
// content dump. Both passes share the same traversal, so they always describe
// the same set of entries.
type TreeSerializer struct {
	configuration config.Configuration
	matcher       ignore.Matcher
	classifier    ContentClassifier
	logger        *zap.Logger
}

// NewTreeSerializer wires the collaborators used by both passes.
func NewTreeSerializer(configuration config.Configuration, matcher ignore.Matcher, classifier ContentClassifier, logger *zap.Logger) *TreeSerializer {
	if matcher == nil {
		matcher = ignore.NewGlobMatcher(nil)
	}
	if classifier == nil {
		classifier = utils.TextClassifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeSerializer{
		configuration: configuration,
		matcher:       matcher,
		classifier:    classifier,
		logger:        logger,
	}
}

// resolveRoot returns the scan root as a directory entry with an absolute, clean path.
func resolveRoot(rootPath string) (types.DirectoryEntry, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return types.DirectoryEntry{}, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)
	rootInfo, statError := os.Stat(cleanedRootPath)
	if statError != nil {
		return types.DirectoryEntry{}, fmt.Errorf(errorStatRootFormat, cleanedRootPath, statError)
	}
	if !rootInfo.IsDir() {
		return types.DirectoryEntry{}, fmt.Errorf(errorRootNotDirectoryFormat, cleanedRootPath)
	}
	return types.DirectoryEntry{
		Name:         filepath.Base(cleanedRootPath),
		AbsolutePath: cleanedRootPath,
		RelativePath: ".",
		Type:         types.NodeTypeDirectory,
		Depth:        -1,
	}, nil
}

// keptChildren lists directory, orders the children by byte-wise name
// comparison and drops structural names and entries matched by the ignore
// rules. Symbolic links are classified by their target.
func (serializer *TreeSerializer) keptChildren(directory types.DirectoryEntry, rootPath string) ([]types.DirectoryEntry, error) {
	directoryEntries, readDirectoryError := os.ReadDir(directory.AbsolutePath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, directory.AbsolutePath, readDirectoryError)
	}
	sort.Slice(directoryEntries, func(left, right int) bool {
		return directoryEntries[left].Name() < directoryEntries[right].Name()
	})

	kept := make([]types.DirectoryEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		childPath := filepath.Join(directory.AbsolutePath, entryName)
		if serializer.configuration.IsStructuralName(entryName) {
			serializer.logger.Debug(skippedStructuralMessage, zap.String("path", childPath))
			continue
		}
		relativePath := utils.RelativePathOrSelf(childPath, rootPath)
		isDirectory := isDirectoryEntry(directoryEntry, childPath)
		if serializer.matcher.ShouldIgnore(relativePath, isDirectory) {
			serializer.logger.Debug(skippedIgnoredEntryMessage, zap.String("path", relativePath))
			continue
		}
		entryType := types.NodeTypeFile
		if isDirectory {
			entryType = types.NodeTypeDirectory
		}
		kept = append(kept, types.DirectoryEntry{
			Name:         entryName,
			AbsolutePath: childPath,
			RelativePath: relativePath,
			Type:         entryType,
			Depth:        directory.Depth + 1,
		})
	}
	return kept, nil
}

// isDirectoryEntry follows symbolic links; a dangling link is a file.
func isDirectoryEntry(directoryEntry fs.DirEntry, path string) bool {
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return directoryEntry.IsDir()
	}
	targetInfo, statError := os.Stat(path)
	if statError != nil {
		return false
	}
	return targetInfo.IsDir()
}
