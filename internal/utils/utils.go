// Package utils contains general helper functions used across the ctxt tool.
package utils

import (
	"path/filepath"
	"strings"
)

// Default names used when the configuration does not override them.
const (
	// DefaultGitDirectoryName is the version-control metadata directory that is never traversed.
	DefaultGitDirectoryName = ".git"
	// DefaultIgnoreFileName is the rules file read from the root of the scanned directory.
	DefaultIgnoreFileName = ".gitignore"
	// DefaultOutputFileName is the artifact written at the root of the scanned directory.
	DefaultOutputFileName = ".ctxt"
	// ConfigEnvironmentPrefix prefixes environment variables that override configuration keys.
	ConfigEnvironmentPrefix = "CTXT"
)

const pathSegmentSeparator = "/"

// NormalizeSlashPath converts both separator styles to forward slashes.
func NormalizeSlashPath(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "\\", pathSegmentSeparator)
}

// RelativePathOrSelf calculates the slash separated relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return "."
	}
	relativePath, relErr := filepath.Rel(cleanRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}
