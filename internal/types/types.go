// Package types defines every cross‑package data structure used by the ctxt CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	// TreeBranchGlyph precedes every entry that has a later kept sibling.
	TreeBranchGlyph = "├── "
	// TreeLastGlyph precedes the last kept entry of a directory.
	TreeLastGlyph = "└── "
	// TreeBranchPadding continues the prefix below an entry that has later siblings.
	TreeBranchPadding = "│   "
	// TreeLastPadding continues the prefix below the last entry of a directory.
	TreeLastPadding = "    "
)

// DirectoryEntry is a filesystem node discovered during traversal.
type DirectoryEntry struct {
	Name         string
	AbsolutePath string
	// RelativePath is slash separated and relative to the scan root.
	RelativePath string
	Type         string
	Depth        int
}

// IsDirectory reports whether the entry is a directory.
func (entry DirectoryEntry) IsDirectory() bool {
	return entry.Type == NodeTypeDirectory
}

// TreeLine is one rendered row of the directory diagram.
type TreeLine struct {
	Prefix string
	Glyph  string
	Entry  DirectoryEntry
	IsLast bool
}

// String renders the line without a trailing newline.
func (line TreeLine) String() string {
	return line.Prefix + line.Glyph + line.Entry.Name
}

// ChangeSummary counts line-level differences between two artifacts.
type ChangeSummary struct {
	InsertedLines int
	DeletedLines  int
}

// Unchanged reports whether no lines were inserted or deleted.
func (summary ChangeSummary) Unchanged() bool {
	return summary.InsertedLines == 0 && summary.DeletedLines == 0
}

// RunReport describes the outcome of a completed run.
type RunReport struct {
	OutputPath   string
	SizeBytes    int64
	TreeEntries  int
	DumpedFiles  int
	Tokens       int
	Model        string
	Changes      *ChangeSummary
	CopiedToClip bool
}
