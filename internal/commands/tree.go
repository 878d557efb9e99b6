package commands

import (
	"github.com/temirov/ctxt/internal/types"
	"go.uber.org/zap"
)

// TreeVisitor receives each line of the diagram in output order.
type TreeVisitor = func(types.TreeLine) error

type walkFrame struct {
	entry  types.DirectoryEntry
	prefix string
	isLast bool
}

// RenderTree walks rootPath depth-first in pre-order and passes one line per
// kept entry to visitor. Siblings are sorted by name with directories and
// files interleaved. A visitor error stops the walk and is returned.
// Subdirectories that cannot be listed are shown but not descended into.
func (serializer *TreeSerializer) RenderTree(rootPath string, visitor TreeVisitor) error {
	rootEntry, rootError := resolveRoot(rootPath)
	if rootError != nil {
		return rootError
	}
	return serializer.walk(rootEntry, visitor)
}

// TreeLines materializes the lines produced by RenderTree.
func (serializer *TreeSerializer) TreeLines(rootPath string) ([]types.TreeLine, error) {
	var lines []types.TreeLine
	renderError := serializer.RenderTree(rootPath, func(line types.TreeLine) error {
		lines = append(lines, line)
		return nil
	})
	if renderError != nil {
		return nil, renderError
	}
	return lines, nil
}

// walk drives both passes with an explicit stack so that they observe the same
// entries in the same order.
func (serializer *TreeSerializer) walk(rootEntry types.DirectoryEntry, visitor TreeVisitor) error {
	rootChildren, listError := serializer.keptChildren(rootEntry, rootEntry.AbsolutePath)
	if listError != nil {
		return listError
	}

	var stack []walkFrame
	stack = pushChildren(stack, rootChildren, "")

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		glyph := types.TreeBranchGlyph
		if frame.isLast {
			glyph = types.TreeLastGlyph
		}
		if visitError := visitor(types.TreeLine{
			Prefix: frame.prefix,
			Glyph:  glyph,
			Entry:  frame.entry,
			IsLast: frame.isLast,
		}); visitError != nil {
			return visitError
		}

		if !frame.entry.IsDirectory() {
			continue
		}
		children, childrenError := serializer.keptChildren(frame.entry, rootEntry.AbsolutePath)
		if childrenError != nil {
			serializer.logger.Warn(skippedSubdirectoryMessage, zap.String("path", frame.entry.AbsolutePath), zap.Error(childrenError))
			continue
		}
		continuation := types.TreeBranchPadding
		if frame.isLast {
			continuation = types.TreeLastPadding
		}
		stack = pushChildren(stack, children, frame.prefix+continuation)
	}
	return nil
}

// pushChildren pushes children in reverse so the first child is popped first.
func pushChildren(stack []walkFrame, children []types.DirectoryEntry, prefix string) []walkFrame {
	for index := len(children) - 1; index >= 0; index-- {
		stack = append(stack, walkFrame{
			entry:  children[index],
			prefix: prefix,
			isLast: index == len(children)-1,
		})
	}
	return stack
}
