package differ

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineOp marks a changed line as added or removed.
type LineOp int

const (
	LineAdded LineOp = iota
	LineRemoved
)

// LineChange is one changed line of rendered page text.
type LineChange struct {
	Op   LineOp
	Text string
}

// TextDiffer compares rendered page text and reports the changed lines.
type TextDiffer struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	logger zerolog.Logger
}

// NewTextDiffer creates a new text differ.
func NewTextDiffer(logger zerolog.Logger) *TextDiffer {
	return &TextDiffer{
		dmp:    diffmatchpatch.New(),
		logger: logger.With().Str("component", "TextDiffer").Logger(),
	}
}

// ChangedLines returns the lines that differ between previous and current,
// removals first within each changed region, in document order.
func (td *TextDiffer) ChangedLines(previous, current string) []LineChange {
	if previous == current {
		return nil
	}

	diffs := td.dmp.DiffMain(previous, current, true)
	diffs = td.dmp.DiffCleanupSemantic(diffs)

	var changes []LineChange
	for _, diff := range diffs {
		var op LineOp
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			op = LineAdded
		case diffmatchpatch.DiffDelete:
			op = LineRemoved
		default:
			continue
		}
		for _, line := range splitChangedLines(diff.Text) {
			changes = append(changes, LineChange{Op: op, Text: line})
		}
	}
	return changes
}

// splitChangedLines breaks a diff fragment into lines, dropping blank ones;
// whitespace-only churn is not worth reporting.
func splitChangedLines(fragment string) []string {
	var lines []string
	for _, line := range strings.Split(fragment, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
