// Package reporter renders change sets into bounded, human-readable
// reports. A report never grows past the configured entry cap; the
// remainder is collapsed into a single summary line, and every rendered
// value is truncated to the configured length.
package reporter

import (
	"fmt"
	"strings"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
)

// ChangeReport is the rendered description of one page's changes.
type ChangeReport struct {
	PageID       string
	PageURL      string
	TotalChanges int
	Lines        []string // one line per reported entry, in change-set order
	OmittedCount int
}

// Body joins the rendered lines, appending the overflow summary when
// entries were omitted.
func (cr *ChangeReport) Body() string {
	var b strings.Builder
	for i, line := range cr.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if cr.OmittedCount > 0 {
		if len(cr.Lines) > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "... and %d more changes omitted", cr.OmittedCount)
	}
	return b.String()
}

// Renderer renders change sets and text diff excerpts.
type Renderer struct {
	maxChanges     int
	maxValueLen    int
	maxDiffLines   int
	maxDiffLineLen int
	logger         zerolog.Logger
}

// NewRenderer creates a renderer from the report configuration, falling
// back to defaults for non-positive limits.
func NewRenderer(cfg config.ReportConfig, logger zerolog.Logger) *Renderer {
	return &Renderer{
		maxChanges:     positiveOrDefault(cfg.MaxChangesPerReport, config.DefaultReportMaxChangesPerReport),
		maxValueLen:    positiveOrDefault(cfg.MaxValueLength, config.DefaultReportMaxValueLength),
		maxDiffLines:   positiveOrDefault(cfg.MaxDiffLines, config.DefaultReportMaxDiffLines),
		maxDiffLineLen: positiveOrDefault(cfg.MaxDiffLineLength, config.DefaultReportMaxDiffLineLength),
		logger:         logger.With().Str("component", "ReportRenderer").Logger(),
	}
}

// RenderChangeSet renders a change set into a bounded report. Entry order
// follows the change set, so reports for the same diff are identical from
// run to run.
func (r *Renderer) RenderChangeSet(pageID, pageURL string, changes models.ChangeSet) *ChangeReport {
	report := &ChangeReport{
		PageID:       pageID,
		PageURL:      pageURL,
		TotalChanges: len(changes),
	}

	limit := len(changes)
	if limit > r.maxChanges {
		report.OmittedCount = limit - r.maxChanges
		limit = r.maxChanges
	}

	report.Lines = make([]string, 0, limit)
	for _, entry := range changes[:limit] {
		report.Lines = append(report.Lines, r.renderEntry(entry))
	}
	return report
}

func (r *Renderer) renderEntry(entry models.ChangeEntry) string {
	path := entry.Path.String()
	if path == "" {
		path = "(root)"
	}
	switch entry.Kind {
	case models.ChangeKindAdded:
		return fmt.Sprintf("+ %s: %s", path, r.renderValue(entry.NewValue))
	case models.ChangeKindRemoved:
		return fmt.Sprintf("- %s: %s", path, r.renderValue(entry.OldValue))
	default:
		return fmt.Sprintf("~ %s: %s -> %s", path, r.renderValue(entry.OldValue), r.renderValue(entry.NewValue))
	}
}

// renderValue renders a value as compact JSON, truncated to the value cap.
// JSON keeps the type visible: "1" and 1 render differently.
func (r *Renderer) renderValue(value models.Value) string {
	return truncateString(string(models.EncodeJSON(value)), r.maxValueLen)
}

// RenderTextExcerpt renders changed text lines as a fenced diff block,
// capped at the configured line count and line length.
func (r *Renderer) RenderTextExcerpt(changes []differ.LineChange) string {
	if len(changes) == 0 {
		return ""
	}

	shown := len(changes)
	omitted := 0
	if shown > r.maxDiffLines {
		omitted = shown - r.maxDiffLines
		shown = r.maxDiffLines
	}

	var b strings.Builder
	b.WriteString("```diff\n")
	for _, change := range changes[:shown] {
		if change.Op == differ.LineRemoved {
			b.WriteString("- ")
		} else {
			b.WriteString("+ ")
		}
		b.WriteString(truncateString(change.Text, r.maxDiffLineLen))
		b.WriteByte('\n')
	}
	if omitted > 0 {
		fmt.Fprintf(&b, "... %d more changed lines\n", omitted)
	}
	b.WriteString("```")
	return b.String()
}

// truncateString shortens a string to maxLength, marking the cut with "...".
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}

func positiveOrDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
