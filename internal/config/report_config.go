package config

// ReportConfig defines configuration for change report rendering.
// MaxChangesPerReport caps how many entries a single report lists before
// the remainder is collapsed into a summary line; MaxValueLength caps
// rendered old/new values. The diff limits apply to text-mode excerpts.
type ReportConfig struct {
	MaxChangesPerReport int `json:"max_changes_per_report,omitempty" yaml:"max_changes_per_report,omitempty" validate:"omitempty,min=1"`
	MaxDiffLineLength   int `json:"max_diff_line_length,omitempty" yaml:"max_diff_line_length,omitempty" validate:"omitempty,min=16"`
	MaxDiffLines        int `json:"max_diff_lines,omitempty" yaml:"max_diff_lines,omitempty" validate:"omitempty,min=1"`
	MaxValueLength      int `json:"max_value_length,omitempty" yaml:"max_value_length,omitempty" validate:"omitempty,min=8"`
}

// NewDefaultReportConfig creates default report configuration
func NewDefaultReportConfig() ReportConfig {
	return ReportConfig{
		MaxChangesPerReport: DefaultReportMaxChangesPerReport,
		MaxDiffLineLength:   DefaultReportMaxDiffLineLength,
		MaxDiffLines:        DefaultReportMaxDiffLines,
		MaxValueLength:      DefaultReportMaxValueLength,
	}
}
