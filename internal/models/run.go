package models

import (
	"time"
)

// PageStatus summarizes the outcome of one page check within a run.
type PageStatus string

const (
	// PageStatusChanged means the diff against the prior snapshot was
	// non-empty and a report was produced.
	PageStatusChanged PageStatus = "CHANGED"
	// PageStatusUnchanged means the page was checked and nothing differed
	// from the prior snapshot (including "304 Not Modified" responses).
	PageStatusUnchanged PageStatus = "UNCHANGED"
	// PageStatusBaseline means no prior snapshot existed; the current
	// state was stored without reporting any changes.
	PageStatusBaseline PageStatus = "BASELINE"
	// PageStatusFailed means the check aborted at some pipeline stage.
	PageStatusFailed PageStatus = "FAILED"
)

// Stage identifies the pipeline stage a page check was in when it failed.
type Stage string

const (
	StageLoad      Stage = "load"
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageDiff      Stage = "diff"
	StageReport    Stage = "report"
	StagePersist   Stage = "persist"
)

// PageOutcome records what happened to a single page during a run.
type PageOutcome struct {
	PageID      string
	URL         string
	Status      PageStatus
	ChangeCount int
	FailedStage Stage // set only when Status is PageStatusFailed
	Error       string
	Duration    time.Duration
}

// RunStatus is the overall status of a tracking run.
type RunStatus string

const (
	RunStatusStarted     RunStatus = "STARTED"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusPartial     RunStatus = "PARTIAL"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// RunSummary aggregates the outcomes of a full tracking run.
type RunSummary struct {
	RunID        string
	StartedAt    time.Time
	CompletedAt  time.Time
	Status       RunStatus
	PagesChecked int
	PagesChanged int
	PagesFailed  int
	Outcomes     []PageOutcome
}

// Duration returns the wall-clock length of the run.
func (rs *RunSummary) Duration() time.Duration {
	return rs.CompletedAt.Sub(rs.StartedAt)
}

// ChangedOutcomes returns the outcomes of pages that reported changes.
func (rs *RunSummary) ChangedOutcomes() []PageOutcome {
	var changed []PageOutcome
	for _, outcome := range rs.Outcomes {
		if outcome.Status == PageStatusChanged {
			changed = append(changed, outcome)
		}
	}
	return changed
}

// FailedOutcomes returns the outcomes of pages whose check failed.
func (rs *RunSummary) FailedOutcomes() []PageOutcome {
	var failed []PageOutcome
	for _, outcome := range rs.Outcomes {
		if outcome.Status == PageStatusFailed {
			failed = append(failed, outcome)
		}
	}
	return failed
}
