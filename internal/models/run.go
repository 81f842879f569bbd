package models

import "time"

// Run/result status values shared by the runner, run store, and reporter.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusRunning = "running"
)

// RunRecord stores the outcome of one full suite-set execution.
type RunRecord struct {
	ID          string    `json:"id" badgerhold:"key"`
	Title       string    `json:"title"`
	Environment string    `json:"environment"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Status      string    `json:"status"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	ResultsDir  string    `json:"results_dir"`
	QaseRunID   int       `json:"qase_run_id,omitempty"`
}

// CaseResult stores the outcome of a single test case within a run.
type CaseResult struct {
	ID         string    `json:"id" badgerhold:"key"`
	RunID      string    `json:"run_id" badgerhold:"index"`
	Suite      string    `json:"suite"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Artifacts  []string  `json:"artifacts,omitempty"`
}

// TimingRecord stores timing data for one wrapped operation. Used by the
// timing wrapper to surface slow facade flows.
type TimingRecord struct {
	Name        string    `json:"name"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	TotalMs     int64     `json:"total_ms"`
	Attempts    int       `json:"attempts,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}
