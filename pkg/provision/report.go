package provision

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
)

// Status is the outcome of one plan item.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusPlanned   Status = "planned"
)

// Phase orders the steps of a run.
type Phase string

const (
	PhaseUpdate     Phase = "update"
	PhaseRepository Phase = "repository"
	PhaseDownload   Phase = "download"
	PhaseInstall    Phase = "install"
	PhaseRemove     Phase = "remove"
	PhaseCleanup    Phase = "cleanup"
)

// ItemResult is the outcome of one action within a step.
type ItemResult struct {
	Phase   Phase            `yaml:"phase"`
	Name    string           `yaml:"name"`
	Status  Status           `yaml:"status"`
	Message string           `yaml:"message,omitempty"`
	Command *executor.Result `yaml:"command,omitempty"`
}

// Report aggregates every item of a run.
type Report struct {
	ID         string       `yaml:"id"`
	Manifest   string       `yaml:"manifest"`
	DryRun     bool         `yaml:"dry_run,omitempty"`
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Items      []ItemResult `yaml:"items"`
}

// NewReport starts a report with a fresh run ID.
func NewReport(manifestName string, dryRun bool) *Report {
	return &Report{
		ID:        uuid.New().String(),
		Manifest:  manifestName,
		DryRun:    dryRun,
		StartedAt: time.Now(),
	}
}

// Add appends items to the report.
func (r *Report) Add(items ...ItemResult) {
	r.Items = append(r.Items, items...)
}

// Finish records the end time.
func (r *Report) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary counts items by status.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Planned   int
}

// Summary returns the item counts.
func (r *Report) Summary() Summary {
	var s Summary
	for _, item := range r.Items {
		s.Total++
		switch item.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		case StatusPlanned:
			s.Planned++
		}
	}
	return s
}

// Failures returns the failed items in order.
func (r *Report) Failures() []ItemResult {
	var failed []ItemResult
	for _, item := range r.Items {
		if item.Status == StatusFailed {
			failed = append(failed, item)
		}
	}
	return failed
}

// HasFailures returns true if any item failed.
func (r *Report) HasFailures() bool {
	return len(r.Failures()) > 0
}

// Err returns an error wrapping executor.ErrCommandFailed when any item failed.
func (r *Report) Err() error {
	s := r.Summary()
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d steps failed", executor.ErrCommandFailed, s.Failed, s.Total)
}

// commandItem converts a command outcome into an item result.
func commandItem(phase Phase, name string, result executor.Result, err error) ItemResult {
	item := ItemResult{
		Phase:   phase,
		Name:    name,
		Command: &result,
	}
	if err != nil {
		item.Status = StatusFailed
		item.Message = err.Error()
		return item
	}
	item.Status = StatusSucceeded
	return item
}

// failedItem records a failure that happened before any command ran.
func failedItem(phase Phase, name string, err error) ItemResult {
	return ItemResult{Phase: phase, Name: name, Status: StatusFailed, Message: err.Error()}
}
