// Package domain holds the instruction ledger model
package domain

import (
	"context"
	"time"

	exdom "tasksync/internal/services/extraction/domain"
)

// Outcome of applying a run's instructions
type Outcome string

const (
	OutcomeNoTasks Outcome = "no_tasks"
	OutcomeApplied Outcome = "applied"
	OutcomeFailed  Outcome = "failed"
	OutcomeDryRun  Outcome = "dry_run"
)

// Event is one ledger row: one instruction of one run, or a single marker row
// for a run without instructions
type Event struct {
	RunID        string    `json:"runId"`
	TranscriptID string    `json:"transcriptId"`
	Seq          uint32    `json:"seq"`
	Kind         string    `json:"kind"`
	TicketID     string    `json:"ticketId"`
	FromStatus   string    `json:"fromStatus,omitempty"`
	ToStatus     string    `json:"toStatus,omitempty"`
	Assignee     string    `json:"assignee,omitempty"`
	Summary      string    `json:"summary"`
	Confidence   float64   `json:"confidence"`
	Outcome      Outcome   `json:"outcome"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Recorder appends a run to the ledger
type Recorder interface {
	Record(ctx context.Context, res exdom.Result, outcome Outcome, applyErr error) error
}

// Reader reads the ledger back
type Reader interface {
	ByRun(ctx context.Context, runID string) ([]Event, error)
}
