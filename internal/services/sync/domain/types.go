// Package domain defines what sync applies runs to and what it reports
package domain

import (
	"context"
	"time"

	"tasksync/internal/core/status"
	exdom "tasksync/internal/services/extraction/domain"
	ledger "tasksync/internal/services/ledger/domain"
	tasks "tasksync/internal/services/tasks/domain"
)

// Outcome is the ledger outcome; no_tasks and failed stay distinct end to end
type Outcome = ledger.Outcome

const (
	OutcomeNoTasks = ledger.OutcomeNoTasks
	OutcomeApplied = ledger.OutcomeApplied
	OutcomeFailed  = ledger.OutcomeFailed
	OutcomeDryRun  = ledger.OutcomeDryRun
)

// Tracker is the external issue tracker
type Tracker interface {
	// Owns reports whether a ticket id lives in the tracker
	Owns(id string) bool
	CreateIssue(ctx context.Context, t exdom.NewTaskItem) (string, error)
	Transition(ctx context.Context, key string, to status.Status) error
	UpdateDescription(ctx context.Context, key, description string) error
}

// Notifier posts a run report to the team chat
type Notifier interface {
	Notify(ctx context.Context, r Report) error
}

// Archiver stores the transcript and run result, returning where they went
type Archiver interface {
	Archive(ctx context.Context, tr exdom.Transcript, res exdom.Result) (string, error)
}

// Ports are the collaborators handed to the sync module. Extractor and Store
// are required; the rest may be nil
type Ports struct {
	Extractor exdom.Extractor
	Store     tasks.Store
	Tracker   Tracker
	Notifier  Notifier
	Ledger    ledger.Recorder
	Archiver  Archiver
}

// Applied is one instruction that reached storage
type Applied struct {
	Kind     exdom.InstructionKind `json:"kind"`
	TicketID string                `json:"ticketId"`
	Summary  string                `json:"summary"`
	Tracker  bool                  `json:"tracker"`
}

// Report is the outcome of processing one transcript
type Report struct {
	RunID        string        `json:"runId"`
	TranscriptID string        `json:"transcriptId"`
	Title        string        `json:"title,omitempty"`
	Outcome      Outcome       `json:"outcome"`
	DryRun       bool          `json:"dryRun"`
	Result       exdom.Result  `json:"result"`
	Applied      []Applied     `json:"applied"`
	Failures     []string      `json:"failures,omitempty"`
	Error        string        `json:"error,omitempty"`
	ArchivedAt   string        `json:"archivedAt,omitempty"`
	Elapsed      time.Duration `json:"elapsedNs"`
}

// Processor runs transcripts end to end
type Processor interface {
	Process(ctx context.Context, tr exdom.Transcript, dryRun bool) (Report, error)
	ProcessBatch(ctx context.Context, trs []exdom.Transcript, dryRun bool) ([]Report, error)
}
