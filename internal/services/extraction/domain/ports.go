package domain

import (
	"context"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/transcript"
)

// Completer is the LLM collaborator
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Enricher rewrites a new task's description from related transcript excerpts.
// An empty result or an error leaves the description unchanged
type Enricher interface {
	Enrich(ctx context.Context, task ExtractedTask, excerpts []transcript.Entry) (string, error)
}

// SnapshotSource reads the active task set
type SnapshotSource interface {
	ActiveTasks(ctx context.Context) ([]ExistingTask, error)
}

// Directory lists people known outside any single meeting
type Directory interface {
	Names() []string
}

// Extractor turns transcripts into instructions
type Extractor interface {
	Run(ctx context.Context, tr Transcript, rc RunContext) (Result, error)
	RunBatch(ctx context.Context, trs []Transcript) ([]BatchItem, error)
}

// Ports are what the extraction module needs from other modules. LLM is
// required; a nil Snapshot means every run starts from an empty task set
type Ports struct {
	LLM       Completer
	Snapshot  SnapshotSource
	Directory Directory
	Canon     *assignee.Canonicalizer
}
