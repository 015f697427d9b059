// Package domain defines the types and ports of the extraction pipeline
package domain

import (
	"slices"
	"strings"
	"time"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/respparse"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
	"tasksync/internal/core/transcript"
)

// Category partitions extracted tasks by whether they reference a ticket
type Category = respparse.Category

const (
	NewTask    = respparse.NewTask
	UpdateTask = respparse.UpdateTask
)

// StatusChange is a detected status claim
type StatusChange = status.Change

// Transcript is one meeting to process
type Transcript struct {
	ID      string             `json:"id" validate:"required,max=200"`
	Title   string             `json:"title,omitempty" validate:"max=500"`
	Entries []transcript.Entry `json:"entries" validate:"required,min=1,dive"`
}

// ExistingTask is a stored task as seen by one run
type ExistingTask struct {
	TicketID    string        `json:"ticketId"`
	Description string        `json:"description"`
	Status      status.Status `json:"status"`
	Assignee    string        `json:"assignee"`
	Type        string        `json:"type,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Snapshot is the active task set a run decides against. It is read once per
// run (or once per batch) and never refreshed mid-run
type Snapshot struct {
	Tasks   []ExistingTask `json:"tasks"`
	TakenAt time.Time      `json:"takenAt"`
}

// Clone returns an independent copy
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Tasks: slices.Clone(s.Tasks), TakenAt: s.TakenAt}
}

// Find returns the task whose id normalizes to the same form as id
func (s Snapshot) Find(id string) (ExistingTask, bool) {
	want, ok := ticketid.Normalize(id)
	if !ok {
		return ExistingTask{}, false
	}
	for _, t := range s.Tasks {
		if got, ok := ticketid.Normalize(t.TicketID); ok && got == want {
			return t, true
		}
	}
	return ExistingTask{}, false
}

// ExtractedTask is a Stage 1 output item
type ExtractedTask struct {
	Description        string             `json:"description"`
	Assignee           string             `json:"assignee"`
	AssigneeMethod     assignee.Method    `json:"assigneeMethod,omitempty"`
	AssigneeConfidence float64            `json:"assigneeConfidence,omitempty"`
	Type               respparse.Type     `json:"type"`
	WorkType           respparse.WorkType `json:"workType"`
	Category           Category           `json:"category"`
	TicketID           string             `json:"ticketId"`
	IsFuturePlan       bool               `json:"isFuturePlan"`
	EstimatedTime      float64            `json:"estimatedTime"`
	TimeSpent          float64            `json:"timeSpent,omitempty"`
	Status             status.Status      `json:"status,omitempty"`
	StatusExplicit     bool               `json:"statusExplicit,omitempty"`
	Priority           string             `json:"priority,omitempty"`
	StoryPoints        float64            `json:"storyPoints,omitempty"`
	ProjectCode        string             `json:"projectCode,omitempty"`
	Evidence           string             `json:"evidence,omitempty"`
	Context            string             `json:"context,omitempty"`
	Speaker            string             `json:"speaker,omitempty"`
}

// CategoryFor derives the category from a ticket id
func CategoryFor(ticketID string) Category {
	if ticketID != "" && ticketID != ticketid.None {
		return UpdateTask
	}
	return NewTask
}

// NewTaskItem is a Stage 2 creation payload
type NewTaskItem struct {
	ExtractedTask
	OriginalDescription string  `json:"originalDescription,omitempty"`
	Enriched            bool    `json:"enriched"`
	CreationConfidence  float64 `json:"creationConfidence"`
	CreationReason      string  `json:"creationReason"`
}

// Duplicate records a Stage 2 candidate dropped as already known
type Duplicate struct {
	Task     ExtractedTask `json:"task"`
	TicketID string        `json:"ticketId,omitempty"`
	Score    float64       `json:"score"`
	InRun    bool          `json:"inRun"`
}

// TaskUpdate is a Stage 3 description amendment, or a failed reference
type TaskUpdate struct {
	TicketID    string `json:"ticketId"`
	Previous    string `json:"previous,omitempty"`
	Amendment   string `json:"amendment,omitempty"`
	Description string `json:"description,omitempty"`
	Evidence    string `json:"evidence,omitempty"`
	Success     bool   `json:"success"`
	Reason      string `json:"reason,omitempty"`
}

// StatusResult is a merged status change resolved against the snapshot
type StatusResult struct {
	StatusChange
	Previous status.Status `json:"previous,omitempty"`
	Success  bool          `json:"success"`
	Reason   string        `json:"reason,omitempty"`
}

// ReasonNotFound is the failure reason for references absent from the snapshot
const ReasonNotFound = "task not found"

// FindResult is the Stage 1 output
type FindResult struct {
	Tasks     []ExtractedTask `json:"tasks"`
	Attendees string          `json:"attendees"`
}

// CreateResult is the Stage 2 output
type CreateResult struct {
	NewTasks     []NewTaskItem   `json:"newTasks"`
	Reclassified []ExtractedTask `json:"reclassified,omitempty"`
	Duplicates   []Duplicate     `json:"duplicates,omitempty"`
}

// UpdateResult is the Stage 3 output
type UpdateResult struct {
	Updates       []TaskUpdate   `json:"updates"`
	StatusChanges []StatusResult `json:"statusChanges"`
}

// InstructionKind tags an Instruction
type InstructionKind string

const (
	KindCreate            InstructionKind = "create"
	KindUpdateStatus      InstructionKind = "update_status"
	KindUpdateDescription InstructionKind = "update_description"
)

// Instruction is one mutation for the sync collaborators. Exactly one of the
// payload groups is set according to Kind
type Instruction struct {
	Kind InstructionKind `json:"kind"`

	// create
	Create *NewTaskItem `json:"create,omitempty"`

	// update_status and update_description
	TicketID string `json:"ticketId,omitempty"`

	From       status.Status `json:"from,omitempty"`
	To         status.Status `json:"to,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	Speaker    string        `json:"speaker,omitempty"`

	Description string `json:"description,omitempty"`
	Append      string `json:"append,omitempty"`

	Evidence string `json:"evidence,omitempty"`
}

// Summary renders a one-line description of the instruction
func (in Instruction) Summary() string {
	switch in.Kind {
	case KindCreate:
		if in.Create == nil {
			return "create"
		}
		return "create for " + in.Create.Assignee + ": " + in.Create.Description
	case KindUpdateStatus:
		return in.TicketID + ": " + string(in.From) + " -> " + string(in.To)
	case KindUpdateDescription:
		return in.TicketID + ": + " + strings.TrimSpace(in.Append)
	}
	return string(in.Kind)
}

// RunContext carries batch position and the isolated baseline snapshot
type RunContext struct {
	IsMultiTranscript bool      `json:"isMultiTranscript"`
	TranscriptIndex   int       `json:"transcriptIndex"`
	TotalTranscripts  int       `json:"totalTranscripts"`
	Baseline          *Snapshot `json:"-"`
}

// Result is everything one run decided
type Result struct {
	RunID         string          `json:"runId"`
	TranscriptID  string          `json:"transcriptId"`
	Title         string          `json:"title,omitempty"`
	Attendees     string          `json:"attendees"`
	Found         []ExtractedTask `json:"found"`
	NewTasks      []NewTaskItem   `json:"newTasks"`
	Reclassified  []ExtractedTask `json:"reclassified,omitempty"`
	Duplicates    []Duplicate     `json:"duplicates,omitempty"`
	Updates       []TaskUpdate    `json:"updates"`
	StatusChanges []StatusResult  `json:"statusChanges"`
	Instructions  []Instruction   `json:"instructions"`
	SnapshotSize  int             `json:"snapshotSize"`
	StartedAt     time.Time       `json:"startedAt"`
	FinishedAt    time.Time       `json:"finishedAt"`
}

// Empty reports a run that found nothing to apply
func (r Result) Empty() bool { return len(r.Instructions) == 0 }

// Failures collects per-item reference failures
func (r Result) Failures() []string {
	var out []string
	for _, u := range r.Updates {
		if !u.Success {
			out = append(out, u.TicketID+": "+u.Reason)
		}
	}
	for _, s := range r.StatusChanges {
		if !s.Success {
			out = append(out, s.TaskID+": "+s.Reason)
		}
	}
	return out
}

// BatchItem is one transcript's outcome in a batch
type BatchItem struct {
	TranscriptID string `json:"transcriptId"`
	Result       Result `json:"result"`
	Err          error  `json:"-"`
}
