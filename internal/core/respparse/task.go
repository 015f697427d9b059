// Package respparse turns an LLM completion into typed tasks grouped by participant.
//
// Two input forms are accepted. The tag grammar:
//
//	Doug's Tasks:
//	1. Refactor the login validation (Coding) [TASK_ID: NONE] [ESTIMATED: 3 hours] [STATUS: To-do]
//
// and a JSON document validated against an embedded schema (see ParseJSON). Both
// paths share defaults and inference and neither ever fails: unreadable input
// yields an empty Result.
package respparse

import (
	"strings"

	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
)

// Type is the Coding / Non-Coding split
type Type string

const (
	Coding    Type = "Coding"
	NonCoding Type = "Non-Coding"
)

// WorkType is the tracker issue type
type WorkType string

const (
	WorkTask WorkType = "Task"
	WorkBug  WorkType = "Bug"
)

// Category is the LLM's own NEW_TASK / UPDATE_TASK label. Callers re-derive it
// from TicketID; it is kept for diagnostics
type Category string

const (
	NewTask    Category = "NEW_TASK"
	UpdateTask Category = "UPDATE_TASK"
)

// Task is one parsed task line
type Task struct {
	Description    string        `json:"description"`
	Type           Type          `json:"type"`
	WorkType       WorkType      `json:"workType"`
	Category       Category      `json:"category,omitempty"`
	TicketID       string        `json:"ticketId"`
	Status         status.Status `json:"status"`
	StatusExplicit bool          `json:"statusExplicit"`
	Estimated      float64       `json:"estimatedTime"`
	TimeSpent      float64       `json:"timeSpent,omitempty"`
	IsFuturePlan   bool          `json:"isFuturePlan"`
	FutureExplicit bool          `json:"futureExplicit"`
	Assignee       string        `json:"assignee"`
	Priority       string        `json:"priority,omitempty"`
	StoryPoints    float64       `json:"storyPoints,omitempty"`
	ProjectCode    string        `json:"projectCode,omitempty"`
	Evidence       string        `json:"evidence,omitempty"`
	Context        string        `json:"context,omitempty"`
}

// HasTicket reports whether the task names an existing ticket
func (t Task) HasTicket() bool { return t.TicketID != "" && t.TicketID != ticketid.None }

// Participant is one header with its tasks split by type
type Participant struct {
	Name      string `json:"name"`
	Coding    []Task `json:"coding"`
	NonCoding []Task `json:"nonCoding"`
}

// Len is the task count
func (p Participant) Len() int { return len(p.Coding) + len(p.NonCoding) }

// Result keeps participants in header order
type Result struct {
	Participants []Participant `json:"participants"`
}

// Empty reports a result with no tasks
func (r Result) Empty() bool { return len(r.Participants) == 0 }

// Get returns the participant with the given name, case-insensitively
func (r Result) Get(name string) (Participant, bool) {
	for _, p := range r.Participants {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Participant{}, false
}

// Tasks flattens the result in header order, coding before non-coding
func (r Result) Tasks() []Task {
	var out []Task
	for _, p := range r.Participants {
		out = append(out, p.Coding...)
		out = append(out, p.NonCoding...)
	}
	return out
}

// builder accumulates tasks per participant in first-seen order
type builder struct {
	order []string
	by    map[string]*Participant
}

func newBuilder() *builder { return &builder{by: map[string]*Participant{}} }

func (b *builder) add(name string, t Task) {
	k := strings.ToLower(name)
	p, ok := b.by[k]
	if !ok {
		p = &Participant{Name: name}
		b.by[k] = p
		b.order = append(b.order, k)
	}
	if t.Type == NonCoding {
		p.NonCoding = append(p.NonCoding, t)
	} else {
		p.Coding = append(p.Coding, t)
	}
}

// result drops participants without tasks
func (b *builder) result() Result {
	var out Result
	for _, k := range b.order {
		if p := b.by[k]; p.Len() > 0 {
			out.Participants = append(out.Participants, *p)
		}
	}
	return out
}
