// Package status detects spoken status changes for ticket references
// ("SP-25 is complete", "started working on OPS-7")
package status

import "strings"

// Status is a task workflow state
type Status string

const (
	ToDo       Status = "To-do"
	InProgress Status = "In-progress"
	Completed  Status = "Completed"
)

// Parse maps loose spellings ("done", "in progress", "todo") to a Status
func Parse(s string) (Status, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("-", "", "_", "", " ", "").Replace(k)
	switch k {
	case "todo", "open", "new", "notstarted", "backlog":
		return ToDo, true
	case "inprogress", "started", "ongoing", "wip", "doing", "active":
		return InProgress, true
	case "completed", "complete", "done", "finished", "closed", "resolved":
		return Completed, true
	}
	return "", false
}

// rank orders states for tie breaks
func (s Status) rank() int {
	switch s {
	case Completed:
		return 2
	case InProgress:
		return 1
	}
	return 0
}

// Change is one detected status claim
type Change struct {
	TaskID     string  `json:"taskId"`
	NewStatus  Status  `json:"newStatus"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
	Speaker    string  `json:"speaker"`
}

// Merge folds claims gathered across a transcript, given in utterance order, to one per task.
// Highest confidence wins; on equal confidence Completed beats In-progress; on a full tie the
// later claim wins. Output keeps the order in which each task was first mentioned
func Merge(changes []Change) []Change {
	best := make(map[string]int, len(changes))
	var order []string
	for i, c := range changes {
		j, ok := best[c.TaskID]
		if !ok {
			best[c.TaskID] = i
			order = append(order, c.TaskID)
			continue
		}
		if beats(c, changes[j]) {
			best[c.TaskID] = i
		}
	}
	out := make([]Change, 0, len(order))
	for _, id := range order {
		out = append(out, changes[best[id]])
	}
	return out
}

// beats reports whether a later claim replaces an earlier one
func beats(later, earlier Change) bool {
	if later.Confidence != earlier.Confidence {
		return later.Confidence > earlier.Confidence
	}
	if later.NewStatus.rank() != earlier.NewStatus.rank() {
		return later.NewStatus.rank() > earlier.NewStatus.rank()
	}
	return true
}
