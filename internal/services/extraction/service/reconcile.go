package service

import (
	"tasksync/internal/core/normalize"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
	dom "tasksync/internal/services/extraction/domain"
)

// Reconcile turns stage outputs into ordered instructions: creates, then status
// transitions, then description updates. Each ticket gets at most one status
// and one description instruction, transitions to the current status are
// dropped and a create never restates a task that is being updated
func Reconcile(newTasks []dom.NewTaskItem, updates []dom.TaskUpdate, changes []dom.StatusResult, existing []dom.ExistingTask) []dom.Instruction {
	snap := dom.Snapshot{Tasks: existing}

	updated := map[string]bool{}
	for _, u := range updates {
		if u.Success && u.Amendment != "" {
			updated[ticketid.MustNormalize(u.TicketID)] = true
		}
	}
	for _, c := range changes {
		if c.Success {
			updated[ticketid.MustNormalize(c.TaskID)] = true
		}
	}
	touched := map[string]bool{}
	for id := range updated {
		if e, ok := snap.Find(id); ok {
			touched[normalize.Text(e.Description)] = true
		}
	}

	var out []dom.Instruction
	for i := range newTasks {
		t := newTasks[i]
		if t.TicketID != "" && t.TicketID != ticketid.None {
			continue
		}
		if touched[normalize.Text(t.Description)] {
			continue
		}
		out = append(out, dom.Instruction{Kind: dom.KindCreate, Create: &t, Evidence: t.Evidence})
	}

	var applied []dom.StatusChange
	prev := map[string]status.Status{}
	for _, c := range changes {
		if !c.Success {
			continue
		}
		id := ticketid.MustNormalize(c.TaskID)
		c.TaskID = id
		applied = append(applied, c.StatusChange)
		prev[id] = c.Previous
	}
	for _, c := range status.Merge(applied) {
		if prev[c.TaskID] == c.NewStatus {
			continue
		}
		out = append(out, dom.Instruction{
			Kind:       dom.KindUpdateStatus,
			TicketID:   c.TaskID,
			From:       prev[c.TaskID],
			To:         c.NewStatus,
			Confidence: c.Confidence,
			Speaker:    c.Speaker,
			Evidence:   c.Evidence,
		})
	}

	seen := map[string]bool{}
	for _, u := range updates {
		id := ticketid.MustNormalize(u.TicketID)
		if !u.Success || u.Amendment == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, dom.Instruction{
			Kind:        dom.KindUpdateDescription,
			TicketID:    id,
			Description: u.Description,
			Append:      u.Amendment,
			Evidence:    u.Evidence,
		})
	}
	return out
}
