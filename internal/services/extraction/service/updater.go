package service

import (
	"context"
	"fmt"
	"strings"

	"tasksync/internal/core/normalize"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
	"tasksync/internal/core/transcript"
	"tasksync/internal/platform/logger"
	dom "tasksync/internal/services/extraction/domain"
)

// ConfExplicitStatus is the weight of a STATUS tag the model put on an update
const ConfExplicitStatus = 0.7

// Updater is Stage 3: status changes and description amendments for existing tasks
type Updater struct {
	Detector *status.Detector
}

// Update runs the status detector over every utterance, merges its claims with
// the model's explicit STATUS tags and resolves both them and the UPDATE_TASK
// items against the snapshot. Unknown ids come back as failed items
func (u *Updater) Update(ctx context.Context, found []dom.ExtractedTask, existing []dom.ExistingTask, tr dom.Transcript) (dom.UpdateResult, error) {
	log := logger.C(ctx)
	log.Debug().Int("found", len(found)).Int("entries", len(tr.Entries)).Msg("stage 3: update")

	det := u.Detector
	if det == nil {
		det = status.New(status.Options{})
	}
	snap := dom.Snapshot{Tasks: existing}

	// model tags first so a detector claim of equal weight, being later, wins
	var claims []dom.StatusChange
	for _, t := range found {
		if t.Category != dom.UpdateTask || !t.StatusExplicit || t.Status == status.ToDo {
			continue
		}
		claims = append(claims, dom.StatusChange{
			TaskID:     t.TicketID,
			NewStatus:  t.Status,
			Confidence: ConfExplicitStatus,
			Evidence:   t.Evidence,
			Speaker:    t.Speaker,
		})
	}
	for _, e := range transcript.Resolve(tr.Entries) {
		claims = append(claims, det.Detect(e.Text, e.Speaker)...)
	}

	var out dom.UpdateResult
	for _, c := range status.Merge(claims) {
		r := dom.StatusResult{StatusChange: c}
		if e, ok := snap.Find(c.TaskID); ok {
			r.Success, r.Previous = true, e.Status
		} else {
			r.Reason = dom.ReasonNotFound
			log.Warn().Str("ticket_id", c.TaskID).Str("status", string(c.NewStatus)).Msg("stage 3: status change for unknown task")
		}
		out.StatusChanges = append(out.StatusChanges, r)
	}

	out.Updates = amendments(found, snap, tr.Title)
	for _, up := range out.Updates {
		if !up.Success {
			log.Warn().Str("ticket_id", up.TicketID).Str("reason", up.Reason).Msg("stage 3: update not applied")
		}
	}

	log.Info().
		Int("status_changes", len(out.StatusChanges)).
		Int("updates", len(out.Updates)).
		Msg("stage 3: done")
	return out, nil
}

// amendments builds one append-only description update per referenced ticket.
// Text already present in the stored description is skipped
func amendments(found []dom.ExtractedTask, snap dom.Snapshot, title string) []dom.TaskUpdate {
	type acc struct {
		update dom.TaskUpdate
		lines  []string
		seen   map[string]bool
	}
	var order []string
	by := map[string]*acc{}

	for _, t := range found {
		if t.Category != dom.UpdateTask {
			continue
		}
		id := ticketid.MustNormalize(t.TicketID)
		a, ok := by[id]
		if !ok {
			a = &acc{update: dom.TaskUpdate{TicketID: id}, seen: map[string]bool{}}
			by[id] = a
			order = append(order, id)
			if e, hit := snap.Find(id); hit {
				a.update.Success = true
				a.update.Previous = e.Description
			} else {
				a.update.Reason = dom.ReasonNotFound
			}
		}
		if !a.update.Success {
			continue
		}
		if a.update.Evidence == "" {
			a.update.Evidence = t.Evidence
		}

		have := normalize.Text(a.update.Previous)
		for _, line := range amendmentLines(t) {
			k := normalize.Text(line)
			if k == "" || a.seen[k] || strings.Contains(have, k) {
				continue
			}
			a.seen[k] = true
			a.lines = append(a.lines, line)
		}
	}

	out := make([]dom.TaskUpdate, 0, len(order))
	for _, id := range order {
		a := by[id]
		if a.update.Success && len(a.lines) == 0 {
			a.update.Reason = "no new information"
		}
		if len(a.lines) > 0 {
			a.update.Amendment = strings.Join(a.lines, "\n")
			a.update.Description = appendNote(a.update.Previous, title, a.update.Amendment)
		}
		out = append(out, a.update)
	}
	return out
}

// amendmentLines is the description then any context that is not a restatement
func amendmentLines(t dom.ExtractedTask) []string {
	lines := []string{strings.TrimSpace(t.Description)}
	if c := strings.TrimSpace(t.Context); c != "" && normalize.Overlap(c, t.Description) < 0.8 {
		lines = append(lines, c)
	}
	return lines
}

// appendNote keeps previous byte for byte so the stored description stays a
// prefix of the result
func appendNote(previous, title, amendment string) string {
	head := "Update"
	if title != "" {
		head = fmt.Sprintf("Update from %s", title)
	}
	var b strings.Builder
	if previous != "" {
		b.WriteString(previous)
		switch {
		case strings.HasSuffix(previous, "\n\n"):
		case strings.HasSuffix(previous, "\n"):
			b.WriteByte('\n')
		default:
			b.WriteString("\n\n")
		}
	}
	b.WriteString(head)
	b.WriteString(":\n")
	for _, l := range strings.Split(amendment, "\n") {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
