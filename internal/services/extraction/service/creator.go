package service

import (
	"context"
	"fmt"
	"strings"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/normalize"
	"tasksync/internal/core/ticketid"
	"tasksync/internal/core/transcript"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	dom "tasksync/internal/services/extraction/domain"
)

// DefaultDuplicateThreshold is the token overlap at which two descriptions
// with the same assignee are the same task
const DefaultDuplicateThreshold = 0.85

// Creator is Stage 2: NEW_TASK candidates become creation payloads
type Creator struct {
	Scanner   *ticketid.Scanner
	Enricher  dom.Enricher
	Threshold float64
	Canon     *assignee.Canonicalizer
}

// Create filters NEW_TASK items, moves those hiding a ticket id to Reclassified,
// drops duplicates of snapshot tasks and of earlier items in the same run, and
// enriches what is left. Apart from the enricher the result depends only on
// its inputs
func (c *Creator) Create(ctx context.Context, found []dom.ExtractedTask, existing []dom.ExistingTask, tr dom.Transcript) (dom.CreateResult, error) {
	log := logger.C(ctx)
	log.Debug().Int("found", len(found)).Msg("stage 2: create")

	threshold := c.Threshold
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	scan := c.Scanner
	if scan == nil {
		scan = ticketid.NewScanner()
	}
	entries := transcript.Resolve(tr.Entries)

	var out dom.CreateResult
	for _, t := range found {
		if t.Category != dom.NewTask {
			continue
		}

		if ref, ok := scan.First(t.Description); ok {
			t.TicketID, t.Category = ref.ID, dom.UpdateTask
			out.Reclassified = append(out.Reclassified, t)
			log.Debug().Str("ticket_id", ref.ID).Str("description", t.Description).Msg("stage 2: hidden ticket id, reclassified")
			continue
		}

		if e, score, ok := c.duplicateOf(t, existing, threshold); ok {
			out.Duplicates = append(out.Duplicates, dom.Duplicate{Task: t, TicketID: e.TicketID, Score: score})
			continue
		}
		if score, ok := c.duplicateInRun(t, out.NewTasks, threshold); ok {
			out.Duplicates = append(out.Duplicates, dom.Duplicate{Task: t, Score: score, InRun: true})
			continue
		}

		item := dom.NewTaskItem{ExtractedTask: t}
		if c.Enricher != nil {
			if err := c.enrich(ctx, &item, entries); err != nil {
				return dom.CreateResult{}, err
			}
		}
		item.CreationConfidence, item.CreationReason = creationAudit(item, len(existing))
		out.NewTasks = append(out.NewTasks, item)
	}

	log.Info().
		Int("new", len(out.NewTasks)).
		Int("reclassified", len(out.Reclassified)).
		Int("duplicates", len(out.Duplicates)).
		Msg("stage 2: done")
	return out, nil
}

// enrich swaps in the enricher's description. Collaborator errors are logged
// and ignored; only cancellation stops the stage
func (c *Creator) enrich(ctx context.Context, item *dom.NewTaskItem, entries []transcript.Entry) error {
	text, err := c.Enricher.Enrich(ctx, item.ExtractedTask, related(item.Description, entries, 5))
	if err != nil {
		if ctx.Err() != nil {
			return perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "enrich")
		}
		logger.C(ctx).Warn().Err(err).Str("description", item.Description).Msg("stage 2: enrichment failed, keeping description")
		return nil
	}
	if text = strings.TrimSpace(text); text != "" && text != item.Description {
		item.OriginalDescription = item.Description
		item.Description = text
		item.Enriched = true
	}
	return nil
}

func (c *Creator) duplicateOf(t dom.ExtractedTask, existing []dom.ExistingTask, threshold float64) (dom.ExistingTask, float64, bool) {
	for _, e := range existing {
		if score, ok := c.same(t.Description, t.Assignee, e.Description, e.Assignee, threshold); ok {
			return e, score, true
		}
	}
	return dom.ExistingTask{}, 0, false
}

func (c *Creator) duplicateInRun(t dom.ExtractedTask, accepted []dom.NewTaskItem, threshold float64) (float64, bool) {
	for _, a := range accepted {
		desc := a.Description
		if a.Enriched {
			desc = a.OriginalDescription
		}
		if score, ok := c.same(t.Description, t.Assignee, desc, a.Assignee, threshold); ok {
			return score, true
		}
	}
	return 0, false
}

// same is normalized equality, or token overlap at threshold with the same assignee
func (c *Creator) same(descA, whoA, descB, whoB string, threshold float64) (float64, bool) {
	if ka := normalize.Text(descA); ka != "" && ka == normalize.Text(descB) {
		return 1, true
	}
	if c.Canon.Key(whoA) != c.Canon.Key(whoB) {
		return 0, false
	}
	score := normalize.Overlap(descA, descB)
	return score, score >= threshold
}

// related returns up to n utterances sharing vocabulary with desc, in transcript order
func related(desc string, entries []transcript.Entry, n int) []transcript.Entry {
	var out []transcript.Entry
	for _, e := range entries {
		if normalize.Overlap(desc, e.Text) >= 0.2 {
			out = append(out, e)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// creationAudit scores how well supported a new task is and says why
func creationAudit(t dom.NewTaskItem, snapshot int) (float64, string) {
	conf := 0.6
	var why []string
	why = append(why, fmt.Sprintf("no ticket reference, no match among %d active tasks", snapshot))

	switch {
	case t.Assignee == assignee.TBD:
		why = append(why, "unassigned")
	case t.AssigneeMethod == assignee.MethodFallback:
		conf += 0.05
		why = append(why, "assigned to speaker")
	default:
		conf += 0.15
		why = append(why, fmt.Sprintf("assignee via %s", t.AssigneeMethod))
	}
	if t.Evidence != "" {
		conf += 0.1
		why = append(why, "quoted evidence")
	}
	if t.EstimatedTime > 0 {
		conf += 0.05
		why = append(why, "estimate given")
	}
	if t.IsFuturePlan {
		conf -= 0.1
		why = append(why, "future plan")
	}
	if t.Enriched {
		why = append(why, "description enriched")
	}
	conf = min(max(conf, 0.1), 0.95)
	return conf, strings.Join(why, "; ")
}
