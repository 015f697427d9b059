package service

import (
	"context"
	"strings"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/normalize"
	"tasksync/internal/core/respparse"
	"tasksync/internal/core/ticketid"
	"tasksync/internal/core/transcript"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	str "tasksync/internal/platform/strings"
	dom "tasksync/internal/services/extraction/domain"
)

// Finder is Stage 1: one LLM call per transcript, parsed into classified tasks
type Finder struct {
	LLM          dom.Completer
	Parser       respparse.Parser
	Format       respparse.Format
	Assign       *assignee.Cascade
	Directory    dom.Directory
	ContextTasks int
	Keys         []string
	Scanner      *ticketid.Scanner
}

// Find prompts the LLM with the transcript and the open tasks, parses the
// completion and resolves categories and assignees. An LLM error or an empty
// completion fails the stage
func (f *Finder) Find(ctx context.Context, tr dom.Transcript, existing []dom.ExistingTask) (dom.FindResult, error) {
	log := logger.C(ctx)
	entries := transcript.Resolve(tr.Entries)
	if len(entries) == 0 {
		return dom.FindResult{}, perr.InvalidArgf("transcript %q has no utterances", tr.ID)
	}
	log.Debug().Int("entries", len(entries)).Int("existing", len(existing)).Msg("stage 1: find")

	if err := ctx.Err(); err != nil {
		return dom.FindResult{}, perr.Wrap(err, perr.ErrorCodeCanceled, "before llm call")
	}
	completion, err := f.LLM.Complete(ctx,
		systemPrompt(f.Format, f.Keys),
		userPrompt(tr, entries, existing, f.ContextTasks))
	if err != nil {
		if ctx.Err() != nil {
			return dom.FindResult{}, perr.Wrap(err, perr.ErrorCodeCanceled, "llm call")
		}
		if perr.CodeOf(err) != perr.ErrorCodeUnknown {
			return dom.FindResult{}, err
		}
		return dom.FindResult{}, perr.Wrap(err, perr.ErrorCodeUpstream, "llm call")
	}
	if strings.TrimSpace(completion) == "" {
		return dom.FindResult{}, perr.Upstreamf("llm returned an empty completion")
	}

	parsed := f.Parser.ParseFormat(completion, f.Format)
	people := f.people(entries)

	out := dom.FindResult{Attendees: transcript.Attendees(entries)}
	for _, t := range parsed.Tasks() {
		out.Tasks = append(out.Tasks, f.classify(t, entries, people))
	}

	log.Info().
		Int("found", len(out.Tasks)).
		Int("updates", countCategory(out.Tasks, dom.UpdateTask)).
		Str("attendees", out.Attendees).
		Msg("stage 1: done")
	return out, nil
}

// people is attendees first, then directory names not already present
func (f *Finder) people(entries []transcript.Entry) []string {
	names := transcript.Speakers(entries)
	if f.Directory != nil {
		names = append(names, f.Directory.Names()...)
	}
	return str.Dedupe(names)
}

func (f *Finder) classify(t respparse.Task, entries []transcript.Entry, people []string) dom.ExtractedTask {
	x := dom.ExtractedTask{
		Description:    t.Description,
		Assignee:       t.Assignee,
		Type:           t.Type,
		WorkType:       t.WorkType,
		TicketID:       ticketid.MustNormalize(t.TicketID),
		IsFuturePlan:   t.IsFuturePlan,
		EstimatedTime:  t.Estimated,
		TimeSpent:      t.TimeSpent,
		Status:         t.Status,
		StatusExplicit: t.StatusExplicit,
		Priority:       t.Priority,
		StoryPoints:    t.StoryPoints,
		ProjectCode:    t.ProjectCode,
		Evidence:       t.Evidence,
		Context:        t.Context,
	}
	if x.TicketID != ticketid.None && f.Scanner != nil && !f.Scanner.Accepts(x.TicketID) {
		x.TicketID = ticketid.None
	}
	// the spoken id is authoritative over the model's own label
	x.Category = dom.CategoryFor(x.TicketID)

	if e, ok := bestEntry(entries, t); ok {
		x.Speaker = e.Speaker
		if x.Evidence == "" {
			x.Evidence = e.Text
		}
	}

	f.resolveAssignee(&x, t, people)
	return x
}

// resolveAssignee maps the model's name onto a known person, keeps plausible
// full names of absent people and names the transcript addresses, and runs the cascade for anything else.
// TBD always implies a future plan; a future plan keeps a named assignee
func (f *Finder) resolveAssignee(x *dom.ExtractedTask, t respparse.Task, people []string) {
	cascade := f.Assign
	if cascade == nil {
		cascade = assignee.New(nil)
	}
	canon := cascade.Canon()
	name := strings.TrimSpace(x.Assignee)

	if name != "" && !strings.EqualFold(name, assignee.TBD) {
		if who, conf, ok := assignee.Resolve(name, people, canon); ok {
			x.Assignee, x.AssigneeConfidence, x.AssigneeMethod = who, conf, assignee.MethodExplicit
			return
		}
		if len(strings.Fields(name)) >= 2 {
			x.Assignee, x.AssigneeConfidence, x.AssigneeMethod = canon.Canonical(name), assignee.ConfUnknownFullName, assignee.MethodExplicit
			return
		}
		// an absent person the transcript itself hands the work to
		if assignee.Addressed(x.Description+". "+x.Evidence, name, canon) {
			x.Assignee, x.AssigneeConfidence, x.AssigneeMethod = canon.Canonical(name), assignee.ConfUnknownFullName, assignee.MethodExplicit
			return
		}
	}

	text := strings.TrimSpace(x.Description + ". " + x.Evidence)
	m := cascade.Detect(text, x.Speaker, people)
	if x.IsFuturePlan && m.Method == assignee.MethodFallback {
		m = assignee.Match{Assignee: assignee.TBD, Method: assignee.MethodFallback}
	}
	x.Assignee, x.AssigneeConfidence, x.AssigneeMethod = m.Assignee, m.Confidence, m.Method

	switch {
	case m.IsTBD():
		x.IsFuturePlan = true
	case !t.FutureExplicit && strings.EqualFold(name, assignee.TBD):
		// the TBD header was the only future signal and a person was found
		x.IsFuturePlan = respparse.IsFutureText(x.Description)
	}
}

// bestEntry picks the utterance that best supports a task: the one containing
// the evidence quote, else the highest token overlap with the description
func bestEntry(entries []transcript.Entry, t respparse.Task) (transcript.Entry, bool) {
	if q := normalize.Text(t.Evidence); q != "" {
		for _, e := range entries {
			if strings.Contains(normalize.Text(e.Text), q) {
				return e, true
			}
		}
	}
	best, score := -1, 0.0
	for i, e := range entries {
		if s := normalize.Overlap(t.Description, e.Text); s > score {
			best, score = i, s
		}
	}
	if best < 0 || score < 0.2 {
		return transcript.Entry{}, false
	}
	return entries[best], true
}

func countCategory(xs []dom.ExtractedTask, c dom.Category) int {
	n := 0
	for _, x := range xs {
		if x.Category == c {
			n++
		}
	}
	return n
}
