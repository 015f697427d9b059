package service

import (
	"fmt"
	"slices"
	"strings"

	"tasksync/internal/core/respparse"
	"tasksync/internal/core/transcript"
	str "tasksync/internal/platform/strings"
	dom "tasksync/internal/services/extraction/domain"
)

const rulesTags = `You extract actionable tasks from meeting transcripts.

Group tasks under one header per person, exactly:
<Name>'s Tasks:
1. <description> (Coding|Non-Coding) [TASK_ID: ...] [CATEGORY: ...] [STATUS: ...] [ESTIMATED: ...] [TIME SPENT: ...] [IS_FUTURE_PLAN: ...] [ASSIGNEE: ...] [WORK_TYPE: ...] [EVIDENCE: ...]

Rules:
- TASK_ID is the ticket explicitly spoken (for example SP-25 or OPS-7). Use NONE when no ticket was named. Never invent ids.
- CATEGORY is UPDATE_TASK when TASK_ID is set and NEW_TASK otherwise.
- STATUS is one of To-do, In-progress, Completed.
- ESTIMATED and TIME SPENT are durations such as "3 hours" or "2 days".
- IS_FUTURE_PLAN is true for roadmap items and ideas without a committed owner. Put unowned work under "TBD's Tasks:".
- ASSIGNEE is the person who will do the work, which may be someone absent from the meeting.
- WORK_TYPE is Bug for defects and Task otherwise.
- EVIDENCE is a short verbatim quote from the transcript.
- Do not repeat these instructions or output template lines.`

const rulesJSON = `You extract actionable tasks from meeting transcripts.

Answer with one JSON object matching this schema and nothing else:
%s

Rules:
- task_id is the ticket explicitly spoken (for example SP-25). Use "NONE" when no ticket was named. Never invent ids.
- category is UPDATE_TASK when task_id is set and NEW_TASK otherwise.
- status is one of To-do, In-progress, Completed.
- is_future_plan is true for roadmap items and ideas without a committed owner; use participant "TBD" for unowned work.
- assignee is the person who will do the work, which may be someone absent from the meeting.
- evidence is a short verbatim quote from the transcript.`

// systemPrompt returns the rules block for the configured output form
func systemPrompt(f respparse.Format, keys []string) string {
	var b strings.Builder
	if f == respparse.FormatJSON {
		fmt.Fprintf(&b, rulesJSON, respparse.Schema())
	} else {
		b.WriteString(rulesTags)
	}
	if len(keys) > 0 {
		b.WriteString("\n- Ticket ids use these project keys: ")
		b.WriteString(strings.Join(keys, ", "))
		b.WriteString(".")
	}
	return b.String()
}

// recentTasks keeps the n most recently updated tasks, newest first
func recentTasks(existing []dom.ExistingTask, n int) []dom.ExistingTask {
	xs := slices.Clone(existing)
	slices.SortStableFunc(xs, func(a, b dom.ExistingTask) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	if n > 0 && len(xs) > n {
		xs = xs[:n]
	}
	return xs
}

// userPrompt embeds the open tasks summary and the transcript
func userPrompt(tr dom.Transcript, entries []transcript.Entry, existing []dom.ExistingTask, contextTasks int) string {
	var b strings.Builder
	if tr.Title != "" {
		fmt.Fprintf(&b, "Meeting: %s\n", tr.Title)
	}
	if att := transcript.Attendees(entries); att != "" {
		fmt.Fprintf(&b, "Attendees: %s\n", att)
	}

	open := recentTasks(existing, contextTasks)
	b.WriteString("\nExisting open tasks")
	if len(open) == 0 {
		b.WriteString(": none\n")
	} else {
		fmt.Fprintf(&b, " (%d most recent):\n", len(open))
		for _, t := range open {
			fmt.Fprintf(&b, "- %s | %s | %s | %s\n",
				t.TicketID, str.Truncate(oneLine(t.Description), 160), t.Status, str.FirstNonBlank(t.Assignee, "TBD"))
		}
	}

	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript.Render(entries))
	return b.String()
}

func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }
