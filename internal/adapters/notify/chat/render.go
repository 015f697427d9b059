package chat

import (
	"bytes"
	"fmt"
	"strings"

	"tasksync/internal/core/assignee"
	str "tasksync/internal/platform/strings"
	exdom "tasksync/internal/services/extraction/domain"
	ledger "tasksync/internal/services/ledger/domain"
	"tasksync/internal/services/sync/domain"

	"github.com/yuin/goldmark"
)

// Markdown renders a report as a chat message
func Markdown(r domain.Report) string {
	var b strings.Builder
	title := str.FirstNonBlank(r.Title, r.TranscriptID, "meeting")

	switch r.Outcome {
	case ledger.OutcomeFailed:
		fmt.Fprintf(&b, "### Processing failed: %s\n\n", title)
		fmt.Fprintf(&b, "%s\n", str.Truncate(r.Error, 500))
		if len(r.Applied) > 0 {
			fmt.Fprintf(&b, "\n%d change(s) were applied before the failure.\n", len(r.Applied))
		}
		return b.String()
	case ledger.OutcomeNoTasks:
		fmt.Fprintf(&b, "### No tasks found: %s\n", title)
		return b.String()
	case ledger.OutcomeDryRun:
		fmt.Fprintf(&b, "### Dry run: %s\n", title)
	default:
		fmt.Fprintf(&b, "### Tasks updated: %s\n", title)
	}

	creates, statuses, descs := split(r.Result.Instructions)
	if len(creates) > 0 {
		b.WriteString("\n**New tasks**\n\n")
		for i, in := range creates {
			id := ""
			if i < len(r.Applied) && r.Applied[i].Kind == exdom.KindCreate {
				id = "`" + r.Applied[i].TicketID + "` "
			}
			who := str.FirstNonBlank(in.Create.Assignee, assignee.TBD)
			line := fmt.Sprintf("- %s%s (%s)", id, in.Create.Description, who)
			if in.Create.IsFuturePlan {
				line += " _future plan_"
			}
			b.WriteString(line + "\n")
		}
	}
	if len(statuses) > 0 {
		b.WriteString("\n**Status changes**\n\n")
		for _, in := range statuses {
			fmt.Fprintf(&b, "- `%s` %s → %s\n", in.TicketID, in.From, in.To)
		}
	}
	if len(descs) > 0 {
		b.WriteString("\n**Updated descriptions**\n\n")
		for _, in := range descs {
			fmt.Fprintf(&b, "- `%s` %s\n", in.TicketID, str.Truncate(strings.TrimSpace(in.Append), 200))
		}
	}
	if len(r.Failures) > 0 {
		b.WriteString("\n**Not applied**\n\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	if r.ArchivedAt != "" {
		fmt.Fprintf(&b, "\nTranscript archived at %s\n", r.ArchivedAt)
	}
	return b.String()
}

// HTML renders the markdown message through goldmark
func HTML(r domain.Report) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(r)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func split(ins []exdom.Instruction) (creates, statuses, descs []exdom.Instruction) {
	for _, in := range ins {
		switch in.Kind {
		case exdom.KindCreate:
			if in.Create != nil {
				creates = append(creates, in)
			}
		case exdom.KindUpdateStatus:
			statuses = append(statuses, in)
		case exdom.KindUpdateDescription:
			descs = append(descs, in)
		}
	}
	return creates, statuses, descs
}
