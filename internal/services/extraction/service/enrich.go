package service

import (
	"context"
	"strings"

	"tasksync/internal/core/transcript"
	str "tasksync/internal/platform/strings"
	dom "tasksync/internal/services/extraction/domain"
)

const enrichSystem = `You rewrite task descriptions for an issue tracker.
Given a short task and the meeting lines it came from, reply with one sentence
that states the work to be done, using only facts present in the lines.
Do not add names, dates or estimates that were not said. Reply with the sentence only.`

// maxEnriched caps a rewritten description
const maxEnriched = 300

// LLMEnricher rewrites new task descriptions with a second, small completion
type LLMEnricher struct {
	LLM dom.Completer
}

var _ dom.Enricher = LLMEnricher{}

// Enrich returns "" when there is nothing to add, keeping the original
func (e LLMEnricher) Enrich(ctx context.Context, task dom.ExtractedTask, excerpts []transcript.Entry) (string, error) {
	if e.LLM == nil || len(excerpts) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("Task: ")
	b.WriteString(oneLine(task.Description))
	b.WriteString("\n\nLines:\n")
	b.WriteString(transcript.Render(excerpts))

	out, err := e.LLM.Complete(ctx, enrichSystem, b.String())
	if err != nil {
		return "", err
	}
	out = strings.Trim(oneLine(out), `"'`)
	return str.Truncate(out, maxEnriched), nil
}
