package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/respparse"
	"tasksync/internal/core/status"
	"tasksync/internal/core/transcript"
	dom "tasksync/internal/services/extraction/domain"
)

// llmFunc adapts a function to dom.Completer and counts calls
type llmFunc struct {
	fn    func(ctx context.Context, system, user string) (string, error)
	calls atomic.Int32
}

func (l *llmFunc) Complete(ctx context.Context, system, user string) (string, error) {
	l.calls.Add(1)
	return l.fn(ctx, system, user)
}

func replying(out string) *llmFunc {
	return &llmFunc{fn: func(context.Context, string, string) (string, error) { return out, nil }}
}

type source struct {
	mu    sync.Mutex
	tasks []dom.ExistingTask
	err   error
	calls int
}

func (s *source) ActiveTasks(context.Context) ([]dom.ExistingTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]dom.ExistingTask(nil), s.tasks...), nil
}

type enricher struct {
	out string
	err error
}

func (e enricher) Enrich(context.Context, dom.ExtractedTask, []transcript.Entry) (string, error) {
	return e.out, e.err
}

type directory []string

func (d directory) Names() []string { return d }

func newPipeline(llm dom.Completer, src dom.SnapshotSource) *Pipeline {
	return NewPipeline(
		&Finder{LLM: llm, Assign: assignee.New(nil), ContextTasks: 50},
		&Creator{},
		&Updater{Detector: status.New(status.Options{})},
		src,
		Config{Workers: 2},
	)
}

func meeting(id, title string, lines ...string) dom.Transcript {
	tr := dom.Transcript{ID: id, Title: title}
	for _, l := range lines {
		who, text, _ := strings.Cut(l, ": ")
		tr.Entries = append(tr.Entries, transcript.Entry{Speaker: who, Text: text})
	}
	return tr
}

func extracted(desc, who string, cat dom.Category, id string) dom.ExtractedTask {
	return dom.ExtractedTask{
		Description: desc,
		Assignee:    who,
		Category:    cat,
		TicketID:    id,
		Type:        respparse.InferType(desc),
		Status:      status.ToDo,
	}
}
