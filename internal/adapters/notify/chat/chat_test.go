package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasksync/internal/core/status"
	perr "tasksync/internal/platform/errors"
	exdom "tasksync/internal/services/extraction/domain"
	ledger "tasksync/internal/services/ledger/domain"
	"tasksync/internal/services/sync/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report() domain.Report {
	return domain.Report{
		RunID:   "run-1",
		Title:   "Weekly sync",
		Outcome: ledger.OutcomeApplied,
		Result: exdom.Result{Instructions: []exdom.Instruction{
			{Kind: exdom.KindCreate, Create: &exdom.NewTaskItem{ExtractedTask: exdom.ExtractedTask{Description: "Evaluate a CI provider", Assignee: "TBD", IsFuturePlan: true}}},
			{Kind: exdom.KindUpdateStatus, TicketID: "SP-25", From: status.InProgress, To: status.Completed},
			{Kind: exdom.KindUpdateDescription, TicketID: "OPS-4", Append: "- retry on 503"},
		}},
		Applied:  []domain.Applied{{Kind: exdom.KindCreate, TicketID: "SP-26"}},
		Failures: []string{"OPS-99: task not found"},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(report())
	assert.Contains(t, md, "### Tasks updated: Weekly sync")
	assert.Contains(t, md, "- `SP-26` Evaluate a CI provider (TBD) _future plan_")
	assert.Contains(t, md, "- `SP-25` In-progress → Completed")
	assert.Contains(t, md, "- `OPS-4` - retry on 503")
	assert.Contains(t, md, "- OPS-99: task not found")
}

func TestMarkdown_OutcomesStayDistinct(t *testing.T) {
	r := domain.Report{TranscriptID: "m2", Outcome: ledger.OutcomeNoTasks}
	assert.Equal(t, "### No tasks found: m2\n", Markdown(r))

	r = domain.Report{Title: "Retro", Outcome: ledger.OutcomeFailed, Error: "Stage 1 (Task Finder) failed: llm down"}
	md := Markdown(r)
	assert.Contains(t, md, "### Processing failed: Retro")
	assert.Contains(t, md, "Stage 1 (Task Finder) failed")
}

func TestHTML(t *testing.T) {
	html, err := HTML(report())
	require.NoError(t, err)
	assert.Contains(t, html, "<h3>Tasks updated: Weekly sync</h3>")
	assert.Contains(t, html, "<strong>New tasks</strong>")
	assert.Contains(t, html, "<code>SP-26</code>")
}

func TestNotify(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, New(Options{WebhookURL: srv.URL}).Notify(context.Background(), report()))
	assert.Contains(t, got.Text, "### Tasks updated")
	assert.Empty(t, got.Format)

	require.NoError(t, New(Options{WebhookURL: srv.URL, Format: FormatHTML}).Notify(context.Background(), report()))
	assert.Contains(t, got.Text, "<h3>")
	assert.Equal(t, FormatHTML, got.Format)
}

func TestNotify_Errors(t *testing.T) {
	for code, want := range map[int]perr.ErrorCode{
		http.StatusTooManyRequests: perr.ErrorCodeTooManyRequests,
		http.StatusBadRequest:      perr.ErrorCodeUpstream,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_payload", code)
		}))
		err := New(Options{WebhookURL: srv.URL}).Notify(context.Background(), report())
		srv.Close()
		assert.Equal(t, want, perr.CodeOf(err))
	}
	assert.False(t, Options{WebhookURL: " "}.Enabled())
}
