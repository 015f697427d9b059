package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"tasksync/internal/core/status"
	perr "tasksync/internal/platform/errors"
	exdom "tasksync/internal/services/extraction/domain"
	ledger "tasksync/internal/services/ledger/domain"
	"tasksync/internal/services/sync/domain"
	tasks "tasksync/internal/services/tasks/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extractor struct {
	res   exdom.Result
	err   error
	batch []exdom.BatchItem
}

func (e *extractor) Run(context.Context, exdom.Transcript, exdom.RunContext) (exdom.Result, error) {
	return e.res, e.err
}

func (e *extractor) RunBatch(context.Context, []exdom.Transcript) ([]exdom.BatchItem, error) {
	return e.batch, e.err
}

type store struct {
	mu    sync.Mutex
	seq   int
	calls []string
	fail  map[string]error
}

func (s *store) ActiveTasks(context.Context) ([]exdom.ExistingTask, error) { return nil, nil }

func (s *store) Create(_ context.Context, t tasks.NewTask) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["create"]; err != nil {
		return tasks.Task{}, err
	}
	id := t.TicketID
	if id == "" {
		s.seq++
		id = fmt.Sprintf("SP-%d", s.seq)
	}
	s.calls = append(s.calls, "create "+id+" "+t.Assignee+" "+string(t.Status))
	return tasks.Task{TicketID: id}, nil
}

func (s *store) UpdateStatus(_ context.Context, id string, to status.Status) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["status"]; err != nil {
		return tasks.Task{}, err
	}
	s.calls = append(s.calls, "status "+id+" "+string(to))
	return tasks.Task{TicketID: id, Status: to}, nil
}

func (s *store) AppendDescription(_ context.Context, id, desc string) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "describe "+id)
	return tasks.Task{TicketID: id, Description: desc}, nil
}

func (s *store) Get(context.Context, string) (tasks.Task, error) { return tasks.Task{}, perr.ErrNotFound }

func (s *store) List(context.Context, tasks.Filter) ([]tasks.Task, error) { return nil, nil }

type tracker struct {
	calls []string
	err   error
}

func (t *tracker) Owns(id string) bool { return strings.HasPrefix(id, "OPS-") }

func (t *tracker) CreateIssue(_ context.Context, it exdom.NewTaskItem) (string, error) {
	t.calls = append(t.calls, "create "+it.Description)
	return "OPS-100", t.err
}

func (t *tracker) Transition(_ context.Context, key string, to status.Status) error {
	t.calls = append(t.calls, "transition "+key+" "+string(to))
	return t.err
}

func (t *tracker) UpdateDescription(_ context.Context, key, _ string) error {
	t.calls = append(t.calls, "describe "+key)
	return t.err
}

type notifier struct{ reports []domain.Report }

func (n *notifier) Notify(_ context.Context, r domain.Report) error {
	n.reports = append(n.reports, r)
	return errors.New("chat down")
}

type recorder struct {
	outcomes []ledger.Outcome
	errs     []error
}

func (r *recorder) Record(_ context.Context, _ exdom.Result, o ledger.Outcome, err error) error {
	r.outcomes = append(r.outcomes, o)
	r.errs = append(r.errs, err)
	return nil
}

type archiver struct{ n int }

func (a *archiver) Archive(_ context.Context, tr exdom.Transcript, _ exdom.Result) (string, error) {
	a.n++
	return "blob://transcripts/" + tr.ID, nil
}

func result() exdom.Result {
	return exdom.Result{
		RunID:        "run-1",
		TranscriptID: "m1",
		Instructions: []exdom.Instruction{
			{Kind: exdom.KindCreate, Create: &exdom.NewTaskItem{ExtractedTask: exdom.ExtractedTask{Description: "Write the runbook", Assignee: "Doug"}}},
			{Kind: exdom.KindUpdateStatus, TicketID: "SP-25", From: status.InProgress, To: status.Completed, Confidence: 0.9},
			{Kind: exdom.KindUpdateStatus, TicketID: "OPS-4", From: status.ToDo, To: status.InProgress, Confidence: 0.7},
			{Kind: exdom.KindUpdateDescription, TicketID: "OPS-4", Description: "old\n\n- new"},
		},
	}
}

type fixture struct {
	ex  *extractor
	st  *store
	tr  *tracker
	nt  *notifier
	rec *recorder
	ar  *archiver
	svc *Service
}

func newFixture(withTracker bool) *fixture {
	f := &fixture{ex: &extractor{res: result()}, st: &store{}, tr: &tracker{}, nt: &notifier{}, rec: &recorder{}, ar: &archiver{}}
	p := domain.Ports{Extractor: f.ex, Store: f.st, Notifier: f.nt, Ledger: f.rec, Archiver: f.ar}
	if withTracker {
		p.Tracker = f.tr
	}
	f.svc = New(p, Config{})
	return f
}

func TestApply_WithoutTracker(t *testing.T) {
	f := newFixture(false)
	applied, err := f.svc.Apply(context.Background(), result())
	require.NoError(t, err)
	require.Len(t, applied, 4)
	assert.Equal(t, "SP-1", applied[0].TicketID)
	assert.False(t, applied[0].Tracker)
	assert.Equal(t, []string{
		"create SP-1 Doug To-do",
		"status SP-25 Completed",
		"status OPS-4 In-progress",
		"describe OPS-4",
	}, f.st.calls)
}

func TestApply_TrackerFirstForOwnedTickets(t *testing.T) {
	f := newFixture(true)
	applied, err := f.svc.Apply(context.Background(), result())
	require.NoError(t, err)

	assert.Equal(t, []string{"create Write the runbook", "transition OPS-4 In-progress", "describe OPS-4"}, f.tr.calls)
	assert.Equal(t, "create OPS-100 Doug To-do", f.st.calls[0])
	assert.Equal(t, []bool{true, false, true, true}, []bool{applied[0].Tracker, applied[1].Tracker, applied[2].Tracker, applied[3].Tracker})
}

func TestApply_StopsAtFirstError(t *testing.T) {
	f := newFixture(true)
	f.tr.err = perr.Newf(perr.ErrorCodeTooManyRequests, "jira rate limited")
	applied, err := f.svc.Apply(context.Background(), result())
	require.Error(t, err)
	assert.Empty(t, applied)
	assert.Empty(t, f.st.calls)
	assert.Equal(t, perr.ErrorCodeTooManyRequests, perr.CodeOf(err))
	assert.Contains(t, err.Error(), "instruction 0 (create)")
}

func TestApply_RejectsMalformed(t *testing.T) {
	f := newFixture(false)
	_, err := f.svc.Apply(context.Background(), exdom.Result{Instructions: []exdom.Instruction{{Kind: exdom.KindCreate}}})
	assert.Equal(t, perr.ErrorCodeInvalidArgument, perr.CodeOf(err))

	_, err = f.svc.Apply(context.Background(), exdom.Result{Instructions: []exdom.Instruction{{Kind: "delete"}}})
	assert.Equal(t, perr.ErrorCodeInvalidArgument, perr.CodeOf(err))
}

func TestProcess_Applied(t *testing.T) {
	f := newFixture(false)
	rep, err := f.svc.Process(context.Background(), exdom.Transcript{ID: "m1", Title: "Standup"}, false)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeApplied, rep.Outcome)
	assert.Len(t, rep.Applied, 4)
	assert.Equal(t, "blob://transcripts/m1", rep.ArchivedAt)
	assert.Equal(t, []ledger.Outcome{ledger.OutcomeApplied}, f.rec.outcomes)
	require.Len(t, f.nt.reports, 1, "notify failures are logged, not returned")
	assert.Equal(t, "Standup", f.nt.reports[0].Title)
}

func TestProcess_NoTasksAndFailedStayDistinct(t *testing.T) {
	f := newFixture(false)
	f.svc.Cfg.NotifyEmpty = true
	f.ex.res = exdom.Result{RunID: "run-2", TranscriptID: "m2"}
	rep, err := f.svc.Process(context.Background(), exdom.Transcript{ID: "m2"}, false)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeNoTasks, rep.Outcome)
	assert.Empty(t, rep.Error)

	f.ex.err = perr.Stage(1, "Task Finder", errors.New("llm down"))
	rep, err = f.svc.Process(context.Background(), exdom.Transcript{ID: "m3"}, false)
	require.Error(t, err)
	assert.Equal(t, ledger.OutcomeFailed, rep.Outcome)
	assert.Contains(t, rep.Error, "Stage 1 (Task Finder) failed")
	assert.Equal(t, 1, f.ar.n, "failed runs are not archived")

	require.Len(t, f.nt.reports, 2)
	assert.Equal(t, ledger.OutcomeNoTasks, f.nt.reports[0].Outcome)
	assert.Equal(t, ledger.OutcomeFailed, f.nt.reports[1].Outcome)
	assert.Equal(t, []ledger.Outcome{ledger.OutcomeNoTasks, ledger.OutcomeFailed}, f.rec.outcomes)
}

func TestProcess_EmptyNotNotifiedByDefault(t *testing.T) {
	f := newFixture(false)
	f.ex.res = exdom.Result{RunID: "run-2"}
	_, err := f.svc.Process(context.Background(), exdom.Transcript{ID: "m2"}, false)
	require.NoError(t, err)
	assert.Empty(t, f.nt.reports)
}

func TestProcess_DryRunWritesNothing(t *testing.T) {
	f := newFixture(true)
	rep, err := f.svc.Process(context.Background(), exdom.Transcript{ID: "m1"}, true)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeDryRun, rep.Outcome)
	assert.Empty(t, rep.Applied)
	assert.Empty(t, f.st.calls)
	assert.Empty(t, f.tr.calls)
	assert.Empty(t, f.nt.reports)
}

func TestProcess_ApplyFailure(t *testing.T) {
	f := newFixture(false)
	f.st.fail = map[string]error{"status": perr.Newf(perr.ErrorCodeDB, "connection reset")}
	rep, err := f.svc.Process(context.Background(), exdom.Transcript{ID: "m1"}, false)
	require.Error(t, err)
	assert.Equal(t, ledger.OutcomeFailed, rep.Outcome)
	assert.Len(t, rep.Applied, 1)
	require.Len(t, f.rec.errs, 1)
	assert.Error(t, f.rec.errs[0])
}

func TestProcessBatch(t *testing.T) {
	f := newFixture(false)
	f.ex.batch = []exdom.BatchItem{
		{TranscriptID: "a", Result: result()},
		{TranscriptID: "b", Err: perr.Stage(2, "Task Creator", errors.New("boom"))},
		{TranscriptID: "c", Result: exdom.Result{RunID: "run-c", TranscriptID: "c"}},
	}
	trs := []exdom.Transcript{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	reps, err := f.svc.ProcessBatch(context.Background(), trs, false)
	require.NoError(t, err)
	require.Len(t, reps, 3)
	assert.Equal(t, ledger.OutcomeApplied, reps[0].Outcome)
	assert.Equal(t, ledger.OutcomeFailed, reps[1].Outcome)
	assert.Equal(t, ledger.OutcomeNoTasks, reps[2].Outcome)

	f.ex.err = perr.Newf(perr.ErrorCodeUnavailable, "snapshot")
	_, err = f.svc.ProcessBatch(context.Background(), trs, false)
	assert.Equal(t, perr.ErrorCodeUnavailable, perr.CodeOf(err))
}

func TestNew_PanicsWithoutRequiredPorts(t *testing.T) {
	assert.Panics(t, func() { New(domain.Ports{Store: &store{}}, Config{}) })
}
