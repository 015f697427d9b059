package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tasksync/internal/core/respparse"
	perr "tasksync/internal/platform/errors"
	pnet "tasksync/internal/platform/net"
	phttp "tasksync/internal/platform/net/http"
	runshttp "tasksync/internal/services/api/runs/http"
	exdom "tasksync/internal/services/extraction/domain"
	ledger "tasksync/internal/services/ledger/domain"
	syncdom "tasksync/internal/services/sync/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	got     []exdom.Transcript
	dryRun  bool
	reports []syncdom.Report
	err     error
}

func (f *fakeProcessor) Process(_ context.Context, tr exdom.Transcript, dryRun bool) (syncdom.Report, error) {
	f.got = append(f.got, tr)
	f.dryRun = dryRun
	if f.err != nil {
		return syncdom.Report{TranscriptID: tr.ID, Outcome: syncdom.OutcomeFailed}, f.err
	}
	return syncdom.Report{RunID: "run-1", TranscriptID: tr.ID, Outcome: syncdom.OutcomeApplied}, nil
}

func (f *fakeProcessor) ProcessBatch(_ context.Context, trs []exdom.Transcript, dryRun bool) ([]syncdom.Report, error) {
	f.got = append(f.got, trs...)
	f.dryRun = dryRun
	return f.reports, f.err
}

type fakeLedger map[string][]ledger.Event

func (l fakeLedger) ByRun(_ context.Context, runID string) ([]ledger.Event, error) {
	return l[runID], nil
}

func newServer(t *testing.T, d runshttp.Deps) *httptest.Server {
	t.Helper()
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	r.Route("/runs", func(rr phttp.Router) { runshttp.Register(rr, d) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, pnet.Wire) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var w pnet.Wire
	require.NoError(t, json.NewDecoder(res.Body).Decode(&w))
	return res.StatusCode, w
}

func dataAs[T any](t *testing.T, w pnet.Wire) T {
	t.Helper()
	b, err := json.Marshal(w.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestRun(t *testing.T) {
	fp := &fakeProcessor{}
	srv := newServer(t, runshttp.Deps{Processor: fp})

	code, w := do(t, srv, http.MethodPost, "/runs/", `{
		"id": "standup-1",
		"title": "Standup",
		"entries": [{"speaker": "Doug", "text": "I finished SP-12"}],
		"dry_run": true
	}`)
	require.Equal(t, http.StatusOK, code)
	rep := dataAs[syncdom.Report](t, w)
	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, syncdom.OutcomeApplied, rep.Outcome)

	require.Len(t, fp.got, 1)
	assert.Equal(t, "standup-1", fp.got[0].ID)
	assert.Equal(t, "Doug", fp.got[0].Entries[0].Speaker)
	assert.True(t, fp.dryRun)
}

func TestRun_Validation(t *testing.T) {
	fp := &fakeProcessor{}
	srv := newServer(t, runshttp.Deps{Processor: fp})

	code, w := do(t, srv, http.MethodPost, "/runs/", `{"id": "x", "entries": []}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, w.Error)
	assert.Empty(t, fp.got)
}

func TestRun_ProcessorError(t *testing.T) {
	fp := &fakeProcessor{err: perr.Upstreamf("tracker: 500")}
	srv := newServer(t, runshttp.Deps{Processor: fp})

	code, w := do(t, srv, http.MethodPost, "/runs/", `{"id": "x", "entries": [{"text": "hello"}]}`)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, w.Error, "tracker")
}

func TestBatch_CountsFailures(t *testing.T) {
	fp := &fakeProcessor{reports: []syncdom.Report{
		{TranscriptID: "a", Outcome: syncdom.OutcomeApplied},
		{TranscriptID: "b", Outcome: syncdom.OutcomeFailed},
		{TranscriptID: "c", Outcome: syncdom.OutcomeNoTasks},
	}}
	srv := newServer(t, runshttp.Deps{Processor: fp})

	code, w := do(t, srv, http.MethodPost, "/runs/batch", `{"transcripts": [
		{"id": "a", "entries": [{"text": "one"}]},
		{"id": "b", "entries": [{"text": "two"}]},
		{"id": "c", "entries": [{"text": "three"}]}
	]}`)
	require.Equal(t, http.StatusOK, code)
	out := dataAs[runshttp.BatchResponse](t, w)
	assert.Len(t, out.Reports, 3)
	assert.Equal(t, 1, out.Failed)
	assert.Len(t, fp.got, 3)
	assert.False(t, fp.dryRun)
}

func TestParse(t *testing.T) {
	srv := newServer(t, runshttp.Deps{
		Processor: &fakeProcessor{},
		Parser:    respparse.Parser{Log: zerolog.Nop()},
		Format:    respparse.FormatTags,
	})

	body, err := json.Marshal(runshttp.ParseInput{
		Completion: "Doug's Tasks:\n1. Refactor the login validation (Coding) [TASK_ID: NONE] [ESTIMATED: 3 hours] [STATUS: To-do]",
	})
	require.NoError(t, err)
	code, w := do(t, srv, http.MethodPost, "/runs/parse", string(body))
	require.Equal(t, http.StatusOK, code)

	res := dataAs[respparse.Result](t, w)
	p, ok := res.Get("Doug")
	require.True(t, ok)
	require.Len(t, p.Coding, 1)
	assert.Equal(t, 3.0, p.Coding[0].Estimated)
}

func TestParse_RejectsUnknownFormat(t *testing.T) {
	srv := newServer(t, runshttp.Deps{Processor: &fakeProcessor{}})
	code, _ := do(t, srv, http.MethodPost, "/runs/parse", `{"completion": "x", "format": "xml"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEvents(t *testing.T) {
	led := fakeLedger{"run-1": {
		{RunID: "run-1", Seq: 1, Kind: "create", Summary: "create for Doug"},
		{RunID: "run-1", Seq: 2, Kind: "update_status", TicketID: "SP-12"},
	}}

	t.Run("found", func(t *testing.T) {
		srv := newServer(t, runshttp.Deps{Processor: &fakeProcessor{}, Ledger: led})
		code, w := do(t, srv, http.MethodGet, "/runs/events?run_id=run-1", "")
		require.Equal(t, http.StatusOK, code)
		page := dataAs[phttp.Page[ledger.Event]](t, w)
		assert.Equal(t, 2, page.Total)
		assert.Equal(t, "SP-12", page.Items[1].TicketID)
	})

	t.Run("unknown run", func(t *testing.T) {
		srv := newServer(t, runshttp.Deps{Processor: &fakeProcessor{}, Ledger: led})
		code, _ := do(t, srv, http.MethodGet, "/runs/events?run_id=nope", "")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("missing run id", func(t *testing.T) {
		srv := newServer(t, runshttp.Deps{Processor: &fakeProcessor{}, Ledger: led})
		code, _ := do(t, srv, http.MethodGet, "/runs/events", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("ledger disabled", func(t *testing.T) {
		srv := newServer(t, runshttp.Deps{Processor: &fakeProcessor{}})
		code, _ := do(t, srv, http.MethodGet, "/runs/events?run_id=run-1", "")
		assert.Equal(t, http.StatusServiceUnavailable, code)
	})
}
