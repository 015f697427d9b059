// Package http provides the run endpoints: process transcripts, parse completions
// and read a run's ledger
package http

import (
	stdhttp "net/http"

	"tasksync/internal/core/respparse"
	"tasksync/internal/core/transcript"
	"tasksync/internal/modkit/httpkit"
	perr "tasksync/internal/platform/errors"
	phttp "tasksync/internal/platform/net/http"
	exdom "tasksync/internal/services/extraction/domain"
	ledger "tasksync/internal/services/ledger/domain"
	syncdom "tasksync/internal/services/sync/domain"
)

// Deps are the handler dependencies. Ledger may be nil
type Deps struct {
	Processor syncdom.Processor
	Parser    respparse.Parser
	Format    respparse.Format
	Ledger    ledger.Reader
}

// RunInput is one transcript to process
type RunInput struct {
	ID      string             `json:"id"      validate:"required,max=200" example:"standup-2026-10-18"`
	Title   string             `json:"title"   validate:"max=500"          example:"Daily standup"`
	Entries []transcript.Entry `json:"entries" validate:"required,min=1,dive"`
	DryRun  bool               `json:"dry_run" example:"false"`
}

// BatchInput is a set of transcripts processed against one snapshot
type BatchInput struct {
	Transcripts []exdom.Transcript `json:"transcripts" validate:"required,min=1,max=50,dive"`
	DryRun      bool               `json:"dry_run"     example:"false"`
}

// ParseInput is a raw completion to parse
type ParseInput struct {
	Completion string `json:"completion" validate:"required,max=200000"`
	Format     string `json:"format"     validate:"omitempty,oneof=tags json" example:"tags"`
}

// EventsQuery selects a run's ledger rows
type EventsQuery struct {
	RunID string `query:"run_id" validate:"required,max=64"`
}

// BatchResponse wraps batch reports
type BatchResponse struct {
	Reports []syncdom.Report `json:"reports"`
	Failed  int              `json:"failed"`
}

type handlers struct{ deps Deps }

// Register mounts the routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.PostJSON[RunInput](r, "/", h.run)
	httpkit.PostJSON[BatchInput](r, "/batch", h.batch)
	httpkit.PostJSON[ParseInput](r, "/parse", h.parse)
	httpkit.GetJSON[EventsQuery](r, "/events", h.events)
}

// swagger:route POST /runs Runs runsCreate
// @Summary Process one transcript
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body RunInput true "Transcript"
// @Success 200 {object} syncdom.Report "run report"
// @Failure 502 {object} net.Wire "collaborator failure"
// @Router /runs [post]
func (h *handlers) run(r *stdhttp.Request, in RunInput) (any, error) {
	tr := exdom.Transcript{ID: in.ID, Title: in.Title, Entries: in.Entries}
	rep, err := h.deps.Processor.Process(r.Context(), tr, in.DryRun)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// swagger:route POST /runs/batch Runs runsBatch
// @Summary Process transcripts against one shared snapshot
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body BatchInput true "Transcripts"
// @Success 200 {object} BatchResponse "per transcript reports"
// @Router /runs/batch [post]
func (h *handlers) batch(r *stdhttp.Request, in BatchInput) (any, error) {
	reps, err := h.deps.Processor.ProcessBatch(r.Context(), in.Transcripts, in.DryRun)
	if err != nil {
		return nil, err
	}
	out := BatchResponse{Reports: reps}
	for _, rep := range reps {
		if rep.Outcome == ledger.OutcomeFailed {
			out.Failed++
		}
	}
	return out, nil
}

// swagger:route POST /runs/parse Runs runsParse
// @Summary Parse a raw LLM completion
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body ParseInput true "Completion"
// @Success 200 {object} respparse.Result "parsed tasks by participant"
// @Router /runs/parse [post]
func (h *handlers) parse(_ *stdhttp.Request, in ParseInput) (any, error) {
	f := h.deps.Format
	if in.Format != "" {
		f = respparse.Format(in.Format)
	}
	return h.deps.Parser.ParseFormat(in.Completion, f), nil
}

// swagger:route GET /runs/events Runs runsEvents
// @Summary Ledger rows of one run
// @Tags Runs
// @Produce json
// @Param run_id query string true "Run id"
// @Success 200 {object} phttp.Page[ledger.Event] "events"
// @Failure 503 {object} net.Wire "ledger disabled"
// @Router /runs/events [get]
func (h *handlers) events(r *stdhttp.Request, q EventsQuery) (any, error) {
	if h.deps.Ledger == nil {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "ledger is not configured")
	}
	evs, err := h.deps.Ledger.ByRun(r.Context(), q.RunID)
	if err != nil {
		return nil, err
	}
	if len(evs) == 0 {
		return nil, perr.NotFoundf("run %s has no ledger rows", q.RunID)
	}
	return phttp.List(evs, len(evs)), nil
}
