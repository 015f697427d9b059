// Package service turns run results into ledger events
package service

import (
	"context"
	"time"

	"tasksync/internal/core/assignee"
	perr "tasksync/internal/platform/errors"
	str "tasksync/internal/platform/strings"
	exdom "tasksync/internal/services/extraction/domain"
	"tasksync/internal/services/ledger/domain"
)

// Appender is the write side of the repository
type Appender interface {
	Append(ctx context.Context, evs []domain.Event) error
	ByRun(ctx context.Context, runID string) ([]domain.Event, error)
}

// Service implements domain.Recorder and domain.Reader
type Service struct {
	Repo Appender
	now  func() time.Time
}

var (
	_ domain.Recorder = (*Service)(nil)
	_ domain.Reader   = (*Service)(nil)
)

// New constructs a ledger service
func New(r Appender) *Service { return &Service{Repo: r, now: time.Now} }

// Events renders a run as ledger rows
func Events(res exdom.Result, outcome domain.Outcome, applyErr error, at time.Time) []domain.Event {
	base := domain.Event{
		RunID:        res.RunID,
		TranscriptID: res.TranscriptID,
		Outcome:      outcome,
		CreatedAt:    at.UTC(),
	}
	if applyErr != nil {
		base.Error = str.Truncate(applyErr.Error(), 1000)
	}
	if len(res.Instructions) == 0 {
		e := base
		e.Kind = "none"
		e.Summary = "no instructions"
		return []domain.Event{e}
	}

	out := make([]domain.Event, 0, len(res.Instructions))
	for i, in := range res.Instructions {
		e := base
		e.Seq = uint32(i)
		e.Kind = string(in.Kind)
		e.TicketID = in.TicketID
		e.Summary = str.Truncate(in.Summary(), 500)
		e.Confidence = in.Confidence
		switch in.Kind {
		case exdom.KindCreate:
			if in.Create != nil {
				e.Assignee = in.Create.Assignee
				e.Confidence = in.Create.CreationConfidence
			}
			e.Assignee = str.FirstNonBlank(e.Assignee, assignee.TBD)
		case exdom.KindUpdateStatus:
			e.FromStatus, e.ToStatus = string(in.From), string(in.To)
		}
		out = append(out, e)
	}
	return out
}

// Record appends a run
func (s *Service) Record(ctx context.Context, res exdom.Result, outcome domain.Outcome, applyErr error) error {
	if err := s.Repo.Append(ctx, Events(res, outcome, applyErr, s.now())); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "ledger: append")
	}
	return nil
}

// ByRun returns the events of one run
func (s *Service) ByRun(ctx context.Context, runID string) ([]domain.Event, error) {
	evs, err := s.Repo.ByRun(ctx, runID)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "ledger: read")
	}
	return evs, nil
}
