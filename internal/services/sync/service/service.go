// Package service applies extraction results to the tracker and task storage
// and reports each run's outcome
package service

import (
	"context"
	"time"

	"tasksync/internal/core/status"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	exdom "tasksync/internal/services/extraction/domain"
	ledger "tasksync/internal/services/ledger/domain"
	"tasksync/internal/services/sync/domain"
	tasks "tasksync/internal/services/tasks/domain"
)

// Config tunes the Service
type Config struct {
	// NotifyEmpty posts a report for runs without instructions
	NotifyEmpty bool
	// NotifyDryRun posts a report for dry runs
	NotifyDryRun bool
}

// Service implements domain.Processor
type Service struct {
	Ports domain.Ports
	Cfg   Config
	now   func() time.Time
}

var _ domain.Processor = (*Service)(nil)

// New constructs a sync service. It panics without an extractor or a store
func New(p domain.Ports, cfg Config) *Service {
	if p.Extractor == nil || p.Store == nil {
		panic("sync: Extractor and Store are required")
	}
	return &Service{Ports: p, Cfg: cfg, now: time.Now}
}

// Apply executes instructions in order. Each instruction goes to the tracker
// first when it owns the ticket, then to storage. The first error stops the
// run and is returned with what was applied so far
func (s *Service) Apply(ctx context.Context, res exdom.Result) ([]domain.Applied, error) {
	out := make([]domain.Applied, 0, len(res.Instructions))
	for i, in := range res.Instructions {
		if err := ctx.Err(); err != nil {
			return out, perr.Wrap(err, perr.ErrorCodeCanceled, "sync: apply")
		}
		a, err := s.apply(ctx, res, in)
		if err != nil {
			return out, perr.Wrapf(err, perr.CodeOf(err), "sync: instruction %d (%s)", i, in.Kind)
		}
		logger.C(ctx).Debug().Str("kind", string(in.Kind)).Str("ticket_id", a.TicketID).Bool("tracker", a.Tracker).Msg("instruction applied")
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) apply(ctx context.Context, res exdom.Result, in exdom.Instruction) (domain.Applied, error) {
	a := domain.Applied{Kind: in.Kind, TicketID: in.TicketID, Summary: in.Summary()}
	tr := s.Ports.Tracker

	switch in.Kind {
	case exdom.KindCreate:
		if in.Create == nil {
			return a, perr.InvalidArgf("create instruction without payload")
		}
		var key string
		if tr != nil {
			k, err := tr.CreateIssue(ctx, *in.Create)
			if err != nil {
				return a, err
			}
			key, a.Tracker = k, true
		}
		t, err := s.Ports.Store.Create(ctx, newTask(*in.Create, key, res.TranscriptID))
		if err != nil {
			return a, err
		}
		a.TicketID = t.TicketID

	case exdom.KindUpdateStatus:
		if tr != nil && tr.Owns(in.TicketID) {
			if err := tr.Transition(ctx, in.TicketID, in.To); err != nil {
				return a, err
			}
			a.Tracker = true
		}
		if _, err := s.Ports.Store.UpdateStatus(ctx, in.TicketID, in.To); err != nil {
			return a, err
		}

	case exdom.KindUpdateDescription:
		if tr != nil && tr.Owns(in.TicketID) {
			if err := tr.UpdateDescription(ctx, in.TicketID, in.Description); err != nil {
				return a, err
			}
			a.Tracker = true
		}
		if _, err := s.Ports.Store.AppendDescription(ctx, in.TicketID, in.Description); err != nil {
			return a, err
		}

	default:
		return a, perr.InvalidArgf("unknown instruction kind %q", in.Kind)
	}
	return a, nil
}

// Process runs one transcript through extraction and applies the result
// unless dryRun. The returned error is the extraction or apply failure; the
// report carries the outcome either way
func (s *Service) Process(ctx context.Context, tr exdom.Transcript, dryRun bool) (domain.Report, error) {
	start := s.now()
	res, err := s.Ports.Extractor.Run(ctx, tr, exdom.RunContext{})
	return s.finish(ctx, tr, res, err, dryRun, start)
}

// ProcessBatch runs transcripts against one shared snapshot, then applies
// each result in input order. A failed transcript does not stop the others
func (s *Service) ProcessBatch(ctx context.Context, trs []exdom.Transcript, dryRun bool) ([]domain.Report, error) {
	start := s.now()
	items, err := s.Ports.Extractor.RunBatch(ctx, trs)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(items))
	for i, it := range items {
		tr := exdom.Transcript{ID: it.TranscriptID}
		if i < len(trs) {
			tr = trs[i]
		}
		rep, _ := s.finish(ctx, tr, it.Result, it.Err, dryRun, start)
		out = append(out, rep)
	}
	return out, nil
}

func (s *Service) finish(ctx context.Context, tr exdom.Transcript, res exdom.Result, runErr error, dryRun bool, start time.Time) (domain.Report, error) {
	if res.RunID != "" {
		ctx = logger.WithRun(ctx, res.RunID, tr.ID)
	}
	log := logger.C(ctx)
	rep := domain.Report{
		RunID:        res.RunID,
		TranscriptID: tr.ID,
		Title:        tr.Title,
		DryRun:       dryRun,
		Result:       res,
		Failures:     res.Failures(),
	}

	err := runErr
	switch {
	case err != nil:
		rep.Outcome = ledger.OutcomeFailed
	case dryRun:
		rep.Outcome = ledger.OutcomeDryRun
	case res.Empty():
		rep.Outcome = ledger.OutcomeNoTasks
	default:
		rep.Applied, err = s.Apply(ctx, res)
		rep.Outcome = ledger.OutcomeApplied
		if err != nil {
			rep.Outcome = ledger.OutcomeFailed
		}
	}
	if err != nil {
		rep.Error = err.Error()
		log.Error().Err(err).Str("outcome", string(rep.Outcome)).Msg("sync: run failed")
	}

	if s.Ports.Archiver != nil && runErr == nil {
		if loc, aerr := s.Ports.Archiver.Archive(ctx, tr, res); aerr != nil {
			log.Warn().Err(aerr).Msg("sync: archive failed")
		} else {
			rep.ArchivedAt = loc
		}
	}
	if s.Ports.Ledger != nil {
		if lerr := s.Ports.Ledger.Record(ctx, res, rep.Outcome, err); lerr != nil {
			log.Warn().Err(lerr).Msg("sync: ledger record failed")
		}
	}
	rep.Elapsed = s.now().Sub(start)

	if s.shouldNotify(rep) {
		if nerr := s.Ports.Notifier.Notify(ctx, rep); nerr != nil {
			log.Warn().Err(nerr).Msg("sync: notify failed")
		}
	}

	log.Info().
		Str("outcome", string(rep.Outcome)).
		Int("applied", len(rep.Applied)).
		Int("failures", len(rep.Failures)).
		Msg("sync: done")
	return rep, err
}

func (s *Service) shouldNotify(r domain.Report) bool {
	if s.Ports.Notifier == nil {
		return false
	}
	switch r.Outcome {
	case ledger.OutcomeNoTasks:
		return s.Cfg.NotifyEmpty
	case ledger.OutcomeDryRun:
		return s.Cfg.NotifyDryRun
	}
	return true
}

func newTask(t exdom.NewTaskItem, key, transcriptID string) tasks.NewTask {
	st := t.Status
	if st == "" {
		st = status.ToDo
	}
	return tasks.NewTask{
		TicketID:         key,
		Description:      t.Description,
		Status:           st,
		Assignee:         t.Assignee,
		Type:             string(t.Type),
		WorkType:         string(t.WorkType),
		IsFuturePlan:     t.IsFuturePlan,
		EstimatedHours:   t.EstimatedTime,
		TimeSpentHours:   t.TimeSpent,
		Priority:         t.Priority,
		StoryPoints:      t.StoryPoints,
		ProjectCode:      t.ProjectCode,
		SourceTranscript: transcriptID,
	}
}
