// Package service implements the three stage extraction pipeline
package service

import (
	"context"
	"time"

	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	dom "tasksync/internal/services/extraction/domain"
	"tasksync/internal/services/extraction/guardrails"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Stage names used in failures and logs
const (
	StageFinder  = "Task Finder"
	StageCreator = "Task Creator"
	StageUpdater = "Task Updater"
)

// Config tunes a Pipeline
type Config struct {
	// Workers bounds concurrent runs in a batch; <=0 -> 1
	Workers  int
	Timeouts guardrails.Timeouts
}

// Pipeline runs find, create and update over one transcript against a single
// snapshot, then reconciles. It implements domain.Extractor
type Pipeline struct {
	Finder  *Finder
	Creator *Creator
	Updater *Updater
	Source  dom.SnapshotSource
	Cfg     Config

	now   func() time.Time
	newID func() string
}

var _ dom.Extractor = (*Pipeline)(nil)

// NewPipeline wires the stages
func NewPipeline(f *Finder, c *Creator, u *Updater, src dom.SnapshotSource, cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Pipeline{
		Finder:  f,
		Creator: c,
		Updater: u,
		Source:  src,
		Cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Run processes one transcript. rc.Baseline, when set, is used instead of
// reading the snapshot source. Any stage failure fails the whole run
func (p *Pipeline) Run(ctx context.Context, tr dom.Transcript, rc dom.RunContext) (dom.Result, error) {
	runID := p.newID()
	ctx = logger.WithRun(ctx, runID, tr.ID)
	ctx, cancel := guardrails.WithRun(ctx, p.Cfg.Timeouts)
	defer cancel()

	log := logger.C(ctx)
	res := dom.Result{RunID: runID, TranscriptID: tr.ID, Title: tr.Title, StartedAt: p.now().UTC()}
	if rc.IsMultiTranscript {
		log.Info().Int("index", rc.TranscriptIndex).Int("total", rc.TotalTranscripts).Msg("run: start")
	} else {
		log.Info().Msg("run: start")
	}

	var snap dom.Snapshot
	if rc.Baseline != nil {
		snap = rc.Baseline.Clone()
	} else {
		var err error
		if snap, err = p.readSnapshot(ctx); err != nil {
			return res, err
		}
	}
	res.SnapshotSize = len(snap.Tasks)

	found, err := stage(1, StageFinder, func() (dom.FindResult, error) {
		sctx, c := guardrails.ForLLM(ctx, p.Cfg.Timeouts)
		defer c()
		return p.Finder.Find(sctx, tr, snap.Clone().Tasks)
	})
	if err != nil {
		return res, err
	}
	res.Found, res.Attendees = found.Tasks, found.Attendees

	created, err := stage(2, StageCreator, func() (dom.CreateResult, error) {
		return p.Creator.Create(ctx, found.Tasks, snap.Clone().Tasks, tr)
	})
	if err != nil {
		return res, err
	}
	res.NewTasks, res.Reclassified, res.Duplicates = created.NewTasks, created.Reclassified, created.Duplicates

	updateInput := append(append([]dom.ExtractedTask(nil), found.Tasks...), created.Reclassified...)
	updated, err := stage(3, StageUpdater, func() (dom.UpdateResult, error) {
		return p.Updater.Update(ctx, updateInput, snap.Clone().Tasks, tr)
	})
	if err != nil {
		return res, err
	}
	res.Updates, res.StatusChanges = updated.Updates, updated.StatusChanges

	res.Instructions = Reconcile(res.NewTasks, res.Updates, res.StatusChanges, snap.Tasks)
	res.FinishedAt = p.now().UTC()

	log.Info().
		Int("instructions", len(res.Instructions)).
		Int("failures", len(res.Failures())).
		Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
		Msg("run: done")
	return res, nil
}

// RunBatch reads the snapshot once and runs every transcript against its own
// copy with bounded concurrency. A failed transcript is reported in its item
// and does not stop the others. The error is only for the snapshot read
func (p *Pipeline) RunBatch(ctx context.Context, trs []dom.Transcript) ([]dom.BatchItem, error) {
	if len(trs) == 0 {
		return nil, nil
	}
	snap, err := p.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dom.BatchItem, len(trs))
	sem := semaphore.NewWeighted(int64(max(p.Cfg.Workers, 1)))
	g, gctx := errgroup.WithContext(ctx)

	for i, tr := range trs {
		items[i].TranscriptID = tr.ID
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				items[i].Err = perr.Wrap(err, perr.ErrorCodeCanceled, "waiting for a worker")
				return nil
			}
			defer sem.Release(1)

			base := snap.Clone()
			res, err := p.Run(gctx, tr, dom.RunContext{
				IsMultiTranscript: len(trs) > 1,
				TranscriptIndex:   i,
				TotalTranscripts:  len(trs),
				Baseline:          &base,
			})
			items[i].Result, items[i].Err = res, err
			if err != nil {
				logger.C(gctx).Error().Err(err).Str("transcript_id", tr.ID).Msg("batch: run failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

func (p *Pipeline) readSnapshot(ctx context.Context) (dom.Snapshot, error) {
	snap := dom.Snapshot{TakenAt: p.now().UTC()}
	if p.Source == nil {
		return snap, nil
	}
	sctx, cancel := guardrails.ForSnapshot(ctx, p.Cfg.Timeouts)
	defer cancel()
	tasks, err := p.Source.ActiveTasks(sctx)
	if err != nil {
		if perr.CodeOf(err) == perr.ErrorCodeUnknown {
			err = perr.Wrap(err, perr.ErrorCodeUnavailable, "read active tasks")
		}
		return dom.Snapshot{}, err
	}
	snap.Tasks = tasks
	logger.C(ctx).Debug().Int("tasks", len(tasks)).Msg("snapshot read")
	return snap, nil
}

// stage runs fn, converting a panic into an error, and labels any failure
func stage[T any](n int, name string, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.Stage(n, name, perr.PanicErrf("%v", r))
		}
	}()
	out, err = fn()
	if err != nil {
		return out, perr.Stage(n, name, err)
	}
	return out, nil
}
