// Package service provides the tasks service implementation
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
	"tasksync/internal/modkit/repokit"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	str "tasksync/internal/platform/strings"
	exdom "tasksync/internal/services/extraction/domain"
	dom "tasksync/internal/services/tasks/domain"
	"tasksync/internal/services/tasks/repo"

	"github.com/google/uuid"
)

// Config for the tasks service
type Config struct {
	// HardLimit caps List; <=0 -> 100
	HardLimit int
}

// Service implements domain.Store over a bound repository
type Service struct {
	DB    repokit.TxRunner
	Repo  repokit.Binder[repo.Storage]
	Cfg   Config
	now   func() time.Time
	newID func() string
}

var _ dom.Store = (*Service)(nil)

// New constructs a new tasks service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 100
	}
	return &Service{DB: db, Repo: b, Cfg: cfg, now: time.Now, newID: uuid.NewString}
}

// Migrate applies the schema
func (s *Service) Migrate(ctx context.Context) error {
	return perr.FromPostgres(s.Repo.Bind(s.DB).Migrate(ctx), "tasks: migrate")
}

// ActiveTasks implements extraction's SnapshotSource: every task not yet
// Completed, most recently touched first
func (s *Service) ActiveTasks(ctx context.Context) ([]exdom.ExistingTask, error) {
	rows, err := s.Repo.Bind(s.DB).Active(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "tasks: active")
	}
	out := make([]exdom.ExistingTask, 0, len(rows))
	for _, t := range rows {
		out = append(out, exdom.ExistingTask{
			TicketID:    t.TicketID,
			Description: t.Description,
			Status:      t.Status,
			Assignee:    t.Assignee,
			Type:        t.Type,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return out, nil
}

// Create stores a task. Without a ticket id the next SP-N is allocated in the
// same transaction
func (s *Service) Create(ctx context.Context, in dom.NewTask) (dom.Task, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return dom.Task{}, perr.Validationf("description is required")
	}
	id := ""
	if raw := strings.TrimSpace(in.TicketID); raw != "" && !strings.EqualFold(raw, ticketid.None) {
		n, ok := ticketid.Normalize(raw)
		if !ok {
			return dom.Task{}, perr.InvalidArgf("invalid ticket id %q", raw)
		}
		id = n
	}
	st := in.Status
	if st == "" {
		st = status.ToDo
	}
	if _, ok := status.Parse(string(st)); !ok {
		return dom.Task{}, perr.InvalidArgf("invalid status %q", st)
	}

	now := s.now().UTC()
	t := dom.Task{
		ID:               s.newID(),
		TicketID:         id,
		Description:      desc,
		Status:           st,
		Assignee:         str.FirstNonBlank(strings.TrimSpace(in.Assignee), assignee.TBD),
		Type:             str.FirstNonBlank(in.Type, "Non-Coding"),
		WorkType:         str.FirstNonBlank(in.WorkType, "Task"),
		IsFuturePlan:     in.IsFuturePlan,
		EstimatedHours:   in.EstimatedHours,
		TimeSpentHours:   in.TimeSpentHours,
		Priority:         in.Priority,
		StoryPoints:      in.StoryPoints,
		ProjectCode:      in.ProjectCode,
		SourceTranscript: in.SourceTranscript,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var out dom.Task
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Repo.Bind(q)
		switch {
		case t.TicketID == "":
			n, err := r.NextLegacyNumber(ctx)
			if err != nil {
				return err
			}
			t.TicketID = fmt.Sprintf("%s-%d", ticketid.LegacyKey, n)
		case ticketid.IsLegacy(t.TicketID):
			n, _ := strconv.ParseInt(strings.TrimPrefix(t.TicketID, ticketid.LegacyKey+"-"), 10, 64)
			if err := r.ReserveLegacyNumber(ctx, n); err != nil {
				return err
			}
		}
		var err error
		out, err = r.Insert(ctx, t)
		return err
	})
	if err != nil {
		return dom.Task{}, perr.FromPostgresf(err, "tasks: create %s", str.FirstNonBlank(t.TicketID, "new task"))
	}
	logger.C(ctx).Debug().Str("ticket_id", out.TicketID).Str("assignee", out.Assignee).Msg("task created")
	return out, nil
}

// UpdateStatus moves a task to another workflow state
func (s *Service) UpdateStatus(ctx context.Context, ticketID string, to status.Status) (dom.Task, error) {
	id, err := normalizeID(ticketID)
	if err != nil {
		return dom.Task{}, err
	}
	if _, ok := status.Parse(string(to)); !ok || to == "" {
		return dom.Task{}, perr.InvalidArgf("invalid status %q", to)
	}
	t, err := s.Repo.Bind(s.DB).SetStatus(ctx, id, to)
	if err != nil {
		return dom.Task{}, notFoundOr(err, id, "tasks: update status")
	}
	return t, nil
}

// AppendDescription stores an extended description. The stored text must be
// a prefix of the new one, so descriptions only ever grow
func (s *Service) AppendDescription(ctx context.Context, ticketID, description string) (dom.Task, error) {
	id, err := normalizeID(ticketID)
	if err != nil {
		return dom.Task{}, err
	}
	var out dom.Task
	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Repo.Bind(q)
		t, ok, err := r.ExtendDescription(ctx, id, description)
		if err != nil {
			return err
		}
		if ok {
			out = t
			return nil
		}
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return perr.Newf(perr.ErrorCodeConflict, "task %s changed since the snapshot; description is append only", id)
	})
	if err != nil {
		return dom.Task{}, notFoundOr(err, id, "tasks: append description")
	}
	return out, nil
}

// Get returns one task by ticket id
func (s *Service) Get(ctx context.Context, ticketID string) (dom.Task, error) {
	id, err := normalizeID(ticketID)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := s.Repo.Bind(s.DB).Get(ctx, id)
	if err != nil {
		return dom.Task{}, notFoundOr(err, id, "tasks: get")
	}
	return t, nil
}

// List returns stored tasks, newest first, capped at the hard limit
func (s *Service) List(ctx context.Context, f dom.Filter) ([]dom.Task, error) {
	if f.Limit <= 0 || f.Limit > s.Cfg.HardLimit {
		f.Limit = s.Cfg.HardLimit
	}
	if f.Status != "" {
		st, ok := status.Parse(f.Status)
		if !ok {
			return nil, perr.InvalidArgf("invalid status %q", f.Status)
		}
		f.Status = string(st)
	}
	rows, err := s.Repo.Bind(s.DB).List(ctx, f)
	if err != nil {
		return nil, perr.FromPostgres(err, "tasks: list")
	}
	return rows, nil
}

func normalizeID(raw string) (string, error) {
	id, ok := ticketid.Normalize(raw)
	if !ok {
		return "", perr.InvalidArgf("invalid ticket id %q", raw)
	}
	return id, nil
}

func notFoundOr(err error, id, msg string) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("task %s not found", id)
	}
	if perr.CodeOf(err) != perr.ErrorCodeUnknown {
		return err
	}
	return perr.FromPostgres(err, msg)
}
