// Package repo provides the tasks repository implementation.
package repo

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"tasksync/internal/core/status"
	"tasksync/internal/modkit/repokit"
	"tasksync/internal/platform/store"
	"tasksync/internal/services/tasks/domain"
)

//go:embed schema.sql
var schemaSQL string

// Schema is the idempotent DDL for the tasks tables
func Schema() string { return schemaSQL }

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the tasks repository
type Storage interface {
	Migrate(ctx context.Context) error
	NextLegacyNumber(ctx context.Context) (int64, error)
	// ReserveLegacyNumber moves the sequence past an SP number stored verbatim
	ReserveLegacyNumber(ctx context.Context, n int64) error
	Insert(ctx context.Context, t domain.Task) (domain.Task, error)
	Get(ctx context.Context, ticketID string) (domain.Task, error)
	Active(ctx context.Context) ([]domain.Task, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	SetStatus(ctx context.Context, ticketID string, to status.Status) (domain.Task, error)
	// ExtendDescription replaces the description only when the new text starts
	// with the stored one; ok is false when it does not
	ExtendDescription(ctx context.Context, ticketID, description string) (t domain.Task, ok bool, err error)
}

const columns = `id::text, ticket_id, description, status, assignee, task_type, work_type,
	is_future_plan, estimated_hours, time_spent_hours, priority, story_points, project_code,
	source_transcript, created_at, updated_at`

func scanTask(r store.Row) (domain.Task, error) {
	var t domain.Task
	var st string
	err := r.Scan(&t.ID, &t.TicketID, &t.Description, &st, &t.Assignee, &t.Type, &t.WorkType,
		&t.IsFuturePlan, &t.EstimatedHours, &t.TimeSpentHours, &t.Priority, &t.StoryPoints, &t.ProjectCode,
		&t.SourceTranscript, &t.CreatedAt, &t.UpdatedAt)
	t.Status = status.Status(st)
	return t, err
}

// Migrate implements Storage
func (s *pg) Migrate(ctx context.Context) error {
	_, err := s.q.Exec(ctx, schemaSQL)
	return err
}

// NextLegacyNumber implements Storage
func (s *pg) NextLegacyNumber(ctx context.Context) (int64, error) {
	return store.Scalar[int64](ctx, s.q, `SELECT nextval('legacy_ticket_seq')`)
}

// ReserveLegacyNumber implements Storage
func (s *pg) ReserveLegacyNumber(ctx context.Context, n int64) error {
	_, err := s.q.Exec(ctx, `
		SELECT setval('legacy_ticket_seq', GREATEST($1::bigint, last_value), true)
		FROM legacy_ticket_seq`, n)
	return err
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, t domain.Task) (domain.Task, error) {
	return store.One(ctx, s.q, scanTask, `
		INSERT INTO tasks
			(id, ticket_id, description, status, assignee, task_type, work_type, is_future_plan,
			estimated_hours, time_spent_hours, priority, story_points, project_code, source_transcript,
			created_at, updated_at)
		VALUES ($1::uuid,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$15)
		RETURNING `+columns,
		t.ID, t.TicketID, t.Description, string(t.Status), t.Assignee, t.Type, t.WorkType, t.IsFuturePlan,
		t.EstimatedHours, t.TimeSpentHours, t.Priority, t.StoryPoints, t.ProjectCode, t.SourceTranscript,
		t.CreatedAt,
	)
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, ticketID string) (domain.Task, error) {
	return store.One(ctx, s.q, scanTask, `SELECT `+columns+` FROM tasks WHERE ticket_id = $1`, ticketID)
}

// Active implements Storage
func (s *pg) Active(ctx context.Context) ([]domain.Task, error) {
	return store.Many(ctx, s.q, scanTask, `
		SELECT `+columns+`
		FROM tasks
		WHERE status <> 'Completed'
		ORDER BY updated_at DESC, ticket_id`)
}

// List implements Storage
func (s *pg) List(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT ` + columns + ` FROM tasks WHERE true`)
	if f.Status != "" {
		sb.WriteString(" AND status = " + arg(f.Status))
	}
	if f.Assignee != "" {
		sb.WriteString(" AND lower(assignee) = lower(" + arg(f.Assignee) + ")")
	}
	sb.WriteString(" ORDER BY updated_at DESC, ticket_id LIMIT " + arg(f.Limit))
	return store.Many(ctx, s.q, scanTask, sb.String(), args...)
}

// SetStatus implements Storage
func (s *pg) SetStatus(ctx context.Context, ticketID string, to status.Status) (domain.Task, error) {
	return store.One(ctx, s.q, scanTask, `
		UPDATE tasks SET status = $2, updated_at = now()
		WHERE ticket_id = $1
		RETURNING `+columns, ticketID, string(to))
}

// ExtendDescription implements Storage
func (s *pg) ExtendDescription(ctx context.Context, ticketID, description string) (domain.Task, bool, error) {
	rows, err := store.Many(ctx, s.q, scanTask, `
		UPDATE tasks SET description = $2, updated_at = now()
		WHERE ticket_id = $1 AND starts_with($2, description)
		RETURNING `+columns, ticketID, description)
	if err != nil || len(rows) == 0 {
		return domain.Task{}, false, err
	}
	return rows[0], true, nil
}
