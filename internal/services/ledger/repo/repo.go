// Package repo stores ledger events in ClickHouse
package repo

import (
	"context"

	"tasksync/internal/platform/store"
	"tasksync/internal/services/ledger/domain"
)

// Table is the ledger table
const Table = "instruction_events"

const ddl = `CREATE TABLE IF NOT EXISTS instruction_events
(
  run_id         String,
  transcript_id  String,
  seq            UInt32,
  kind           LowCardinality(String),
  ticket_id      String,
  from_status    LowCardinality(String),
  to_status      LowCardinality(String),
  assignee       String,
  summary        String,
  confidence     Float64,
  outcome        LowCardinality(String),
  error          String,
  created_at     DateTime64(3, 'UTC')
)
ENGINE = MergeTree
ORDER BY (created_at, run_id, seq)`

// CH is the ClickHouse ledger repository
type CH struct {
	ch store.Clickhouse
}

// NewCH returns a repository over ch
func NewCH(ch store.Clickhouse) *CH { return &CH{ch: ch} }

// Migrate creates the table
func (r *CH) Migrate(ctx context.Context) error { return r.ch.Exec(ctx, ddl) }

// Append inserts events in one batch
func (r *CH) Append(ctx context.Context, evs []domain.Event) error {
	rows := make([][]any, 0, len(evs))
	for _, e := range evs {
		rows = append(rows, []any{
			e.RunID, e.TranscriptID, e.Seq, e.Kind, e.TicketID, e.FromStatus, e.ToStatus,
			e.Assignee, e.Summary, e.Confidence, string(e.Outcome), e.Error, e.CreatedAt,
		})
	}
	return r.ch.Insert(ctx, Table, rows)
}

// ByRun returns a run's events in instruction order
func (r *CH) ByRun(ctx context.Context, runID string) ([]domain.Event, error) {
	rs, err := r.ch.Query(ctx, `
		SELECT run_id, transcript_id, seq, kind, ticket_id, from_status, to_status,
		       assignee, summary, confidence, outcome, error, created_at
		FROM instruction_events
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []domain.Event
	for rs.Next() {
		var e domain.Event
		var outcome string
		if err := rs.Scan(&e.RunID, &e.TranscriptID, &e.Seq, &e.Kind, &e.TicketID, &e.FromStatus,
			&e.ToStatus, &e.Assignee, &e.Summary, &e.Confidence, &outcome, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Outcome = domain.Outcome(outcome)
		out = append(out, e)
	}
	return out, rs.Err()
}
