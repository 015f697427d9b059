package domain

import (
	"context"

	"tasksync/internal/core/status"
	exdom "tasksync/internal/services/extraction/domain"
)

// Store is the task storage port used by sync and the API
type Store interface {
	exdom.SnapshotSource

	Create(ctx context.Context, t NewTask) (Task, error)
	UpdateStatus(ctx context.Context, ticketID string, to status.Status) (Task, error)
	AppendDescription(ctx context.Context, ticketID, description string) (Task, error)
	Get(ctx context.Context, ticketID string) (Task, error)
	List(ctx context.Context, f Filter) ([]Task, error)
}
