// Package http provides read endpoints over stored tasks
package http

import (
	stdhttp "net/http"

	"tasksync/internal/modkit/httpkit"
	phttp "tasksync/internal/platform/net/http"
	tasks "tasksync/internal/services/tasks/domain"
)

// LookupQuery selects one task
type LookupQuery struct {
	TicketID string `query:"ticket_id" validate:"required,max=64"`
}

type handlers struct{ store tasks.Store }

// Register mounts the routes
func Register(r httpkit.Router, s tasks.Store) {
	h := &handlers{store: s}
	httpkit.GetJSON[tasks.Filter](r, "/", h.list)
	httpkit.GetJSON[LookupQuery](r, "/lookup", h.lookup)
}

// swagger:route GET /tasks Tasks tasksList
// @Summary List stored tasks, most recently updated first
// @Tags Tasks
// @Produce json
// @Param status query string false "To-do, In-progress or Completed"
// @Param assignee query string false "Assignee"
// @Param limit query int false "Max rows (1..500)"
// @Success 200 {object} phttp.Page[tasks.Task] "tasks"
// @Router /tasks [get]
func (h *handlers) list(r *stdhttp.Request, f tasks.Filter) (any, error) {
	ts, err := h.store.List(r.Context(), f)
	if err != nil {
		return nil, err
	}
	return phttp.List(ts, len(ts)), nil
}

// swagger:route GET /tasks/lookup Tasks tasksLookup
// @Summary One task by ticket id; legacy ids match in any spelling ("sp 25")
// @Tags Tasks
// @Produce json
// @Param ticket_id query string true "Ticket id"
// @Success 200 {object} tasks.Task "task"
// @Failure 404 {object} net.Wire "not found"
// @Router /tasks/lookup [get]
func (h *handlers) lookup(r *stdhttp.Request, q LookupQuery) (any, error) {
	return h.store.Get(r.Context(), q.TicketID)
}
