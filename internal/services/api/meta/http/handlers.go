// Package http serves liveness, readiness and build info for the API
package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"tasksync/internal/core/version"
	"tasksync/internal/modkit/httpkit"
)

// Pinger is any backend that can report reachability
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies. PG backs the task store and is required
// for readiness; CH only backs the ledger
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	// Integrations names the optional collaborators this process runs with
	Integrations []string
	PingTimeout  time.Duration
}

// Check states
const (
	StateOK      = "ok"
	StateFail    = "fail"
	StateSkipped = "skipped"
	StateUnknown = "unknown"
)

type handlers struct {
	d   Deps
	now func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.PingTimeout <= 0 {
		d.PingTimeout = 2 * time.Second
	}
	h := &handlers{d: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"tasksync-api"`
	Started string `json:"started" example:"2026-10-18T09:00:00Z"`
	Now     string `json:"now"     example:"2026-10-18T09:05:00Z"`
}

// ReadyCheck is the result of pinging one backend
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is ok, degraded (task store not confirmed) or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-18T09:05:00Z"`
}

// ServiceResponse reports uptime and the enabled collaborators
type ServiceResponse struct {
	Name         string   `json:"name"         example:"tasksync-api"`
	Started      string   `json:"started"      example:"2026-10-18T09:00:00Z"`
	Uptime       int64    `json:"uptime"       example:"300"`
	Integrations []string `json:"integrations" example:"tracker,chat"`
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.d.ServiceName,
		Started: stamp(h.d.StartedAt),
		Now:     stamp(h.now()),
	}, nil
}

// @Summary Readiness with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.d.PingTimeout)
	defer cancel()

	pg := checkBackend(ctx, "pg", h.d.PG)
	ch := checkBackend(ctx, "ch", h.d.CH)
	return ReadyResponse{
		Status: overall(pg, ch),
		Checks: []ReadyCheck{pg, ch},
		Now:    stamp(h.now()),
	}, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.d.ServiceName), nil
}

// @Summary Service info, uptime and enabled integrations
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	in := slices.Clone(h.d.Integrations)
	slices.Sort(in)
	if in == nil {
		in = []string{}
	}
	return ServiceResponse{
		Name:         h.d.ServiceName,
		Started:      stamp(h.d.StartedAt),
		Uptime:       int64(h.now().Sub(h.d.StartedAt) / time.Second),
		Integrations: in,
	}, nil
}

func checkBackend(ctx context.Context, name string, backend any) ReadyCheck {
	if backend == nil {
		return ReadyCheck{Name: name, Status: StateSkipped}
	}
	p, ok := backend.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: StateUnknown}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: StateFail, Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: StateOK}
}

// overall fails on any failed check. A missing ledger or one without a ping is fine
func overall(pg, ch ReadyCheck) string {
	switch {
	case pg.Status == StateFail || ch.Status == StateFail:
		return StateFail
	case pg.Status != StateOK:
		return "degraded"
	}
	return StateOK
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
