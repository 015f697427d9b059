// Package module implements the tasks module
package module

import (
	"context"
	"time"

	"tasksync/internal/modkit"
	phttp "tasksync/internal/platform/net/http"
	"tasksync/internal/services/tasks/domain"
	"tasksync/internal/services/tasks/repo"
	"tasksync/internal/services/tasks/service"
)

// Ports exposed by the tasks module
type Ports struct {
	Store domain.Store
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the tasks module. It panics without a Postgres seam, and
// applies the schema unless CORE_TASKS_MIGRATE=false
func New(deps modkit.Deps) *Module {
	if deps.PG == nil {
		panic("tasks module: Postgres is not configured (SERVICE_PGSQL_DBURL)")
	}
	opts := FromConfig(deps.Cfg)
	svc := service.New(deps.PG, repo.NewPG(), service.Config{HardLimit: opts.HardLimit})

	if opts.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := svc.Migrate(ctx); err != nil {
			panic(err)
		}
		deps.Log.Info().Msg("tasks schema applied")
	}

	return &Module{deps: deps, ports: Ports{Store: svc}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "tasks" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ phttp.Router) {}
