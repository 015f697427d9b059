// Package module implements the ledger module
package module

import (
	"context"
	"time"

	"tasksync/internal/modkit"
	phttp "tasksync/internal/platform/net/http"
	"tasksync/internal/services/ledger/domain"
	"tasksync/internal/services/ledger/repo"
	"tasksync/internal/services/ledger/service"
)

// Ports exposed by the ledger module. Both are nil when ClickHouse is not configured
type Ports struct {
	Recorder domain.Recorder
	Reader   domain.Reader
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the ledger module. Without ClickHouse the module is inert
func New(deps modkit.Deps) *Module {
	m := &Module{deps: deps}
	if deps.CH == nil {
		deps.Log.Info().Msg("ledger disabled: SERVICE_CLICKHOUSE_DBURL not set")
		return m
	}

	r := repo.NewCH(deps.CH)
	if deps.Cfg.Prefix("CORE_LEDGER_").MayBool("MIGRATE", true) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.Migrate(ctx); err != nil {
			panic(err)
		}
	}
	svc := service.New(r)
	m.ports = Ports{Recorder: svc, Reader: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "ledger" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ phttp.Router) {}
