// Package module implements the sync module
package module

import (
	"tasksync/internal/modkit"
	phttp "tasksync/internal/platform/net/http"
	"tasksync/internal/services/sync/domain"
	"tasksync/internal/services/sync/service"
)

// Ports exposed by the sync module
type Ports struct {
	Processor domain.Processor
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the sync module. It requires WithPorts(sync/domain.Ports)
// carrying at least an Extractor and a Store
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("sync")}, opts...)...)
	p, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("sync module: expected WithPorts(sync/domain.Ports)")
	}

	c := deps.Cfg.Prefix("CORE_SYNC_")
	svc := service.New(p, service.Config{
		NotifyEmpty:  c.MayBool("NOTIFY_EMPTY", true),
		NotifyDryRun: c.MayBool("NOTIFY_DRY_RUN", false),
	})
	deps.Log.Info().
		Bool("tracker", p.Tracker != nil).
		Bool("notifier", p.Notifier != nil).
		Bool("ledger", p.Ledger != nil).
		Bool("archive", p.Archiver != nil).
		Msg("sync module ready")

	return &Module{deps: deps, ports: Ports{Processor: svc}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "sync" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ phttp.Router) {}
