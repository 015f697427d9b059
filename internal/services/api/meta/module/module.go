// Package module mounts the meta endpoints at the API root
package module

import (
	"time"

	"tasksync/internal/modkit"
	phttp "tasksync/internal/platform/net/http"
	metahttp "tasksync/internal/services/api/meta/http"
)

// Module implements modkit.Module
type Module struct {
	deps      modkit.Deps
	b         modkit.Built
	startedAt time.Time
	// integrations comes from WithPorts([]string), optional
	integrations []string
}

// New constructs the meta module. With no prefix its routes sit at the API root
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta")}, opts...)...)
	in, _ := b.Ports.([]string)
	return &Module{deps: deps, b: b, startedAt: time.Now(), integrations: in}
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	register := func(rr phttp.Router) {
		metahttp.Register(rr, metahttp.Deps{
			ServiceName:  "tasksync-api",
			StartedAt:    m.startedAt,
			PG:           m.deps.PG,
			CH:           m.deps.CH,
			Integrations: m.integrations,
			PingTimeout:  m.deps.Cfg.MayDuration("CORE_META_PING_TIMEOUT", 2*time.Second),
		})
	}
	if m.b.Prefix != "" {
		m.b.Mount(r, register)
		return
	}
	r.Group(func(g phttp.Router) {
		if len(m.b.Mw) > 0 {
			g.Use(m.b.Mw...)
		}
		register(g)
		m.b.Register(g)
	})
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return nil }
