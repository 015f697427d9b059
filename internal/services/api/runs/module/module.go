// Package module mounts the run endpoints under /runs
package module

import (
	"tasksync/internal/modkit"
	phttp "tasksync/internal/platform/net/http"
	runshttp "tasksync/internal/services/api/runs/http"
)

// Module implements modkit.Module
type Module struct {
	b    modkit.Built
	deps runshttp.Deps
}

// New requires WithPorts(runs/http.Deps) with a Processor
func New(_ modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("runs"),
		modkit.WithPrefix("/runs"),
	}, opts...)...)
	d, ok := b.Ports.(runshttp.Deps)
	if !ok || d.Processor == nil {
		panic("runs module: expected WithPorts(runs/http.Deps) with a Processor")
	}
	return &Module{b: b, deps: d}
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	m.b.Mount(r, func(rr phttp.Router) { runshttp.Register(rr, m.deps) })
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return nil }
