// Package module mounts the task endpoints under /tasks
package module

import (
	"tasksync/internal/modkit"
	phttp "tasksync/internal/platform/net/http"
	taskshttp "tasksync/internal/services/api/tasks/http"
	tasks "tasksync/internal/services/tasks/domain"
)

// Module implements modkit.Module
type Module struct {
	b     modkit.Built
	store tasks.Store
}

// New requires WithPorts(tasks/domain.Store)
func New(_ modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("tasks-api"),
		modkit.WithPrefix("/tasks"),
	}, opts...)...)
	s, ok := b.Ports.(tasks.Store)
	if !ok || s == nil {
		panic("tasks api module: expected WithPorts(tasks/domain.Store)")
	}
	return &Module{b: b, store: s}
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	m.b.Mount(r, func(rr phttp.Router) { taskshttp.Register(rr, m.store) })
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return nil }
