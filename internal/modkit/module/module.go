// Package module defines the contract modkit modules satisfy and a port registry
package module

import (
	phttp "tasksync/internal/platform/net/http"
)

// Module mounts routes and exposes a port set for cross wiring.
// It lives apart from modkit so a module can export its own Ports type without an import cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
