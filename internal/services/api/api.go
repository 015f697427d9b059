// Package api mounts the HTTP surface over a composed pipeline
package api

import (
	"tasksync/internal/core/version"
	"tasksync/internal/modkit"
	"tasksync/internal/modkit/httpkit"
	"tasksync/internal/modkit/module"
	"tasksync/internal/modkit/swaggerkit"
	"tasksync/internal/platform/config"
	phttp "tasksync/internal/platform/net/http"
	"tasksync/internal/services/app"

	metamod "tasksync/internal/services/api/meta/module"
	runshttp "tasksync/internal/services/api/runs/http"
	runsmod "tasksync/internal/services/api/runs/module"
	tasksapimod "tasksync/internal/services/api/tasks/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Deps           modkit.Deps
	App            *app.App
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API onto r
func Mount(r phttp.Router, opt Options) {
	a := opt.App
	mods := []module.Module{
		metamod.New(opt.Deps, modkit.WithPorts(a.Integrations)),
		runsmod.New(opt.Deps, modkit.WithPorts(runshttp.Deps{
			Processor: a.Processor,
			Parser:    a.Parser,
			Format:    a.Format,
			Ledger:    a.Ledger,
		})),
		tasksapimod.New(opt.Deps, modkit.WithPorts(a.Tasks)),
	}
	// domain modules mount nothing today but stay in the loop so their routes
	// appear once they grow any
	mods = append(mods, a.Modules...)

	swaggerkit.Register(describe(a))
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Config), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}

// describe stamps the build version into the served doc and hides routes
// whose backing collaborator is disabled
func describe(a *app.App) swaggerkit.SpecMutator {
	return func(spec map[string]any) {
		if info, ok := spec["info"].(map[string]any); ok {
			info["version"] = version.Info("tasksync-api").Version
		}
		if a.Ledger == nil {
			if paths, ok := spec["paths"].(map[string]any); ok {
				delete(paths, "/runs/events")
			}
		}
	}
}
