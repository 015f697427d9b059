// @title         tasksync API
// @version       0.1.0
// @description   Turns meeting transcripts into task tracker changes

package main

import (
	"context"
	"os/signal"
	"syscall"

	"tasksync/internal/modkit"
	"tasksync/internal/platform/config"
	"tasksync/internal/platform/logger"
	phttp "tasksync/internal/platform/net/http"
	"tasksync/internal/platform/store"

	"tasksync/internal/services/api"
	"tasksync/internal/services/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	// postgres is required, the clickhouse ledger is optional
	st, err := store.Open(ctx, store.ConfigFromEnv("api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	a, err := app.Build(ctx, root, st, *l)
	if err != nil {
		l.Panic().Err(err).Msg("app.Build failed")
	}

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Deps:           modkit.FromStore(*l, root, st),
			App:            a,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
