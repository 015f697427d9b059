package main

import (
	"context"
	"os"
	"strings"

	"tasksync/internal/platform/config"
	"tasksync/internal/platform/logger"
	"tasksync/internal/platform/store"
	"tasksync/internal/services/app"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasksync",
		Short: "Turn meeting transcripts into task tracker changes",
		Long: `tasksync reads meeting transcripts, asks an LLM which tasks were
mentioned, reconciles them against the stored task set and applies the
resulting creates and updates to storage and the issue tracker.`,
		SilenceUsage: true,
	}

	logLevel := cmd.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		opts := logger.FromEnv()
		if *logLevel != "" {
			opts.Level = strings.ToLower(*logLevel)
		}
		// stdout carries command output
		opts.Writer = os.Stderr
		opts.Component = "cli"
		logger.Init(opts)
	}

	cmd.AddCommand(newProcessCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newParseCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

// openApp opens the store and composes the pipeline. The returned close func
// releases the store
func openApp(ctx context.Context) (*app.App, func(), error) {
	l := logger.Get()
	st, err := store.Open(ctx, store.ConfigFromEnv("cli"), store.WithLogger(*l))
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}
	a, err := app.Build(ctx, config.New(), st, *l)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return a, closeStore, nil
}
