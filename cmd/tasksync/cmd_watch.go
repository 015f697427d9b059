package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasksync/internal/adapters/inbox"
	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"
	syncdom "tasksync/internal/services/sync/domain"

	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	var (
		dir    string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch an inbox directory and process transcripts as they land",
		Long: `Watch a directory (INBOX_DIR, default ./inbox) for transcript files.

Files already present are processed first, oldest first. Each file is moved
to processed/ after a successful run or to failed/ with an .error.txt note.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			o := inbox.FromConfig(config.New())
			if dir != "" {
				o.Dir = dir
			}

			a, closeApp, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp()

			out := cmd.OutOrStdout()
			width := terminalWidth(os.Stdout, defaultWidth)
			in, err := inbox.New(o, processFile(a.Processor, dryRun, func(r syncdom.Report) {
				writeReport(out, r, width)
			}))
			if err != nil {
				return err
			}
			logger.Named("watch").Info().Str("dir", o.Dir).Bool("dry_run", dryRun).Msg("watching inbox")
			return in.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Inbox directory (overrides INBOX_DIR)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract and reconcile but apply nothing")

	return cmd
}

// processFile adapts the processor to an inbox handler. A failed run returns
// an error so the file is filed under failed/
func processFile(p syncdom.Processor, dryRun bool, report func(syncdom.Report)) inbox.Handler {
	return func(ctx context.Context, path string) error {
		tr, err := inbox.LoadFile(path)
		if err != nil {
			return err
		}
		r, err := p.Process(ctx, tr, dryRun)
		if report != nil {
			report(r)
		}
		if err != nil {
			return err
		}
		if r.Outcome == syncdom.OutcomeFailed {
			return perr.Newf(perr.ErrorCodeStage, "run %s failed: %s", r.RunID, r.Error)
		}
		return nil
	}
}
