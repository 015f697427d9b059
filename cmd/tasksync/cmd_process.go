package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tasksync/internal/adapters/inbox"
	exdom "tasksync/internal/services/extraction/domain"
	syncdom "tasksync/internal/services/sync/domain"

	"github.com/spf13/cobra"
)

type processOptions struct {
	dryRun bool
	batch  bool
	asJSON bool
}

func newProcessCommand() *cobra.Command {
	var o processOptions
	cmd := &cobra.Command{
		Use:   "process FILE...",
		Short: "Process transcript files once",
		Long: `Process one or more transcript files (.json, .vtt or .txt).

Each file is a separate run. With --batch the files share a single task
snapshot taken before the first run, so no run sees another run's writes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, o)
		},
	}

	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Extract and reconcile but apply nothing")
	cmd.Flags().BoolVar(&o.batch, "batch", false, "Process all files against one shared snapshot")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print reports as JSON")

	return cmd
}

func runProcess(cmd *cobra.Command, paths []string, o processOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trs := make([]exdom.Transcript, 0, len(paths))
	for _, p := range paths {
		tr, err := inbox.LoadFile(p)
		if err != nil {
			return err
		}
		trs = append(trs, tr)
	}

	a, closeApp, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	var reports []syncdom.Report
	if o.batch {
		reports, err = a.Processor.ProcessBatch(ctx, trs, o.dryRun)
		if err != nil {
			return err
		}
	} else {
		for _, tr := range trs {
			// a failed run still yields a report carrying the error
			r, _ := a.Processor.Process(ctx, tr, o.dryRun)
			reports = append(reports, r)
			if ctx.Err() != nil {
				break
			}
		}
	}

	out := cmd.OutOrStdout()
	if err := printReports(out, reports, o.asJSON, terminalWidth(os.Stdout, defaultWidth)); err != nil {
		return err
	}
	return failedOf(reports)
}

func printReports(w io.Writer, reports []syncdom.Report, asJSON bool, width int) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for i, r := range reports {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		writeReport(w, r, width)
	}
	return nil
}

// failedOf returns a runFailedError when any report failed
func failedOf(reports []syncdom.Report) error {
	n := 0
	for _, r := range reports {
		if r.Outcome == syncdom.OutcomeFailed {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &runFailedError{failed: n, total: len(reports)}
}
