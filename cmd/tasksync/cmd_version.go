package main

import (
	"fmt"

	"tasksync/internal/core/version"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bi := version.Info("tasksync")
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n", bi.Service, bi.Version, bi.Commit, bi.Date)
			return err
		},
	}
}
