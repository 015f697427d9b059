package main

import (
	"encoding/json"
	"io"
	"os"

	"tasksync/internal/core/respparse"
	"tasksync/internal/platform/logger"

	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Parse a raw LLM completion and print the tasks it names",
		Long: `Parse a saved LLM completion (tag lines or JSON) and print the
participants and tasks as JSON. Reads stdin when FILE is omitted or "-".
Needs no database or LLM.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := respparse.ParseFormat(format)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			res := respparse.Parser{Log: *logger.Named("respparse")}.ParseFormat(raw, f)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Completion format: auto, tags or json")

	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	return string(b), err
}
