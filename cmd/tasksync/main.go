package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess   = 0
	ExitRunFailed = 1 // at least one transcript ended with outcome failed
	ExitError     = 2 // configuration or runtime error
)

// runFailedError reports that processing finished but some run failed
type runFailedError struct {
	failed int
	total  int
}

func (e *runFailedError) Error() string {
	return fmt.Sprintf("%d of %d transcripts failed", e.failed, e.total)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var rf *runFailedError
		if errors.As(err, &rf) {
			os.Exit(ExitRunFailed)
		}
		os.Exit(ExitError)
	}
}
