package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	exdom "tasksync/internal/services/extraction/domain"
	syncdom "tasksync/internal/services/sync/domain"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultWidth  = 100
	minDetailCols = 20
)

// terminalWidth returns f's column count when it is a terminal, def otherwise
func terminalWidth(f *os.File, def int) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return def
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return def
	}
	return w
}

// writeReport prints one run: a header line, the instruction table and any
// reference failures
func writeReport(w io.Writer, r syncdom.Report, width int) {
	title := r.TranscriptID
	if r.Title != "" && r.Title != r.TranscriptID {
		title += " (" + r.Title + ")"
	}
	fmt.Fprintf(w, "%s  %s  run=%s  %s\n", title, r.Outcome, r.RunID, r.Elapsed.Round(time.Millisecond)) //nolint:errcheck
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error) //nolint:errcheck
	}
	if r.ArchivedAt != "" {
		fmt.Fprintf(w, "  archived: %s\n", r.ArchivedAt) //nolint:errcheck
	}
	writeInstructions(w, r.Result.Instructions, width)
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  not applied: %s\n", f) //nolint:errcheck
	}
}

// writeInstructions renders instructions as an aligned three column table,
// truncating the detail column to fit width
func writeInstructions(w io.Writer, ins []exdom.Instruction, width int) {
	if len(ins) == 0 {
		return
	}
	rows := make([][3]string, 0, len(ins)+1)
	rows = append(rows, [3]string{"KIND", "TICKET", "DETAIL"})
	for _, in := range ins {
		rows = append(rows, [3]string{string(in.Kind), ticketOf(in), detailOf(in)})
	}

	kindW, ticketW := 0, 0
	for _, r := range rows {
		kindW = max(kindW, runewidth.StringWidth(r[0]))
		ticketW = max(ticketW, runewidth.StringWidth(r[1]))
	}
	detailW := max(width-kindW-ticketW-6, minDetailCols)

	for _, r := range rows {
		line := "  " + runewidth.FillRight(r[0], kindW) + "  " +
			runewidth.FillRight(r[1], ticketW) + "  " +
			runewidth.Truncate(r[2], detailW, "…")
		fmt.Fprintln(w, strings.TrimRight(line, " ")) //nolint:errcheck
	}
}

func ticketOf(in exdom.Instruction) string {
	if in.Kind == exdom.KindCreate {
		return "new"
	}
	return in.TicketID
}

func detailOf(in exdom.Instruction) string {
	switch in.Kind {
	case exdom.KindCreate:
		if in.Create == nil {
			return ""
		}
		d := in.Create.Assignee + ": " + in.Create.Description
		if in.Create.IsFuturePlan {
			d += " [future]"
		}
		return d
	case exdom.KindUpdateStatus:
		return fmt.Sprintf("%s -> %s (%.2f)", in.From, in.To, in.Confidence)
	case exdom.KindUpdateDescription:
		return "+ " + strings.TrimSpace(in.Append)
	}
	return in.Summary()
}
