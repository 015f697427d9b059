package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	exdom "tasksync/internal/services/extraction/domain"
	syncdom "tasksync/internal/services/sync/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand_Stdin(t *testing.T) {
	completion := "Doug's Tasks:\n1. Refactor the login validation (Coding) [TASK_ID: NONE] [ESTIMATED: 3 hours] [STATUS: To-do]\n"

	out, err := run(t, completion, "parse", "--format", "tags")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Doug"`)
	assert.Contains(t, out, "Refactor the login validation")
}

func TestParseCommand_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "completion.txt")
	require.NoError(t, os.WriteFile(p, []byte("nothing useful here"), 0o644))

	out, err := run(t, "", "parse", p)
	require.NoError(t, err)
	assert.Contains(t, out, `"participants"`)
}

func TestParseCommand_BadFormat(t *testing.T) {
	_, err := run(t, "", "parse", "--format", "xml")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tasksync "))
}

func TestWriteInstructions_TruncatesDetail(t *testing.T) {
	ins := []exdom.Instruction{
		{Kind: exdom.KindCreate, Create: &exdom.NewTaskItem{ExtractedTask: exdom.ExtractedTask{
			Assignee:    "Doug",
			Description: strings.Repeat("very long description ", 10),
		}}},
		{Kind: exdom.KindUpdateStatus, TicketID: "SP-12", From: "To-do", To: "Completed", Confidence: 0.9},
		{Kind: exdom.KindUpdateDescription, TicketID: "SP-7", Append: "  added retries  "},
	}
	var buf bytes.Buffer
	writeInstructions(&buf, ins, 60)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "KIND")
	assert.Contains(t, lines[1], "new")
	assert.True(t, strings.HasSuffix(lines[1], "…"))
	assert.Contains(t, lines[2], "To-do -> Completed (0.90)")
	assert.Contains(t, lines[3], "+ added retries")
	for _, l := range lines {
		assert.LessOrEqual(t, len([]rune(l)), 60)
	}
}

func TestWriteInstructions_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeInstructions(&buf, nil, 80)
	assert.Empty(t, buf.String())
}

func TestFailedOf(t *testing.T) {
	assert.NoError(t, failedOf([]syncdom.Report{{Outcome: syncdom.OutcomeApplied}, {Outcome: syncdom.OutcomeNoTasks}}))

	err := failedOf([]syncdom.Report{{Outcome: syncdom.OutcomeFailed}, {Outcome: syncdom.OutcomeApplied}})
	var rf *runFailedError
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "1 of 2 transcripts failed", rf.Error())
}

type fakeProcessor struct {
	report syncdom.Report
	err    error
	got    []exdom.Transcript
}

func (f *fakeProcessor) Process(_ context.Context, tr exdom.Transcript, _ bool) (syncdom.Report, error) {
	f.got = append(f.got, tr)
	r := f.report
	r.TranscriptID = tr.ID
	return r, f.err
}

func (f *fakeProcessor) ProcessBatch(context.Context, []exdom.Transcript, bool) ([]syncdom.Report, error) {
	return nil, errors.New("not used")
}

func writeTranscript(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "standup.txt")
	require.NoError(t, os.WriteFile(p, []byte("Doug: I finished SP-12\nAnna: I'll look at the crash\n"), 0o644))
	return p
}

func TestProcessFile(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		fp := &fakeProcessor{report: syncdom.Report{RunID: "r1", Outcome: syncdom.OutcomeApplied}}
		var seen []syncdom.Report
		h := processFile(fp, false, func(r syncdom.Report) { seen = append(seen, r) })

		require.NoError(t, h(context.Background(), writeTranscript(t)))
		require.Len(t, fp.got, 1)
		assert.Equal(t, "standup", fp.got[0].ID)
		assert.Len(t, fp.got[0].Entries, 2)
		require.Len(t, seen, 1)
	})

	t.Run("failed outcome is an error", func(t *testing.T) {
		fp := &fakeProcessor{report: syncdom.Report{RunID: "r2", Outcome: syncdom.OutcomeFailed, Error: "llm down"}}
		err := processFile(fp, false, nil)(context.Background(), writeTranscript(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm down")
	})

	t.Run("unreadable file", func(t *testing.T) {
		fp := &fakeProcessor{}
		err := processFile(fp, false, nil)(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
		require.Error(t, err)
		assert.Empty(t, fp.got)
	})
}
