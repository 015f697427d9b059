package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasksync/internal/core/status"
	perr "tasksync/internal/platform/errors"
	exdom "tasksync/internal/services/extraction/domain"
	"tasksync/internal/services/ledger/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	evs []domain.Event
	err error
}

func (m *memLedger) Append(_ context.Context, evs []domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.evs = append(m.evs, evs...)
	return nil
}

func (m *memLedger) ByRun(_ context.Context, runID string) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range m.evs {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, m.err
}

func result() exdom.Result {
	return exdom.Result{
		RunID:        "run-1",
		TranscriptID: "t1",
		Instructions: []exdom.Instruction{
			{Kind: exdom.KindCreate, Create: &exdom.NewTaskItem{
				ExtractedTask:      exdom.ExtractedTask{Description: "Write the guide"},
				CreationConfidence: 0.7,
			}},
			{Kind: exdom.KindUpdateStatus, TicketID: "SP-25", From: status.InProgress, To: status.Completed, Confidence: 0.9},
		},
	}
}

func TestEvents(t *testing.T) {
	at := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	evs := Events(result(), domain.OutcomeApplied, nil, at)
	require.Len(t, evs, 2)

	assert.Equal(t, "create", evs[0].Kind)
	assert.Equal(t, "TBD", evs[0].Assignee)
	assert.InDelta(t, 0.7, evs[0].Confidence, 1e-9)
	assert.Equal(t, uint32(1), evs[1].Seq)
	assert.Equal(t, "In-progress", evs[1].FromStatus)
	assert.Equal(t, "Completed", evs[1].ToStatus)
	assert.Equal(t, at, evs[1].CreatedAt)

	empty := Events(exdom.Result{RunID: "run-2"}, domain.OutcomeFailed, errors.New("tracker down"), at)
	require.Len(t, empty, 1)
	assert.Equal(t, "none", empty[0].Kind)
	assert.Equal(t, "tracker down", empty[0].Error)
}

func TestRecordAndRead(t *testing.T) {
	m := &memLedger{}
	s := New(m)
	require.NoError(t, s.Record(context.Background(), result(), domain.OutcomeApplied, nil))

	evs, err := s.ByRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, evs, 2)

	m.err = errors.New("ch unreachable")
	err = s.Record(context.Background(), result(), domain.OutcomeApplied, nil)
	assert.Equal(t, perr.ErrorCodeUnavailable, perr.CodeOf(err))
}
