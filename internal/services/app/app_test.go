package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pgStub satisfies store.TxRunner; Build never queries during composition
type pgStub struct{ store.TxRunner }

func TestBuild_RequiresPostgres(t *testing.T) {
	_, err := Build(context.Background(), config.New(), &store.Store{}, zerolog.Nop())
	require.Error(t, err)
	assert.Equal(t, perr.ErrorCodeInvalidArgument, perr.CodeOf(err))
}

func TestBuild_RequiresLLM(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("PARTICIPANTS_FILE", "")

	_, err := Build(context.Background(), config.New(), &store.Store{PG: pgStub{}}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

func TestBuild_BadParticipantsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(p, []byte("participants: [{name: Doug}, {name: doug}]"), 0o644))
	t.Setenv("PARTICIPANTS_FILE", p)
	t.Setenv("LLM_API_KEY", "k")

	_, err := Build(context.Background(), config.New(), &store.Store{PG: pgStub{}}, zerolog.Nop())
	require.Error(t, err)
}

func TestBuild_ComposesWithoutOptionalCollaborators(t *testing.T) {
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("PARTICIPANTS_FILE", "")
	t.Setenv("TRACKER_ENABLED", "false")
	t.Setenv("CHAT_WEBHOOK_URL", "")
	t.Setenv("ARCHIVE_ENABLED", "false")
	t.Setenv("CORE_TASKS_MIGRATE", "false")

	a, err := Build(context.Background(), config.New(), &store.Store{PG: pgStub{}}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, a.Processor)
	assert.NotNil(t, a.Tasks)
	assert.Nil(t, a.Ledger)
	assert.Empty(t, a.Integrations)
	assert.Len(t, a.Modules, 4)
}
