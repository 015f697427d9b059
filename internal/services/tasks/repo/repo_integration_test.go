//go:build integration_pg
// +build integration_pg

package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tasksync/internal/core/status"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/store"
	"tasksync/internal/services/tasks/domain"
	"tasksync/internal/services/tasks/repo"
	"tasksync/internal/services/tasks/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "tasks",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/tasks?sslmode=disable", host, port.Port())
}

func TestTasksRepo_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{
		Enabled: true, URL: dsn, MaxConns: 4, ConnectRetries: 10, PingTimeout: 3 * time.Second,
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	svc := service.New(st.PG, repo.NewPG(), service.Config{})
	require.NoError(t, svc.Migrate(ctx))
	require.NoError(t, svc.Migrate(ctx), "schema is idempotent")

	a, err := svc.Create(ctx, domain.NewTask{Description: "Refactor login validation", Assignee: "Doug", Type: "Coding"})
	require.NoError(t, err)
	assert.Equal(t, "SP-1", a.TicketID)

	b, err := svc.Create(ctx, domain.NewTask{Description: "Database schema updates", TicketID: "sp 25"})
	require.NoError(t, err)
	assert.Equal(t, "SP-25", b.TicketID)

	_, err = svc.Create(ctx, domain.NewTask{Description: "dup", TicketID: "SP-25"})
	assert.Equal(t, perr.ErrorCodeDuplicateKey, perr.CodeOf(err))

	_, err = svc.UpdateStatus(ctx, "SP-25", status.Completed)
	require.NoError(t, err)

	active, err := svc.ActiveTasks(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "SP-1", active[0].TicketID)

	got, err := svc.AppendDescription(ctx, "SP-1", "Refactor login validation\n\nUpdate from Standup:\n- add rate limits")
	require.NoError(t, err)
	assert.Contains(t, got.Description, "rate limits")

	_, err = svc.AppendDescription(ctx, "SP-1", "rewritten")
	assert.Equal(t, perr.ErrorCodeConflict, perr.CodeOf(err))

	list, err := svc.List(ctx, domain.Filter{Assignee: "doug"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
