package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/winback/message-service/internal/types"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(60*time.Second),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(1).
					WithStartupTimeout(60*time.Second),
			),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := Connect(ctx, connStr, 4)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func sampleResult(started time.Time) *types.RunResult {
	return &types.RunResult{
		RunID:         uuid.NewString(),
		OperationName: "import-csv",
		Environment:   types.EnvironmentSandbox,
		Total:         3,
		Succeeded:     2,
		Failed:        1,
		Outcomes: []types.Outcome{
			{RowNumber: 1, MessageID: "m1", Status: types.OutcomeSucceeded},
			{RowNumber: 2, MessageID: "m2", Status: types.OutcomeSucceeded},
			{RowNumber: 3, MessageID: "m3", Status: types.OutcomeFailed, Reason: "header: too long"},
		},
		FailedRowsPath: "messages_failed.csv",
		StartedAt:      started,
		CompletedAt:    started.Add(5 * time.Second),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	result := sampleResult(time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, store.SaveRun(ctx, result))

	record, err := store.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, result.RunID, record.ID)
	assert.Equal(t, "import-csv", record.Operation)
	assert.Equal(t, "SANDBOX", record.Environment)
	assert.Equal(t, 3, record.Total)
	assert.Equal(t, 1, record.Failed)
	assert.Equal(t, "messages_failed.csv", record.FailedRowsPath)
	assert.Contains(t, string(record.Outcomes), "header: too long")
}

func TestGetRunUnknownID(t *testing.T) {
	store := setupStore(t)

	record, err := store.GetRun(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	older := sampleResult(time.Now().UTC().Add(-time.Hour))
	newer := sampleResult(time.Now().UTC())
	require.NoError(t, store.SaveRun(ctx, older))
	require.NoError(t, store.SaveRun(ctx, newer))

	records, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.RunID, records[0].ID)
	assert.Equal(t, older.RunID, records[1].ID)
}
