package reconcile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winback/message-service/internal/appstore"
	"github.com/winback/message-service/internal/mapping"
	"github.com/winback/message-service/internal/tablesource"
	"github.com/winback/message-service/internal/types"
)

func messageTable(records ...tablesource.Record) *tablesource.Table {
	return &tablesource.Table{
		Name:    "messages.csv",
		Columns: []string{"message_id", "header", "body", "image_id"},
		Records: records,
	}
}

func extractTestRows(t *testing.T, table *tablesource.Table, env types.Environment) []types.ImportRow {
	t.Helper()
	m := mapping.Resolve(table.Columns, nil)
	return ExtractRows(table, m, env)
}

func TestFetchSnapshot(t *testing.T) {
	client := newFakeClient()
	client.messages["m1"] = appstore.UploadMessageRequest{}
	client.images["img1"] = appstore.ImageStateApproved
	client.images["img2"] = appstore.ImageStatePending

	snap, err := FetchSnapshot(context.Background(), client, true)
	require.NoError(t, err)

	assert.True(t, snap.HasMessage("m1"))
	assert.False(t, snap.HasMessage("m2"))
	assert.True(t, snap.HasApprovedImage("img1"))
	assert.False(t, snap.HasApprovedImage("img2"), "pending images are not approved")
}

func TestFetchSnapshotListError(t *testing.T) {
	client := newFakeClient()
	client.listErr = &appstore.APIError{Status: 500, Message: "boom"}

	_, err := FetchSnapshot(context.Background(), client, true)
	assert.Error(t, err)
}

func TestPlanImport(t *testing.T) {
	table := messageTable(
		tablesource.Record{"message_id": "m1", "header": "Hello", "body": "World"},
		tablesource.Record{"message_id": "existing", "header": "Hi", "body": "There"},
		tablesource.Record{"message_id": "", "header": "Hi", "body": "There"},
		tablesource.Record{"message_id": "m4", "header": strings.Repeat("x", 70), "body": "ok"},
		tablesource.Record{"message_id": "m5", "header": "Hi", "body": "There", "image_id": "missing-img"},
	)
	rows := extractTestRows(t, table, types.EnvironmentProduction)

	snap := &Snapshot{
		MessageIDs:       map[string]struct{}{"existing": {}},
		ApprovedImageIDs: map[string]struct{}{},
	}

	plans, preview := PlanImport(rows, snap)
	require.Len(t, plans, 5)

	assert.Equal(t, types.ActionCreate, plans[0].Action)
	assert.Equal(t, types.ActionSkipExists, plans[1].Action)
	assert.Equal(t, types.ActionReject, plans[2].Action)
	assert.Equal(t, types.ActionReject, plans[3].Action)
	assert.Contains(t, plans[3].Reason, "header")
	assert.Equal(t, types.ActionCreate, plans[4].Action)
	require.Len(t, plans[4].Warnings, 1)
	assert.Contains(t, plans[4].Warnings[0], "missing-img")

	assert.Equal(t, types.Preview{
		Total:         5,
		WillCreate:    2,
		WillSkip:      1,
		Rejected:      2,
		MissingAssets: 1,
	}, preview)
}

func TestPlanImportSkipWinsOverValidation(t *testing.T) {
	// A row that already exists remotely is skipped even when its
	// local fields would not validate, so re-importing a mixed table
	// stays idempotent.
	table := messageTable(
		tablesource.Record{"message_id": "existing", "header": strings.Repeat("x", 99), "body": ""},
	)
	rows := extractTestRows(t, table, types.EnvironmentProduction)

	snap := &Snapshot{MessageIDs: map[string]struct{}{"existing": {}}}
	plans, _ := PlanImport(rows, snap)

	require.Len(t, plans, 1)
	assert.Equal(t, types.ActionSkipExists, plans[0].Action)
}

func TestPlanDelete(t *testing.T) {
	table := messageTable(
		tablesource.Record{"message_id": "existing", "header": "", "body": ""},
		tablesource.Record{"message_id": "gone", "header": "", "body": ""},
		tablesource.Record{"message_id": "", "header": "", "body": ""},
	)
	rows := extractTestRows(t, table, types.EnvironmentProduction)

	snap := &Snapshot{MessageIDs: map[string]struct{}{"existing": {}}}
	plans, preview := PlanDelete(rows, snap)

	require.Len(t, plans, 3)
	assert.Equal(t, types.ActionDelete, plans[0].Action)
	assert.Equal(t, types.ActionSkipAbsent, plans[1].Action)
	assert.Equal(t, types.ActionReject, plans[2].Action)
	assert.Equal(t, 1, preview.WillDelete)
	assert.Equal(t, 1, preview.WillSkip)
	assert.Equal(t, 1, preview.Rejected)
}

func TestExtractRowsSandboxFallback(t *testing.T) {
	table := &tablesource.Table{
		Name:    "messages.csv",
		Columns: []string{"message_id", "sandbox message id", "header", "body"},
		Records: []tablesource.Record{
			{"message_id": "prod-1", "sandbox message id": "sbx-1", "header": "h", "body": "b"},
			{"message_id": "prod-2", "sandbox message id": "", "header": "h", "body": "b"},
		},
	}

	sandboxRows := extractTestRows(t, table, types.EnvironmentSandbox)
	assert.Equal(t, "sbx-1", sandboxRows[0].Value(types.FieldMessageID))
	assert.Equal(t, "prod-2", sandboxRows[1].Value(types.FieldMessageID))

	prodRows := extractTestRows(t, table, types.EnvironmentProduction)
	assert.Equal(t, "prod-1", prodRows[0].Value(types.FieldMessageID))

	assert.Equal(t, 1, sandboxRows[0].Number)
	assert.Equal(t, 2, sandboxRows[1].Number)
}
