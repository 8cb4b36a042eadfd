package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/winback/message-service/internal/mapping"
	"github.com/winback/message-service/internal/tablesource"
	"github.com/winback/message-service/internal/types"
)

// Operation names as recorded in run results and metrics.
const (
	OpImportMessages = "import-csv"
	OpImportDefaults = "import-csv-defaults"
	OpImportDeletes  = "import-csv-delete"
	OpSetDefault     = "set-default"
	OpDeleteDefault  = "delete-default"
)

// ImportOptions configures a run.
type ImportOptions struct {
	Environment types.Environment
	DryRun      bool
	// Overrides bind fields to exact column names, winning over
	// header detection.
	Overrides map[types.TargetField]string
	// Products is the command-line product list for defaults imports;
	// it takes precedence over any product column.
	Products   []string
	OnProgress ProgressFunc
	Logger     zerolog.Logger
	// RunID overrides the generated run identifier. Callers that hand
	// out the identifier before the run starts set this.
	RunID string
}

// Importer orchestrates full runs: resolve columns, fetch the remote
// snapshot, plan, execute, aggregate.
type Importer struct {
	client RemoteClient
	opts   ImportOptions
}

// NewImporter builds an importer over the given remote client.
func NewImporter(client RemoteClient, opts ImportOptions) *Importer {
	return &Importer{client: client, opts: opts}
}

// ImportMessages creates every message in the table that does not
// already exist remotely. The second return value is the retry table
// of failed rows, nil when everything succeeded or was skipped. An
// error return means the run never started (unresolved columns or a
// failed snapshot fetch); per-row failures are in the result instead.
func (imp *Importer) ImportMessages(ctx context.Context, t *tablesource.Table) (*types.RunResult, *tablesource.Table, error) {
	started := time.Now()

	m := mapping.Resolve(t.Columns, imp.opts.Overrides)
	if err := m.Require(imp.opts.Environment, types.FieldMessageID, types.FieldHeader, types.FieldBody); err != nil {
		return nil, nil, err
	}

	rows := ExtractRows(t, m, imp.opts.Environment)

	snapStart := time.Now()
	snap, err := FetchSnapshot(ctx, imp.client, true)
	if err != nil {
		return nil, nil, err
	}
	snapshotDuration.Observe(time.Since(snapStart).Seconds())

	plans, preview := PlanImport(rows, snap)

	agg := NewAggregator(OpImportMessages, imp.opts.Environment, imp.opts.DryRun)
	imp.executor().ExecuteImport(ctx, plans, agg)

	return imp.finish(agg, m, preview, started, t)
}

// ImportDeletes removes every message named in the table that exists
// remotely; absent IDs are skipped.
func (imp *Importer) ImportDeletes(ctx context.Context, t *tablesource.Table) (*types.RunResult, *tablesource.Table, error) {
	started := time.Now()

	m := mapping.Resolve(t.Columns, imp.opts.Overrides)
	if err := m.Require(imp.opts.Environment, types.FieldMessageID); err != nil {
		return nil, nil, err
	}

	rows := ExtractRows(t, m, imp.opts.Environment)

	snapStart := time.Now()
	snap, err := FetchSnapshot(ctx, imp.client, false)
	if err != nil {
		return nil, nil, err
	}
	snapshotDuration.Observe(time.Since(snapStart).Seconds())

	plans, preview := PlanDelete(rows, snap)

	agg := NewAggregator(OpImportDeletes, imp.opts.Environment, imp.opts.DryRun)
	imp.executor().ExecuteDelete(ctx, plans, agg)

	return imp.finish(agg, m, preview, started, t)
}

// ImportDefaults sets default messages from the table: each row yields
// one unit per product (command-line products win over the product
// column), always using the row's locale.
func (imp *Importer) ImportDefaults(ctx context.Context, t *tablesource.Table) (*types.RunResult, *tablesource.Table, error) {
	started := time.Now()

	m := mapping.Resolve(t.Columns, imp.opts.Overrides)
	if err := m.Require(imp.opts.Environment, types.FieldMessageID, types.FieldLocale); err != nil {
		return nil, nil, err
	}
	if len(imp.opts.Products) == 0 && !m.Has(types.FieldProductID) {
		return nil, nil, &mapping.ConfigError{
			Missing: []types.TargetField{types.FieldProductID},
			Columns: t.Columns,
		}
	}

	rows := ExtractRows(t, m, imp.opts.Environment)

	agg := NewAggregator(OpImportDefaults, imp.opts.Environment, imp.opts.DryRun)
	var units []types.DefaultMutationUnit
	preview := types.Preview{Total: len(rows)}

	for _, row := range rows {
		rowUnits, reason := ExpandRowDefaults(row, imp.opts.Products)
		if reason != "" {
			preview.Rejected++
			agg.Add(types.Outcome{
				RowNumber: row.Number,
				MessageID: row.Value(types.FieldMessageID),
				Status:    types.OutcomeFailed,
				Reason:    reason,
			}, row.Raw)
			continue
		}
		units = append(units, rowUnits...)
	}
	preview.WillCreate = len(units)

	imp.executor().ExecuteDefaults(ctx, units, agg)

	return imp.finish(agg, m, preview, started, t)
}

// ApplyDefaults runs command-line driven default mutations over the
// cartesian product of products and locales. An empty messageID clears
// defaults instead of setting them.
func (imp *Importer) ApplyDefaults(ctx context.Context, messageID string, products, locales []string) (*types.RunResult, error) {
	started := time.Now()

	operation := OpSetDefault
	if messageID == "" {
		operation = OpDeleteDefault
	}

	units := ExpandDefaults(messageID, products, locales)

	agg := NewAggregator(operation, imp.opts.Environment, imp.opts.DryRun)
	imp.executor().ExecuteDefaults(ctx, units, agg)

	result, _, err := imp.finish(agg, nil, types.Preview{Total: len(units), WillCreate: len(units)}, started, nil)
	return result, err
}

func (imp *Importer) executor() *Executor {
	return NewExecutor(imp.client, Options{
		DryRun:     imp.opts.DryRun,
		OnProgress: imp.opts.OnProgress,
		Logger:     imp.opts.Logger,
	})
}

func (imp *Importer) finish(
	agg *Aggregator,
	m *mapping.Mapping,
	preview types.Preview,
	started time.Time,
	src *tablesource.Table,
) (*types.RunResult, *tablesource.Table, error) {
	result := agg.Result()
	result.RunID = imp.opts.RunID
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	result.Preview = preview
	result.StartedAt = started
	result.CompletedAt = time.Now()
	if m != nil {
		result.Mapping = m.Report()
	}

	observeRun(result.OperationName, string(result.Environment), started)
	observeOutcomes(result.OperationName, map[string]int{
		string(types.OutcomeSucceeded): result.Succeeded,
		string(types.OutcomeSkipped):   result.Skipped,
		string(types.OutcomeFailed):    result.Failed,
	})

	imp.opts.Logger.Info().
		Str("runId", result.RunID).
		Str("operation", result.OperationName).
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Bool("dryRun", result.DryRun).
		Msg("run completed")

	var failed *tablesource.Table
	if src != nil {
		failed = agg.FailedTable(src)
	}
	return result, failed, nil
}
