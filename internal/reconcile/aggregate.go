package reconcile

import (
	"github.com/winback/message-service/internal/tablesource"
	"github.com/winback/message-service/internal/types"
)

// Aggregator accumulates per-unit outcomes into a RunResult, in
// completion order. It also keeps the raw records of failed rows so a
// retry table can be exported at run end.
type Aggregator struct {
	result        types.RunResult
	failedRecords []tablesource.Record
	failedReasons []string
}

// NewAggregator starts an empty result for one run.
func NewAggregator(operation string, env types.Environment, dryRun bool) *Aggregator {
	return &Aggregator{
		result: types.RunResult{
			OperationName: operation,
			Environment:   env,
			DryRun:        dryRun,
		},
	}
}

// Add records one unit's outcome. raw is the source record for failed
// rows that should appear in the retry export; nil for units that did
// not come from a table.
func (a *Aggregator) Add(outcome types.Outcome, raw tablesource.Record) {
	a.result.Total++
	a.result.Outcomes = append(a.result.Outcomes, outcome)

	switch outcome.Status {
	case types.OutcomeSucceeded:
		a.result.Succeeded++
	case types.OutcomeSkipped:
		a.result.Skipped++
	case types.OutcomeFailed:
		a.result.Failed++
		if outcome.RateLimited {
			a.result.RateLimited++
		}
		if raw != nil {
			a.failedRecords = append(a.failedRecords, raw)
			a.failedReasons = append(a.failedReasons, outcome.Reason)
		}
	case types.OutcomeInterrupted:
		a.result.Interrupted = true
	}
}

// MarkInterrupted flags the run as cut short.
func (a *Aggregator) MarkInterrupted() {
	a.result.Interrupted = true
}

// Result returns the accumulated run result.
func (a *Aggregator) Result() *types.RunResult {
	return &a.result
}

// FailedTable builds the retry export from the source table, or nil
// when nothing failed with a source record attached.
func (a *Aggregator) FailedTable(src *tablesource.Table) *tablesource.Table {
	if len(a.failedRecords) == 0 {
		return nil
	}
	return tablesource.FailedTable(src, a.failedRecords, a.failedReasons)
}
