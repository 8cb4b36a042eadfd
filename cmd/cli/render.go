package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/winback/message-service/internal/progress"
	"github.com/winback/message-service/internal/reconcile"
	"github.com/winback/message-service/internal/tablesource"
	"github.com/winback/message-service/internal/types"
)

// renderProgress writes a single-line progress indicator to stderr.
func renderProgress(ev reconcile.ProgressEvent) {
	eta := ""
	if ev.HasETA {
		eta = fmt.Sprintf("  ETA %s", progress.FormatDuration(ev.ETA))
	}
	fmt.Fprintf(os.Stderr, "\r[%d/%d] %.0f%%%s    ", ev.Done, ev.Total, ev.Percent, eta)
	if ev.Done == ev.Total {
		fmt.Fprintln(os.Stderr)
	}
}

// renderRunResult prints the outcome of a run either as JSON or as a
// human-readable summary.
func renderRunResult(result *types.RunResult) error {
	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if len(result.Mapping) > 0 {
		fmt.Println("\nColumn Mapping")
		fmt.Println(strings.Repeat("-", 60))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FIELD\tCOLUMN\tSOURCE")
		for _, entry := range result.Mapping {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Field, entry.Column, entry.Source)
		}
		w.Flush()
	}

	title := fmt.Sprintf("%s (%s)", result.OperationName, result.Environment)
	if result.DryRun {
		title += " [dry-run]"
	}
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Total\t%d\n", result.Total)
	fmt.Fprintf(w, "Succeeded\t%d\n", result.Succeeded)
	fmt.Fprintf(w, "Skipped\t%d\n", result.Skipped)
	fmt.Fprintf(w, "Failed\t%d\n", result.Failed)
	if result.RateLimited > 0 {
		fmt.Fprintf(w, "Rate limited\t%d\n", result.RateLimited)
	}
	fmt.Fprintf(w, "Duration\t%s\n", progress.FormatDuration(result.CompletedAt.Sub(result.StartedAt)))
	w.Flush()

	if result.Interrupted {
		fmt.Println("\nRun was interrupted before completing.")
	}

	// Show first few failures
	var failures []types.Outcome
	for _, o := range result.Outcomes {
		if o.Status == types.OutcomeFailed {
			failures = append(failures, o)
		}
	}
	if len(failures) > 0 {
		show := len(failures)
		if show > 10 {
			show = 10
		}
		fmt.Printf("\nFirst %d Failures:\n", show)
		fmt.Println(strings.Repeat("-", 60))
		for _, o := range failures[:show] {
			where := o.MessageID
			if o.RowNumber > 0 {
				where = fmt.Sprintf("row %d (%s)", o.RowNumber, o.MessageID)
			}
			if o.ProductID != "" {
				where += fmt.Sprintf(" %s/%s", o.ProductID, o.Locale)
			}
			fmt.Printf("%s: %s\n", where, o.Reason)
		}
		if len(failures) > show {
			fmt.Printf("... and %d more failures\n", len(failures)-show)
		}
	}

	if result.FailedRowsPath != "" {
		fmt.Printf("\nFailed rows written to %s\n", result.FailedRowsPath)
	}

	return nil
}

// writeFailedRows exports the retry table next to the source file and
// records the path on the result.
func writeFailedRows(result *types.RunResult, failed *tablesource.Table, sourcePath string) error {
	if failed == nil || failed.Empty() {
		return nil
	}
	path := tablesource.FailedPath(sourcePath)
	if err := tablesource.WriteCSV(failed, path); err != nil {
		return fmt.Errorf("failed to write retry file: %w", err)
	}
	result.FailedRowsPath = path
	return nil
}
