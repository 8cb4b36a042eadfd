package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/winback/message-service/internal/history"
)

var runsLimit int

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show archived reconciliation runs",
	Long: `List archived runs from the run history database, newest first, or show
one run in full including per-row outcomes. Requires DATABASE_URL.`,
	Example: `  message-service runs
  message-service runs --limit 50
  message-service runs 6f1c2a9e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if cfg == nil || cfg.Database.URL == "" {
		return fmt.Errorf("run history requires DATABASE_URL")
	}

	ctx := context.Background()
	store, err := history.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to run history database: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showRun(ctx, store, args[0])
	}
	return listRuns(ctx, store)
}

func showRun(ctx context.Context, store *history.Store, runID string) error {
	record, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(record)
}

func listRuns(ctx context.Context, store *history.Store) error {
	records, err := store.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tOPERATION\tENV\tTOTAL\tOK\tSKIP\tFAIL\tSTARTED")
	for _, rec := range records {
		env := rec.Environment
		if rec.DryRun {
			env += " (dry)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			rec.ID, rec.Operation, env,
			rec.Total, rec.Succeeded, rec.Skipped, rec.Failed,
			rec.StartedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
