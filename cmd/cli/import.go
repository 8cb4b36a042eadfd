package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/winback/message-service/internal/history"
	"github.com/winback/message-service/internal/reconcile"
	"github.com/winback/message-service/internal/tablesource"
	"github.com/winback/message-service/internal/types"
)

var (
	importDryRun   bool
	importProducts []string

	colMessageID        string
	colSandboxMessageID string
	colHeader           string
	colBody             string
	colLocale           string
	colImageID          string
	colSandboxImageID   string
	colAltText          string
	colEnvironment      string
	colProductID        string
)

// importCsvCmd represents the import-csv command
var importCsvCmd = &cobra.Command{
	Use:   "import-csv <file>",
	Short: "Create every message in a CSV or XLSX sheet",
	Long: `Read a CSV or XLSX sheet and create each message that does not exist
remotely yet. Columns are detected from the header row; use the --col-* flags
to bind a field to an exact column name when detection picks the wrong one.

Rows whose message already exists are skipped, so re-running the same sheet
is safe. Rows that fail are exported to a retry file next to the source with
an extra error column.`,
	Example: `  message-service import-csv ./messages.csv
  message-service import-csv ./messages.xlsx --environment SANDBOX --dry-run
  message-service import-csv ./messages.csv --col-header Titel --col-body Nachricht`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTableImport(args[0], func(ctx context.Context, imp *reconcile.Importer, t *tablesource.Table) (*types.RunResult, *tablesource.Table, error) {
			return imp.ImportMessages(ctx, t)
		})
	},
}

// importCsvDeleteCmd represents the import-csv-delete command
var importCsvDeleteCmd = &cobra.Command{
	Use:   "import-csv-delete <file>",
	Short: "Delete every message named in a CSV or XLSX sheet",
	Long: `Read a CSV or XLSX sheet and delete each listed message. Only the
message ID column is required. IDs that do not exist remotely are skipped.`,
	Example: `  message-service import-csv-delete ./obsolete.csv
  message-service import-csv-delete ./obsolete.csv --environment SANDBOX`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTableImport(args[0], func(ctx context.Context, imp *reconcile.Importer, t *tablesource.Table) (*types.RunResult, *tablesource.Table, error) {
			return imp.ImportDeletes(ctx, t)
		})
	},
}

// importCsvDefaultsCmd represents the import-csv-defaults command
var importCsvDefaultsCmd = &cobra.Command{
	Use:   "import-csv-defaults <file>",
	Short: "Set default messages from a CSV or XLSX sheet",
	Long: `Read a CSV or XLSX sheet and set each row's message as the default for
its locale. Products come from --product-id flags, which apply to every row,
or from a product column in the sheet. Flags win when both are present.`,
	Example: `  message-service import-csv-defaults ./defaults.csv --product-id com.example.app
  message-service import-csv-defaults ./defaults.csv --product-id app1 --product-id app2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTableImport(args[0], func(ctx context.Context, imp *reconcile.Importer, t *tablesource.Table) (*types.RunResult, *tablesource.Table, error) {
			return imp.ImportDefaults(ctx, t)
		})
	},
}

func init() {
	rootCmd.AddCommand(importCsvCmd)
	rootCmd.AddCommand(importCsvDeleteCmd)
	rootCmd.AddCommand(importCsvDefaultsCmd)

	for _, cmd := range []*cobra.Command{importCsvCmd, importCsvDeleteCmd, importCsvDefaultsCmd} {
		cmd.Flags().BoolVar(&importDryRun, "dry-run", false, "plan the run without mutating anything")
		cmd.Flags().StringVar(&colMessageID, "col-message-id", "", "exact column name for the message ID")
		cmd.Flags().StringVar(&colSandboxMessageID, "col-sandbox-message-id", "", "exact column name for the sandbox message ID")
		cmd.Flags().StringVar(&colHeader, "col-header", "", "exact column name for the header")
		cmd.Flags().StringVar(&colBody, "col-body", "", "exact column name for the body")
		cmd.Flags().StringVar(&colLocale, "col-locale", "", "exact column name for the locale")
		cmd.Flags().StringVar(&colImageID, "col-image-id", "", "exact column name for the image ID")
		cmd.Flags().StringVar(&colSandboxImageID, "col-sandbox-image-id", "", "exact column name for the sandbox image ID")
		cmd.Flags().StringVar(&colAltText, "col-alt-text", "", "exact column name for the image alt text")
		cmd.Flags().StringVar(&colEnvironment, "col-environment", "", "exact column name for the environment")
		cmd.Flags().StringVar(&colProductID, "col-product-id", "", "exact column name for the product ID")
	}

	importCsvDefaultsCmd.Flags().StringArrayVar(&importProducts, "product-id", nil, "product ID to apply every row to (repeatable, wins over the product column)")
}

// columnOverrides collects the --col-* flags into an override map.
func columnOverrides() map[types.TargetField]string {
	overrides := map[types.TargetField]string{}
	for field, value := range map[types.TargetField]string{
		types.FieldMessageID:        colMessageID,
		types.FieldSandboxMessageID: colSandboxMessageID,
		types.FieldHeader:           colHeader,
		types.FieldBody:             colBody,
		types.FieldLocale:           colLocale,
		types.FieldImageID:          colImageID,
		types.FieldSandboxImageID:   colSandboxImageID,
		types.FieldImageAltText:     colAltText,
		types.FieldEnvironment:      colEnvironment,
		types.FieldProductID:        colProductID,
	} {
		if value != "" {
			overrides[field] = value
		}
	}
	if len(overrides) == 0 {
		return nil
	}
	return overrides
}

type tableRun func(context.Context, *reconcile.Importer, *tablesource.Table) (*types.RunResult, *tablesource.Table, error)

func runTableImport(path string, run tableRun) error {
	// Ctrl-C stops between units; outcomes so far are still reported.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := tablesource.ReadFile(path)
	if err != nil {
		return err
	}
	if table.Empty() {
		return fmt.Errorf("%s contains no data rows", path)
	}

	imp, err := newImporter(importDryRun, columnOverrides(), importProducts)
	if err != nil {
		return err
	}

	result, failed, err := run(ctx, imp, table)
	if err != nil {
		return err
	}

	if !importDryRun {
		if err := writeFailedRows(result, failed, path); err != nil {
			logger.Warn().Err(err).Msg("Could not export failed rows")
		}
	}
	// Fresh context: the run context may already be canceled after an
	// interrupt, and the archive write should still happen.
	archiveRun(context.Background(), result)

	if err := renderRunResult(result); err != nil {
		return err
	}

	if !result.Ok() {
		return fmt.Errorf("%d of %d rows failed", result.Failed, result.Total)
	}
	return nil
}

// archiveRun stores the result in the run history database when one is
// configured. Failures only warn; the run itself already happened.
func archiveRun(ctx context.Context, result *types.RunResult) {
	if cfg == nil || cfg.Database.URL == "" || result.DryRun {
		return
	}

	store, err := history.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not connect to run history database")
		return
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Warn().Err(err).Msg("Could not ensure run history schema")
		return
	}
	if err := store.SaveRun(ctx, result); err != nil {
		logger.Warn().Err(err).Msg("Could not archive run")
		return
	}
	logger.Debug().Str("runId", result.RunID).Msg("Run archived")
}
