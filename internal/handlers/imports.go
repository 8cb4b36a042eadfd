package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/winback/message-service/internal/mapping"
	"github.com/winback/message-service/internal/reconcile"
	"github.com/winback/message-service/internal/tablesource"
	"github.com/winback/message-service/internal/types"
)

// importSem limits concurrent import goroutines to prevent resource exhaustion
var importSem = make(chan struct{}, 4)

// ImportStartedResponse represents the 202 response when an import is started
type ImportStartedResponse struct {
	RunID   string `json:"runId"`
	Status  string `json:"status"`
	PollURL string `json:"pollUrl"`
	Message string `json:"message,omitempty"`
}

// importRequest is the parsed multipart form of an import call.
type importRequest struct {
	operation string
	env       types.Environment
	dryRun    bool
	products  []string
	overrides map[types.TargetField]string
	table     *tablesource.Table
}

func parseImportRequest(c *gin.Context) (*importRequest, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file is required: %w", err)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	table, err := tablesource.Parse(content, fileHeader.Filename)
	if err != nil {
		return nil, err
	}

	operation := c.DefaultPostForm("operation", reconcile.OpImportMessages)
	switch operation {
	case reconcile.OpImportMessages, reconcile.OpImportDeletes, reconcile.OpImportDefaults:
	default:
		return nil, fmt.Errorf("unknown operation %q", operation)
	}

	envName := c.DefaultPostForm("environment", deps.Config.API.Environment)
	env, ok := types.ParseEnvironment(envName)
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", envName)
	}

	req := &importRequest{
		operation: operation,
		env:       env,
		dryRun:    c.PostForm("dryRun") == "true",
		table:     table,
	}

	if products := c.PostForm("products"); products != "" {
		for _, p := range strings.Split(products, ",") {
			if p = strings.TrimSpace(p); p != "" {
				req.products = append(req.products, p)
			}
		}
	}

	if overrides := c.PostForm("overrides"); overrides != "" {
		if err := json.Unmarshal([]byte(overrides), &req.overrides); err != nil {
			return nil, fmt.Errorf("invalid overrides: %w", err)
		}
	}

	return req, nil
}

// exportFailedRows writes the retry table under the OS temp directory,
// keyed by run ID, and records its path on the result so archived runs
// point at the same retry artifact the CLI produces.
func exportFailedRows(result *types.RunResult, failed *tablesource.Table) {
	if failed == nil || result.DryRun {
		return
	}
	path := filepath.Join(os.TempDir(), result.RunID+"_failed.csv")
	if err := tablesource.WriteCSV(failed, path); err != nil {
		deps.Logger.Warn().Err(err).
			Str("runId", result.RunID).
			Msg("failed to write retry file")
		return
	}
	result.FailedRowsPath = path
}

func runImport(ctx context.Context, imp *reconcile.Importer, req *importRequest) (*types.RunResult, *tablesource.Table, error) {
	switch req.operation {
	case reconcile.OpImportDeletes:
		return imp.ImportDeletes(ctx, req.table)
	case reconcile.OpImportDefaults:
		return imp.ImportDefaults(ctx, req.table)
	default:
		return imp.ImportMessages(ctx, req.table)
	}
}

// PreflightImport resolves columns and plans an import without touching
// the remote state beyond listing it
// @Summary Preflight an import
// @Description Uploads a CSV or XLSX file and returns the plan a real import would execute, without mutating anything
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param operation formData string false "Operation" Enums(import-csv, import-csv-delete, import-csv-defaults) default(import-csv)
// @Param environment formData string false "Target environment" Enums(PRODUCTION, SANDBOX)
// @Param products formData string false "Comma-separated product IDs for defaults imports"
// @Param overrides formData string false "JSON object mapping fields to exact column names"
// @Success 200 {object} types.RunResult
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/imports/preflight [post]
func PreflightImport(c *gin.Context) {
	req, err := parseImportRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.dryRun = true

	imp, err := newImporter(req.env, reconcile.ImportOptions{
		DryRun:    true,
		Overrides: req.overrides,
		Products:  req.products,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, _, err := runImport(c.Request.Context(), imp, req)
	if err != nil {
		var cfgErr *mapping.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// StartImport executes an import asynchronously
// @Summary Start an import
// @Description Uploads a CSV or XLSX file and starts the import. Returns 202 with a run ID to poll when run history is configured, otherwise executes synchronously
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param operation formData string false "Operation" Enums(import-csv, import-csv-delete, import-csv-defaults) default(import-csv)
// @Param environment formData string false "Target environment" Enums(PRODUCTION, SANDBOX)
// @Param dryRun formData string false "Plan only, mutate nothing" Enums(true, false)
// @Param products formData string false "Comma-separated product IDs for defaults imports"
// @Param overrides formData string false "JSON object mapping fields to exact column names"
// @Success 200 {object} types.RunResult "Synchronous result when run history is not configured"
// @Success 202 {object} ImportStartedResponse "Import started"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/imports [post]
func StartImport(c *gin.Context) {
	req, err := parseImportRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runID := uuid.NewString()
	imp, err := newImporter(req.env, reconcile.ImportOptions{
		DryRun:    req.dryRun,
		Overrides: req.overrides,
		Products:  req.products,
		RunID:     runID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Without an archive there is nowhere to poll for the result, so
	// run synchronously and return it.
	if deps.Store == nil {
		result, failed, err := runImport(c.Request.Context(), imp, req)
		if err != nil {
			var cfgErr *mapping.ConfigError
			if errors.As(err, &cfgErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		exportFailedRows(result, failed)
		c.JSON(http.StatusOK, result)
		return
	}

	go func() {
		importSem <- struct{}{}
		defer func() { <-importSem }()

		bgCtx := context.Background()
		result, failed, runErr := runImport(bgCtx, imp, req)
		if runErr != nil {
			deps.Logger.Error().Err(runErr).
				Str("runId", runID).
				Str("operation", req.operation).
				Msg("import run failed to start")
			return
		}
		exportFailedRows(result, failed)
		if saveErr := deps.Store.SaveRun(bgCtx, result); saveErr != nil {
			deps.Logger.Error().Err(saveErr).
				Str("runId", runID).
				Msg("failed to archive run")
		}
	}()

	c.JSON(http.StatusAccepted, ImportStartedResponse{
		RunID:   runID,
		Status:  "started",
		PollURL: fmt.Sprintf("/internal/runs/%s", runID),
		Message: fmt.Sprintf("%s started for %s", req.operation, req.table.Name),
	})
}
