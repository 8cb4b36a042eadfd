package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ListRunsRequest represents query parameters for listing runs
type ListRunsRequest struct {
	Limit int `form:"limit" json:"limit" binding:"min=0,max=100" jsonschema:"minimum=0,maximum=100"`
}

// ListRunsResponse represents the response for listing runs
type ListRunsResponse struct {
	Runs  []RunSummary `json:"runs" jsonschema:"required"`
	Total int          `json:"total" jsonschema:"required"`
}

// RunSummary represents one archived run without per-row outcomes
type RunSummary struct {
	ID             string `json:"id" jsonschema:"required"`
	Operation      string `json:"operation" jsonschema:"required"`
	Environment    string `json:"environment" jsonschema:"required,enum=PRODUCTION,enum=SANDBOX"`
	DryRun         bool   `json:"dryRun" jsonschema:"required"`
	Total          int    `json:"total" jsonschema:"required"`
	Succeeded      int    `json:"succeeded" jsonschema:"required"`
	Skipped        int    `json:"skipped" jsonschema:"required"`
	Failed         int    `json:"failed" jsonschema:"required"`
	RateLimited    int    `json:"rateLimited"`
	Interrupted    bool   `json:"interrupted"`
	FailedRowsPath string `json:"failedRowsPath,omitempty"`
	StartedAt      string `json:"startedAt" jsonschema:"required"`
	CompletedAt    string `json:"completedAt" jsonschema:"required"`
}

// ListRuns returns recent reconciliation runs, newest first
// @Summary List reconciliation runs
// @Description Returns the most recent reconciliation runs, newest first
// @Tags runs
// @Accept json
// @Produce json
// @Param limit query int false "Number of items to return" default(20) minimum(1) maximum(100)
// @Success 200 {object} ListRunsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Failure 503 {object} map[string]string "Run history not configured"
// @Router /internal/runs [get]
func ListRuns(c *gin.Context) {
	if deps.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is not configured"})
		return
	}

	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := deps.Store.ListRuns(c.Request.Context(), req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	runs := make([]RunSummary, 0, len(records))
	for _, rec := range records {
		runs = append(runs, RunSummary{
			ID:             rec.ID,
			Operation:      rec.Operation,
			Environment:    rec.Environment,
			DryRun:         rec.DryRun,
			Total:          rec.Total,
			Succeeded:      rec.Succeeded,
			Skipped:        rec.Skipped,
			Failed:         rec.Failed,
			RateLimited:    rec.RateLimited,
			Interrupted:    rec.Interrupted,
			FailedRowsPath: rec.FailedRowsPath,
			StartedAt:      rec.StartedAt.Format(time.RFC3339),
			CompletedAt:    rec.CompletedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, ListRunsResponse{
		Runs:  runs,
		Total: len(runs),
	})
}

// GetRun returns a single archived run including per-row outcomes
// @Summary Get reconciliation run
// @Description Returns a single archived run by its ID, including per-row outcomes
// @Tags runs
// @Accept json
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} history.RunRecord
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Failure 503 {object} map[string]string "Run history not configured"
// @Router /internal/runs/{runId} [get]
func GetRun(c *gin.Context) {
	if deps.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is not configured"})
		return
	}

	runID := c.Param("runId")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "runId is required"})
		return
	}

	record, err := deps.Store.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}
