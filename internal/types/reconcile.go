package types

import (
	"strings"
	"time"
)

// Environment selects which App Store messaging environment a run targets.
type Environment string

const (
	EnvironmentProduction Environment = "PRODUCTION"
	EnvironmentSandbox    Environment = "SANDBOX"
)

// ParseEnvironment normalizes a user-supplied environment name.
func ParseEnvironment(s string) (Environment, bool) {
	switch Environment(strings.ToUpper(strings.TrimSpace(s))) {
	case EnvironmentProduction:
		return EnvironmentProduction, true
	case EnvironmentSandbox:
		return EnvironmentSandbox, true
	}
	return "", false
}

// TargetField identifies a logical message field a table column can map to.
type TargetField string

const (
	FieldMessageID        TargetField = "message_id"
	FieldSandboxMessageID TargetField = "sandbox_message_id"
	FieldHeader           TargetField = "header"
	FieldBody             TargetField = "body"
	FieldLocale           TargetField = "locale"
	FieldImageID          TargetField = "image_id"
	FieldSandboxImageID   TargetField = "sandbox_image_id"
	FieldImageAltText     TargetField = "image_alt_text"
	FieldEnvironment      TargetField = "environment"
	FieldProductID        TargetField = "product_id"
)

// AllTargetFields lists every mappable field in display order.
var AllTargetFields = []TargetField{
	FieldMessageID,
	FieldSandboxMessageID,
	FieldHeader,
	FieldBody,
	FieldLocale,
	FieldImageID,
	FieldSandboxImageID,
	FieldImageAltText,
	FieldEnvironment,
	FieldProductID,
}

// MappingEntry reports how one target field was bound to a source column.
type MappingEntry struct {
	Field  TargetField `json:"field"`
	Column string      `json:"column"`
	Source string      `json:"source"` // "detected" or "override"
}

// ImportRow is one data row after column resolution. Number is the 1-based
// ordinal among data rows, excluding the header. Raw keeps the original
// cells keyed by source column name so failed rows can be re-exported
// without loss.
type ImportRow struct {
	Number int                    `json:"rowNumber"`
	Values map[TargetField]string `json:"values"`
	Raw    map[string]string      `json:"-"`
}

// Value returns the resolved, trimmed value for a field, or "".
func (r ImportRow) Value(f TargetField) string {
	return r.Values[f]
}

// RowAction is the planned disposition of a unit before execution.
type RowAction string

const (
	ActionCreate     RowAction = "create"
	ActionDelete     RowAction = "delete"
	ActionSkipExists RowAction = "skip_exists"
	ActionSkipAbsent RowAction = "skip_absent"
	ActionReject     RowAction = "reject"
)

// RowPlan pairs a row with its planned action. Reason carries the
// rejection or skip explanation; Warnings are advisory and never block
// execution.
type RowPlan struct {
	Row      ImportRow `json:"row"`
	Action   RowAction `json:"action"`
	Reason   string    `json:"reason,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Preview summarizes a plan before anything is sent to the remote API.
type Preview struct {
	Total         int `json:"total"`
	WillCreate    int `json:"willCreate"`
	WillDelete    int `json:"willDelete"`
	WillSkip      int `json:"willSkip"`
	Rejected      int `json:"rejected"`
	MissingAssets int `json:"missingAssets"`
}

// OutcomeStatus is the terminal state of one executed unit.
type OutcomeStatus string

const (
	OutcomeSucceeded   OutcomeStatus = "succeeded"
	OutcomeSkipped     OutcomeStatus = "skipped"
	OutcomeFailed      OutcomeStatus = "failed"
	OutcomeInterrupted OutcomeStatus = "interrupted"
)

// Outcome records what happened to a single unit of work.
type Outcome struct {
	RowNumber   int           `json:"rowNumber,omitempty"`
	MessageID   string        `json:"messageId,omitempty"`
	ProductID   string        `json:"productId,omitempty"`
	Locale      string        `json:"locale,omitempty"`
	Status      OutcomeStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	RateLimited bool          `json:"rateLimited,omitempty"`
}

// DefaultMutationUnit is one (product, locale) pair to set or clear a
// default message for. MessageID is empty for clears. RowNumber is zero
// when the unit came from command-line flags rather than a table.
type DefaultMutationUnit struct {
	RowNumber int    `json:"rowNumber,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	ProductID string `json:"productId"`
	Locale    string `json:"locale"`
}

// RunResult is the aggregate of one reconciliation run.
type RunResult struct {
	RunID          string         `json:"runId"`
	OperationName  string         `json:"operation"`
	Environment    Environment    `json:"environment"`
	DryRun         bool           `json:"dryRun"`
	Mapping        []MappingEntry `json:"mapping,omitempty"`
	Preview        Preview        `json:"preview"`
	Total          int            `json:"total"`
	Succeeded      int            `json:"succeeded"`
	Skipped        int            `json:"skipped"`
	Failed         int            `json:"failed"`
	RateLimited    int            `json:"rateLimited"`
	Interrupted    bool           `json:"interrupted,omitempty"`
	Outcomes       []Outcome      `json:"outcomes,omitempty"`
	FailedRowsPath string         `json:"failedRowsPath,omitempty"`
	StartedAt      time.Time      `json:"startedAt"`
	CompletedAt    time.Time      `json:"completedAt"`
}

// Ok reports whether every unit either succeeded or was skipped.
func (r *RunResult) Ok() bool {
	return r.Failed == 0 && !r.Interrupted
}
