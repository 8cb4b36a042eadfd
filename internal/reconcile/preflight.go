package reconcile

import (
	"fmt"

	"github.com/winback/message-service/internal/mapping"
	"github.com/winback/message-service/internal/tablesource"
	"github.com/winback/message-service/internal/types"
	"github.com/winback/message-service/internal/validate"
)

// ExtractRows materializes import rows from a table using the resolved
// mapping. Message and image IDs go through the environment-aware
// lookup so sandbox runs can fall back per row.
func ExtractRows(t *tablesource.Table, m *mapping.Mapping, env types.Environment) []types.ImportRow {
	rows := make([]types.ImportRow, 0, len(t.Records))
	for i, rec := range t.Records {
		values := make(map[types.TargetField]string)
		for _, f := range types.AllTargetFields {
			switch f {
			case types.FieldMessageID, types.FieldImageID:
				values[f] = m.EnvValue(rec, f, env)
			default:
				values[f] = m.Value(rec, f)
			}
		}
		rows = append(rows, types.ImportRow{
			Number: i + 1,
			Values: values,
			Raw:    rec,
		})
	}
	return rows
}

// PlanImport decides each row's action against the snapshot before any
// mutation happens. Existing IDs are skipped (re-running an import is
// idempotent), local validation failures are rejected, and a row whose
// image is not in the approved set is still attempted with a warning,
// since approval state may change between preflight and execution.
func PlanImport(rows []types.ImportRow, snap *Snapshot) ([]types.RowPlan, types.Preview) {
	plans := make([]types.RowPlan, 0, len(rows))

	for _, row := range rows {
		id := row.Value(types.FieldMessageID)

		if id == "" {
			plans = append(plans, types.RowPlan{
				Row:    row,
				Action: types.ActionReject,
				Reason: "message_id: required value is missing",
			})
			continue
		}

		if snap.HasMessage(id) {
			plans = append(plans, types.RowPlan{
				Row:    row,
				Action: types.ActionSkipExists,
				Reason: "already exists",
			})
			continue
		}

		if errs := validate.MessageRow(row); len(errs) > 0 {
			plans = append(plans, types.RowPlan{
				Row:    row,
				Action: types.ActionReject,
				Reason: validate.Join(errs),
			})
			continue
		}

		plan := types.RowPlan{Row: row, Action: types.ActionCreate}
		if imageID := row.Value(types.FieldImageID); imageID != "" && !snap.HasApprovedImage(imageID) {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("image %s not found in approved images, create may fail", imageID))
		}
		plans = append(plans, plan)
	}

	return plans, PreviewOf(plans)
}

// PlanDelete decides deletions: rows whose ID is absent remotely are
// skipped rather than failed, mirroring the idempotence of imports.
func PlanDelete(rows []types.ImportRow, snap *Snapshot) ([]types.RowPlan, types.Preview) {
	plans := make([]types.RowPlan, 0, len(rows))

	for _, row := range rows {
		id := row.Value(types.FieldMessageID)

		switch {
		case id == "":
			plans = append(plans, types.RowPlan{
				Row:    row,
				Action: types.ActionReject,
				Reason: "message_id: required value is missing",
			})
		case !snap.HasMessage(id):
			plans = append(plans, types.RowPlan{
				Row:    row,
				Action: types.ActionSkipAbsent,
				Reason: "not found remotely",
			})
		default:
			plans = append(plans, types.RowPlan{Row: row, Action: types.ActionDelete})
		}
	}

	return plans, PreviewOf(plans)
}

// PreviewOf aggregates plan counts for dry-run and verbose reporting.
func PreviewOf(plans []types.RowPlan) types.Preview {
	p := types.Preview{Total: len(plans)}
	for _, plan := range plans {
		switch plan.Action {
		case types.ActionCreate:
			p.WillCreate++
		case types.ActionDelete:
			p.WillDelete++
		case types.ActionSkipExists, types.ActionSkipAbsent:
			p.WillSkip++
		case types.ActionReject:
			p.Rejected++
		}
		if len(plan.Warnings) > 0 {
			p.MissingAssets++
		}
	}
	return p
}
