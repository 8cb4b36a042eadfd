package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/winback/message-service/internal/appstore"
	"github.com/winback/message-service/internal/progress"
	"github.com/winback/message-service/internal/types"
)

// ProgressEvent is emitted after every completed unit.
type ProgressEvent struct {
	Done    int
	Total   int
	Percent float64
	ETA     time.Duration
	HasETA  bool
	Outcome types.Outcome
}

// ProgressFunc receives incremental progress. It runs on the executor
// goroutine, so it should return quickly.
type ProgressFunc func(ProgressEvent)

// Options configures an Executor.
type Options struct {
	DryRun     bool
	OnProgress ProgressFunc
	Logger     zerolog.Logger
}

// Executor runs planned units strictly sequentially. One unit's
// failure never affects its siblings; every failure becomes an outcome
// rather than an error return. Cancelling the context stops the run
// between units, marking the remainder interrupted.
type Executor struct {
	client RemoteClient
	opts   Options
}

// NewExecutor builds an executor over the given remote client.
func NewExecutor(client RemoteClient, opts Options) *Executor {
	return &Executor{client: client, opts: opts}
}

// ExecuteImport runs message-creation plans. Skip and reject plans
// produce outcomes without remote calls; create plans call the upload
// endpoint unless dry-run is set.
func (e *Executor) ExecuteImport(ctx context.Context, plans []types.RowPlan, agg *Aggregator) {
	e.run(ctx, len(plans), agg, func(i int) (types.Outcome, bool) {
		plan := plans[i]
		outcome := types.Outcome{
			RowNumber: plan.Row.Number,
			MessageID: plan.Row.Value(types.FieldMessageID),
		}

		switch plan.Action {
		case types.ActionSkipExists:
			outcome.Status = types.OutcomeSkipped
			outcome.Reason = plan.Reason
			return outcome, false
		case types.ActionReject:
			outcome.Status = types.OutcomeFailed
			outcome.Reason = plan.Reason
			return outcome, true
		}

		if e.opts.DryRun {
			outcome.Status = types.OutcomeSucceeded
			outcome.Reason = "dry-run"
			return outcome, false
		}

		err := e.client.UploadMessage(ctx, outcome.MessageID, buildUploadRequest(plan.Row))
		return e.classify(outcome, err, plan.Row.Raw != nil)
	}, func(i int) types.Outcome {
		return types.Outcome{
			RowNumber: plans[i].Row.Number,
			MessageID: plans[i].Row.Value(types.FieldMessageID),
		}
	}, func(i int) map[string]string {
		return plans[i].Row.Raw
	})
}

// ExecuteDelete runs deletion plans produced by PlanDelete.
func (e *Executor) ExecuteDelete(ctx context.Context, plans []types.RowPlan, agg *Aggregator) {
	e.run(ctx, len(plans), agg, func(i int) (types.Outcome, bool) {
		plan := plans[i]
		outcome := types.Outcome{
			RowNumber: plan.Row.Number,
			MessageID: plan.Row.Value(types.FieldMessageID),
		}

		switch plan.Action {
		case types.ActionSkipAbsent, types.ActionSkipExists:
			outcome.Status = types.OutcomeSkipped
			outcome.Reason = plan.Reason
			return outcome, false
		case types.ActionReject:
			outcome.Status = types.OutcomeFailed
			outcome.Reason = plan.Reason
			return outcome, true
		}

		if e.opts.DryRun {
			outcome.Status = types.OutcomeSucceeded
			outcome.Reason = "dry-run"
			return outcome, false
		}

		err := e.client.DeleteMessage(ctx, outcome.MessageID)
		if appstore.IsNotFound(err) {
			outcome.Status = types.OutcomeSkipped
			outcome.Reason = "not found remotely"
			return outcome, false
		}
		return e.classify(outcome, err, plan.Row.Raw != nil)
	}, func(i int) types.Outcome {
		return types.Outcome{
			RowNumber: plans[i].Row.Number,
			MessageID: plans[i].Row.Value(types.FieldMessageID),
		}
	}, func(i int) map[string]string {
		return plans[i].Row.Raw
	})
}

// ExecuteDefaults runs default-message mutations. Units with a
// MessageID set the default; units without clear it.
func (e *Executor) ExecuteDefaults(ctx context.Context, units []types.DefaultMutationUnit, agg *Aggregator) {
	e.run(ctx, len(units), agg, func(i int) (types.Outcome, bool) {
		unit := units[i]
		outcome := types.Outcome{
			RowNumber: unit.RowNumber,
			MessageID: unit.MessageID,
			ProductID: unit.ProductID,
			Locale:    unit.Locale,
		}

		if e.opts.DryRun {
			outcome.Status = types.OutcomeSucceeded
			outcome.Reason = "dry-run"
			return outcome, false
		}

		var err error
		if unit.MessageID == "" {
			err = e.client.DeleteDefaultMessage(ctx, unit.ProductID, unit.Locale)
		} else {
			err = e.client.SetDefaultMessage(ctx, unit.ProductID, unit.Locale, unit.MessageID)
		}
		return e.classify(outcome, err, false)
	}, func(i int) types.Outcome {
		return types.Outcome{
			RowNumber: units[i].RowNumber,
			MessageID: units[i].MessageID,
			ProductID: units[i].ProductID,
			Locale:    units[i].Locale,
		}
	}, nil)
}

// run drives the shared sequential loop: execute, aggregate, report
// progress, and mark the tail interrupted when the context is
// cancelled.
func (e *Executor) run(
	ctx context.Context,
	total int,
	agg *Aggregator,
	execute func(i int) (types.Outcome, bool),
	skeleton func(i int) types.Outcome,
	raw func(i int) map[string]string,
) {
	timer := progress.NewTimer()

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			agg.MarkInterrupted()
			for j := i; j < total; j++ {
				outcome := skeleton(j)
				outcome.Status = types.OutcomeInterrupted
				outcome.Reason = "interrupted"
				agg.Add(outcome, nil)
			}
			return
		}

		outcome, attachRaw := execute(i)

		var rec map[string]string
		if attachRaw && raw != nil {
			rec = raw(i)
		}
		agg.Add(outcome, rec)

		if outcome.Status == types.OutcomeFailed {
			e.opts.Logger.Warn().
				Int("row", outcome.RowNumber).
				Str("messageId", outcome.MessageID).
				Str("reason", outcome.Reason).
				Msg("unit failed")
		}

		timer.Record()
		if e.opts.OnProgress != nil {
			done := i + 1
			eta, hasETA := timer.EstimateRemaining(total - done)
			e.opts.OnProgress(ProgressEvent{
				Done:    done,
				Total:   total,
				Percent: float64(done) / float64(total) * 100,
				ETA:     eta,
				HasETA:  hasETA,
				Outcome: outcome,
			})
		}
	}
}

// classify converts a remote call result into an outcome. Duplicate
// rejections count as skips: the record is already there, which is the
// end state an import wants.
func (e *Executor) classify(outcome types.Outcome, err error, hasRaw bool) (types.Outcome, bool) {
	switch {
	case err == nil:
		outcome.Status = types.OutcomeSucceeded
		return outcome, false
	case appstore.IsDuplicate(err):
		outcome.Status = types.OutcomeSkipped
		outcome.Reason = "already exists"
		return outcome, false
	default:
		outcome.Status = types.OutcomeFailed
		outcome.Reason = err.Error()
		outcome.RateLimited = appstore.IsRateLimited(err)
		return outcome, hasRaw
	}
}

func buildUploadRequest(row types.ImportRow) appstore.UploadMessageRequest {
	req := appstore.UploadMessageRequest{
		Header: row.Value(types.FieldHeader),
		Body:   row.Value(types.FieldBody),
	}
	imageID := row.Value(types.FieldImageID)
	altText := row.Value(types.FieldImageAltText)
	if imageID != "" || altText != "" {
		req.Image = &appstore.UploadMessageImage{
			ImageIdentifier: imageID,
			AltText:         altText,
		}
	}
	return req
}
