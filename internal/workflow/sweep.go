package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/lutrii/payments/internal/activity"
)

// SweepDuePaymentsWorkflow runs on a cron schedule and attempts every due
// subscription once. A failed attempt is not retried within the sweep; the
// next scheduled run picks it up again with fresh market data, so retry
// cadence lives entirely in the schedule.
func SweepDuePaymentsWorkflow(ctx workflow.Context, params activity.SweepParams) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result activity.SweepResult
	if err := workflow.ExecuteActivity(ctx, "ExecuteDuePayments", params).Get(ctx, &result); err != nil {
		return fmt.Errorf("execute due payments: %w", err)
	}

	workflow.GetLogger(ctx).Info("payment sweep finished",
		"due", result.Due,
		"executed", result.Executed,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return nil
}
