package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	procactivities "github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/activities/procurement"
)

// RunDocumentSequence renders the purchase order document with retries.
func RunDocumentSequence(ctx workflow.Context, input procactivities.DocumentInput) (*procactivities.DocumentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("document sequence started", "poId", input.OrderID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    8,
		},
	}

	var result procactivities.DocumentResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), procactivities.GenerateDocumentActivityName, input).Get(ctx, &result)
	if err != nil {
		logger.Error("document sequence failed", "poId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info("document sequence stored", "poId", result.OrderID, "poNumber", result.Number)
	return &result, nil
}
