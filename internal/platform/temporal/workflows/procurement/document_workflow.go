package procurement

import (
	"go.temporal.io/sdk/workflow"

	procactivities "github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/activities/procurement"
	"github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/sequences"
)

const (
	// DocumentWorkflowName is the public identifier for registering the workflow.
	DocumentWorkflowName = "procurement.workflows.PurchaseOrderDocument"
	// DocumentTaskQueue is the queue consumed by the worker rendering purchase order documents.
	DocumentTaskQueue = "PO_DOCUMENTS"
)

// DocumentWorkflowInput captures the purchase order whose document must be produced.
type DocumentWorkflowInput struct {
	OrderID string
	TraceID string
}

// DocumentWorkflow produces the document of a finalized purchase order.
func DocumentWorkflow(ctx workflow.Context, input DocumentWorkflowInput) (*procactivities.DocumentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("DocumentWorkflow started", withTraceID(input.TraceID, "poId", input.OrderID)...)
	result, err := sequences.RunDocumentSequence(ctx, procactivities.DocumentInput{OrderID: input.OrderID})
	if err != nil {
		logger.Error("DocumentWorkflow failed", withTraceID(input.TraceID, "poId", input.OrderID, "error", err)...)
		return nil, err
	}
	logger.Info("DocumentWorkflow completed", withTraceID(input.TraceID, "poId", result.OrderID, "poNumber", result.Number)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
