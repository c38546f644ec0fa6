package procurement

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application"
	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

// GenerateDocumentActivityName renders and stores the document of a purchase order.
const GenerateDocumentActivityName = "procurement.activities.GenerateDocument"

const nonRetryableType = "DocumentNotRetryable"

// DocumentInput identifies the purchase order whose document is generated.
type DocumentInput struct {
	OrderID string
}

// DocumentResult describes the stored artifact.
type DocumentResult struct {
	OrderID  string
	Number   string
	Filename string
}

// Activities groups activities that operate on the procurement bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the procurement service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// GenerateDocument runs as a system caller. A missing purchase order is not retried.
func (a *Activities) GenerateDocument(ctx context.Context, input DocumentInput) (*DocumentResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("document activity not initialized", "poId", input.OrderID)
		return nil, errors.New("document activity not initialized")
	}
	logger.Info("GenerateDocument activity started", "poId", input.OrderID, "attempt", activity.GetInfo(ctx).Attempt)
	order, err := a.service.GenerateDocument(ctx, types.GenerateDocumentInput{OrderID: input.OrderID})
	if err != nil {
		logger.Error("GenerateDocument activity failed", "poId", input.OrderID, "error", err)
		if errors.Is(err, ports.ErrNotFound) || errors.Is(err, application.ErrAuthorization) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), nonRetryableType, err)
		}
		return nil, err
	}
	result := &DocumentResult{OrderID: order.ID, Number: order.Number}
	if order.Document != nil {
		result.Filename = order.Document.Filename
	}
	logger.Info("GenerateDocument activity completed", "poId", order.ID, "poNumber", order.Number)
	return result, nil
}
