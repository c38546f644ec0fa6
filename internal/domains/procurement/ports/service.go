package ports

import (
	"context"

	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

// Service defines the procurement use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreateRequest(ctx context.Context, input types.CreateRequestInput) (*domain.PurchaseRequest, error)
	UpdateRequest(ctx context.Context, input types.UpdateRequestInput) (*domain.PurchaseRequest, error)
	AttachExtractedData(ctx context.Context, input types.AttachExtractedDataInput) (*domain.PurchaseRequest, error)
	GetRequest(ctx context.Context, input types.RequestLookup) (*domain.PurchaseRequest, error)
	ListRequests(ctx context.Context, input types.ListRequestsInput) (pagination.Page[*domain.PurchaseRequest], error)
	Approve(ctx context.Context, input types.DecisionInput) (*types.DecisionResult, error)
	Reject(ctx context.Context, input types.DecisionInput) (*types.DecisionResult, error)
	GetPurchaseOrder(ctx context.Context, input types.OrderLookup) (*domain.PurchaseOrder, error)
	GetPurchaseOrderByRequest(ctx context.Context, input types.RequestLookup) (*domain.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, input types.ListOrdersInput) (pagination.Page[*domain.PurchaseOrder], error)
	UpdatePurchaseOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) (*domain.PurchaseOrder, error)
	GenerateDocument(ctx context.Context, input types.GenerateDocumentInput) (*domain.PurchaseOrder, error)
	ValidateReceipt(ctx context.Context, input types.ReceiptValidationInput) (*types.ReceiptValidation, error)
	ListOrdersMissingDocument(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error)
}
