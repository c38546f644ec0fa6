package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

var (
	ErrNotFound  = errors.New("procurement record not found")
	ErrDuplicate = errors.New("procurement record already exists")
)

// RequestFilter narrows a purchase request listing. Empty fields do not filter.
type RequestFilter struct {
	RequesterID string
	Statuses    []domain.RequestStatus
	Search      string
	Page        pagination.Request
}

// OrderFilter narrows a purchase order listing. RequesterID and ApproverID
// match the originating request's owner and approvers respectively.
type OrderFilter struct {
	RequesterID string
	ApproverID  string
	Statuses    []domain.OrderStatus
	Page        pagination.Request
}

// Repository is the persistence port of the procurement context.
type Repository interface {
	// CreateRequest inserts the request header and its items.
	CreateRequest(ctx context.Context, request *domain.PurchaseRequest) error
	// CreateApprovalChain inserts every ledger slot for a request; ErrDuplicate when one exists.
	CreateApprovalChain(ctx context.Context, requestID string, approvals []domain.Approval) error
	GetRequest(ctx context.Context, id string) (*domain.PurchaseRequest, error)
	// LockRequest loads a request and holds it exclusively until the unit of work ends.
	LockRequest(ctx context.Context, id string) (*domain.PurchaseRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) (pagination.Page[*domain.PurchaseRequest], error)
	// UpdateRequest writes header fields, extracted data, the finalization link and replaces items.
	UpdateRequest(ctx context.Context, request *domain.PurchaseRequest) error
	// RecordApproval persists a decided slot only while the stored slot is pending;
	// otherwise it fails with domain.ErrSlotDecided.
	RecordApproval(ctx context.Context, requestID string, approval domain.Approval) error
	// NextPOSequence atomically increments and returns the PO counter for day (YYYYMMDD).
	NextPOSequence(ctx context.Context, day string) (int, error)
	// CreateOrder inserts a purchase order; ErrDuplicate on a taken number or request.
	CreateOrder(ctx context.Context, order *domain.PurchaseOrder) error
	GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	GetOrderByRequest(ctx context.Context, requestID string) (*domain.PurchaseOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) (pagination.Page[*domain.PurchaseOrder], error)
	// UpdateOrder writes status and notes.
	UpdateOrder(ctx context.Context, order *domain.PurchaseOrder) error
	SaveOrderDocument(ctx context.Context, orderID string, document domain.Document) error
	ListOrdersMissingDocument(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error)
}

// UnitOfWork runs fn atomically; the repository handed to fn is bound to the
// unit and every write is discarded when fn returns an error.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

// Store is a repository that can also open units of work.
type Store interface {
	Repository
	UnitOfWork
}
