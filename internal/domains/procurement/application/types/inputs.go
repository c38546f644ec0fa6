package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
)

// ItemInput describes one requested line. TotalPrice is accepted for wire
// compatibility and always recomputed.
type ItemInput struct {
	Name        string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// CreateRequestInput captures a new purchase request submitted by staff.
type CreateRequestInput struct {
	Actor         domain.Actor
	Title         string
	Description   string
	Amount        decimal.Decimal
	Items         []ItemInput
	ExtractedData map[string]any
}

// UpdateRequestInput carries partial edits; nil fields are left untouched and
// a non-nil Items replaces the whole list.
type UpdateRequestInput struct {
	Actor       domain.Actor
	RequestID   string
	Title       *string
	Description *string
	Amount      *decimal.Decimal
	Items       *[]ItemInput
}

// AttachExtractedDataInput stores scanner output on a request.
type AttachExtractedDataInput struct {
	RequestID string
	Data      map[string]any
}

// RequestLookup identifies a request read on behalf of an actor.
type RequestLookup struct {
	RequestID string
	Actor     domain.Actor
}

// OrderLookup identifies a purchase order read on behalf of an actor.
type OrderLookup struct {
	OrderID string
	Actor   domain.Actor
}

// ListRequestsInput pages through the requests visible to the actor.
type ListRequestsInput struct {
	Actor    domain.Actor
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ListOrdersInput pages through the purchase orders visible to the actor.
type ListOrdersInput struct {
	Actor    domain.Actor
	Status   string
	Page     int
	PageSize int
}

// DecisionInput is an approve or reject call.
type DecisionInput struct {
	RequestID string
	Actor     domain.Actor
	Comment   string
}

// UpdateOrderStatusInput advances a purchase order. Notes is optional.
type UpdateOrderStatusInput struct {
	OrderID string
	Actor   domain.Actor
	Status  string
	Notes   *string
}

// GenerateDocumentInput requests a (re)render. A nil Actor marks a system
// caller such as the document workflow or backfill job.
type GenerateDocumentInput struct {
	OrderID string
	Actor   *domain.Actor
}

// ReceiptValidationInput compares scanned receipt fields against the purchase order.
type ReceiptValidationInput struct {
	RequestID   string
	Actor       domain.Actor
	ReceiptData map[string]any
}
