package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

// Item is the HTTP representation of a requested line.
type Item struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CreateRequest is the inbound payload for a new purchase request.
type CreateRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Items         []Item          `json:"items,omitempty"`
	ExtractedData map[string]any  `json:"extractedData,omitempty"`
}

// UpdateRequest keeps field presence so omitted fields stay untouched.
type UpdateRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Items       *[]Item          `json:"items,omitempty"`
}

// Decision carries the optional approver comment.
type Decision struct {
	Comment string `json:"comment,omitempty"`
}

// OrderStatusUpdate is the finance payload advancing a purchase order.
type OrderStatusUpdate struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// Approval is one ledger slot as exposed over HTTP.
type Approval struct {
	Level      string     `json:"level"`
	Status     string     `json:"status"`
	ApproverID string     `json:"approverId,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
}

// PurchaseRequest is the outbound request representation.
type PurchaseRequest struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	RequesterID     string          `json:"requesterId"`
	Items           []Item          `json:"items"`
	Approvals       []Approval      `json:"approvals"`
	ExtractedData   map[string]any  `json:"extractedData,omitempty"`
	PurchaseOrderID string          `json:"purchaseOrderId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Vendor is the supplier block of a purchase order.
type Vendor struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// DocumentInfo describes the stored artifact without its bytes.
type DocumentInfo struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// PurchaseOrder is the outbound purchase order representation.
type PurchaseOrder struct {
	ID          string          `json:"id"`
	Number      string          `json:"poNumber"`
	RequestID   string          `json:"purchaseRequestId"`
	Vendor      Vendor          `json:"vendor"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	Document    *DocumentInfo   `json:"document,omitempty"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DecisionResult is returned by approve and reject.
type DecisionResult struct {
	Request       PurchaseRequest `json:"request"`
	Approval      Approval        `json:"approval"`
	PurchaseOrder *PurchaseOrder  `json:"purchaseOrder,omitempty"`
}

// ReceiptValidation reports a three-way match between receipt and purchase order.
type ReceiptValidation struct {
	Valid           bool             `json:"valid"`
	Message         string           `json:"message"`
	ReceiptAmount   *decimal.Decimal `json:"receiptAmount,omitempty"`
	OrderAmount     decimal.Decimal  `json:"poAmount"`
	VariancePercent *decimal.Decimal `json:"variancePercent,omitempty"`
}

// Page wraps a listing with its bounds.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	HasNext  bool  `json:"hasNext"`
}

// ToItemInputs converts HTTP items into service input.
func ToItemInputs(items []Item) []types.ItemInput {
	out := make([]types.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, types.ItemInput{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return out
}

// ToCreateInput builds the service input for a new request.
func ToCreateInput(actor domain.Actor, payload CreateRequest) types.CreateRequestInput {
	return types.CreateRequestInput{
		Actor:         actor,
		Title:         payload.Title,
		Description:   payload.Description,
		Amount:        payload.Amount,
		Items:         ToItemInputs(payload.Items),
		ExtractedData: payload.ExtractedData,
	}
}

// ToUpdateInput builds the service input for a partial edit.
func ToUpdateInput(actor domain.Actor, requestID string, payload UpdateRequest) types.UpdateRequestInput {
	input := types.UpdateRequestInput{
		Actor:       actor,
		RequestID:   requestID,
		Title:       payload.Title,
		Description: payload.Description,
		Amount:      payload.Amount,
	}
	if payload.Items != nil {
		items := ToItemInputs(*payload.Items)
		input.Items = &items
	}
	return input
}

// FromRequest maps a domain request for the response body.
func FromRequest(r *domain.PurchaseRequest) PurchaseRequest {
	if r == nil {
		return PurchaseRequest{}
	}
	items := make([]Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, Item{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	approvals := make([]Approval, 0, len(domain.Levels))
	for _, a := range r.Ledger.Approvals() {
		approvals = append(approvals, FromApproval(a))
	}
	return PurchaseRequest{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Amount:          r.Amount,
		Status:          string(r.Status()),
		RequesterID:     r.RequesterID,
		Items:           items,
		Approvals:       approvals,
		ExtractedData:   r.ExtractedData,
		PurchaseOrderID: r.PurchaseOrderID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromApproval maps a single ledger slot.
func FromApproval(a domain.Approval) Approval {
	return Approval{
		Level:      string(a.Level),
		Status:     string(a.Status),
		ApproverID: a.ApproverID,
		Comment:    a.Comment,
		DecidedAt:  a.DecidedAt,
	}
}

// FromOrder maps a domain purchase order; document bytes are served separately.
func FromOrder(o *domain.PurchaseOrder) PurchaseOrder {
	if o == nil {
		return PurchaseOrder{}
	}
	out := PurchaseOrder{
		ID:          o.ID,
		Number:      o.Number,
		RequestID:   o.RequestID,
		Vendor:      Vendor(o.Vendor),
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Notes:       o.Notes,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.HasDocument() {
		out.Document = &DocumentInfo{
			Filename:    o.Document.Filename,
			ContentType: o.Document.ContentType,
			Size:        len(o.Document.Content),
			GeneratedAt: o.Document.GeneratedAt,
		}
	}
	return out
}

// FromDecision maps the outcome of approve or reject.
func FromDecision(result *types.DecisionResult) DecisionResult {
	if result == nil {
		return DecisionResult{}
	}
	out := DecisionResult{
		Request:  FromRequest(result.Request),
		Approval: FromApproval(result.Approval),
	}
	if result.Order != nil {
		order := FromOrder(result.Order)
		out.PurchaseOrder = &order
	}
	return out
}

// FromReceiptValidation maps the match result.
func FromReceiptValidation(v *types.ReceiptValidation) ReceiptValidation {
	if v == nil {
		return ReceiptValidation{}
	}
	return ReceiptValidation{
		Valid:           v.Valid,
		Message:         v.Message,
		ReceiptAmount:   v.ReceiptAmount,
		OrderAmount:     v.OrderAmount,
		VariancePercent: v.VariancePercent,
	}
}

// FromPage maps a listing page with the given item converter.
func FromPage[T, U any](p pagination.Page[T], fn func(T) U) Page[U] {
	mapped := pagination.Map(p, fn)
	return Page[U]{
		Items:    mapped.Items,
		Total:    mapped.Total,
		Page:     mapped.Page,
		PageSize: mapped.PageSize,
		HasNext:  p.HasNext(),
	}
}
