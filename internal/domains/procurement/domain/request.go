package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the aggregate progress of a purchase request.
type RequestStatus string

const (
	StatusPending        RequestStatus = "PENDING"
	StatusApprovedLevel1 RequestStatus = "APPROVED_LEVEL_1"
	StatusApprovedLevel2 RequestStatus = "APPROVED_LEVEL_2"
	StatusApproved       RequestStatus = "APPROVED"
	StatusRejected       RequestStatus = "REJECTED"
)

var (
	ErrEmptyTitle       = errors.New("purchase request title is required")
	ErrNegativeAmount   = errors.New("amount must be greater or equal to zero")
	ErrEmptyItemName    = errors.New("item name is required")
	ErrInvalidItemQty   = errors.New("item quantity must be at least one")
	ErrNegativeUnit     = errors.New("item unit price must be greater or equal to zero")
	ErrInvalidStatus    = errors.New("purchase request status is invalid")
	ErrMissingRequester = errors.New("requester is required")
)

// ParseRequestStatus validates a status received from outside the domain.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	status := RequestStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusApprovedLevel1, StatusApprovedLevel2, StatusApproved, StatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Terminal reports whether no further decision can change the status.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// RequestItem is a priced line of a purchase request.
type RequestItem struct {
	ID          string
	Name        string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// NewRequestItem validates the line and computes its total. Totals supplied by
// callers are never trusted.
func NewRequestItem(id, name, description string, quantity int, unitPrice decimal.Decimal) (RequestItem, error) {
	item := RequestItem{ID: id, Name: strings.TrimSpace(name), Description: description, Quantity: quantity, UnitPrice: unitPrice}
	if item.Name == "" {
		return RequestItem{}, ErrEmptyItemName
	}
	if quantity < 1 {
		return RequestItem{}, ErrInvalidItemQty
	}
	if unitPrice.IsNegative() {
		return RequestItem{}, ErrNegativeUnit
	}
	item.TotalPrice = item.computeTotal()
	return item, nil
}

func (i RequestItem) computeTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PurchaseRequest is the aggregate staff submit for approval.
type PurchaseRequest struct {
	ID              string
	Title           string
	Description     string
	Amount          decimal.Decimal
	RequesterID     string
	ExtractedData   map[string]any
	Items           []RequestItem
	Ledger          Ledger
	PurchaseOrderID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPurchaseRequest validates the invariants and opens a fresh approval ledger.
func NewPurchaseRequest(id, title, description string, amount decimal.Decimal, requesterID string, items []RequestItem, now time.Time) (*PurchaseRequest, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, ErrMissingRequester
	}
	r := &PurchaseRequest{ID: id, RequesterID: requesterID, Ledger: NewLedger(now), CreatedAt: now, UpdatedAt: now}
	if err := r.Rename(title); err != nil {
		return nil, err
	}
	r.Description = description
	if err := r.ChangeAmount(amount); err != nil {
		return nil, err
	}
	r.ReplaceItems(items)
	return r, nil
}

// Status is derived from the ledger; a fully approved ledger only reads as
// APPROVED once the purchase order exists.
func (r *PurchaseRequest) Status() RequestStatus {
	status := r.Ledger.Status()
	if status == StatusApprovedLevel2 && r.Finalized() {
		return StatusApproved
	}
	return status
}

// Finalized reports whether a purchase order was minted for the request.
func (r *PurchaseRequest) Finalized() bool {
	return r.PurchaseOrderID != ""
}

// CanApprove holds only for a level-1 approver on a pending request or a
// level-2 approver after level 1 signed.
func (r *PurchaseRequest) CanApprove(actor Actor) bool {
	status := r.Status()
	switch actor.Role {
	case RoleLevel1Approver:
		return status == StatusPending
	case RoleLevel2Approver:
		return status == StatusApprovedLevel1
	case RoleStaff, RoleFinance:
		return false
	default:
		return false
	}
}

// CanReject lets either approver reject at any non-terminal stage, including
// a level-2 approver before level 1 has acted.
func (r *PurchaseRequest) CanReject(actor Actor) bool {
	if !actor.Role.IsApprover() {
		return false
	}
	return !r.Status().Terminal()
}

// CanView mirrors what each role is allowed to look at.
func (r *PurchaseRequest) CanView(actor Actor) bool {
	status := r.Status()
	switch actor.Role {
	case RoleStaff:
		return actor.ID != "" && r.RequesterID == actor.ID
	case RoleLevel1Approver:
		return true
	case RoleLevel2Approver:
		return status != StatusPending
	case RoleFinance:
		return status == StatusApproved || status == StatusApprovedLevel2
	default:
		return false
	}
}

// Editable reports whether items and header fields may still change.
func (r *PurchaseRequest) Editable() bool {
	status := r.Status()
	return status == StatusPending || status == StatusRejected
}

// Rename updates the title ensuring it stays non-empty.
func (r *PurchaseRequest) Rename(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	r.Title = title
	return nil
}

// ChangeAmount updates the requested amount.
func (r *PurchaseRequest) ChangeAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	r.Amount = amount
	return nil
}

// ReplaceItems swaps the whole item list, recomputing every total.
func (r *PurchaseRequest) ReplaceItems(items []RequestItem) {
	r.Items = make([]RequestItem, 0, len(items))
	for _, item := range items {
		item.TotalPrice = item.computeTotal()
		r.Items = append(r.Items, item)
	}
}

// AttachExtractedData stores the scanner output verbatim. Nil and empty maps are both accepted.
func (r *PurchaseRequest) AttachExtractedData(data map[string]any) {
	r.ExtractedData = cloneExtracted(data)
}

// ExtractedString reads a scanner field as text; absent keys yield "".
func (r *PurchaseRequest) ExtractedString(key string) string {
	return extractedString(r.ExtractedData, key)
}

// MarkFinalized links the purchase order, promoting the status to APPROVED.
func (r *PurchaseRequest) MarkFinalized(orderID string, now time.Time) {
	r.PurchaseOrderID = orderID
	r.UpdatedAt = now
}

// Touch bumps the modification timestamp.
func (r *PurchaseRequest) Touch(now time.Time) {
	r.UpdatedAt = now
}

// Clone returns a deep copy safe to hand across store boundaries.
func (r *PurchaseRequest) Clone() *PurchaseRequest {
	if r == nil {
		return nil
	}
	copy := *r
	copy.Items = append([]RequestItem(nil), r.Items...)
	copy.ExtractedData = cloneExtracted(r.ExtractedData)
	return &copy
}

func cloneExtracted(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func extractedString(data map[string]any, key string) string {
	raw, ok := data[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
