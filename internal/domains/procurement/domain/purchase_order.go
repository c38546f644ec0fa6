package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the finance-managed lifecycle of a purchase order.
type OrderStatus string

const (
	OrderGenerated OrderStatus = "GENERATED"
	OrderSent      OrderStatus = "SENT"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Keys the document scanner uses for vendor fields.
const (
	ExtractedVendorName    = "vendor_name"
	ExtractedVendorAddress = "vendor_address"
	ExtractedVendorEmail   = "vendor_email"
	ExtractedVendorPhone   = "vendor_phone"
	ExtractedTotalAmount   = "total_amount"
)

var (
	ErrInvalidOrderStatus = errors.New("purchase order status is invalid")
	ErrNotFullyApproved   = errors.New("purchase request is not approved at every level")
	ErrAlreadyFinalized   = errors.New("purchase request already has a purchase order")
	ErrEmptyPONumber      = errors.New("purchase order number is required")
)

// ParseOrderStatus validates a status supplied by finance.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case OrderGenerated, OrderSent, OrderCompleted, OrderCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, raw)
	}
}

// Vendor is the supplier block copied from extracted data.
type Vendor struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

// Empty reports whether no vendor field is known.
func (v Vendor) Empty() bool {
	return v.Name == "" && v.Address == "" && v.Email == "" && v.Phone == ""
}

// VendorFromExtractedData reads the vendor block from scanner output only.
func VendorFromExtractedData(data map[string]any) Vendor {
	return Vendor{
		Name:    extractedString(data, ExtractedVendorName),
		Address: extractedString(data, ExtractedVendorAddress),
		Email:   extractedString(data, ExtractedVendorEmail),
		Phone:   extractedString(data, ExtractedVendorPhone),
	}
}

// Document is a rendered purchase order artifact.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
	GeneratedAt time.Time
}

// PurchaseOrder is minted once per fully approved purchase request.
type PurchaseOrder struct {
	ID          string
	Number      string
	RequestID   string
	Vendor      Vendor
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Notes       string
	Document    *Document
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPurchaseOrder materializes the order from an approved request. The total
// is the request amount as-is; vendor fields come from extracted data only.
func NewPurchaseOrder(id, number string, request *PurchaseRequest, createdBy string, now time.Time) (*PurchaseOrder, error) {
	if request == nil {
		return nil, errors.New("purchase request is nil")
	}
	if strings.TrimSpace(number) == "" {
		return nil, ErrEmptyPONumber
	}
	if request.Finalized() {
		return nil, ErrAlreadyFinalized
	}
	if request.Ledger.Status() != StatusApprovedLevel2 {
		return nil, ErrNotFullyApproved
	}
	return &PurchaseOrder{
		ID:          id,
		Number:      number,
		RequestID:   request.ID,
		Vendor:      VendorFromExtractedData(request.ExtractedData),
		TotalAmount: request.Amount,
		Status:      OrderGenerated,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateStatus moves the order to any known lifecycle status.
func (o *PurchaseOrder) UpdateStatus(status OrderStatus, now time.Time) error {
	if _, err := ParseOrderStatus(string(status)); err != nil {
		return err
	}
	o.Status = status
	o.UpdatedAt = now
	return nil
}

// AttachDocument replaces the rendered artifact.
func (o *PurchaseOrder) AttachDocument(doc *Document, now time.Time) {
	if doc == nil {
		o.Document = nil
		return
	}
	copy := *doc
	copy.Content = append([]byte(nil), doc.Content...)
	o.Document = &copy
	o.UpdatedAt = now
}

// HasDocument reports whether an artifact is attached.
func (o *PurchaseOrder) HasDocument() bool {
	return o.Document != nil && len(o.Document.Content) > 0
}

// Clone returns a deep copy.
func (o *PurchaseOrder) Clone() *PurchaseOrder {
	if o == nil {
		return nil
	}
	copy := *o
	if o.Document != nil {
		doc := *o.Document
		doc.Content = append([]byte(nil), o.Document.Content...)
		copy.Document = &doc
	}
	return &copy
}
