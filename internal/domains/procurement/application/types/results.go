package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
)

// DecisionResult is the outcome of an approve or reject call. Order is set
// when the decision finalized the request.
type DecisionResult struct {
	Request  *domain.PurchaseRequest
	Approval domain.Approval
	Order    *domain.PurchaseOrder

	// DocumentFailed is set when the post-commit render or its scheduling failed.
	DocumentFailed bool
}

// ReceiptValidation reports whether a receipt total matches the purchase order.
type ReceiptValidation struct {
	Valid           bool
	Message         string
	ReceiptAmount   *decimal.Decimal
	OrderAmount     decimal.Decimal
	VariancePercent *decimal.Decimal
}
