package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

// receiptTolerance is the accepted relative difference between receipt and order totals.
var receiptTolerance = decimal.RequireFromString("0.01")

// ValidateReceipt compares the total scanned from a receipt with the purchase order total.
func (s *Service) ValidateReceipt(ctx context.Context, input types.ReceiptValidationInput) (*types.ReceiptValidation, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	request, err := s.store.GetRequest(ctx, input.RequestID)
	if err != nil {
		return nil, mapError(err)
	}
	switch input.Actor.Role {
	case domain.RoleFinance:
	case domain.RoleStaff:
		if request.RequesterID != input.Actor.ID {
			return nil, fmt.Errorf("%w: receipts can only be checked for own requests", ErrAuthorization)
		}
	case domain.RoleLevel1Approver, domain.RoleLevel2Approver:
		return nil, fmt.Errorf("%w: %s cannot submit receipts", ErrAuthorization, input.Actor.Role)
	default:
		return nil, fmt.Errorf("%w: %s", ErrAuthorization, input.Actor.Role)
	}
	order, err := s.store.GetOrderByRequest(ctx, request.ID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: request %s has no purchase order", ErrState, request.ID)
		}
		return nil, mapError(err)
	}
	return compareReceipt(input.ReceiptData, order.TotalAmount), nil
}

func compareReceipt(receipt map[string]any, orderAmount decimal.Decimal) *types.ReceiptValidation {
	result := &types.ReceiptValidation{OrderAmount: orderAmount}
	amount, ok := receiptAmount(receipt)
	if !ok {
		result.Message = "Could not extract amount from receipt"
		return result
	}
	result.ReceiptAmount = &amount
	diff := amount.Sub(orderAmount).Abs()
	var variance decimal.Decimal
	switch {
	case orderAmount.IsZero() && diff.IsZero():
		variance = decimal.Zero
	case orderAmount.IsZero():
		result.Message = "Amount mismatch"
		return result
	default:
		variance = diff.Div(orderAmount.Abs())
	}
	if variance.LessThanOrEqual(receiptTolerance) {
		result.Valid = true
		result.Message = "Receipt matches PO"
		return result
	}
	percent := variance.Mul(decimal.NewFromInt(100)).Round(2)
	result.Message = "Amount mismatch"
	result.VariancePercent = &percent
	return result
}

func receiptAmount(receipt map[string]any) (decimal.Decimal, bool) {
	raw, ok := receipt[domain.ExtractedTotalAmount]
	if !ok || raw == nil {
		return decimal.Decimal{}, false
	}
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(v))
		amount, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return amount, true
	default:
		amount, err := decimal.NewFromString(fmt.Sprint(v))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return amount, true
	}
}
