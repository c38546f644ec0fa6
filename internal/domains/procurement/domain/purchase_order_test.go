package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedRequest(t *testing.T) *PurchaseRequest {
	t.Helper()
	request := newTestRequest(t)
	now := time.Now()
	_, err := request.Ledger.Record(LevelOne, "l1", ApprovalApproved, "", now)
	require.NoError(t, err)
	_, err = request.Ledger.Record(LevelTwo, "l2", ApprovalApproved, "", now)
	require.NoError(t, err)
	return request
}

func TestNewPurchaseOrder_CopiesRequestData(t *testing.T) {
	request := approvedRequest(t)
	request.Description = "Vendor: Not Acme Ltd"
	request.AttachExtractedData(map[string]any{
		"vendor_name":  "Acme",
		"vendor_email": "sales@acme.test",
		"total_amount": 2999.5,
	})

	order, err := NewPurchaseOrder("po-1", "PO-20240601-0001", request, "l2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, OrderGenerated, order.Status)
	assert.Equal(t, request.ID, order.RequestID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("3000.00")))
	assert.Equal(t, Vendor{Name: "Acme", Email: "sales@acme.test"}, order.Vendor)
	assert.False(t, order.HasDocument())
}

func TestNewPurchaseOrder_RequiresFullApproval(t *testing.T) {
	request := newTestRequest(t)
	_, err := NewPurchaseOrder("po-1", "PO-20240601-0001", request, "l2", time.Now())
	require.ErrorIs(t, err, ErrNotFullyApproved)

	request = approvedRequest(t)
	request.MarkFinalized("po-0", time.Now())
	_, err = NewPurchaseOrder("po-1", "PO-20240601-0001", request, "l2", time.Now())
	require.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestVendorFromExtractedData_MissingKeysAreEmpty(t *testing.T) {
	vendor := VendorFromExtractedData(nil)
	assert.True(t, vendor.Empty())

	vendor = VendorFromExtractedData(map[string]any{"vendor_phone": 5551234})
	assert.Equal(t, "5551234", vendor.Phone)
	assert.False(t, vendor.Empty())
}

func TestPurchaseOrder_UpdateStatus(t *testing.T) {
	order, err := NewPurchaseOrder("po-1", "PO-20240601-0001", approvedRequest(t), "l2", time.Now())
	require.NoError(t, err)

	require.NoError(t, order.UpdateStatus(OrderSent, time.Now()))
	assert.Equal(t, OrderSent, order.Status)
	require.ErrorIs(t, order.UpdateStatus(OrderStatus("LOST"), time.Now()), ErrInvalidOrderStatus)
}

func TestPurchaseOrder_AttachDocument(t *testing.T) {
	order, err := NewPurchaseOrder("po-1", "PO-20240601-0001", approvedRequest(t), "l2", time.Now())
	require.NoError(t, err)

	content := []byte("%PDF-1.3")
	order.AttachDocument(&Document{Filename: "PO_PO-20240601-0001.pdf", Content: content}, time.Now())
	content[0] = 'X'
	require.True(t, order.HasDocument())
	assert.Equal(t, byte('%'), order.Document.Content[0])

	clone := order.Clone()
	clone.Document.Content[0] = 'Y'
	assert.Equal(t, byte('%'), order.Document.Content[0])
}
