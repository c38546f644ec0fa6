package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T) *PurchaseRequest {
	t.Helper()
	item, err := NewRequestItem("item-1", "Laptop", "Developer laptop", 2, decimal.RequireFromString("1500.00"))
	require.NoError(t, err)
	request, err := NewPurchaseRequest("req-1", "Laptops", "Two laptops", decimal.RequireFromString("3000.00"), "staff-1", []RequestItem{item}, time.Now())
	require.NoError(t, err)
	return request
}

func TestNewRequestItem_RecomputesTotal(t *testing.T) {
	item, err := NewRequestItem("i", "Chair", "", 3, decimal.RequireFromString("1500.00"))
	require.NoError(t, err)
	assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("4500.00")))

	item.TotalPrice = decimal.RequireFromString("1.00")
	request := newTestRequest(t)
	request.ReplaceItems([]RequestItem{item})
	assert.True(t, request.Items[0].TotalPrice.Equal(decimal.RequireFromString("4500.00")))
}

func TestNewRequestItem_Validation(t *testing.T) {
	_, err := NewRequestItem("i", " ", "", 1, decimal.Zero)
	require.ErrorIs(t, err, ErrEmptyItemName)
	_, err = NewRequestItem("i", "Desk", "", 0, decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidItemQty)
	_, err = NewRequestItem("i", "Desk", "", 1, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, ErrNegativeUnit)
}

func TestNewPurchaseRequest_Validation(t *testing.T) {
	now := time.Now()
	_, err := NewPurchaseRequest("r", "", "", decimal.Zero, "staff-1", nil, now)
	require.ErrorIs(t, err, ErrEmptyTitle)
	_, err = NewPurchaseRequest("r", "Title", "", decimal.NewFromInt(-5), "staff-1", nil, now)
	require.ErrorIs(t, err, ErrNegativeAmount)
	_, err = NewPurchaseRequest("r", "Title", "", decimal.Zero, "", nil, now)
	require.ErrorIs(t, err, ErrMissingRequester)
}

func TestPurchaseRequest_CanApprove(t *testing.T) {
	request := newTestRequest(t)
	l1 := Actor{ID: "l1", Role: RoleLevel1Approver}
	l2 := Actor{ID: "l2", Role: RoleLevel2Approver}
	staff := Actor{ID: "staff-1", Role: RoleStaff}
	finance := Actor{ID: "fin", Role: RoleFinance}

	assert.True(t, request.CanApprove(l1))
	assert.False(t, request.CanApprove(l2))
	assert.False(t, request.CanApprove(staff))
	assert.False(t, request.CanApprove(finance))

	_, err := request.Ledger.Record(LevelOne, l1.ID, ApprovalApproved, "", time.Now())
	require.NoError(t, err)
	assert.False(t, request.CanApprove(l1))
	assert.True(t, request.CanApprove(l2))
}

func TestPurchaseRequest_CanRejectAllowsLevelTwoWhilePending(t *testing.T) {
	request := newTestRequest(t)
	assert.True(t, request.CanReject(Actor{ID: "l2", Role: RoleLevel2Approver}))
	assert.True(t, request.CanReject(Actor{ID: "l1", Role: RoleLevel1Approver}))
	assert.False(t, request.CanReject(Actor{ID: "staff-1", Role: RoleStaff}))

	_, err := request.Ledger.Record(LevelOne, "l1", ApprovalRejected, "", time.Now())
	require.NoError(t, err)
	assert.False(t, request.CanReject(Actor{ID: "l2", Role: RoleLevel2Approver}))
}

func TestPurchaseRequest_StatusPromotedByFinalization(t *testing.T) {
	request := newTestRequest(t)
	now := time.Now()
	_, err := request.Ledger.Record(LevelOne, "l1", ApprovalApproved, "", now)
	require.NoError(t, err)
	_, err = request.Ledger.Record(LevelTwo, "l2", ApprovalApproved, "", now)
	require.NoError(t, err)
	assert.Equal(t, StatusApprovedLevel2, request.Status())

	request.MarkFinalized("po-1", now)
	assert.Equal(t, StatusApproved, request.Status())
	assert.True(t, request.Status().Terminal())
	assert.False(t, request.Editable())
}

func TestPurchaseRequest_CanView(t *testing.T) {
	request := newTestRequest(t)
	assert.True(t, request.CanView(Actor{ID: "staff-1", Role: RoleStaff}))
	assert.False(t, request.CanView(Actor{ID: "staff-2", Role: RoleStaff}))
	assert.True(t, request.CanView(Actor{ID: "l1", Role: RoleLevel1Approver}))
	assert.False(t, request.CanView(Actor{ID: "l2", Role: RoleLevel2Approver}))
	assert.False(t, request.CanView(Actor{ID: "fin", Role: RoleFinance}))
}

func TestPurchaseRequest_CloneIsIndependent(t *testing.T) {
	request := newTestRequest(t)
	request.AttachExtractedData(map[string]any{"vendor_name": "Acme"})

	clone := request.Clone()
	clone.Items[0].Name = "Changed"
	clone.ExtractedData["vendor_name"] = "Other"
	_, err := clone.Ledger.Record(LevelOne, "l1", ApprovalApproved, "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Laptop", request.Items[0].Name)
	assert.Equal(t, "Acme", request.ExtractedString("vendor_name"))
	assert.Equal(t, StatusPending, request.Status())
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("approver_level_1")
	require.NoError(t, err)
	assert.Equal(t, RoleLevel1Approver, role)

	role, err = ParseRole(" finance ")
	require.NoError(t, err)
	assert.Equal(t, RoleFinance, role)

	_, err = ParseRole("admin")
	require.ErrorIs(t, err, ErrUnknownRole)

	level, ok := RoleLevel2Approver.ApprovalLevel()
	assert.True(t, ok)
	assert.Equal(t, LevelTwo, level)
	_, ok = RoleStaff.ApprovalLevel()
	assert.False(t, ok)
}
