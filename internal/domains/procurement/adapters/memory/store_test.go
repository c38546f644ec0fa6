package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

func seedRequest(t *testing.T, store *Store, id, requester, title string, created time.Time) *domain.PurchaseRequest {
	t.Helper()
	request, err := domain.NewPurchaseRequest(id, title, "", decimal.NewFromInt(100), requester, nil, created)
	require.NoError(t, err)
	require.NoError(t, store.CreateRequest(context.Background(), request))
	require.NoError(t, store.CreateApprovalChain(context.Background(), id, request.Ledger.Approvals()))
	return request
}

func TestStore_CreateApprovalChainOnce(t *testing.T) {
	store := NewStore()
	request := seedRequest(t, store, "r1", "staff-1", "Chairs", time.Now())

	err := store.CreateApprovalChain(context.Background(), request.ID, request.Ledger.Approvals())
	require.ErrorIs(t, err, ports.ErrDuplicate)

	err = store.CreateApprovalChain(context.Background(), "missing", request.Ledger.Approvals())
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedRequest(t, store, "r1", "staff-1", "Chairs", time.Now())
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		request, err := repo.LockRequest(ctx, "r1")
		require.NoError(t, err)
		approval, err := request.Ledger.Record(domain.LevelOne, "l1", domain.ApprovalApproved, "", time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.RecordApproval(ctx, "r1", approval))
		_, err = repo.NextPOSequence(ctx, "20240601")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status())

	seq, err := store.NextPOSequence(ctx, "20240601")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestStore_RecordApprovalIsGuarded(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	request := seedRequest(t, store, "r1", "staff-1", "Chairs", time.Now())

	approval, err := request.Ledger.Record(domain.LevelOne, "l1", domain.ApprovalApproved, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.RecordApproval(ctx, "r1", approval))
	require.ErrorIs(t, store.RecordApproval(ctx, "r1", approval), domain.ErrSlotDecided)
}

func TestStore_UpdateRequestKeepsLedger(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	request := seedRequest(t, store, "r1", "staff-1", "Chairs", time.Now())

	_, err := request.Ledger.Record(domain.LevelOne, "l1", domain.ApprovalRejected, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, request.Rename("Desks"))
	require.NoError(t, store.UpdateRequest(ctx, request))

	stored, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Desks", stored.Title)
	assert.Equal(t, domain.StatusPending, stored.Status())
}

func TestStore_NextPOSequenceIsAtomic(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	const workers = 25

	var wg sync.WaitGroup
	seen := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := store.NextPOSequence(ctx, "20240601")
			assert.NoError(t, err)
			seen <- seq
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int]bool{}
	for seq := range seen {
		unique[seq] = true
	}
	assert.Len(t, unique, workers)

	other, err := store.NextPOSequence(ctx, "20240602")
	require.NoError(t, err)
	assert.Equal(t, 1, other)
}

func TestStore_ListRequestsFiltersAndPages(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	seedRequest(t, store, "r1", "staff-1", "Office chairs", base)
	seedRequest(t, store, "r2", "staff-1", "Laptops", base.Add(time.Minute))
	seedRequest(t, store, "r3", "staff-2", "Standing desks", base.Add(2*time.Minute))

	page, err := store.ListRequests(ctx, ports.RequestFilter{RequesterID: "staff-1"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "r2", page.Items[0].ID)

	page, err = store.ListRequests(ctx, ports.RequestFilter{Search: "DESK"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "r3", page.Items[0].ID)

	page, err = store.ListRequests(ctx, ports.RequestFilter{Statuses: []domain.RequestStatus{domain.StatusPending}, Page: pagination.Request{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "r1", page.Items[0].ID)
}

func TestStore_CreateOrderUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now()

	first := &domain.PurchaseOrder{ID: "po-1", Number: "PO-20240601-0001", RequestID: "r1", Status: domain.OrderGenerated, CreatedAt: now}
	require.NoError(t, store.CreateOrder(ctx, first))

	sameNumber := &domain.PurchaseOrder{ID: "po-2", Number: "PO-20240601-0001", RequestID: "r2", CreatedAt: now}
	require.ErrorIs(t, store.CreateOrder(ctx, sameNumber), ports.ErrDuplicate)

	sameRequest := &domain.PurchaseOrder{ID: "po-3", Number: "PO-20240601-0002", RequestID: "r1", CreatedAt: now}
	require.ErrorIs(t, store.CreateOrder(ctx, sameRequest), ports.ErrDuplicate)

	missing, err := store.ListOrdersMissingDocument(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)

	require.NoError(t, store.SaveOrderDocument(ctx, "po-1", domain.Document{Filename: "PO_PO-20240601-0001.pdf", Content: []byte("pdf"), GeneratedAt: now}))
	missing, err = store.ListOrdersMissingDocument(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, missing)

	byRequest, err := store.GetOrderByRequest(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, byRequest.HasDocument())
}
