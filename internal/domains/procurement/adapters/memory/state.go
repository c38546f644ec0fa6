package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

var _ ports.Repository = (*state)(nil)

// state holds the records of a store. It performs no locking; the owning
// Store or unit of work is responsible for exclusion.
type state struct {
	requests  map[string]*domain.PurchaseRequest
	chains    map[string]bool
	orders    map[string]*domain.PurchaseOrder
	numbers   map[string]string
	byRequest map[string]string
	sequences map[string]int
}

func newState() *state {
	return &state{
		requests:  map[string]*domain.PurchaseRequest{},
		chains:    map[string]bool{},
		orders:    map[string]*domain.PurchaseOrder{},
		numbers:   map[string]string{},
		byRequest: map[string]string{},
		sequences: map[string]int{},
	}
}

func (st *state) clone() *state {
	out := newState()
	for id, r := range st.requests {
		out.requests[id] = r.Clone()
	}
	for id, o := range st.orders {
		out.orders[id] = o.Clone()
	}
	for k, v := range st.chains {
		out.chains[k] = v
	}
	for k, v := range st.numbers {
		out.numbers[k] = v
	}
	for k, v := range st.byRequest {
		out.byRequest[k] = v
	}
	for k, v := range st.sequences {
		out.sequences[k] = v
	}
	return out
}

func (st *state) CreateRequest(_ context.Context, request *domain.PurchaseRequest) error {
	if request == nil {
		return errors.New("purchase request is nil")
	}
	if _, ok := st.requests[request.ID]; ok {
		return fmt.Errorf("%w: purchase request %s", ports.ErrDuplicate, request.ID)
	}
	st.requests[request.ID] = request.Clone()
	return nil
}

func (st *state) CreateApprovalChain(_ context.Context, requestID string, approvals []domain.Approval) error {
	stored, ok := st.requests[requestID]
	if !ok {
		return ports.ErrNotFound
	}
	if st.chains[requestID] {
		return fmt.Errorf("%w: approval chain for %s", ports.ErrDuplicate, requestID)
	}
	ledger, err := domain.RestoreLedger(approvals)
	if err != nil {
		return err
	}
	stored.Ledger = ledger
	st.chains[requestID] = true
	return nil
}

func (st *state) GetRequest(_ context.Context, id string) (*domain.PurchaseRequest, error) {
	stored, ok := st.requests[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.Clone(), nil
}

func (st *state) LockRequest(ctx context.Context, id string) (*domain.PurchaseRequest, error) {
	return st.GetRequest(ctx, id)
}

func (st *state) ListRequests(_ context.Context, filter ports.RequestFilter) (pagination.Page[*domain.PurchaseRequest], error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]*domain.PurchaseRequest, 0, len(st.requests))
	for _, r := range st.requests {
		if filter.RequesterID != "" && r.RequesterID != filter.RequesterID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, r.Status()) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Title), search) && !strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		matched = append(matched, r.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return pagination.Slice(matched, filter.Page), nil
}

// UpdateRequest never touches the ledger; slots change only through RecordApproval.
func (st *state) UpdateRequest(_ context.Context, request *domain.PurchaseRequest) error {
	if request == nil {
		return errors.New("purchase request is nil")
	}
	stored, ok := st.requests[request.ID]
	if !ok {
		return ports.ErrNotFound
	}
	updated := request.Clone()
	updated.Ledger = stored.Ledger
	updated.CreatedAt = stored.CreatedAt
	st.requests[request.ID] = updated
	return nil
}

func (st *state) RecordApproval(_ context.Context, requestID string, approval domain.Approval) error {
	stored, ok := st.requests[requestID]
	if !ok {
		return ports.ErrNotFound
	}
	if approval.DecidedAt == nil {
		return fmt.Errorf("%w: decision time missing", domain.ErrInvalidOutcome)
	}
	_, err := stored.Ledger.Record(approval.Level, approval.ApproverID, approval.Status, approval.Comment, *approval.DecidedAt)
	return err
}

func (st *state) NextPOSequence(_ context.Context, day string) (int, error) {
	st.sequences[day]++
	return st.sequences[day], nil
}

func (st *state) CreateOrder(_ context.Context, order *domain.PurchaseOrder) error {
	if order == nil {
		return errors.New("purchase order is nil")
	}
	if _, ok := st.orders[order.ID]; ok {
		return fmt.Errorf("%w: purchase order %s", ports.ErrDuplicate, order.ID)
	}
	if _, ok := st.numbers[order.Number]; ok {
		return fmt.Errorf("%w: po number %s", ports.ErrDuplicate, order.Number)
	}
	if _, ok := st.byRequest[order.RequestID]; ok {
		return fmt.Errorf("%w: purchase order for request %s", ports.ErrDuplicate, order.RequestID)
	}
	st.orders[order.ID] = order.Clone()
	st.numbers[order.Number] = order.ID
	st.byRequest[order.RequestID] = order.ID
	return nil
}

func (st *state) GetOrder(_ context.Context, id string) (*domain.PurchaseOrder, error) {
	stored, ok := st.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.Clone(), nil
}

func (st *state) GetOrderByRequest(ctx context.Context, requestID string) (*domain.PurchaseOrder, error) {
	id, ok := st.byRequest[requestID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return st.GetOrder(ctx, id)
}

func (st *state) ListOrders(_ context.Context, filter ports.OrderFilter) (pagination.Page[*domain.PurchaseOrder], error) {
	matched := make([]*domain.PurchaseOrder, 0, len(st.orders))
	for _, o := range st.orders {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
			continue
		}
		if filter.RequesterID != "" || filter.ApproverID != "" {
			request, ok := st.requests[o.RequestID]
			if !ok {
				continue
			}
			if filter.RequesterID != "" && request.RequesterID != filter.RequesterID {
				continue
			}
			if filter.ApproverID != "" && !request.Ledger.ApprovedBy(filter.ApproverID) {
				continue
			}
		}
		matched = append(matched, o.Clone())
	}
	sortOrders(matched, false)
	return pagination.Slice(matched, filter.Page), nil
}

func (st *state) UpdateOrder(_ context.Context, order *domain.PurchaseOrder) error {
	if order == nil {
		return errors.New("purchase order is nil")
	}
	stored, ok := st.orders[order.ID]
	if !ok {
		return ports.ErrNotFound
	}
	stored.Status = order.Status
	stored.Notes = order.Notes
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (st *state) SaveOrderDocument(_ context.Context, orderID string, document domain.Document) error {
	stored, ok := st.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	stored.AttachDocument(&document, document.GeneratedAt)
	return nil
}

func (st *state) ListOrdersMissingDocument(_ context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	matched := make([]*domain.PurchaseOrder, 0)
	for _, o := range st.orders {
		if !o.HasDocument() {
			matched = append(matched, o.Clone())
		}
	}
	sortOrders(matched, true)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func sortOrders(orders []*domain.PurchaseOrder, oldestFirst bool) {
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			if oldestFirst {
				return a.Number < b.Number
			}
			return a.Number > b.Number
		}
		if oldestFirst {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
