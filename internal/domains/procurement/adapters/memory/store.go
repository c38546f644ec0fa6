package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory procurement persistence adapter. Units of work are
// serialised by a single lock and run against a snapshot that replaces the
// live state only when the unit succeeds.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// WithinTx runs fn exclusively against a snapshot of the store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	if err := fn(ctx, snapshot); err != nil {
		return err
	}
	s.state = snapshot
	return nil
}

// Reset drops every stored record.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = newState()
}

func (s *Store) CreateRequest(ctx context.Context, request *domain.PurchaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateRequest(ctx, request)
}

func (s *Store) CreateApprovalChain(ctx context.Context, requestID string, approvals []domain.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateApprovalChain(ctx, requestID, approvals)
}

func (s *Store) GetRequest(ctx context.Context, id string) (*domain.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetRequest(ctx, id)
}

// LockRequest outside a unit of work behaves like GetRequest.
func (s *Store) LockRequest(ctx context.Context, id string) (*domain.PurchaseRequest, error) {
	return s.GetRequest(ctx, id)
}

func (s *Store) ListRequests(ctx context.Context, filter ports.RequestFilter) (pagination.Page[*domain.PurchaseRequest], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ListRequests(ctx, filter)
}

func (s *Store) UpdateRequest(ctx context.Context, request *domain.PurchaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpdateRequest(ctx, request)
}

func (s *Store) RecordApproval(ctx context.Context, requestID string, approval domain.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RecordApproval(ctx, requestID, approval)
}

func (s *Store) NextPOSequence(ctx context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.NextPOSequence(ctx, day)
}

func (s *Store) CreateOrder(ctx context.Context, order *domain.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateOrder(ctx, order)
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetOrder(ctx, id)
}

func (s *Store) GetOrderByRequest(ctx context.Context, requestID string) (*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetOrderByRequest(ctx, requestID)
}

func (s *Store) ListOrders(ctx context.Context, filter ports.OrderFilter) (pagination.Page[*domain.PurchaseOrder], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ListOrders(ctx, filter)
}

func (s *Store) UpdateOrder(ctx context.Context, order *domain.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpdateOrder(ctx, order)
}

func (s *Store) SaveOrderDocument(ctx context.Context, orderID string, document domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SaveOrderDocument(ctx, orderID, document)
}

func (s *Store) ListOrdersMissingDocument(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ListOrdersMissingDocument(ctx, limit)
}
