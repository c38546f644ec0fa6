package application

import (
	"context"
	"fmt"
	"slices"
	"strings"

	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

// GetRequest loads a single request if the actor may view it.
func (s *Service) GetRequest(ctx context.Context, input types.RequestLookup) (*domain.PurchaseRequest, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	request, err := s.store.GetRequest(ctx, input.RequestID)
	if err != nil {
		return nil, mapError(err)
	}
	if !request.CanView(input.Actor) {
		return nil, fmt.Errorf("%w: %s cannot view a %s request", ErrAuthorization, input.Actor.Role, request.Status())
	}
	return request, nil
}

// ListRequests pages through the requests in the actor's work queue.
func (s *Service) ListRequests(ctx context.Context, input types.ListRequestsInput) (pagination.Page[*domain.PurchaseRequest], error) {
	page := pagination.Request{Page: input.Page, PageSize: input.PageSize}
	if err := validateActor(input.Actor); err != nil {
		return pagination.Page[*domain.PurchaseRequest]{}, mapError(err)
	}
	filter := requestScope(input.Actor)
	filter.Search = strings.TrimSpace(input.Search)
	filter.Page = page
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := domain.ParseRequestStatus(raw)
		if err != nil {
			return pagination.Page[*domain.PurchaseRequest]{}, mapError(err)
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, status) {
			return pagination.NewPage[*domain.PurchaseRequest](nil, 0, page), nil
		}
		filter.Statuses = []domain.RequestStatus{status}
	}
	result, err := s.store.ListRequests(ctx, filter)
	if err != nil {
		return pagination.Page[*domain.PurchaseRequest]{}, mapError(err)
	}
	return result, nil
}

// requestScope is the queue each role works from.
func requestScope(actor domain.Actor) ports.RequestFilter {
	switch actor.Role {
	case domain.RoleStaff:
		return ports.RequestFilter{RequesterID: actor.ID}
	case domain.RoleLevel1Approver:
		return ports.RequestFilter{Statuses: []domain.RequestStatus{domain.StatusPending}}
	case domain.RoleLevel2Approver:
		return ports.RequestFilter{Statuses: []domain.RequestStatus{domain.StatusApprovedLevel1}}
	case domain.RoleFinance:
		return ports.RequestFilter{Statuses: []domain.RequestStatus{domain.StatusApproved, domain.StatusApprovedLevel2}}
	default:
		return ports.RequestFilter{RequesterID: actor.ID}
	}
}

// GetPurchaseOrder loads a purchase order if the actor may view it.
func (s *Service) GetPurchaseOrder(ctx context.Context, input types.OrderLookup) (*domain.PurchaseOrder, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	order, err := s.store.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.authorizeOrderView(ctx, order, input.Actor); err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// GetPurchaseOrderByRequest loads the purchase order minted for a request.
func (s *Service) GetPurchaseOrderByRequest(ctx context.Context, input types.RequestLookup) (*domain.PurchaseOrder, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	order, err := s.store.GetOrderByRequest(ctx, input.RequestID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.authorizeOrderView(ctx, order, input.Actor); err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListPurchaseOrders pages through the purchase orders visible to the actor.
func (s *Service) ListPurchaseOrders(ctx context.Context, input types.ListOrdersInput) (pagination.Page[*domain.PurchaseOrder], error) {
	if err := validateActor(input.Actor); err != nil {
		return pagination.Page[*domain.PurchaseOrder]{}, mapError(err)
	}
	filter := orderScope(input.Actor)
	filter.Page = pagination.Request{Page: input.Page, PageSize: input.PageSize}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			return pagination.Page[*domain.PurchaseOrder]{}, mapError(err)
		}
		filter.Statuses = []domain.OrderStatus{status}
	}
	result, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return pagination.Page[*domain.PurchaseOrder]{}, mapError(err)
	}
	return result, nil
}

// ListOrdersMissingDocument returns purchase orders still waiting for their artifact.
func (s *Service) ListOrdersMissingDocument(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	if limit <= 0 {
		limit = pagination.MaxPageSize
	}
	orders, err := s.store.ListOrdersMissingDocument(ctx, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

func orderScope(actor domain.Actor) ports.OrderFilter {
	switch actor.Role {
	case domain.RoleStaff:
		return ports.OrderFilter{RequesterID: actor.ID}
	case domain.RoleLevel1Approver, domain.RoleLevel2Approver:
		return ports.OrderFilter{ApproverID: actor.ID}
	case domain.RoleFinance:
		return ports.OrderFilter{}
	default:
		return ports.OrderFilter{RequesterID: actor.ID, ApproverID: actor.ID}
	}
}

func (s *Service) authorizeOrderView(ctx context.Context, order *domain.PurchaseOrder, actor domain.Actor) error {
	if actor.Role == domain.RoleFinance {
		return nil
	}
	request, err := s.store.GetRequest(ctx, order.RequestID)
	if err != nil {
		return err
	}
	if canViewOrder(request, actor) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot view purchase order %s", ErrAuthorization, actor.Role, order.Number)
}

func canViewOrder(request *domain.PurchaseRequest, actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleFinance:
		return true
	case domain.RoleStaff:
		return request.RequesterID == actor.ID
	case domain.RoleLevel1Approver, domain.RoleLevel2Approver:
		return request.Ledger.ApprovedBy(actor.ID)
	default:
		return false
	}
}
