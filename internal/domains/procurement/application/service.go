package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

// Service orchestrates the procurement bounded context use cases.
type Service struct {
	store     ports.Store
	renderer  ports.DocumentRenderer
	scheduler ports.DocumentScheduler
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures optional collaborators of the service.
type Option func(*Service)

// WithDocumentRenderer sets the synthesizer used for purchase order documents.
func WithDocumentRenderer(renderer ports.DocumentRenderer) Option {
	return func(s *Service) {
		s.renderer = renderer
	}
}

// WithDocumentScheduler hands document generation to an asynchronous task
// runner instead of rendering inline after finalization.
func WithDocumentScheduler(scheduler ports.DocumentScheduler) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService wires the procurement service with its dependencies.
func NewService(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// CreateRequest persists a new purchase request together with its two pending ledger slots.
func (s *Service) CreateRequest(ctx context.Context, input types.CreateRequestInput) (*domain.PurchaseRequest, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	if input.Actor.Role != domain.RoleStaff {
		return nil, fmt.Errorf("%w: only staff submit purchase requests", ErrAuthorization)
	}
	items, err := s.buildItems(input.Items)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now()
	request, err := domain.NewPurchaseRequest(s.newID(), input.Title, input.Description, input.Amount, input.Actor.ID, items, now)
	if err != nil {
		return nil, mapError(err)
	}
	if input.ExtractedData != nil {
		request.AttachExtractedData(input.ExtractedData)
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		if err := repo.CreateRequest(ctx, request); err != nil {
			return err
		}
		return createChain(ctx, repo, request)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return request, nil
}

// UpdateRequest edits a pending or rejected request on behalf of its requester.
func (s *Service) UpdateRequest(ctx context.Context, input types.UpdateRequestInput) (*domain.PurchaseRequest, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	var items []domain.RequestItem
	if input.Items != nil {
		built, err := s.buildItems(*input.Items)
		if err != nil {
			return nil, mapError(err)
		}
		items = built
	}
	var updated *domain.PurchaseRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		request, err := repo.LockRequest(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if input.Actor.Role != domain.RoleStaff || request.RequesterID != input.Actor.ID {
			return fmt.Errorf("%w: only the requester may edit a purchase request", ErrAuthorization)
		}
		if !request.Editable() {
			return fmt.Errorf("%w: request is %s", ErrState, request.Status())
		}
		if input.Title != nil {
			if err := request.Rename(*input.Title); err != nil {
				return err
			}
		}
		if input.Description != nil {
			request.Description = *input.Description
		}
		if input.Amount != nil {
			if err := request.ChangeAmount(*input.Amount); err != nil {
				return err
			}
		}
		if input.Items != nil {
			request.ReplaceItems(items)
		}
		request.Touch(s.now())
		if err := repo.UpdateRequest(ctx, request); err != nil {
			return err
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// AttachExtractedData stores the output of the external document scan on a request.
func (s *Service) AttachExtractedData(ctx context.Context, input types.AttachExtractedDataInput) (*domain.PurchaseRequest, error) {
	var updated *domain.PurchaseRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		request, err := repo.LockRequest(ctx, input.RequestID)
		if err != nil {
			return err
		}
		data := input.Data
		if data == nil {
			data = map[string]any{}
		}
		request.AttachExtractedData(data)
		request.Touch(s.now())
		if err := repo.UpdateRequest(ctx, request); err != nil {
			return err
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// Approve signs the actor's level. Reaching full approval finalizes the
// request in the same unit of work; the document follows after commit.
func (s *Service) Approve(ctx context.Context, input types.DecisionInput) (*types.DecisionResult, error) {
	return s.decide(ctx, input, domain.ApprovalApproved)
}

// Reject records a rejection on the actor's level, ending the workflow.
func (s *Service) Reject(ctx context.Context, input types.DecisionInput) (*types.DecisionResult, error) {
	return s.decide(ctx, input, domain.ApprovalRejected)
}

func (s *Service) decide(ctx context.Context, input types.DecisionInput, outcome domain.ApprovalStatus) (*types.DecisionResult, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	var result types.DecisionResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		request, err := repo.LockRequest(ctx, input.RequestID)
		if err != nil {
			return err
		}
		level, err := decisionLevel(request, input.Actor, outcome)
		if err != nil {
			return err
		}
		now := s.now()
		approval, err := recordDecision(ctx, repo, request, level, input.Actor, outcome, input.Comment, now)
		if err != nil {
			return err
		}
		var order *domain.PurchaseOrder
		if request.Ledger.Status() == domain.StatusApprovedLevel2 {
			order, err = s.finalize(ctx, repo, request, input.Actor, now)
			if err != nil {
				return err
			}
		}
		request.Touch(now)
		if err := repo.UpdateRequest(ctx, request); err != nil {
			return err
		}
		result = types.DecisionResult{Request: request, Approval: approval, Order: order}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	if result.Order != nil {
		result.Order, result.DocumentFailed = s.followUpDocument(ctx, result.Order)
	}
	return &result, nil
}

// UpdatePurchaseOrderStatus lets finance move a purchase order through its lifecycle.
func (s *Service) UpdatePurchaseOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) (*domain.PurchaseOrder, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, mapError(err)
	}
	if input.Actor.Role != domain.RoleFinance {
		return nil, fmt.Errorf("%w: only finance manages purchase orders", ErrAuthorization)
	}
	status, err := domain.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	var updated *domain.PurchaseOrder
	err = s.store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		order, err := repo.GetOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := order.UpdateStatus(status, s.now()); err != nil {
			return err
		}
		if input.Notes != nil {
			order.Notes = *input.Notes
		}
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// GenerateDocument renders and stores the purchase order artifact, replacing any previous one.
func (s *Service) GenerateDocument(ctx context.Context, input types.GenerateDocumentInput) (*domain.PurchaseOrder, error) {
	if input.Actor != nil {
		if err := validateActor(*input.Actor); err != nil {
			return nil, mapError(err)
		}
		if input.Actor.Role != domain.RoleFinance {
			return nil, fmt.Errorf("%w: only finance regenerates documents", ErrAuthorization)
		}
	}
	order, err := s.generateDocument(ctx, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) generateDocument(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer configured", ErrDocumentGeneration)
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	request, err := s.store.GetRequest(ctx, order.RequestID)
	if err != nil {
		return nil, err
	}
	document, err := s.renderer.Render(ctx, order, request.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentGeneration, err)
	}
	if document == nil || len(document.Content) == 0 {
		return nil, fmt.Errorf("%w: renderer returned no content", ErrDocumentGeneration)
	}
	if document.GeneratedAt.IsZero() {
		document.GeneratedAt = s.now()
	}
	if err := s.store.SaveOrderDocument(ctx, order.ID, *document); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDocumentGeneration, err)
	}
	order.AttachDocument(document, document.GeneratedAt)
	return order, nil
}

func (s *Service) buildItems(inputs []types.ItemInput) ([]domain.RequestItem, error) {
	items := make([]domain.RequestItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := domain.NewRequestItem(s.newID(), in.Name, in.Description, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func validateActor(actor domain.Actor) error {
	if actor.ID == "" {
		return fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	role, err := domain.ParseRole(string(actor.Role))
	if err != nil {
		return err
	}
	if role != actor.Role {
		return fmt.Errorf("%w: %q is not a canonical role", domain.ErrUnknownRole, actor.Role)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
