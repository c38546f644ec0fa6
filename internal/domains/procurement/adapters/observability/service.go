package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

const tracerName = "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/observability/service"

// Service decorates the procurement application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateRequest submits a purchase request with instrumentation.
func (s *Service) CreateRequest(ctx context.Context, input types.CreateRequestInput) (*domain.PurchaseRequest, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateRequest", actorAttributes(input.Actor)...)
	defer span.End()

	s.logInfo(ctx, "creating purchase request", slog.String("actor.id", input.Actor.ID), slog.Int("items", len(input.Items)))
	request, err := s.inner.CreateRequest(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create purchase request", slog.String("actor.id", input.Actor.ID))
	}
	s.metrics.recordCreated(ctx)
	span.SetAttributes(attribute.String("request.id", request.ID))
	s.logInfo(ctx, "purchase request created", slog.String("request.id", request.ID), slog.String("amount", request.Amount.StringFixed(2)))
	return request, nil
}

// UpdateRequest edits a purchase request.
func (s *Service) UpdateRequest(ctx context.Context, input types.UpdateRequestInput) (*domain.PurchaseRequest, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateRequest", requestAttributes(input.RequestID, input.Actor)...)
	defer span.End()

	s.logInfo(ctx, "updating purchase request", slog.String("request.id", input.RequestID))
	request, err := s.inner.UpdateRequest(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update purchase request", slog.String("request.id", input.RequestID))
	}
	return request, nil
}

// AttachExtractedData stores document scan output on a request.
func (s *Service) AttachExtractedData(ctx context.Context, input types.AttachExtractedDataInput) (*domain.PurchaseRequest, error) {
	ctx, span := s.startSpan(ctx, "Service.AttachExtractedData", attribute.String("request.id", input.RequestID), attribute.Int("extracted.keys", len(input.Data)))
	defer span.End()

	request, err := s.inner.AttachExtractedData(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to attach extracted data", slog.String("request.id", input.RequestID))
	}
	s.logInfo(ctx, "extracted data attached", slog.String("request.id", input.RequestID), slog.Int("keys", len(input.Data)))
	return request, nil
}

// GetRequest loads a purchase request.
func (s *Service) GetRequest(ctx context.Context, input types.RequestLookup) (*domain.PurchaseRequest, error) {
	ctx, span := s.startSpan(ctx, "Service.GetRequest", requestAttributes(input.RequestID, input.Actor)...)
	defer span.End()

	request, err := s.inner.GetRequest(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get purchase request", slog.String("request.id", input.RequestID))
	}
	return request, nil
}

// ListRequests pages through the actor's queue.
func (s *Service) ListRequests(ctx context.Context, input types.ListRequestsInput) (pagination.Page[*domain.PurchaseRequest], error) {
	ctx, span := s.startSpan(ctx, "Service.ListRequests", actorAttributes(input.Actor)...)
	defer span.End()

	page, err := s.inner.ListRequests(ctx, input)
	if err != nil {
		return page, s.handleError(ctx, span, err, "failed to list purchase requests", slog.String("status", input.Status))
	}
	span.SetAttributes(attribute.Int("request.result.count", len(page.Items)), attribute.Int64("request.result.total", page.Total))
	return page, nil
}

// Approve signs the actor's approval level.
func (s *Service) Approve(ctx context.Context, input types.DecisionInput) (*types.DecisionResult, error) {
	return s.decide(ctx, "Service.Approve", input, s.inner.Approve)
}

// Reject records a rejection.
func (s *Service) Reject(ctx context.Context, input types.DecisionInput) (*types.DecisionResult, error) {
	return s.decide(ctx, "Service.Reject", input, s.inner.Reject)
}

func (s *Service) decide(ctx context.Context, name string, input types.DecisionInput, next func(context.Context, types.DecisionInput) (*types.DecisionResult, error)) (*types.DecisionResult, error) {
	ctx, span := s.startSpan(ctx, name, requestAttributes(input.RequestID, input.Actor)...)
	defer span.End()

	s.logInfo(ctx, "recording approval decision", slog.String("request.id", input.RequestID), slog.String("actor.role", string(input.Actor.Role)))
	result, err := next(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record approval decision", slog.String("request.id", input.RequestID), slog.String("actor.id", input.Actor.ID))
	}
	s.metrics.recordDecision(ctx, result.Approval)
	span.SetAttributes(attribute.String("request.status", string(result.Request.Status())))
	s.logInfo(ctx, "approval decision recorded",
		slog.String("request.id", input.RequestID),
		slog.String("level", string(result.Approval.Level)),
		slog.String("outcome", string(result.Approval.Status)),
		slog.String("request.status", string(result.Request.Status())))
	if result.Order != nil {
		s.metrics.recordFinalized(ctx)
		switch {
		case result.DocumentFailed:
			s.metrics.recordDocumentFailed(ctx)
		case result.Order.HasDocument():
			s.metrics.recordDocumentGenerated(ctx)
		}
		span.SetAttributes(attribute.String("po.id", result.Order.ID), attribute.String("po.number", result.Order.Number))
		s.logInfo(ctx, "purchase order created", slog.String("po.id", result.Order.ID), slog.String("po.number", result.Order.Number), slog.Bool("document", result.Order.HasDocument()))
	}
	return result, nil
}

// GetPurchaseOrder loads a purchase order.
func (s *Service) GetPurchaseOrder(ctx context.Context, input types.OrderLookup) (*domain.PurchaseOrder, error) {
	ctx, span := s.startSpan(ctx, "Service.GetPurchaseOrder", append(actorAttributes(input.Actor), attribute.String("po.id", input.OrderID))...)
	defer span.End()

	order, err := s.inner.GetPurchaseOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get purchase order", slog.String("po.id", input.OrderID))
	}
	return order, nil
}

// GetPurchaseOrderByRequest loads the purchase order of a request.
func (s *Service) GetPurchaseOrderByRequest(ctx context.Context, input types.RequestLookup) (*domain.PurchaseOrder, error) {
	ctx, span := s.startSpan(ctx, "Service.GetPurchaseOrderByRequest", requestAttributes(input.RequestID, input.Actor)...)
	defer span.End()

	order, err := s.inner.GetPurchaseOrderByRequest(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get purchase order by request", slog.String("request.id", input.RequestID))
	}
	return order, nil
}

// ListPurchaseOrders pages through visible purchase orders.
func (s *Service) ListPurchaseOrders(ctx context.Context, input types.ListOrdersInput) (pagination.Page[*domain.PurchaseOrder], error) {
	ctx, span := s.startSpan(ctx, "Service.ListPurchaseOrders", actorAttributes(input.Actor)...)
	defer span.End()

	page, err := s.inner.ListPurchaseOrders(ctx, input)
	if err != nil {
		return page, s.handleError(ctx, span, err, "failed to list purchase orders", slog.String("status", input.Status))
	}
	span.SetAttributes(attribute.Int("po.result.count", len(page.Items)), attribute.Int64("po.result.total", page.Total))
	return page, nil
}

// UpdatePurchaseOrderStatus moves a purchase order through its lifecycle.
func (s *Service) UpdatePurchaseOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) (*domain.PurchaseOrder, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdatePurchaseOrderStatus", attribute.String("po.id", input.OrderID), attribute.String("po.status.requested", input.Status))
	defer span.End()

	order, err := s.inner.UpdatePurchaseOrderStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update purchase order status", slog.String("po.id", input.OrderID))
	}
	s.logInfo(ctx, "purchase order status updated", slog.String("po.id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

// GenerateDocument renders the purchase order artifact.
func (s *Service) GenerateDocument(ctx context.Context, input types.GenerateDocumentInput) (*domain.PurchaseOrder, error) {
	ctx, span := s.startSpan(ctx, "Service.GenerateDocument", attribute.String("po.id", input.OrderID), attribute.Bool("system", input.Actor == nil))
	defer span.End()

	order, err := s.inner.GenerateDocument(ctx, input)
	if err != nil {
		s.metrics.recordDocumentFailed(ctx)
		return nil, s.handleError(ctx, span, err, "failed to generate purchase order document", slog.String("po.id", input.OrderID))
	}
	s.metrics.recordDocumentGenerated(ctx)
	s.logInfo(ctx, "purchase order document generated", slog.String("po.id", order.ID), slog.String("po.number", order.Number))
	return order, nil
}

// ValidateReceipt compares a receipt against its purchase order.
func (s *Service) ValidateReceipt(ctx context.Context, input types.ReceiptValidationInput) (*types.ReceiptValidation, error) {
	ctx, span := s.startSpan(ctx, "Service.ValidateReceipt", requestAttributes(input.RequestID, input.Actor)...)
	defer span.End()

	result, err := s.inner.ValidateReceipt(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to validate receipt", slog.String("request.id", input.RequestID))
	}
	span.SetAttributes(attribute.Bool("receipt.valid", result.Valid))
	s.logInfo(ctx, "receipt validated", slog.String("request.id", input.RequestID), slog.Bool("valid", result.Valid), slog.String("message", result.Message))
	return result, nil
}

// ListOrdersMissingDocument lists purchase orders awaiting their artifact.
func (s *Service) ListOrdersMissingDocument(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrdersMissingDocument", attribute.Int("limit", limit))
	defer span.End()

	orders, err := s.inner.ListOrdersMissingDocument(ctx, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders missing documents")
	}
	span.SetAttributes(attribute.Int("po.result.count", len(orders)))
	return orders, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func actorAttributes(actor domain.Actor) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("actor.id", actor.ID),
		attribute.String("actor.role", string(actor.Role)),
	}
}

func requestAttributes(requestID string, actor domain.Actor) []attribute.KeyValue {
	return append(actorAttributes(actor), attribute.String("request.id", requestID))
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	requestsCreated    metric.Int64Counter
	approvals          metric.Int64Counter
	rejections         metric.Int64Counter
	finalizations      metric.Int64Counter
	documentsGenerated metric.Int64Counter
	documentFailures   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	requestsCreated, _ := m.Int64Counter("procurement.service.requests.created", metric.WithDescription("Number of purchase requests submitted"))
	approvals, _ := m.Int64Counter("procurement.service.approvals", metric.WithDescription("Number of approval slots signed"))
	rejections, _ := m.Int64Counter("procurement.service.rejections", metric.WithDescription("Number of approval slots rejected"))
	finalizations, _ := m.Int64Counter("procurement.service.finalizations", metric.WithDescription("Number of purchase orders minted"))
	documentsGenerated, _ := m.Int64Counter("procurement.service.documents.generated", metric.WithDescription("Number of purchase order documents rendered"))
	documentFailures, _ := m.Int64Counter("procurement.service.documents.failed", metric.WithDescription("Number of failed purchase order document renders"))
	return serviceMetrics{
		requestsCreated:    requestsCreated,
		approvals:          approvals,
		rejections:         rejections,
		finalizations:      finalizations,
		documentsGenerated: documentsGenerated,
		documentFailures:   documentFailures,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	addCounter(ctx, m.requestsCreated, 1)
}

func (m serviceMetrics) recordDecision(ctx context.Context, approval domain.Approval) {
	level := attribute.String("approval.level", string(approval.Level))
	if approval.Status == domain.ApprovalRejected {
		addCounter(ctx, m.rejections, 1, level)
		return
	}
	addCounter(ctx, m.approvals, 1, level)
}

func (m serviceMetrics) recordFinalized(ctx context.Context) {
	addCounter(ctx, m.finalizations, 1)
}

func (m serviceMetrics) recordDocumentGenerated(ctx context.Context) {
	addCounter(ctx, m.documentsGenerated, 1)
}

func (m serviceMetrics) recordDocumentFailed(ctx context.Context) {
	addCounter(ctx, m.documentFailures, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
