package procurementhttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/http/mapper"
	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	apierrors "github.com/Apurer/go-gin-p2p-server/internal/shared/errors"
)

// Header names carrying the caller identity set by the upstream gateway.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

var (
	errMissingActor = errors.New("X-Actor-ID and X-Actor-Role headers are required")
	errNoDocument   = errors.New("purchase order has no generated document")
)

// ProcurementAPI wires HTTP transport with the procurement service.
type ProcurementAPI struct {
	service ports.Service
}

// NewProcurementAPI creates a ProcurementAPI backed by the provided service.
func NewProcurementAPI(service ports.Service) ProcurementAPI {
	return ProcurementAPI{service: service}
}

// Post /api/v1/requests
// Submit a purchase request for approval
func (api *ProcurementAPI) CreateRequest(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	var payload mapper.CreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.service.CreateRequest(c.Request.Context(), mapper.ToCreateInput(actor, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromRequest(created))
}

// Get /api/v1/requests
// Lists purchase requests visible to the caller
func (api *ProcurementAPI) ListRequests(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := api.service.ListRequests(c.Request.Context(), types.ListRequestsInput{
		Actor:    actor,
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromPage(result, mapper.FromRequest))
}

// Get /api/v1/requests/:requestId
// Find purchase request by ID
func (api *ProcurementAPI) GetRequest(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	request, err := api.service.GetRequest(c.Request.Context(), types.RequestLookup{RequestID: c.Param("requestId"), Actor: actor})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromRequest(request))
}

// Put /api/v1/requests/:requestId
// Edit a pending or rejected purchase request
func (api *ProcurementAPI) UpdateRequest(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	var payload mapper.UpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.UpdateRequest(c.Request.Context(), mapper.ToUpdateInput(actor, c.Param("requestId"), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromRequest(updated))
}

// Post /api/v1/requests/:requestId/approve
// Approve the caller's level of the chain
func (api *ProcurementAPI) Approve(c *gin.Context) {
	api.decide(c, api.service.Approve)
}

// Post /api/v1/requests/:requestId/reject
// Reject the request at the caller's level
func (api *ProcurementAPI) Reject(c *gin.Context) {
	api.decide(c, api.service.Reject)
}

type decisionFunc func(ctx context.Context, input types.DecisionInput) (*types.DecisionResult, error)

func (api *ProcurementAPI) decide(c *gin.Context, fn decisionFunc) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	var payload mapper.Decision
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, err)
		return
	}
	result, err := fn(c.Request.Context(), types.DecisionInput{
		RequestID: c.Param("requestId"),
		Actor:     actor,
		Comment:   payload.Comment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDecision(result))
}

// Put /api/v1/requests/:requestId/extracted-data
// Store document scanner output on the request
func (api *ProcurementAPI) AttachExtractedData(c *gin.Context) {
	if _, ok := actorFromHeaders(c); !ok {
		return
	}
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.AttachExtractedData(c.Request.Context(), types.AttachExtractedDataInput{
		RequestID: c.Param("requestId"),
		Data:      payload,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromRequest(updated))
}

// Post /api/v1/requests/:requestId/receipt-validation
// Match a scanned receipt against the purchase order
func (api *ProcurementAPI) ValidateReceipt(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.ValidateReceipt(c.Request.Context(), types.ReceiptValidationInput{
		RequestID:   c.Param("requestId"),
		Actor:       actor,
		ReceiptData: payload,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromReceiptValidation(result))
}

// Get /api/v1/purchase-orders
// Lists purchase orders visible to the caller
func (api *ProcurementAPI) ListPurchaseOrders(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := api.service.ListPurchaseOrders(c.Request.Context(), types.ListOrdersInput{
		Actor:    actor,
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromPage(result, mapper.FromOrder))
}

// Get /api/v1/purchase-orders/:orderId
// Find purchase order by ID
func (api *ProcurementAPI) GetPurchaseOrder(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	order, err := api.service.GetPurchaseOrder(c.Request.Context(), types.OrderLookup{OrderID: c.Param("orderId"), Actor: actor})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromOrder(order))
}

// Get /api/v1/purchase-orders/:orderId/document
// Download the generated purchase order PDF
func (api *ProcurementAPI) DownloadDocument(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	order, err := api.service.GetPurchaseOrder(c.Request.Context(), types.OrderLookup{OrderID: c.Param("orderId"), Actor: actor})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !order.HasDocument() {
		responder.Respond(c, apierrors.ErrNotFound.WithDetail(errNoDocument.Error()))
		return
	}
	doc := order.Document
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// Post /api/v1/purchase-orders/:orderId/status
// Advance the purchase order lifecycle
func (api *ProcurementAPI) UpdatePurchaseOrderStatus(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	var payload mapper.OrderStatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.UpdatePurchaseOrderStatus(c.Request.Context(), types.UpdateOrderStatusInput{
		OrderID: c.Param("orderId"),
		Actor:   actor,
		Status:  payload.Status,
		Notes:   payload.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromOrder(order))
}

// Post /api/v1/purchase-orders/:orderId/document
// Regenerate the purchase order PDF
func (api *ProcurementAPI) GenerateDocument(c *gin.Context) {
	actor, ok := actorFromHeaders(c)
	if !ok {
		return
	}
	order, err := api.service.GenerateDocument(c.Request.Context(), types.GenerateDocumentInput{OrderID: c.Param("orderId"), Actor: &actor})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromOrder(order))
}

func actorFromHeaders(c *gin.Context) (domain.Actor, bool) {
	id := strings.TrimSpace(c.GetHeader(HeaderActorID))
	rawRole := c.GetHeader(HeaderActorRole)
	if id == "" || strings.TrimSpace(rawRole) == "" {
		responder.Respond(c, apierrors.ErrUnauthorized.WithDetail(errMissingActor.Error()))
		return domain.Actor{}, false
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		responder.Respond(c, apierrors.ErrUnauthorized.WithDetail(err.Error()))
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: role}, true
}

func pageParams(c *gin.Context) (int, int, bool) {
	page, ok := intQuery(c, "page")
	if !ok {
		return 0, 0, false
	}
	pageSize, ok := intQuery(c, "pageSize")
	if !ok {
		return 0, 0, false
	}
	return page, pageSize, true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("%s must be an integer: %w", name, err))
		return 0, false
	}
	return value, true
}
