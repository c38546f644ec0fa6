package procurementhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route describes a single HTTP endpoint.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// Routes lists every endpoint of the procurement API under /api/v1.
func Routes(api *ProcurementAPI) []Route {
	return []Route{
		{"CreateRequest", http.MethodPost, "/requests", api.CreateRequest},
		{"ListRequests", http.MethodGet, "/requests", api.ListRequests},
		{"GetRequest", http.MethodGet, "/requests/:requestId", api.GetRequest},
		{"UpdateRequest", http.MethodPut, "/requests/:requestId", api.UpdateRequest},
		{"Approve", http.MethodPost, "/requests/:requestId/approve", api.Approve},
		{"Reject", http.MethodPost, "/requests/:requestId/reject", api.Reject},
		{"AttachExtractedData", http.MethodPut, "/requests/:requestId/extracted-data", api.AttachExtractedData},
		{"ValidateReceipt", http.MethodPost, "/requests/:requestId/receipt-validation", api.ValidateReceipt},
		{"ListPurchaseOrders", http.MethodGet, "/purchase-orders", api.ListPurchaseOrders},
		{"GetPurchaseOrder", http.MethodGet, "/purchase-orders/:orderId", api.GetPurchaseOrder},
		{"DownloadDocument", http.MethodGet, "/purchase-orders/:orderId/document", api.DownloadDocument},
		{"UpdatePurchaseOrderStatus", http.MethodPost, "/purchase-orders/:orderId/status", api.UpdatePurchaseOrderStatus},
		{"GenerateDocument", http.MethodPost, "/purchase-orders/:orderId/document", api.GenerateDocument},
	}
}

// NewRouter returns a gin engine serving the procurement API. Extra
// middleware runs before every route.
func NewRouter(api ProcurementAPI, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	group := router.Group("/api/v1")
	for _, route := range Routes(&api) {
		group.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}
