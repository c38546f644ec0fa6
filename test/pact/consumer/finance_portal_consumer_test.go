//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-p2p-server/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type vendorPayload struct {
	Name string `json:"name"`
}

type orderPayload struct {
	ID          string        `json:"id"`
	Number      string        `json:"poNumber"`
	RequestID   string        `json:"purchaseRequestId"`
	Vendor      vendorPayload `json:"vendor"`
	TotalAmount string        `json:"totalAmount"`
	Status      string        `json:"status"`
}

type requestPayload struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type decisionPayload struct {
	Request       requestPayload `json:"request"`
	PurchaseOrder *orderPayload  `json:"purchaseOrder"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestFinancePortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	poNumber := matchers.Term(pacttest.OrderNumber, `PO-\d{8}-\d{4}`)
	orderBodyMatcher := matchers.Map{
		"id":                matchers.Like(pacttest.OrderID),
		"poNumber":          poNumber,
		"purchaseRequestId": matchers.Like(pacttest.RequestID),
		"vendor":            matchers.Map{"name": matchers.Like(pacttest.ExampleVendorName())},
		"totalAmount":       matchers.Like("3000"),
		"status":            matchers.Term("GENERATED", "GENERATED|SENT|COMPLETED|CANCELLED"),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateOrderExists).
		UponReceiving("a finance request to fetch a purchase order").
		WithRequest("GET", "/api/v1/purchase-orders/"+pacttest.OrderID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("X-Actor-ID", matchers.S(pacttest.FinanceID))
			b.Header("X-Actor-Role", matchers.S("FINANCE"))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a finance request for a missing purchase order").
		WithRequest("GET", "/api/v1/purchase-orders/"+pacttest.MissingOrderID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("X-Actor-ID", matchers.S(pacttest.FinanceID))
			b.Header("X-Actor-Role", matchers.S("FINANCE"))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateAwaitingLevelTwo).
		UponReceiving("a level 2 approval that finalizes the request").
		WithRequest("POST", "/api/v1/requests/"+pacttest.RequestID+"/approve", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("X-Actor-ID", matchers.S(pacttest.LevelTwoID))
			b.Header("X-Actor-Role", matchers.S("LEVEL_2_APPROVER"))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"request": matchers.Map{
					"id":     matchers.Like(pacttest.RequestID),
					"title":  matchers.Like(pacttest.ExampleTitle()),
					"status": matchers.S("APPROVED"),
				},
				"purchaseOrder": matchers.Map{
					"poNumber": poNumber,
					"status":   matchers.S("GENERATED"),
				},
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newFinanceClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		order, err := client.GetPurchaseOrder(ctx, pacttest.FinanceID, pacttest.OrderID)
		if err != nil {
			return fmt.Errorf("get purchase order: %w", err)
		}
		if order.Number == "" || order.Vendor.Name == "" {
			return fmt.Errorf("expected number and vendor, got %+v", order)
		}

		if _, err := client.GetPurchaseOrder(ctx, pacttest.FinanceID, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for purchase order %s", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		decision, err := client.ApproveAsLevelTwo(ctx, pacttest.LevelTwoID, pacttest.RequestID)
		if err != nil {
			return fmt.Errorf("approve: %w", err)
		}
		if decision.Request.Status != "APPROVED" || decision.PurchaseOrder == nil {
			return fmt.Errorf("expected finalized request, got %+v", decision)
		}
		return nil
	})
	require.NoError(t, err)
}

type financeClient struct {
	baseURL    string
	httpClient *http.Client
}

func newFinanceClient(config pactconsumer.MockServerConfig) *financeClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &financeClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *financeClient) GetPurchaseOrder(ctx context.Context, actorID, id string) (*orderPayload, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/purchase-orders/"+id, actorID, "FINANCE", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *financeClient) ApproveAsLevelTwo(ctx context.Context, actorID, requestID string) (*decisionPayload, error) {
	var payload decisionPayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/requests/"+requestID+"/approve", actorID, "LEVEL_2_APPROVER", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *financeClient) do(ctx context.Context, method, path, actorID, role string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Actor-ID", actorID)
	req.Header.Set("X-Actor-Role", role)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
