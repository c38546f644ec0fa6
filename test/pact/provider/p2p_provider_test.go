//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-p2p-server/test/pact"

	procdocument "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/document"
	prochttp "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/http"
	procmemory "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/memory"
	procobs "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/observability"
	procapp "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application"
	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProcurementProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateAwaitingLevelTwo: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedRequest(t, true)
			}
			return nil, nil
		},
		pacttest.StateOrderExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedOrder(t)
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// scriptedIDs hands out queued identifiers first so seeded records match the pact.
type scriptedIDs struct {
	mu     sync.Mutex
	queued []string
}

func (s *scriptedIDs) push(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = append(s.queued, ids...)
}

func (s *scriptedIDs) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queued) == 0 {
		return uuid.NewString()
	}
	id := s.queued[0]
	s.queued = s.queued[1:]
	return id
}

func (s *scriptedIDs) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = nil
}

type contractProviderApp struct {
	store   *procmemory.Store
	ids     *scriptedIDs
	service *procapp.Service
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	clock := func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	store := procmemory.NewStore()
	ids := &scriptedIDs{}
	core := procapp.NewService(
		store,
		procapp.WithClock(clock),
		procapp.WithIDGenerator(ids.next),
		procapp.WithDocumentRenderer(procdocument.NewRenderer(procdocument.WithClock(clock))),
	)
	router := prochttp.NewRouter(prochttp.NewProcurementAPI(procobs.New(core)))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{store: store, ids: ids, service: core, server: server}
}

func (a *contractProviderApp) reset() {
	a.store.Reset()
	a.ids.clear()
}

func (a *contractProviderApp) seedRequest(t testing.TB, approveLevelOne bool) {
	t.Helper()
	ctx := context.Background()
	a.ids.push(pacttest.ItemID, pacttest.RequestID)
	_, err := a.service.CreateRequest(ctx, types.CreateRequestInput{
		Actor:  domain.Actor{ID: pacttest.StaffID, Role: domain.RoleStaff},
		Title:  pacttest.ExampleTitle(),
		Amount: decimal.NewFromInt(3000),
		Items: []types.ItemInput{
			{Name: "Laptop", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
		},
		ExtractedData: map[string]any{domain.ExtractedVendorName: pacttest.ExampleVendorName()},
	})
	require.NoError(t, err)
	if !approveLevelOne {
		return
	}
	_, err = a.service.Approve(ctx, types.DecisionInput{
		RequestID: pacttest.RequestID,
		Actor:     domain.Actor{ID: pacttest.LevelOneID, Role: domain.RoleLevel1Approver},
	})
	require.NoError(t, err)
}

func (a *contractProviderApp) seedOrder(t testing.TB) {
	t.Helper()
	a.seedRequest(t, true)
	a.ids.push(pacttest.OrderID)
	result, err := a.service.Approve(context.Background(), types.DecisionInput{
		RequestID: pacttest.RequestID,
		Actor:     domain.Actor{ID: pacttest.LevelTwoID, Role: domain.RoleLevel2Approver},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	require.Equal(t, pacttest.OrderNumber, result.Order.Number)
}
