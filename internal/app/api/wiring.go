package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	procdocument "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/document"
	procmemory "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/memory"
	procobs "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/observability"
	procpostgres "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/persistence/postgres"
	procapp "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application"
	procports "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	"github.com/Apurer/go-gin-p2p-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-p2p-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-p2p-server/internal/platform/postgres"
)

// ErrNoSharedStore reports that POSTGRES_DSN is not configured.
var ErrNoSharedStore = errors.New("POSTGRES_DSN not set")

// BuildStore returns the PostgreSQL store when POSTGRES_DSN is reachable and
// migrated, falling back to the in-memory store otherwise.
func BuildStore(ctx context.Context, cfg Config, logger *slog.Logger) (procports.Store, func()) {
	store, cleanup, err := BuildSharedStore(ctx, cfg, logger)
	if err != nil {
		logger.Warn("falling back to in-memory procurement store", slog.String("error", err.Error()))
		return procmemory.NewStore(), func() {}
	}
	return store, cleanup
}

// BuildSharedStore connects and migrates the PostgreSQL store. Processes that
// act on records written by another process use it instead of BuildStore.
func BuildSharedStore(ctx context.Context, cfg Config, logger *slog.Logger) (procports.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		return nil, nil, ErrNoSharedStore
	}
	db, err := platformpostgres.ConnectWithPool(ctx, cfg.PostgresDSN, platformpostgres.DefaultPool, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("unwrap postgres connection: %w", err)
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate procurement schema: %w", err)
	}
	logger.Info("procurement store configured with postgres")
	return procpostgres.NewStore(db), func() { _ = sqlDB.Close() }, nil
}

// NewProcurementService builds the application service with the PDF renderer
// and wraps it in the tracing/metrics decorator.
func NewProcurementService(store procports.Store, instruments *platformobservability.Instruments, opts ...procapp.Option) procports.Service {
	logger := effectiveLogger(instruments)
	base := []procapp.Option{
		procapp.WithLogger(logger),
		procapp.WithDocumentRenderer(procdocument.NewRenderer()),
	}
	core := procapp.NewService(store, append(base, opts...)...)
	return procobs.New(
		core,
		procobs.WithLogger(logger),
		procobs.WithTracer(instruments.Tracer("internal.procurement.application")),
		procobs.WithMeter(instruments.Meter("internal.procurement.application")),
	)
}

// ConnectTemporalClient dials Temporal with tracing and structured logging unless disabled.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
