package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	prochttp "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/http"
	procworkflows "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/adapters/workflows"
	procapp "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application"
	platformobservability "github.com/Apurer/go-gin-p2p-server/internal/platform/observability"
)

// Run boots the procurement HTTP API with observability, storage, and the document workflow wired.
func Run(ctx context.Context) error {
	const serviceName = "p2p-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	store, cleanupStore := BuildStore(ctx, cfg, logger)
	defer cleanupStore()

	var opts []procapp.Option
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, rendering purchase order documents inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		scheduler := procworkflows.NewTemporalDocumentScheduler(
			temporalClient,
			procworkflows.WithTaskQueue(cfg.DocumentTaskQueue),
			procworkflows.WithLogger(logger),
		)
		opts = append(opts, procapp.WithDocumentScheduler(scheduler))
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace), slog.String("taskQueue", cfg.DocumentTaskQueue))
	}
	service := NewProcurementService(store, instruments, opts...)

	router := prochttp.NewRouter(prochttp.NewProcurementAPI(service), otelgin.Middleware(serviceName))
	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("procurement API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("procurement API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("procurement API shutting down")
		return server.Shutdown(shutdownCtx)
	}
}
