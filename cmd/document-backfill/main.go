package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/Apurer/go-gin-p2p-server/internal/app/api"
	types "github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application/types"
	platformobservability "github.com/Apurer/go-gin-p2p-server/internal/platform/observability"
)

// Regenerates documents for purchase orders whose artifact is missing, oldest first.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := run(ctx); err != nil {
		log.Fatalf("document backfill failed: %v", err)
	}
	log.Printf("document backfill completed")
}

func run(ctx context.Context) error {
	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("%w; nothing to backfill", api.ErrNoSharedStore)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "p2p-document-backfill")
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()
	logger := instruments.Logger

	store, cleanup, err := api.BuildSharedStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	service := api.NewProcurementService(store, instruments)

	orders, err := service.ListOrdersMissingDocument(ctx, cfg.DocumentBackfillLimit)
	if err != nil {
		return fmt.Errorf("list purchase orders without document: %w", err)
	}
	failed := 0
	for _, order := range orders {
		if _, err := service.GenerateDocument(ctx, types.GenerateDocumentInput{OrderID: order.ID}); err != nil {
			failed++
			logger.Error("document backfill failed", slog.String("poId", order.ID), slog.String("poNumber", order.Number), slog.String("error", err.Error()))
			continue
		}
		logger.Info("document backfilled", slog.String("poId", order.ID), slog.String("poNumber", order.Number))
	}
	logger.Info("document backfill run finished", slog.Int("candidates", len(orders)), slog.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d purchase order documents could not be generated", failed)
	}
	return nil
}
