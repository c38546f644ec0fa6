package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-p2p-server/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-p2p-server/internal/platform/observability"
	procactivities "github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/activities/procurement"
	procworkflows "github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/workflows/procurement"
)

func main() {
	ctx := context.Background()
	const serviceName = "p2p-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	// Activities load orders the API committed, so a process-local store is useless here.
	store, cleanupStore, err := api.BuildSharedStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("worker requires the shared postgres store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupStore()
	// The worker renders inline; it must never schedule another workflow.
	service := api.NewProcurementService(store, instruments)
	documentActivities := procactivities.NewActivities(service)

	// The worker always dials, TEMPORAL_DISABLED only affects the API.
	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, cfg.DocumentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(procworkflows.DocumentWorkflow, workflow.RegisterOptions{Name: procworkflows.DocumentWorkflowName})
	w.RegisterActivityWithOptions(documentActivities.GenerateDocument, activity.RegisterOptions{Name: procactivities.GenerateDocumentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", cfg.DocumentTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
