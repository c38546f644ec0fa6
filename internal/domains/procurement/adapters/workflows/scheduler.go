package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	procworkflows "github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/workflows/procurement"
)

var _ ports.DocumentScheduler = (*TemporalDocumentScheduler)(nil)

// DocumentWorkflowID keys the document workflow by purchase order so that a
// second schedule for the same order joins the running one.
func DocumentWorkflowID(orderID string) string {
	return fmt.Sprintf("po-document-%s", orderID)
}

// TemporalDocumentScheduler starts purchase order document workflows on a Temporal cluster.
type TemporalDocumentScheduler struct {
	client    client.Client
	taskQueue string
	logger    *slog.Logger
}

// SchedulerOption configures the scheduler.
type SchedulerOption func(*TemporalDocumentScheduler)

// WithTaskQueue overrides the task queue the workflow is started on.
func WithTaskQueue(queue string) SchedulerOption {
	return func(s *TemporalDocumentScheduler) {
		s.taskQueue = queue
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *TemporalDocumentScheduler) {
		s.logger = logger
	}
}

// NewTemporalDocumentScheduler wires a Temporal client into the scheduler.
func NewTemporalDocumentScheduler(c client.Client, opts ...SchedulerOption) *TemporalDocumentScheduler {
	s := &TemporalDocumentScheduler{
		client:    c,
		taskQueue: procworkflows.DocumentTaskQueue,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
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

// ScheduleDocument starts the document workflow without waiting for it.
func (s *TemporalDocumentScheduler) ScheduleDocument(ctx context.Context, orderID string) error {
	if s == nil || s.client == nil {
		return errors.New("temporal document scheduler not configured")
	}
	workflowID := DocumentWorkflowID(orderID)
	options := client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}
	input := procworkflows.DocumentWorkflowInput{OrderID: orderID, TraceID: workflowTraceID(ctx)}
	run, err := s.client.ExecuteWorkflow(ctx, options, procworkflows.DocumentWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			s.logger.InfoContext(ctx, "document workflow already running",
				slog.String("workflow.id", workflowID), slog.String("workflow.run_id", alreadyStarted.RunId))
			return nil
		}
		return err
	}
	s.logger.InfoContext(ctx, "document workflow scheduled",
		slog.String("workflow.id", workflowID), slog.String("workflow.run_id", run.GetRunID()))
	return nil
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
