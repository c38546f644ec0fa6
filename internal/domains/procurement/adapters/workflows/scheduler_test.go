package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	procworkflows "github.com/Apurer/go-gin-p2p-server/internal/platform/temporal/workflows/procurement"
)

func matchOptions(orderID string) interface{} {
	return mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
		return opts.ID == "po-document-"+orderID && opts.TaskQueue == procworkflows.DocumentTaskQueue
	})
}

func TestScheduleDocument_StartsWorkflow(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetRunID").Return("run-1")
	c.On("ExecuteWorkflow", mock.Anything, matchOptions("po-1"), procworkflows.DocumentWorkflowName,
		procworkflows.DocumentWorkflowInput{OrderID: "po-1"}).Return(run, nil)

	err := NewTemporalDocumentScheduler(c).ScheduleDocument(context.Background(), "po-1")
	require.NoError(t, err)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestScheduleDocument_AlreadyStartedIsSuccess(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, matchOptions("po-1"), mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("running", "req-1", "run-0"))

	err := NewTemporalDocumentScheduler(c).ScheduleDocument(context.Background(), "po-1")
	require.NoError(t, err)
}

func TestScheduleDocument_PropagatesErrors(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("frontend unavailable"))

	err := NewTemporalDocumentScheduler(c).ScheduleDocument(context.Background(), "po-1")
	require.Error(t, err)

	var nilScheduler *TemporalDocumentScheduler
	assert.Error(t, nilScheduler.ScheduleDocument(context.Background(), "po-1"))
}

func TestDocumentWorkflowID(t *testing.T) {
	assert.Equal(t, "po-document-abc", DocumentWorkflowID("abc"))
}
