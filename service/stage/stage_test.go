package stage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/action/proposal"
	"github.com/itinera/itinera/service/action/revision"
	"github.com/itinera/itinera/service/composer"
	sessionmem "github.com/itinera/itinera/service/dao/session/memory"
	"github.com/itinera/itinera/service/generator"
	queuemem "github.com/itinera/itinera/service/messaging/memory"
	"github.com/itinera/itinera/service/revisor"
	"github.com/itinera/itinera/service/session"
	"github.com/itinera/itinera/service/stage"
)

type fixture struct {
	sessions  *session.Manager
	client    *stage.Client
	processor *stage.Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gen := &generator.Mock{}
	sessions := session.New(sessionmem.New())
	registry := stage.NewRegistry(
		proposal.New(composer.New(gen)),
		revision.New(revisor.New(gen)),
	)
	requests := queuemem.NewQueue[stage.TaskRequest](queuemem.DefaultConfig())
	responses := queuemem.NewQueue[stage.TaskResponse](queuemem.DefaultConfig())

	processor := stage.NewProcessor(stage.ProcessorConfig{WorkerCount: 2}, registry, sessions, requests, responses)
	client := stage.NewClient(requests, responses, 5*time.Second)

	ctx := context.Background()
	processor.Start(ctx)
	client.Start(ctx)
	t.Cleanup(func() {
		client.Shutdown()
		processor.Shutdown()
	})
	return &fixture{sessions: sessions, client: client, processor: processor}
}

func TestCall_GenerateProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	response, err := f.client.Call(ctx, &stage.TaskRequest{
		Service: "proposal",
		Method:  "generate",
		Payload: "plan a 5-day trip from Bangalore to Kerala, we like scenic routes",
	})
	require.NoError(t, err)
	assert.Equal(t, stage.StatusCompleted, response.Status)
	assert.NotEmpty(t, response.SessionID)
	assert.Contains(t, response.Artifact, "TRIP PROPOSAL: Bangalore to Kerala")

	// the worker persisted the session before responding
	persisted, err := f.sessions.Resolve(ctx, response.SessionID, "")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusPendingApproval, persisted.State.Status)
	assert.True(t, persisted.State.Complete())
}

func TestCall_InBandSessionToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.client.Call(ctx, &stage.TaskRequest{
		Service: "proposal",
		Method:  "generate",
		Payload: "trip from Bangalore to Kerala",
	})
	require.NoError(t, err)

	// follow-up turn carries its session inside the payload
	second, err := f.client.Call(ctx, &stage.TaskRequest{
		Service: "revision",
		Method:  "revise",
		Payload: session.EmbedToken(first.SessionID, "need cheaper hotels"),
	})
	require.NoError(t, err)
	assert.Equal(t, stage.StatusCompleted, second.Status)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Contains(t, second.Artifact, "(revised: need cheaper hotels)")
}

func TestCall_UnclassifiableFeedbackCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.client.Call(ctx, &stage.TaskRequest{
		Service: "proposal",
		Method:  "generate",
		Payload: "trip from Bangalore to Kerala",
	})
	require.NoError(t, err)

	response, err := f.client.Call(ctx, &stage.TaskRequest{
		SessionToken: first.SessionID,
		Service:      "revision",
		Method:       "revise",
		Payload:      "make it better overall",
	})
	require.NoError(t, err)
	assert.Equal(t, stage.StatusFailed, response.Status)
	assert.Equal(t, stage.CodeUnclassifiableFeedback, response.Code)

	// the proposal stayed pending, ready for clearer feedback
	persisted, err := f.sessions.Resolve(ctx, first.SessionID, "")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusPendingApproval, persisted.State.Status)
}

func TestCall_UnknownService(t *testing.T) {
	f := newFixture(t)

	response, err := f.client.Call(context.Background(), &stage.TaskRequest{
		Service: "bogus",
		Method:  "run",
	})
	require.NoError(t, err)
	assert.Equal(t, stage.StatusFailed, response.Status)
	assert.Contains(t, response.Error, "unknown stage service")
}
