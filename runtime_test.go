package itinera

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/gate"
	"github.com/itinera/itinera/service/memory"
	"github.com/itinera/itinera/service/stage"
)

func newRuntime(t *testing.T, options ...Option) *Runtime {
	t.Helper()
	runtime := New(options...).Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	t.Cleanup(func() {
		_ = runtime.Shutdown(context.Background())
	})
	return runtime
}

func TestHandleTurn_RequestToPendingProposal(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	turn, err := runtime.HandleTurn(ctx, "", "plan a 5-day trip from Bangalore to Kerala, we like scenic routes")
	require.NoError(t, err)
	assert.NotEmpty(t, turn.SessionID)
	assert.Equal(t, trip.StatusPendingApproval, turn.Status)
	assert.Contains(t, turn.Reply, "TRIP PROPOSAL: Bangalore to Kerala")
	assert.Contains(t, turn.Reply, "ROUTE:")
	assert.Contains(t, turn.Reply, "ACCOMMODATION:")
	assert.Contains(t, turn.Reply, "ACTIVITIES:")

	aSession, err := runtime.Session(ctx, turn.SessionID)
	require.NoError(t, err)
	assert.True(t, aSession.State.Complete())
}

func TestHandleTurn_ApproveFinalizes(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)

	second, err := runtime.HandleTurn(ctx, first.SessionID, "approve")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusFinalized, second.Status)
	assert.Contains(t, second.Reply, "TRIP PROPOSAL")

	// a decision against a finalized proposal is an error
	_, err = runtime.HandleTurn(ctx, first.SessionID, "approve")
	assert.ErrorIs(t, err, gate.ErrNoPendingProposal)

	// a new trip request after finalization starts a fresh session
	fresh, err := runtime.HandleTurn(ctx, first.SessionID, "trip from Delhi to Goa")
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, fresh.SessionID)
	assert.Equal(t, trip.StatusPendingApproval, fresh.Status)

	// the finalized trip landed in memory
	facts, err := runtime.Recall(ctx, "", "Kerala")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, first.SessionID, facts[0].SessionID)
}

func TestHandleTurn_DecisionWithoutProposal(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	_, err := runtime.HandleTurn(ctx, "", "approve")
	assert.ErrorIs(t, err, gate.ErrNoPendingProposal)

	_, err = runtime.HandleTurn(ctx, "", "reject: too expensive")
	assert.ErrorIs(t, err, gate.ErrNoPendingProposal)
}

func TestHandleTurn_RejectRevisesOnlyTargetSection(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)

	before, err := runtime.Session(ctx, first.SessionID)
	require.NoError(t, err)
	route := before.State.Content(trip.KindRoute)
	activities := before.State.Content(trip.KindActivities)
	accommodation := before.State.Content(trip.KindAccommodation)

	second, err := runtime.HandleTurn(ctx, first.SessionID, "reject: need cheaper hotels")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusPendingApproval, second.Status)
	assert.Contains(t, second.Reply, "(revised: need cheaper hotels)")

	after, err := runtime.Session(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, route, after.State.Content(trip.KindRoute), "route must be untouched")
	assert.Equal(t, activities, after.State.Content(trip.KindActivities), "activities must be untouched")
	assert.NotEqual(t, accommodation, after.State.Content(trip.KindAccommodation))
	assert.Contains(t, after.State.Content(trip.KindAccommodation), "need cheaper hotels")
}

func TestHandleTurn_UnknownDecisionKeepsPending(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)

	second, err := runtime.HandleTurn(ctx, first.SessionID, "maybe?")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusPendingApproval, second.Status)
	assert.Contains(t, second.Reply, "approve")

	third, err := runtime.HandleTurn(ctx, first.SessionID, "approve")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusFinalized, third.Status)
}

func TestHandleTurn_UnclassifiableFeedbackKeepsPending(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)

	second, err := runtime.HandleTurn(ctx, first.SessionID, "reject: make it better overall")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusPendingApproval, second.Status)
	assert.Contains(t, strings.ToLower(second.Reply), "which part")
}

func TestHandleTurn_InBandSessionMarker(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)

	second, err := runtime.HandleTurn(ctx, "", "[SESSION:"+first.SessionID+"] approve")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, trip.StatusFinalized, second.Status)
}

// failingMemoryStore rejects every write so tests can assert that memory
// persistence never blocks a turn.
type failingMemoryStore struct {
	writes int
}

func (s *failingMemoryStore) AddSessionToMemory(context.Context, *trip.Session) error {
	s.writes++
	return errors.New("memory backend unavailable")
}

func (s *failingMemoryStore) SearchMemory(context.Context, string, string) ([]*memory.Fact, error) {
	return nil, nil
}

func (s *failingMemoryStore) Close() error { return nil }

func TestHandleTurn_ApproveSurvivesMemoryFailure(t *testing.T) {
	store := &failingMemoryStore{}
	runtime := newRuntime(t, WithMemoryStore(store))
	ctx := context.Background()

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)

	second, err := runtime.HandleTurn(ctx, first.SessionID, "approve")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusFinalized, second.Status)
	assert.Contains(t, second.Reply, "Trip approved")
	assert.Equal(t, 1, store.writes, "the failed write must have been attempted")

	// the finalized state survived even though the memory write failed
	aSession, err := runtime.Session(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusFinalized, aSession.State.Status)
}

func TestHandleTurn_CallTimeoutTellsUserToRetry(t *testing.T) {
	runtime := newRuntime(t, WithCallTimeout(time.Nanosecond))
	ctx := context.Background()

	_, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.Error(t, err)
	assert.ErrorIs(t, err, stage.ErrTimeout)
	assert.Contains(t, err.Error(), "the session was saved")
}

func TestHandleTurn_RecallAtIntake(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	empty, err := runtime.HandleTurn(ctx, "", "show my trips")
	require.NoError(t, err)
	assert.Contains(t, empty.Reply, "No remembered trips")

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)
	_, err = runtime.HandleTurn(ctx, first.SessionID, "approve")
	require.NoError(t, err)

	recalled, err := runtime.HandleTurn(ctx, "", "show my trips")
	require.NoError(t, err)
	assert.Contains(t, recalled.Reply, "Kerala")
}

func TestHandleTurn_MultiSectionFeedback(t *testing.T) {
	runtime := newRuntime(t)
	ctx := context.Background()

	first, err := runtime.HandleTurn(ctx, "", "trip from Bangalore to Kerala")
	require.NoError(t, err)

	before, err := runtime.Session(ctx, first.SessionID)
	require.NoError(t, err)
	activities := before.State.Content(trip.KindActivities)

	second, err := runtime.HandleTurn(ctx, first.SessionID, "reject: cheaper hotels and a shorter drive")
	require.NoError(t, err)
	assert.Equal(t, trip.StatusPendingApproval, second.Status)

	after, err := runtime.Session(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Contains(t, after.State.Content(trip.KindRoute), "cheaper hotels and a shorter drive")
	assert.Contains(t, after.State.Content(trip.KindAccommodation), "cheaper hotels and a shorter drive")
	assert.Equal(t, activities, after.State.Content(trip.KindActivities), "activities must be untouched")
}
