package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/generator"
)

// failingGenerator fails for one section kind and delegates the rest to the
// deterministic mock.
type failingGenerator struct {
	fail trip.SectionKind
	mock generator.Mock
}

func (g *failingGenerator) Generate(ctx context.Context, request *generator.ContentRequest) (string, error) {
	if request.Kind == g.fail {
		return "", errors.New("generator unavailable")
	}
	return g.mock.Generate(ctx, request)
}

func testRequest() trip.TripRequest {
	return trip.TripRequest{
		Destination:   "Kerala",
		StartLocation: "Bangalore",
		DurationDays:  5,
		Preferences:   "scenic",
	}
}

func TestGenerateAll_PopulatesAllSections(t *testing.T) {
	service := New(&generator.Mock{})
	state := trip.NewProposalState(testRequest())

	err := service.GenerateAll(context.Background(), state)
	assert.NoError(t, err)
	assert.True(t, state.Complete())
	assert.Equal(t, trip.StatusGenerating, state.Status, "gate owns the transition to pending")
}

func TestGenerateAll_HaltsOnFirstFailure(t *testing.T) {
	service := New(&failingGenerator{fail: trip.KindAccommodation})
	state := trip.NewProposalState(testRequest())

	err := service.GenerateAll(context.Background(), state)
	assert.Error(t, err)

	var stepErr *generator.StepError
	assert.True(t, errors.As(err, &stepErr))
	assert.Equal(t, trip.KindAccommodation, stepErr.Kind)

	// earlier progress is preserved, later steps never ran
	assert.False(t, state.Sections[trip.KindRoute].IsEmpty())
	assert.True(t, state.Sections[trip.KindAccommodation].IsEmpty())
	assert.True(t, state.Sections[trip.KindActivities].IsEmpty())
	assert.Equal(t, trip.StatusGenerating, state.Status)
}

func TestGenerateAll_ResumesAtFailingStep(t *testing.T) {
	failing := &failingGenerator{fail: trip.KindAccommodation}
	service := New(failing)
	state := trip.NewProposalState(testRequest())

	assert.Error(t, service.GenerateAll(context.Background(), state))
	route := state.Content(trip.KindRoute)

	// generator recovers; rerun fills in only the missing sections
	failing.fail = ""
	assert.NoError(t, service.GenerateAll(context.Background(), state))
	assert.True(t, state.Complete())
	assert.Equal(t, route, state.Content(trip.KindRoute), "already generated section must not be regenerated")
}
