package revisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/generator"
)

func baselineState() *trip.ProposalState {
	state := trip.NewProposalState(trip.TripRequest{
		Destination:   "Kerala",
		StartLocation: "Bangalore",
		DurationDays:  5,
		Preferences:   "scenic",
	})
	state.SetSection(trip.KindRoute, "Drive via Mysore.", "")
	state.SetSection(trip.KindAccommodation, "Lakeside resort in Kumarakom.", "")
	state.SetSection(trip.KindActivities, "Backwater cruise.", "")
	state.Status = trip.StatusRevising
	return state
}

func TestRevise_LeavesBaselineUntouched(t *testing.T) {
	service := New(&generator.Mock{})
	state := baselineState()

	content, diff, err := service.Revise(context.Background(), trip.KindAccommodation, state, "need cheaper hotels")
	assert.NoError(t, err)
	assert.Contains(t, content, "need cheaper hotels")
	assert.Contains(t, diff, "-Lakeside resort in Kumarakom.")
	assert.Contains(t, diff, "+"+content)

	// pure: the caller applies the result, Revise must not
	assert.Equal(t, "Lakeside resort in Kumarakom.", state.Content(trip.KindAccommodation))
	assert.Equal(t, "Drive via Mysore.", state.Content(trip.KindRoute))
	assert.Equal(t, "Backwater cruise.", state.Content(trip.KindActivities))
}

func TestRevise_EmptySection(t *testing.T) {
	service := New(&generator.Mock{})
	state := trip.NewProposalState(trip.TripRequest{Destination: "Kerala"})

	_, _, err := service.Revise(context.Background(), trip.KindRoute, state, "shorter drive")
	assert.Error(t, err)
}

type brokenGenerator struct{}

func (brokenGenerator) Generate(context.Context, *generator.ContentRequest) (string, error) {
	return "", errors.New("generator unavailable")
}

func TestRevise_GeneratorFailure(t *testing.T) {
	service := New(brokenGenerator{})
	state := baselineState()

	_, _, err := service.Revise(context.Background(), trip.KindRoute, state, "shorter drive")
	var stepErr *generator.StepError
	assert.True(t, errors.As(err, &stepErr))
	assert.Equal(t, trip.KindRoute, stepErr.Kind)
	assert.Equal(t, "Drive via Mysore.", state.Content(trip.KindRoute))
}
