package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itinera/itinera/model/trip"
)

func pendingState() *trip.ProposalState {
	state := trip.NewProposalState(trip.TripRequest{
		Destination:   "Kerala",
		StartLocation: "Bangalore",
		DurationDays:  5,
		Preferences:   "scenic",
	})
	state.SetSection(trip.KindRoute, "Drive via Mysore and Wayanad.\nEstimated time: 8 hours.", "")
	state.SetSection(trip.KindAccommodation, "Budget homestays near Kumarakom.", "")
	state.SetSection(trip.KindActivities, "Backwater cruise, tea plantation walk.", "")
	state.Status = trip.StatusPendingApproval
	return state
}

func TestRenderExtract_RoundTrip(t *testing.T) {
	state := pendingState()
	rendered := Render(state)

	assert.Contains(t, rendered, "TRIP PROPOSAL: Bangalore to Kerala")
	assert.Contains(t, rendered, "ROUTE:")
	assert.Contains(t, rendered, "ACCOMMODATION:")
	assert.Contains(t, rendered, "ACTIVITIES:")
	assert.Contains(t, rendered, InstructionLine)

	sections, err := Extract(rendered)
	assert.NoError(t, err)
	for _, kind := range trip.Kinds() {
		assert.Equal(t, state.Content(kind), sections[kind], string(kind))
	}
}

func TestRenderExtract_RevisionMarkerIsDisplayOnly(t *testing.T) {
	state := pendingState()
	state.SetSection(trip.KindAccommodation, "Cheaper homestays near Kumarakom.", "need cheaper hotels")

	rendered := Render(state)
	assert.Contains(t, rendered, "(revised: need cheaper hotels)")

	sections, err := Extract(rendered)
	assert.NoError(t, err)
	assert.Equal(t, "Cheaper homestays near Kumarakom.", sections[trip.KindAccommodation])
}

func TestExtract_MissingSection(t *testing.T) {
	_, err := Extract("ROUTE:\nsomething\n")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accommodation")
}
