package generator

import (
	"context"
	"fmt"

	"github.com/itinera/itinera/model/trip"
)

// Mock is a deterministic generator for local runs and tests; identical
// requests always yield identical text.
type Mock struct{}

func (m *Mock) Generate(_ context.Context, request *ContentRequest) (string, error) {
	req := request.Request
	if request.IsRevision() {
		return fmt.Sprintf("%s for %s, revised to address: %s.",
			sectionTopic(request.Kind), req.Destination, request.Instruction), nil
	}
	return fmt.Sprintf("%s for a %d-day trip from %s to %s (preferences: %s).",
		sectionTopic(request.Kind), req.DurationDays, req.StartLocation, req.Destination, req.Preferences), nil
}

func sectionTopic(kind trip.SectionKind) string {
	switch kind {
	case trip.KindRoute:
		return "Route plan"
	case trip.KindAccommodation:
		return "Accommodation options"
	case trip.KindActivities:
		return "Activity suggestions"
	}
	return "Plan"
}

var _ Service = (*Mock)(nil)
