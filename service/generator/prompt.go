package generator

import (
	"fmt"
	"strings"

	"github.com/itinera/itinera/model/trip"
)

// Prompt is the provider-independent prompt produced from a ContentRequest.
type Prompt struct {
	System string
	User   string
}

type sectionPrompt struct {
	system string
	ask    string
}

// sectionPrompts maps each section kind to its generation instructions; the
// closed map doubles as the dispatch table for section regeneration.
var sectionPrompts = map[trip.SectionKind]sectionPrompt{
	trip.KindRoute: {
		system: "You plan travel routes. Describe the route, transportation options and estimated travel time.",
		ask:    "Plan the route for this trip.",
	},
	trip.KindAccommodation: {
		system: "You find accommodations. Recommend hotels with price range and locations consistent with the planned route.",
		ask:    "Recommend accommodation for this trip.",
	},
	trip.KindActivities: {
		system: "You suggest activities. List activities, must-see highlights and a suggested schedule.",
		ask:    "Suggest activities for this trip.",
	},
}

// Build renders a ContentRequest into a Prompt.
func Build(request *ContentRequest) Prompt {
	spec, ok := sectionPrompts[request.Kind]
	if !ok {
		spec = sectionPrompt{system: "You help plan trips.", ask: "Help with this trip."}
	}

	var user strings.Builder
	req := request.Request
	fmt.Fprintf(&user, "Trip: %d days from %s to %s.\n", req.DurationDays, req.StartLocation, req.Destination)
	if req.Preferences != "" {
		fmt.Fprintf(&user, "Preferences: %s.\n", req.Preferences)
	}
	for _, kind := range trip.Kinds() {
		if kind == request.Kind {
			continue
		}
		if prior, ok := request.Prior[kind]; ok && prior != "" {
			fmt.Fprintf(&user, "\n%s (already planned):\n%s\n", kind.Title(), prior)
		}
	}
	if request.IsRevision() {
		fmt.Fprintf(&user, "\nPrevious %s plan:\n%s\n", request.Kind, request.Previous)
		fmt.Fprintf(&user, "\nFeedback: %s\n", request.Instruction)
		user.WriteString("Revise the previous plan to address the feedback. Change only what the feedback asks for and keep everything else as close to the previous plan as possible.\n")
	} else {
		user.WriteString("\n" + spec.ask + "\n")
	}
	return Prompt{System: spec.system, User: user.String()}
}
