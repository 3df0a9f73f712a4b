// Package router maps free-text revision feedback to the proposal sections
// it affects. Classification is keyword based and deterministic: the same
// feedback always yields the same targets, in section order.
package router

import (
	"errors"
	"strings"

	"github.com/itinera/itinera/model/trip"
)

// ErrUnclassifiable is returned when feedback carries no hint and matches
// no section vocabulary. The caller should ask the user to name the section
// rather than guess.
var ErrUnclassifiable = errors.New("feedback does not identify a proposal section")

// Target names one section a piece of feedback applies to, with the
// instruction the revisor should act on.
type Target struct {
	Kind        trip.SectionKind
	Instruction string
}

// vocabulary holds per-section trigger terms. Single words are matched as
// whole tokens, multi-word terms as substrings.
var vocabulary = map[trip.SectionKind][]string{
	trip.KindRoute: {
		"route", "drive", "driving", "train", "road", "highway",
		"travel time", "direction", "directions", "transport",
	},
	trip.KindAccommodation: {
		"hotel", "hotels", "accommodation", "stay", "resort", "hostel",
		"price", "cheaper", "budget", "lodging", "room", "rooms",
	},
	trip.KindActivities: {
		"activity", "activities", "tour", "tours", "schedule", "itinerary",
		"sightseeing", "attraction", "attractions", "outdoor", "adventure",
		"beach",
	},
}

// Classify resolves feedback to the sections it targets. An explicit hint
// names the section outright and wins over keyword inference; keywords are
// consulted only for unhinted feedback. Feedback naming several sections
// yields one target per section, each carrying the full feedback text as
// its instruction.
func Classify(feedback string, hints ...trip.SectionKind) ([]Target, error) {
	var targets []Target
	for _, hint := range hints {
		targets = append(targets, Target{Kind: hint, Instruction: feedback})
	}
	if len(targets) > 0 {
		return targets, nil
	}

	tokens := tokenize(feedback)
	normalized := strings.ToLower(feedback)
	for _, kind := range trip.Kinds() {
		if matches(kind, tokens, normalized) {
			targets = append(targets, Target{Kind: kind, Instruction: feedback})
		}
	}
	if len(targets) > 0 {
		return targets, nil
	}
	return nil, ErrUnclassifiable
}

func matches(kind trip.SectionKind, tokens map[string]bool, normalized string) bool {
	for _, term := range vocabulary[kind] {
		if strings.Contains(term, " ") {
			if strings.Contains(normalized, term) {
				return true
			}
			continue
		}
		if tokens[term] {
			return true
		}
	}
	return false
}

func tokenize(text string) map[string]bool {
	tokens := map[string]bool{}
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		tokens[field] = true
	}
	return tokens
}
