package session

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/itinera/itinera/model/trip"
)

// Marker carries the session ID inside the message payload itself, for
// transports that have no side channel for it. Markers survive round trips
// through the remote stage untouched by generation.
var markerPattern = regexp.MustCompile(`\[SESSION:([^\]]+)\]`)

// ExtractToken pulls a session token out of a payload, returning the
// payload with the marker stripped. A payload without a marker comes back
// unchanged with an empty token.
func ExtractToken(payload string) (token, remainder string) {
	match := markerPattern.FindStringSubmatch(payload)
	if match == nil {
		return "", payload
	}
	token = match[1]
	remainder = strings.TrimSpace(markerPattern.ReplaceAllString(payload, ""))
	return token, remainder
}

// EmbedToken prefixes the payload with the session marker.
func EmbedToken(token, payload string) string {
	return "[SESSION:" + token + "] " + payload
}

var (
	durationPattern = regexp.MustCompile(`(?i)(\d+)[ -]*day`)
	// place names are matched as capitalized runs so "want to go hiking"
	// does not parse as a destination
	destinationPattern = regexp.MustCompile(`\bto\s+([A-Z][\w']*(?:\s+[A-Z][\w']*)*)`)
	originPattern      = regexp.MustCompile(`\bfrom\s+([A-Z][\w']*(?:\s+[A-Z][\w']*)*)`)
	preferencePattern  = regexp.MustCompile(`(?i)(?:prefer(?:ence)?s?|like|want)\s*:?\s+(.+)$`)
)

// ParseTripRequest extracts a structured request from free text. Parsing is
// defensive: any field the text does not yield falls back to a usable
// default so a vague request still produces a proposal the user can then
// correct through feedback.
func ParseTripRequest(text string) trip.TripRequest {
	request := trip.TripRequest{
		Destination:   "unknown destination",
		StartLocation: "unknown",
		DurationDays:  3,
		Preferences:   "none",
	}
	if match := destinationPattern.FindStringSubmatch(text); match != nil {
		request.Destination = match[1]
	}
	if match := originPattern.FindStringSubmatch(text); match != nil {
		request.StartLocation = match[1]
	}
	if match := durationPattern.FindStringSubmatch(text); match != nil {
		if days, err := strconv.Atoi(match[1]); err == nil && days > 0 {
			request.DurationDays = days
		}
	}
	if match := preferencePattern.FindStringSubmatch(text); match != nil {
		request.Preferences = strings.TrimRight(strings.TrimSpace(match[1]), ".")
	}
	return request
}
