package trip

import "fmt"

// TripRequest captures the trip parameters supplied at intake. It is
// immutable once captured; a new request always starts a fresh proposal.
type TripRequest struct {
	Destination   string `json:"destination"`
	StartLocation string `json:"startLocation"`
	DurationDays  int    `json:"durationDays"`
	Preferences   string `json:"preferences"`
}

// IsZero reports whether no request has been captured yet.
func (r TripRequest) IsZero() bool {
	return r.Destination == "" && r.StartLocation == "" && r.DurationDays == 0 && r.Preferences == ""
}

// String renders a one-line description used in summaries and logs.
func (r TripRequest) String() string {
	return fmt.Sprintf("%d-day trip from %s to %s (preferences: %s)",
		r.DurationDays, r.StartLocation, r.Destination, r.Preferences)
}
