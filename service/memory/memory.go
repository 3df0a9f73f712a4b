// Package memory persists durable facts distilled from sessions so later
// conversations can recall past trips. Writing is idempotent per session
// and proposal status: replaying a turn never duplicates a fact.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itinera/itinera/model/trip"
)

// Policy controls when session state is written to memory.
type Policy string

const (
	// PolicyOnFinalize writes a fact only when a proposal reaches its
	// terminal state. This is the default.
	PolicyOnFinalize = Policy("on-finalize")
	// PolicyEveryTurn additionally snapshots intermediate statuses.
	PolicyEveryTurn = Policy("every-turn")
)

// ShouldPersist reports whether the policy persists a session in the given
// status.
func (p Policy) ShouldPersist(status trip.Status) bool {
	switch p {
	case PolicyEveryTurn:
		return status != trip.StatusEmpty
	default:
		return status == trip.StatusFinalized
	}
}

// Fact is one remembered item about a past or in-progress trip.
type Fact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	SessionID string    `json:"sessionId"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists and recalls facts.
type Store interface {
	// AddSessionToMemory distills the session into a fact and stores it.
	// Re-adding a session in the same status is a no-op.
	AddSessionToMemory(ctx context.Context, session *trip.Session) error

	// SearchMemory returns facts whose summary matches the query, newest
	// first. An empty query returns everything.
	SearchMemory(ctx context.Context, ownerID, query string) ([]*Fact, error)

	// Close releases underlying resources.
	Close() error
}

// Summarize distills a session into a one-paragraph fact summary.
func Summarize(session *trip.Session) string {
	state := session.State
	var builder strings.Builder
	fmt.Fprintf(&builder, "Trip proposal (%s): %s.", state.Status, state.Request.String())
	if state.Status == trip.StatusFinalized {
		builder.WriteString(" Approved by the traveler.")
	}
	for _, kind := range trip.Kinds() {
		if content := state.Content(kind); content != "" {
			fmt.Fprintf(&builder, " %s: %s", kind.Title(), firstLine(content))
		}
	}
	return builder.String()
}

func firstLine(text string) string {
	if index := strings.IndexByte(text, '\n'); index >= 0 {
		return strings.TrimSpace(text[:index])
	}
	return text
}

func matchesQuery(summary, query string) bool {
	if query == "" {
		return true
	}
	summary = strings.ToLower(summary)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(summary, term) {
			return false
		}
	}
	return true
}
