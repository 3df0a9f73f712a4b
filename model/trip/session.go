package trip

import (
	"time"

	"github.com/itinera/itinera/internal/clock"
)

// Session is the durable, resumable unit of workflow state tied to one
// user's in-progress proposal. Sessions are owned by the continuity layer
// and may be looked up by ID from a separate stage invocation.
type Session struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"ownerId"`
	State     *ProposalState `json:"state"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewSession creates an empty session with no captured request.
func NewSession(id, ownerID string) *Session {
	now := clock.Now()
	return &Session{
		ID:        id,
		OwnerID:   ownerID,
		State:     NewProposalState(TripRequest{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the modification timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = clock.Now()
}
