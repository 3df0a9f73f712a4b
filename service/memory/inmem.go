package memory

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/itinera/itinera/model/trip"
)

// InMemStore keeps facts in process memory. It backs tests and the default
// zero-config setup.
type InMemStore struct {
	mux   sync.RWMutex
	facts map[string]*Fact
}

// NewInMemStore returns an empty in-process store.
func NewInMemStore() *InMemStore {
	return &InMemStore{facts: map[string]*Fact{}}
}

func (s *InMemStore) AddSessionToMemory(_ context.Context, session *trip.Session) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	key := session.ID + "|" + string(session.State.Status)
	if _, ok := s.facts[key]; ok {
		return nil
	}
	s.facts[key] = &Fact{
		ID:        newFactID(),
		OwnerID:   session.OwnerID,
		SessionID: session.ID,
		Status:    string(session.State.Status),
		Summary:   Summarize(session),
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *InMemStore) SearchMemory(_ context.Context, ownerID, query string) ([]*Fact, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var result []*Fact
	for _, fact := range s.facts {
		if ownerID != "" && fact.OwnerID != ownerID {
			continue
		}
		if matchesQuery(fact.Summary, query) {
			result = append(result, fact)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemStore) Close() error { return nil }

func newFactID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
