// Package session is the continuity layer: it resolves inbound turns to
// durable sessions, serializes concurrent turns per session, and carries
// session identity across process boundaries through an in-band token
// marker when no explicit token channel exists.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/itinera/itinera/internal/idgen"
	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/dao"
)

// Manager resolves and persists sessions through a pluggable DAO and hands
// out per-session locks so turns against the same session run one at a time.
type Manager struct {
	dao   dao.Service[string, trip.Session]
	mux   sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a manager backed by the supplied session DAO.
func New(sessionDAO dao.Service[string, trip.Session]) *Manager {
	return &Manager{
		dao:   sessionDAO,
		locks: map[string]*sync.Mutex{},
	}
}

// Resolve loads the session for a token, creating one when the token is
// empty or unknown. An unknown token is honored as the new session's ID so
// a client resuming against a wiped store keeps its identity, with a
// warning since prior state is gone.
func (m *Manager) Resolve(ctx context.Context, token, ownerID string) (*trip.Session, error) {
	if token == "" {
		session := trip.NewSession(idgen.New(), ownerID)
		if err := m.dao.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return session, nil
	}
	session, err := m.dao.Load(ctx, token)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, dao.ErrNotFound) {
		return nil, fmt.Errorf("load session %s: %w", token, err)
	}
	log.Printf("[WARN] session %s not found, starting fresh with the same id", token)
	session = trip.NewSession(token, ownerID)
	if err := m.dao.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Persist stores the session after touching its modification time.
func (m *Manager) Persist(ctx context.Context, session *trip.Session) error {
	session.Touch()
	if err := m.dao.Save(ctx, session); err != nil {
		return fmt.Errorf("persist session %s: %w", session.ID, err)
	}
	return nil
}

// Lock acquires the per-session mutex and returns its release func.
func (m *Manager) Lock(sessionID string) func() {
	m.mux.Lock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	m.mux.Unlock()
	lock.Lock()
	return lock.Unlock
}
