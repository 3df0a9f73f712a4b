// Package memory provides an in-memory session store for single-process
// deployments and tests.
package memory

import (
	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/dao"
	"github.com/itinera/itinera/service/dao/store"
)

func sessionKey(s *trip.Session) string { return s.ID }

// New creates an in-memory session DAO.
func New() dao.Service[string, trip.Session] {
	return store.NewMemoryStore[string, trip.Session](sessionKey)
}
