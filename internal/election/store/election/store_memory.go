// Package election provides storage for election records. Implementations
// return pkg/platform/sentinel errors; services translate them into domain
// errors.
package election

import (
	"context"
	"sort"
	"sync"

	"ballotbox/internal/election/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store used in tests and single-node dev
// deployments. It mirrors the Postgres store's semantics exactly.
type InMemory struct {
	mu        sync.RWMutex
	elections map[id.ElectionID]models.Election
}

func NewInMemory() *InMemory {
	return &InMemory{elections: make(map[id.ElectionID]models.Election)}
}

func (s *InMemory) Create(ctx context.Context, e *models.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[e.ID]; exists {
		return sentinel.ErrDuplicate
	}
	s.elections[e.ID] = *e
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, electionID id.ElectionID) (*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elections[electionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := e
	return &copied, nil
}

// List returns all elections sorted by start time descending, matching the
// dashboard ordering.
func (s *InMemory) List(ctx context.Context) ([]*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Election, 0, len(s.elections))
	for _, e := range s.elections {
		copied := e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[electionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.elections, electionID)
	return nil
}
