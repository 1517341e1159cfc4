// Package party provides storage for candidate parties. Implementations
// return pkg/platform/sentinel errors; services translate them into domain
// errors.
package party

import (
	"context"
	"sort"
	"sync"

	"ballotbox/internal/election/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. Creation order is preserved via a
// monotonically increasing sequence so results pages stay stable across
// refreshes when vote counts tie.
type InMemory struct {
	mu      sync.RWMutex
	parties map[id.PartyID]models.Party
	order   map[id.PartyID]int
	seq     int
}

func NewInMemory() *InMemory {
	return &InMemory{
		parties: make(map[id.PartyID]models.Party),
		order:   make(map[id.PartyID]int),
	}
}

func (s *InMemory) Create(ctx context.Context, p *models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.parties[p.ID]; exists {
		return sentinel.ErrDuplicate
	}
	s.parties[p.ID] = *p
	s.seq++
	s.order[p.ID] = s.seq
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, partyID id.PartyID) (*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[partyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := p
	return &copied, nil
}

// ListByElection returns an election's parties in creation order.
func (s *InMemory) ListByElection(ctx context.Context, electionID id.ElectionID) ([]*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Party
	for _, p := range s.parties {
		if p.ElectionID == electionID {
			copied := p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, partyID id.PartyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[partyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.parties, partyID)
	delete(s.order, partyID)
	return nil
}

// DeleteByElection removes all parties belonging to an election, as part of
// the election cascade delete.
func (s *InMemory) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pid, p := range s.parties {
		if p.ElectionID == electionID {
			delete(s.parties, pid)
			delete(s.order, pid)
		}
	}
	return nil
}
