// Package tally keeps the denormalized per-party vote counters used on the
// results hot path, so results pages never scan the ballot ledger. Counters
// are authoritative only together with the ledger: the coordinator applies
// a ledger write and a tally increment as one logical unit.
package tally

import (
	"context"
	"sync"

	id "ballotbox/pkg/domain"
)

// InMemory keeps counters under one mutex so concurrent increments never
// lose updates.
type InMemory struct {
	mu       sync.RWMutex
	counts   map[id.PartyID]int64
	election map[id.PartyID]id.ElectionID
}

func NewInMemory() *InMemory {
	return &InMemory{
		counts:   make(map[id.PartyID]int64),
		election: make(map[id.PartyID]id.ElectionID),
	}
}

// Increment atomically adds one vote for the party and returns the new count.
func (s *InMemory) Increment(ctx context.Context, electionID id.ElectionID, partyID id.PartyID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[partyID]++
	s.election[partyID] = electionID
	return s.counts[partyID], nil
}

// Get returns the current count for a party; parties that have never been
// incremented read as zero.
func (s *InMemory) Get(ctx context.Context, partyID id.PartyID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[partyID], nil
}

// GetMany returns counts for the given parties in one call. Missing parties
// read as zero.
func (s *InMemory) GetMany(ctx context.Context, partyIDs []id.PartyID) (map[id.PartyID]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.PartyID]int64, len(partyIDs))
	for _, pid := range partyIDs {
		out[pid] = s.counts[pid]
	}
	return out, nil
}

// DeleteByElection drops counters as part of the election cascade delete.
func (s *InMemory) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pid, eid := range s.election {
		if eid == electionID {
			delete(s.counts, pid)
			delete(s.election, pid)
		}
	}
	return nil
}

// DeleteByParty drops a single party's counter when the party is removed.
func (s *InMemory) DeleteByParty(ctx context.Context, partyID id.PartyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, partyID)
	delete(s.election, partyID)
	return nil
}
