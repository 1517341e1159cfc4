// Package ledger is the append-only record of ballots. The (voter, election)
// uniqueness invariant lives here, enforced atomically at write time: a
// check-then-insert split across two unsynchronized operations is not an
// acceptable implementation of Record.
package ledger

import (
	"context"
	"sync"

	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
)

type ballotKey struct {
	voterID    id.VoterID
	electionID id.ElectionID
}

// InMemory enforces ballot uniqueness under a single mutex held across the
// whole check-and-insert, so concurrent Record calls for the same
// (voter, election) pair serialize and exactly one succeeds.
type InMemory struct {
	mu      sync.RWMutex
	ballots map[ballotKey]models.Ballot
}

func NewInMemory() *InMemory {
	return &InMemory{ballots: make(map[ballotKey]models.Ballot)}
}

// Record appends a ballot. Returns sentinel.ErrDuplicate when a ballot for
// the same (voter, election) pair already exists, regardless of party.
func (s *InMemory) Record(ctx context.Context, b *models.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ballotKey{voterID: b.VoterID, electionID: b.ElectionID}
	if _, exists := s.ballots[key]; exists {
		return sentinel.ErrDuplicate
	}
	s.ballots[key] = *b
	return nil
}

// Exists is a read-only convenience for dashboards ("you have voted"
// badges). It is never the duplicate gate; Record is.
func (s *InMemory) Exists(ctx context.Context, voterID id.VoterID, electionID id.ElectionID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ballots[ballotKey{voterID: voterID, electionID: electionID}]
	return ok, nil
}

// ListByVoter returns the elections a voter has cast ballots in.
func (s *InMemory) ListByVoter(ctx context.Context, voterID id.VoterID) ([]id.ElectionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.ElectionID
	for key := range s.ballots {
		if key.voterID == voterID {
			out = append(out, key.electionID)
		}
	}
	return out, nil
}

// DeleteByElection removes an election's ballots as part of cascade delete.
// This is the only path that ever removes ballots.
func (s *InMemory) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.ballots {
		if key.electionID == electionID {
			delete(s.ballots, key)
		}
	}
	return nil
}
