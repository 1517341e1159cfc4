package voter

import (
	"context"
	"sync"

	"ballotbox/internal/voter/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store used in tests and single-node dev
// deployments. Uniqueness checks and the insert happen under one lock, the
// same atomicity the Postgres unique indexes give.
type InMemory struct {
	mu        sync.RWMutex
	voters    map[id.VoterID]models.Voter
	byEmail   map[string]id.VoterID
	byStudent map[string]id.VoterID
}

func NewInMemory() *InMemory {
	return &InMemory{
		voters:    make(map[id.VoterID]models.Voter),
		byEmail:   make(map[string]id.VoterID),
		byStudent: make(map[string]id.VoterID),
	}
}

func (s *InMemory) Create(ctx context.Context, v *models.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[v.Email]; taken {
		return ErrDuplicateEmail
	}
	if v.StudentID != "" {
		if _, taken := s.byStudent[v.StudentID]; taken {
			return ErrDuplicateStudentID
		}
	}

	s.voters[v.ID] = *v
	s.byEmail[v.Email] = v.ID
	if v.StudentID != "" {
		s.byStudent[v.StudentID] = v.ID
	}
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, voterID id.VoterID) (*models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.voters[voterID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := v
	return &copied, nil
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voterID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	v := s.voters[voterID]
	copied := v
	return &copied, nil
}
