package tally

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "ballotbox/pkg/domain"
)

type TallySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *TallySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestTallySuite(t *testing.T) {
	suite.Run(t, new(TallySuite))
}

func (s *TallySuite) TestIncrement() {
	electionID := id.ElectionID(uuid.New())
	partyID := id.PartyID(uuid.New())

	s.Run("returns the new count", func() {
		count, err := s.store.Increment(s.ctx, electionID, partyID)
		s.Require().NoError(err)
		s.Equal(int64(1), count)

		count, err = s.store.Increment(s.ctx, electionID, partyID)
		s.Require().NoError(err)
		s.Equal(int64(2), count)
	})

	s.Run("unincremented party reads as zero", func() {
		count, err := s.store.Get(s.ctx, id.PartyID(uuid.New()))
		s.Require().NoError(err)
		s.Equal(int64(0), count)
	})
}

// TestConcurrentIncrements verifies no lost updates: N concurrent increments
// must all be reflected.
func (s *TallySuite) TestConcurrentIncrements() {
	electionID := id.ElectionID(uuid.New())
	partyID := id.PartyID(uuid.New())

	const n = 200
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.store.Increment(s.ctx, electionID, partyID)
		}()
	}
	wg.Wait()

	count, err := s.store.Get(s.ctx, partyID)
	s.Require().NoError(err)
	s.Equal(int64(n), count)
}

func (s *TallySuite) TestGetMany() {
	electionID := id.ElectionID(uuid.New())
	a := id.PartyID(uuid.New())
	b := id.PartyID(uuid.New())
	missing := id.PartyID(uuid.New())

	for range 3 {
		_, err := s.store.Increment(s.ctx, electionID, a)
		s.Require().NoError(err)
	}
	_, err := s.store.Increment(s.ctx, electionID, b)
	s.Require().NoError(err)

	counts, err := s.store.GetMany(s.ctx, []id.PartyID{a, b, missing})
	s.Require().NoError(err)
	s.Equal(int64(3), counts[a])
	s.Equal(int64(1), counts[b])
	s.Equal(int64(0), counts[missing])
}

func (s *TallySuite) TestCascadeDeletes() {
	electionID := id.ElectionID(uuid.New())
	other := id.ElectionID(uuid.New())
	doomed := id.PartyID(uuid.New())
	survivor := id.PartyID(uuid.New())

	_, err := s.store.Increment(s.ctx, electionID, doomed)
	s.Require().NoError(err)
	_, err = s.store.Increment(s.ctx, other, survivor)
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteByElection(s.ctx, electionID))

	count, err := s.store.Get(s.ctx, doomed)
	s.Require().NoError(err)
	s.Equal(int64(0), count)

	count, err = s.store.Get(s.ctx, survivor)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}
