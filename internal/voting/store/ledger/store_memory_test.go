package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
)

type LedgerSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *LedgerSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func newBallot(voterID id.VoterID, electionID id.ElectionID, partyID id.PartyID) *models.Ballot {
	return &models.Ballot{
		ID:         id.BallotID(uuid.New()),
		VoterID:    voterID,
		ElectionID: electionID,
		PartyID:    partyID,
		VotedAt:    time.Now(),
	}
}

func (s *LedgerSuite) TestRecord() {
	voter := id.VoterID(uuid.New())
	election := id.ElectionID(uuid.New())
	party := id.PartyID(uuid.New())

	s.Run("first ballot is accepted", func() {
		s.Require().NoError(s.store.Record(s.ctx, newBallot(voter, election, party)))

		exists, err := s.store.Exists(s.ctx, voter, election)
		s.Require().NoError(err)
		s.True(exists)
	})

	s.Run("second ballot for the same pair is rejected", func() {
		err := s.store.Record(s.ctx, newBallot(voter, election, party))
		s.Require().ErrorIs(err, sentinel.ErrDuplicate)
	})

	s.Run("rejection holds regardless of party", func() {
		err := s.store.Record(s.ctx, newBallot(voter, election, id.PartyID(uuid.New())))
		s.Require().ErrorIs(err, sentinel.ErrDuplicate)
	})

	s.Run("same voter may vote in a different election", func() {
		s.Require().NoError(s.store.Record(s.ctx, newBallot(voter, id.ElectionID(uuid.New()), party)))
	})
}

// TestConcurrentRecord exercises the central invariant: any number of
// simultaneous ballots for one (voter, election) pair yields exactly one
// success.
func (s *LedgerSuite) TestConcurrentRecord() {
	voter := id.VoterID(uuid.New())
	election := id.ElectionID(uuid.New())

	const attempts = 64
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.store.Record(s.ctx, newBallot(voter, election, id.PartyID(uuid.New())))
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			s.Require().ErrorIs(err, sentinel.ErrDuplicate)
		}
	}
	s.Equal(1, successes)

	elections, err := s.store.ListByVoter(s.ctx, voter)
	s.Require().NoError(err)
	s.Len(elections, 1)
}

func (s *LedgerSuite) TestDeleteByElection() {
	voter := id.VoterID(uuid.New())
	election := id.ElectionID(uuid.New())
	other := id.ElectionID(uuid.New())

	s.Require().NoError(s.store.Record(s.ctx, newBallot(voter, election, id.PartyID(uuid.New()))))
	s.Require().NoError(s.store.Record(s.ctx, newBallot(voter, other, id.PartyID(uuid.New()))))

	s.Require().NoError(s.store.DeleteByElection(s.ctx, election))

	exists, err := s.store.Exists(s.ctx, voter, election)
	s.Require().NoError(err)
	s.False(exists)

	exists, err = s.store.Exists(s.ctx, voter, other)
	s.Require().NoError(err)
	s.True(exists)
}
