package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	electionmodels "ballotbox/internal/election/models"
	electionstore "ballotbox/internal/election/store/election"
	partystore "ballotbox/internal/election/store/party"
	"ballotbox/internal/voting/store/ledger"
	"ballotbox/internal/voting/store/tally"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/requestcontext"
)

var (
	windowStart = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	midWindow   = time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
)

type CastVoteSuite struct {
	suite.Suite
	elections *electionstore.InMemory
	parties   *partystore.InMemory
	ledger    *ledger.InMemory
	tally     *tally.InMemory
	svc       *Service

	election *electionmodels.Election
	partyA   *electionmodels.Party
	partyB   *electionmodels.Party
}

func TestCastVoteSuite(t *testing.T) {
	suite.Run(t, new(CastVoteSuite))
}

func (s *CastVoteSuite) SetupTest() {
	s.elections = electionstore.NewInMemory()
	s.parties = partystore.NewInMemory()
	s.ledger = ledger.NewInMemory()
	s.tally = tally.NewInMemory()
	s.svc = NewService(s.elections, s.parties, s.ledger, s.tally)

	ctx := context.Background()
	var err error
	s.election, err = electionmodels.NewElection(id.ElectionID(uuid.New()), "Council 2024", windowStart, windowEnd, windowStart.Add(-24*time.Hour), "admin@example.com")
	s.Require().NoError(err)
	s.Require().NoError(s.elections.Create(ctx, s.election))

	s.partyA, err = electionmodels.NewParty(id.PartyID(uuid.New()), s.election.ID, "Party A", "", "", s.election.CreatedAt)
	s.Require().NoError(err)
	s.partyB, err = electionmodels.NewParty(id.PartyID(uuid.New()), s.election.ID, "Party B", "", "", s.election.CreatedAt)
	s.Require().NoError(err)
	s.Require().NoError(s.parties.Create(ctx, s.partyA))
	s.Require().NoError(s.parties.Create(ctx, s.partyB))
}

// ctxAt pins the request time so window checks are deterministic.
func ctxAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *CastVoteSuite) TestChecksShortCircuitInOrder() {
	voter := id.VoterID(uuid.New())

	s.Run("unknown election", func() {
		_, err := s.svc.CastVote(ctxAt(midWindow), voter, id.ElectionID(uuid.New()), s.partyA.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("upcoming election is not active", func() {
		_, err := s.svc.CastVote(ctxAt(windowStart.Add(-time.Minute)), voter, s.election.ID, s.partyA.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("ended election is not active", func() {
		_, err := s.svc.CastVote(ctxAt(windowEnd.Add(time.Minute)), voter, s.election.ID, s.partyA.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown party", func() {
		_, err := s.svc.CastVote(ctxAt(midWindow), voter, s.election.ID, id.PartyID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("party from another election leaves no trace", func() {
		other, err := electionmodels.NewElection(id.ElectionID(uuid.New()), "Other", windowStart, windowEnd, s.election.CreatedAt, "")
		s.Require().NoError(err)
		s.Require().NoError(s.elections.Create(context.Background(), other))
		foreign, err := electionmodels.NewParty(id.PartyID(uuid.New()), other.ID, "Foreign", "", "", s.election.CreatedAt)
		s.Require().NoError(err)
		s.Require().NoError(s.parties.Create(context.Background(), foreign))

		_, err = s.svc.CastVote(ctxAt(midWindow), voter, s.election.ID, foreign.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		voted, err := s.ledger.Exists(context.Background(), voter, s.election.ID)
		s.Require().NoError(err)
		s.False(voted)

		count, err := s.tally.Get(context.Background(), foreign.ID)
		s.Require().NoError(err)
		s.Zero(count)
	})
}

func (s *CastVoteSuite) TestWindowBoundariesAreInclusive() {
	s.Run("vote lands at exact start", func() {
		_, err := s.svc.CastVote(ctxAt(windowStart), id.VoterID(uuid.New()), s.election.ID, s.partyA.ID)
		s.Require().NoError(err)
	})

	s.Run("vote lands at exact end", func() {
		_, err := s.svc.CastVote(ctxAt(windowEnd), id.VoterID(uuid.New()), s.election.ID, s.partyA.ID)
		s.Require().NoError(err)
	})
}

func (s *CastVoteSuite) TestSuccessfulVote() {
	voter := id.VoterID(uuid.New())

	ballot, err := s.svc.CastVote(ctxAt(midWindow), voter, s.election.ID, s.partyA.ID)
	s.Require().NoError(err)
	s.Equal(voter, ballot.VoterID)
	s.Equal(s.partyA.ID, ballot.PartyID)
	s.Equal(midWindow, ballot.VotedAt)

	count, err := s.tally.Get(context.Background(), s.partyA.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	voted, err := s.svc.HasVoted(context.Background(), voter, s.election.ID)
	s.Require().NoError(err)
	s.True(voted)
}

// TestDuplicateRejectionIsIdempotent: a voter with a recorded ballot always
// gets the duplicate error, regardless of which party the retry names, and
// the tally never moves again.
func (s *CastVoteSuite) TestDuplicateRejectionIsIdempotent() {
	voter := id.VoterID(uuid.New())

	_, err := s.svc.CastVote(ctxAt(midWindow), voter, s.election.ID, s.partyA.ID)
	s.Require().NoError(err)

	for _, party := range []id.PartyID{s.partyA.ID, s.partyB.ID, s.partyA.ID} {
		_, err := s.svc.CastVote(ctxAt(midWindow), voter, s.election.ID, party)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	}

	countA, err := s.tally.Get(context.Background(), s.partyA.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), countA)

	countB, err := s.tally.Get(context.Background(), s.partyB.ID)
	s.Require().NoError(err)
	s.Zero(countB)
}

// TestConcurrentVotesSameVoter: simultaneous casts for one voter across two
// parties produce exactly one recorded ballot and one tally increment.
func (s *CastVoteSuite) TestConcurrentVotesSameVoter() {
	voter := id.VoterID(uuid.New())

	const attempts = 32
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := range attempts {
		party := s.partyA.ID
		if i%2 == 1 {
			party = s.partyB.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = s.svc.CastVote(ctxAt(midWindow), voter, s.election.ID, party)
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
		}
	}
	s.Equal(1, successes)

	countA, err := s.tally.Get(context.Background(), s.partyA.ID)
	s.Require().NoError(err)
	countB, err := s.tally.Get(context.Background(), s.partyB.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), countA+countB)
}

// TestConcurrentVotesDistinctVoters: tallies are commutative across voters;
// every distinct voter's ballot lands.
func (s *CastVoteSuite) TestConcurrentVotesDistinctVoters() {
	const voters = 50
	var wg sync.WaitGroup
	results := make([]error, voters)

	for i := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = s.svc.CastVote(ctxAt(midWindow), id.VoterID(uuid.New()), s.election.ID, s.partyA.ID)
		}()
	}
	wg.Wait()

	for _, err := range results {
		s.Require().NoError(err)
	}

	count, err := s.tally.Get(context.Background(), s.partyA.ID)
	s.Require().NoError(err)
	s.Equal(int64(voters), count)
}

func (s *CastVoteSuite) TestCancelledContextLeavesNoPartialState() {
	voter := id.VoterID(uuid.New())

	ctx, cancel := context.WithCancel(ctxAt(midWindow))
	cancel()

	_, err := s.svc.CastVote(ctx, voter, s.election.ID, s.partyA.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	voted, err := s.ledger.Exists(context.Background(), voter, s.election.ID)
	s.Require().NoError(err)
	s.False(voted)

	count, err := s.tally.Get(context.Background(), s.partyA.ID)
	s.Require().NoError(err)
	s.Zero(count)
}
