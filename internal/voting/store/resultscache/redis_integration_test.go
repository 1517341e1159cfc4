//go:build integration

package resultscache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	rc    *containers.RedisContainer
	cache *Redis
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.rc = containers.NewRedisContainer(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.rc.FlushAll(context.Background()))
	s.cache = NewRedis(s.rc.Client, time.Minute, nil)
}

func sampleResults(electionID id.ElectionID) *models.Results {
	return &models.Results{
		ElectionID:     electionID,
		ElectionStatus: "active",
		TotalVotes:     5,
		Parties: []models.PartyResult{
			{ID: id.PartyID(uuid.New()), Name: "Alpha", VoteCount: 3, Percentage: 60},
			{ID: id.PartyID(uuid.New()), Name: "Beta", VoteCount: 2, Percentage: 40},
		},
	}
}

func (s *RedisCacheSuite) TestSetThenGet() {
	ctx := context.Background()
	electionID := id.ElectionID(uuid.New())
	want := sampleResults(electionID)

	s.cache.Set(ctx, want)

	got, ok := s.cache.Get(ctx, electionID)
	s.Require().True(ok)
	s.Equal(want.TotalVotes, got.TotalVotes)
	s.Require().Len(got.Parties, 2)
	s.Equal("Alpha", got.Parties[0].Name)
	s.InDelta(60.0, got.Parties[0].Percentage, 1e-9)
}

func (s *RedisCacheSuite) TestMissOnUnknownElection() {
	_, ok := s.cache.Get(context.Background(), id.ElectionID(uuid.New()))
	s.False(ok)
}

func (s *RedisCacheSuite) TestEntryExpires() {
	ctx := context.Background()
	s.cache = NewRedis(s.rc.Client, 50*time.Millisecond, nil)
	electionID := id.ElectionID(uuid.New())

	s.cache.Set(ctx, sampleResults(electionID))
	_, ok := s.cache.Get(ctx, electionID)
	s.Require().True(ok)

	time.Sleep(100 * time.Millisecond)
	_, ok = s.cache.Get(ctx, electionID)
	s.False(ok)
}

// A corrupt payload reads as a miss and the bad entry is dropped, so the
// next Set repopulates cleanly.
func (s *RedisCacheSuite) TestCorruptEntryDropped() {
	ctx := context.Background()
	electionID := id.ElectionID(uuid.New())

	s.Require().NoError(s.rc.Client.Set(ctx, "results:"+electionID.String(), "{not json", time.Minute).Err())

	_, ok := s.cache.Get(ctx, electionID)
	s.False(ok)

	exists, err := s.rc.Client.Exists(ctx, "results:"+electionID.String()).Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	electionID := id.ElectionID(uuid.New())

	s.cache.Set(ctx, sampleResults(electionID))
	s.cache.Invalidate(ctx, electionID)

	_, ok := s.cache.Get(ctx, electionID)
	s.False(ok)
}
