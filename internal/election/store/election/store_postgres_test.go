//go:build integration

package election

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ballotbox/internal/election/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/testutil/containers"
)

type PostgresElectionSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
}

func TestPostgresElectionSuite(t *testing.T) {
	suite.Run(t, new(PostgresElectionSuite))
}

func (s *PostgresElectionSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresElectionSuite) TearDownSuite() {
	s.pg.Close(context.Background())
}

func (s *PostgresElectionSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background()))
}

func (s *PostgresElectionSuite) newElection(name string, start time.Time) *models.Election {
	e, err := models.NewElection(id.ElectionID(uuid.New()), name, start, start.Add(8*time.Hour), time.Now().UTC(), "admin")
	s.Require().NoError(err)
	return e
}

func (s *PostgresElectionSuite) TestCreateAndFind() {
	ctx := context.Background()
	e := s.newElection("Council", time.Now().UTC().Add(time.Hour))

	s.Require().NoError(s.store.Create(ctx, e))

	got, err := s.store.FindByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.Name, got.Name)
	s.WithinDuration(e.StartTime, got.StartTime, time.Millisecond)
}

func (s *PostgresElectionSuite) TestListNewestFirst() {
	ctx := context.Background()
	older := s.newElection("Older", time.Now().UTC().Add(time.Hour))
	newer := s.newElection("Newer", time.Now().UTC().Add(48*time.Hour))

	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Newer", list[0].Name)
	s.Equal("Older", list[1].Name)
}

func (s *PostgresElectionSuite) TestDelete() {
	ctx := context.Background()
	e := s.newElection("Council", time.Now().UTC().Add(time.Hour))
	s.Require().NoError(s.store.Create(ctx, e))

	s.Require().NoError(s.store.Delete(ctx, e.ID))

	_, err := s.store.FindByID(ctx, e.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(ctx, e.ID), sentinel.ErrNotFound)
}
