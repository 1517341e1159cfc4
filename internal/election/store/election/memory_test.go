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
)

type ElectionStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ElectionStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestElectionStoreSuite(t *testing.T) {
	suite.Run(t, new(ElectionStoreSuite))
}

func (s *ElectionStoreSuite) newElection(name string, start time.Time) *models.Election {
	e, err := models.NewElection(id.ElectionID(uuid.New()), name, start, start.Add(2*time.Hour), time.Now(), "admin@example.com")
	s.Require().NoError(err)
	return e
}

func (s *ElectionStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds by ID", func() {
		e := s.newElection("Council 2024", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
		s.Require().NoError(s.store.Create(s.ctx, e))

		found, err := s.store.FindByID(s.ctx, e.ID)
		s.Require().NoError(err)
		s.Equal(e.Name, found.Name)
		s.Equal(e.StartTime, found.StartTime)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.ElectionID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		e := s.newElection("Dup", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC))
		s.Require().NoError(s.store.Create(s.ctx, e))
		s.Require().ErrorIs(s.store.Create(s.ctx, e), sentinel.ErrDuplicate)
	})
}

func (s *ElectionStoreSuite) TestListOrdering() {
	older := s.newElection("Older", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	newer := s.newElection("Newer", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.Create(s.ctx, older))
	s.Require().NoError(s.store.Create(s.ctx, newer))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Newer", list[0].Name)
	s.Equal("Older", list[1].Name)
}

func (s *ElectionStoreSuite) TestDelete() {
	s.Run("deletes existing election", func() {
		e := s.newElection("Doomed", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		s.Require().NoError(s.store.Create(s.ctx, e))
		s.Require().NoError(s.store.Delete(s.ctx, e.ID))

		_, err := s.store.FindByID(s.ctx, e.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown election", func() {
		s.Require().ErrorIs(s.store.Delete(s.ctx, id.ElectionID(uuid.New())), sentinel.ErrNotFound)
	})
}
