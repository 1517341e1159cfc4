package service

import (
	"context"
	"errors"
	"sort"

	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

// Project derives ranked results from the tally store. Parties sort by vote
// count descending; ties stay in creation order, so a re-read that changes
// nothing renders identically.
func (s *Service) Project(ctx context.Context, electionID id.ElectionID) (*models.Results, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, storageErr(err)
	}

	parties, err := s.parties.ListByElection(ctx, electionID)
	if err != nil {
		return nil, storageErr(err)
	}

	partyIDs := make([]id.PartyID, len(parties))
	for i, p := range parties {
		partyIDs[i] = p.ID
	}
	counts, err := s.tally.GetMany(ctx, partyIDs)
	if err != nil {
		return nil, storageErr(err)
	}

	results := &models.Results{
		ElectionID:     electionID,
		ElectionStatus: string(election.Status(requestcontext.Now(ctx))),
		Parties:        make([]models.PartyResult, len(parties)),
	}
	for i, p := range parties {
		count := counts[p.ID]
		results.TotalVotes += count
		results.Parties[i] = models.PartyResult{
			ID:        p.ID,
			Name:      p.Name,
			VoteCount: count,
		}
	}
	if results.TotalVotes > 0 {
		for i := range results.Parties {
			results.Parties[i].Percentage = 100 * float64(results.Parties[i].VoteCount) / float64(results.TotalVotes)
		}
	}

	sort.SliceStable(results.Parties, func(i, j int) bool {
		return results.Parties[i].VoteCount > results.Parties[j].VoteCount
	})

	if s.metrics != nil {
		s.metrics.IncrementResultsServed()
	}
	return results, nil
}

// ProjectLive serves the polling endpoint through the read-through cache
// when one is configured. Staleness is bounded by the cache TTL; callers
// needing the authoritative view use Project.
func (s *Service) ProjectLive(ctx context.Context, electionID id.ElectionID) (*models.Results, error) {
	if s.cache == nil {
		return s.Project(ctx, electionID)
	}
	if cached, ok := s.cache.Get(ctx, electionID); ok {
		if s.metrics != nil {
			s.metrics.IncrementResultsCacheHit()
		}
		return cached, nil
	}
	results, err := s.Project(ctx, electionID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, results)
	return results, nil
}
