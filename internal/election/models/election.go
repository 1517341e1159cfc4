package models

import (
	"strings"
	"time"

	"ballotbox/internal/election/status"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
)

// Election is the aggregate root for one vote.
//
// Invariants:
//   - Name is non-empty and at most 200 characters
//   - StartTime < EndTime, enforced once at creation and never revisited
//   - Fields are immutable after creation; the only mutation in this design
//     is deletion, which cascades to parties and ballots
//
// Status is always derived from the window via the status package, never
// stored, so the dashboard, the vote gate, and the results page can never
// disagree.
type Election struct {
	ID        id.ElectionID `json:"id"`
	Name      string        `json:"name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	CreatedAt time.Time     `json:"created_at"`
	CreatedBy string        `json:"created_by"`
}

// NewElection validates creation-time invariants and builds an Election.
func NewElection(electionID id.ElectionID, name string, start, end, now time.Time, createdBy string) (*Election, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "election name is required")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "election name must be 200 characters or less")
	}
	if start.IsZero() || end.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "start and end times are required")
	}
	if !start.Before(end) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "end time must be after start time")
	}
	return &Election{
		ID:        electionID,
		Name:      name,
		StartTime: start,
		EndTime:   end,
		CreatedAt: now,
		CreatedBy: createdBy,
	}, nil
}

// Status derives the lifecycle state at instant now.
func (e *Election) Status(now time.Time) status.Status {
	return status.Resolve(now, e.StartTime, e.EndTime)
}

// IsActive reports whether the election accepts votes at instant now.
func (e *Election) IsActive(now time.Time) bool {
	return status.IsActive(now, e.StartTime, e.EndTime)
}

// TimeRemaining formats the distance to the nearest window boundary.
func (e *Election) TimeRemaining(now time.Time) string {
	return status.TimeRemaining(now, e.StartTime, e.EndTime)
}

// Party is one candidate in an election. A party belongs to exactly one
// election; its running vote count lives in the tally store, not here.
type Party struct {
	ID          id.PartyID    `json:"id"`
	ElectionID  id.ElectionID `json:"election_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	LogoRef     string        `json:"logo_ref,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewParty validates and builds a Party for the given election.
func NewParty(partyID id.PartyID, electionID id.ElectionID, name, description, logoRef string, now time.Time) (*Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "party name is required")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "party name must be 200 characters or less")
	}
	return &Party{
		ID:          partyID,
		ElectionID:  electionID,
		Name:        name,
		Description: strings.TrimSpace(description),
		LogoRef:     logoRef,
		CreatedAt:   now,
	}, nil
}
