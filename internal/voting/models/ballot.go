package models

import (
	"time"

	id "ballotbox/pkg/domain"
)

// Ballot is one recorded vote, uniquely keyed by (voter, election).
//
// Invariants:
//   - at most one ballot exists per (VoterID, ElectionID) pair, enforced
//     atomically by the ledger store at write time
//   - immutable once written; removed only by election cascade delete
type Ballot struct {
	ID         id.BallotID   `json:"id"`
	VoterID    id.VoterID    `json:"voter_id"`
	ElectionID id.ElectionID `json:"election_id"`
	PartyID    id.PartyID    `json:"party_id"`
	VotedAt    time.Time     `json:"voted_at"`
}

// Results is the projection served on results pages and the live poll
// endpoint.
type Results struct {
	ElectionID     id.ElectionID `json:"election_id"`
	ElectionStatus string        `json:"election_status"`
	TotalVotes     int64         `json:"total_votes"`
	Parties        []PartyResult `json:"parties"`
}

// PartyResult is one ranked row of a results projection. Rows are sorted by
// vote count descending with ties left in party creation order.
type PartyResult struct {
	ID         id.PartyID `json:"id"`
	Name       string     `json:"name"`
	VoteCount  int64      `json:"vote_count"`
	Percentage float64    `json:"percentage"`
}
