package tally

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/tx"
)

// Postgres keeps counters in the tallies table. Increment is a single upsert
// evaluated atomically by the database, and it joins the transaction bound
// to ctx so the counter can never drift from the ledger write it accompanies.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Increment(ctx context.Context, electionID id.ElectionID, partyID id.PartyID) (int64, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	var count int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO tallies (party_id, election_id, votes)
		VALUES ($1, $2, 1)
		ON CONFLICT (party_id) DO UPDATE SET votes = tallies.votes + 1
		RETURNING votes
	`, uuid.UUID(partyID), uuid.UUID(electionID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment tally: %w", err)
	}
	return count, nil
}

func (s *Postgres) Get(ctx context.Context, partyID id.PartyID) (int64, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	var count int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(votes), 0) FROM tallies WHERE party_id = $1
	`, uuid.UUID(partyID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("get tally: %w", err)
	}
	return count, nil
}

func (s *Postgres) GetMany(ctx context.Context, partyIDs []id.PartyID) (map[id.PartyID]int64, error) {
	raw := make([]uuid.UUID, len(partyIDs))
	for i, pid := range partyIDs {
		raw[i] = uuid.UUID(pid)
	}
	q := tx.ExecutorFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT party_id, votes FROM tallies WHERE party_id = ANY($1)
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("get tallies: %w", err)
	}
	defer rows.Close()

	out := make(map[id.PartyID]int64, len(partyIDs))
	for _, pid := range partyIDs {
		out[pid] = 0
	}
	for rows.Next() {
		var pid uuid.UUID
		var votes int64
		if err := rows.Scan(&pid, &votes); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		out[id.PartyID(pid)] = votes
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	q := tx.ExecutorFrom(ctx, s.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM tallies WHERE election_id = $1`, uuid.UUID(electionID)); err != nil {
		return fmt.Errorf("delete tallies for election: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteByParty(ctx context.Context, partyID id.PartyID) error {
	q := tx.ExecutorFrom(ctx, s.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM tallies WHERE party_id = $1`, uuid.UUID(partyID)); err != nil {
		return fmt.Errorf("delete tally for party: %w", err)
	}
	return nil
}
