package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/platform/tx"
)

// Postgres enforces ballot uniqueness with the unique index on
// (voter_id, election_id). The constrained insert is evaluated atomically by
// the database, so concurrent writes for the same pair resolve to exactly
// one inserted row no matter how many request handlers race.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Record appends a ballot. ON CONFLICT DO NOTHING turns a constraint hit
// into zero affected rows, which surfaces as sentinel.ErrDuplicate. A
// retried write after a timeout either succeeds once or is rejected here,
// never double-counted.
func (s *Postgres) Record(ctx context.Context, b *models.Ballot) error {
	q := tx.ExecutorFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		INSERT INTO ballots (id, voter_id, election_id, party_id, voted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT ballots_voter_election_key DO NOTHING
	`, uuid.UUID(b.ID), uuid.UUID(b.VoterID), uuid.UUID(b.ElectionID), uuid.UUID(b.PartyID), b.VotedAt)
	if err != nil {
		return fmt.Errorf("record ballot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record ballot: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrDuplicate
	}
	return nil
}

func (s *Postgres) Exists(ctx context.Context, voterID id.VoterID, electionID id.ElectionID) (bool, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM ballots WHERE voter_id = $1 AND election_id = $2)
	`, uuid.UUID(voterID), uuid.UUID(electionID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ballot: %w", err)
	}
	return exists, nil
}

func (s *Postgres) ListByVoter(ctx context.Context, voterID id.VoterID) ([]id.ElectionID, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT election_id FROM ballots WHERE voter_id = $1
	`, uuid.UUID(voterID))
	if err != nil {
		return nil, fmt.Errorf("list ballots by voter: %w", err)
	}
	defer rows.Close()

	var out []id.ElectionID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan ballot: %w", err)
		}
		out = append(out, id.ElectionID(raw))
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	q := tx.ExecutorFrom(ctx, s.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM ballots WHERE election_id = $1`, uuid.UUID(electionID)); err != nil {
		return fmt.Errorf("delete ballots for election: %w", err)
	}
	return nil
}

// CountByParties recomputes per-party ballot counts straight from the
// ledger. Reconciliation path only; the tally store serves the hot path.
func (s *Postgres) CountByParties(ctx context.Context, partyIDs []id.PartyID) (map[id.PartyID]int64, error) {
	raw := make([]uuid.UUID, len(partyIDs))
	for i, pid := range partyIDs {
		raw[i] = uuid.UUID(pid)
	}
	q := tx.ExecutorFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT party_id, COUNT(*) FROM ballots
		WHERE party_id = ANY($1)
		GROUP BY party_id
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("count ballots: %w", err)
	}
	defer rows.Close()

	counts := make(map[id.PartyID]int64, len(partyIDs))
	for rows.Next() {
		var pid uuid.UUID
		var n int64
		if err := rows.Scan(&pid, &n); err != nil {
			return nil, fmt.Errorf("scan ballot count: %w", err)
		}
		counts[id.PartyID(pid)] = n
	}
	return counts, rows.Err()
}
