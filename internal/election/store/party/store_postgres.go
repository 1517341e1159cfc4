package party

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ballotbox/internal/election/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/platform/tx"
)

// Postgres persists parties. Creation order falls out of (created_at, id)
// ordering so tie-broken results stay stable across reads.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, p *models.Party) error {
	q := tx.ExecutorFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO parties (id, election_id, name, description, logo_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(p.ID), uuid.UUID(p.ElectionID), p.Name, p.Description, p.LogoRef, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, partyID id.PartyID) (*models.Party, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	var p models.Party
	var rawID, rawElectionID uuid.UUID
	err := q.QueryRowContext(ctx, `
		SELECT id, election_id, name, description, logo_ref, created_at
		FROM parties WHERE id = $1
	`, uuid.UUID(partyID)).Scan(&rawID, &rawElectionID, &p.Name, &p.Description, &p.LogoRef, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find party: %w", err)
	}
	p.ID = id.PartyID(rawID)
	p.ElectionID = id.ElectionID(rawElectionID)
	return &p, nil
}

func (s *Postgres) ListByElection(ctx context.Context, electionID id.ElectionID) ([]*models.Party, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, election_id, name, description, logo_ref, created_at
		FROM parties WHERE election_id = $1 ORDER BY created_at, id
	`, uuid.UUID(electionID))
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var out []*models.Party
	for rows.Next() {
		var p models.Party
		var rawID, rawElectionID uuid.UUID
		if err := rows.Scan(&rawID, &rawElectionID, &p.Name, &p.Description, &p.LogoRef, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		p.ID = id.PartyID(rawID)
		p.ElectionID = id.ElectionID(rawElectionID)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, partyID id.PartyID) error {
	q := tx.ExecutorFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM parties WHERE id = $1`, uuid.UUID(partyID))
	if err != nil {
		// The RESTRICT foreign key from ballots blocks deleting a party that
		// has recorded votes.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == "23503" {
			return sentinel.ErrInvalidState
		}
		return fmt.Errorf("delete party: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete party: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	q := tx.ExecutorFrom(ctx, s.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM parties WHERE election_id = $1`, uuid.UUID(electionID)); err != nil {
		return fmt.Errorf("delete parties for election: %w", err)
	}
	return nil
}
