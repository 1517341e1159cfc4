package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ballotbox/internal/election/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/platform/tx"
)

// Postgres persists elections. Queries run against the transaction bound to
// ctx when one is present so cascade deletes stay atomic.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, e *models.Election) error {
	q := tx.ExecutorFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO elections (id, name, start_time, end_time, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(e.ID), e.Name, e.StartTime, e.EndTime, e.CreatedAt, e.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert election: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, electionID id.ElectionID) (*models.Election, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	var e models.Election
	var rawID uuid.UUID
	err := q.QueryRowContext(ctx, `
		SELECT id, name, start_time, end_time, created_at, created_by
		FROM elections WHERE id = $1
	`, uuid.UUID(electionID)).Scan(&rawID, &e.Name, &e.StartTime, &e.EndTime, &e.CreatedAt, &e.CreatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find election: %w", err)
	}
	e.ID = id.ElectionID(rawID)
	return &e, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Election, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, start_time, end_time, created_at, created_by
		FROM elections ORDER BY start_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	defer rows.Close()

	var out []*models.Election
	for rows.Next() {
		var e models.Election
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &e.Name, &e.StartTime, &e.EndTime, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan election: %w", err)
		}
		e.ID = id.ElectionID(rawID)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, electionID id.ElectionID) error {
	q := tx.ExecutorFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM elections WHERE id = $1`, uuid.UUID(electionID))
	if err != nil {
		return fmt.Errorf("delete election: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete election: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
