package voter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ballotbox/internal/voter/models"
	id "ballotbox/pkg/domain"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/platform/tx"
)

// Postgres enforces registry uniqueness with the unique indexes on
// lower(email) and student_id. Constraint violations surface as the
// duplicate sentinels so the service can name the offending field.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, v *models.Voter) error {
	q := tx.ExecutorFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO voters (id, name, email, student_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`, uuid.UUID(v.ID), v.Name, v.Email, v.StudentID, v.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			if strings.Contains(pqErr.Constraint, "student") {
				return ErrDuplicateStudentID
			}
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create voter: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, voterID id.VoterID) (*models.Voter, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	return scanVoter(q.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(student_id, ''), created_at
		FROM voters WHERE id = $1
	`, uuid.UUID(voterID)))
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Voter, error) {
	q := tx.ExecutorFrom(ctx, s.db)
	return scanVoter(q.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(student_id, ''), created_at
		FROM voters WHERE email = lower($1)
	`, email))
}

func scanVoter(row *sql.Row) (*models.Voter, error) {
	var v models.Voter
	var rawID uuid.UUID
	err := row.Scan(&rawID, &v.Name, &v.Email, &v.StudentID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan voter: %w", err)
	}
	v.ID = id.VoterID(rawID)
	return &v, nil
}
