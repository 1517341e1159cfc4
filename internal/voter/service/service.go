// Package service implements voter registration and lookup.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ballotbox/internal/voter/models"
	voterstore "ballotbox/internal/voter/store/voter"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

// Store persists voter records.
type Store interface {
	Create(ctx context.Context, v *models.Voter) error
	FindByID(ctx context.Context, voterID id.VoterID) (*models.Voter, error)
	FindByEmail(ctx context.Context, email string) (*models.Voter, error)
}

// AuditPublisher records registry actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service coordinates voter registration.
type Service struct {
	store   Store
	auditor AuditPublisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterParams carries registration input.
type RegisterParams struct {
	Name      string
	Email     string
	StudentID string
}

// Register validates and persists a new voter. Uniqueness is decided by the
// store's constrained write, not a prior read, so concurrent registrations
// of the same email resolve to exactly one voter.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.Voter, error) {
	now := requestcontext.Now(ctx)

	voter, err := models.NewVoter(id.VoterID(uuid.New()), params.Name, params.Email, params.StudentID, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, voter); err != nil {
		switch {
		case errors.Is(err, voterstore.ErrDuplicateEmail):
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		case errors.Is(err, voterstore.ErrDuplicateStudentID):
			return nil, dErrors.New(dErrors.CodeConflict, "student id is already registered")
		case errors.Is(err, sentinel.ErrDuplicate):
			return nil, dErrors.New(dErrors.CodeConflict, "voter is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "storage unavailable")
	}

	if s.auditor != nil {
		event := audit.Event{
			Timestamp: now,
			Action:    string(audit.EventVoterRegistered),
			Subject:   voter.ID.String(),
			RequestID: requestcontext.RequestID(ctx),
		}
		if err := s.auditor.Emit(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "action", audit.EventVoterRegistered, "error", err)
		}
	}

	return voter, nil
}

// Get returns one voter by ID.
func (s *Service) Get(ctx context.Context, voterID id.VoterID) (*models.Voter, error) {
	voter, err := s.store.FindByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "voter not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "storage unavailable")
	}
	return voter, nil
}
