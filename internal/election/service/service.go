// Package service implements election administration: creating and deleting
// elections, managing their candidate parties, and assembling the dashboard
// views that pair each election with its derived status.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	electionmetrics "ballotbox/internal/election/metrics"
	"ballotbox/internal/election/models"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"

	"github.com/google/uuid"
)

// ElectionStore persists election records.
type ElectionStore interface {
	Create(ctx context.Context, e *models.Election) error
	FindByID(ctx context.Context, electionID id.ElectionID) (*models.Election, error)
	List(ctx context.Context) ([]*models.Election, error)
	Delete(ctx context.Context, electionID id.ElectionID) error
}

// PartyStore persists candidate parties.
type PartyStore interface {
	Create(ctx context.Context, p *models.Party) error
	FindByID(ctx context.Context, partyID id.PartyID) (*models.Party, error)
	ListByElection(ctx context.Context, electionID id.ElectionID) ([]*models.Party, error)
	Delete(ctx context.Context, partyID id.PartyID) error
	DeleteByElection(ctx context.Context, electionID id.ElectionID) error
}

// Ledger exposes the ballot operations election administration needs:
// per-voter lookups for dashboards and cascade deletion.
type Ledger interface {
	Exists(ctx context.Context, voterID id.VoterID, electionID id.ElectionID) (bool, error)
	DeleteByElection(ctx context.Context, electionID id.ElectionID) error
}

// Tally exposes vote counts and cascade deletion for tallies.
type Tally interface {
	Get(ctx context.Context, partyID id.PartyID) (int64, error)
	DeleteByElection(ctx context.Context, electionID id.ElectionID) error
	DeleteByParty(ctx context.Context, partyID id.PartyID) error
}

// StoreTx brackets multi-store writes so cascade deletes are all-or-nothing.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// AuditPublisher records administrative actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service coordinates election administration.
type Service struct {
	elections ElectionStore
	parties   PartyStore
	ledger    Ledger
	tally     Tally
	tx        StoreTx
	auditor   AuditPublisher
	metrics   *electionmetrics.Metrics
	logger    *slog.Logger
}

type Option func(*Service)

func WithTx(tx StoreTx) Option {
	return func(s *Service) { s.tx = tx }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *electionmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(elections ElectionStore, parties PartyStore, ledger Ledger, tally Tally, opts ...Option) *Service {
	s := &Service{
		elections: elections,
		parties:   parties,
		ledger:    ledger,
		tally:     tally,
		tx:        passthroughTx{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// View pairs an election with the state derived at request time. Status and
// TimeRemaining are computed fresh on every read, never stored.
type View struct {
	*models.Election
	Status        string          `json:"status"`
	TimeRemaining string          `json:"time_remaining"`
	Parties       []*models.Party `json:"parties,omitempty"`
	HasVoted      bool            `json:"has_voted"`
}

func (s *Service) view(ctx context.Context, e *models.Election) *View {
	now := requestcontext.Now(ctx)
	return &View{
		Election:      e,
		Status:        string(e.Status(now)),
		TimeRemaining: e.TimeRemaining(now),
	}
}

// CreateParams carries the validated-at-the-edge inputs for Create.
type CreateParams struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	CreatedBy string
}

// Create validates and persists a new election.
func (s *Service) Create(ctx context.Context, params CreateParams) (*View, error) {
	now := requestcontext.Now(ctx)

	election, err := models.NewElection(id.ElectionID(uuid.New()), params.Name, params.StartTime, params.EndTime, now, params.CreatedBy)
	if err != nil {
		return nil, err
	}

	if err := s.elections.Create(ctx, election); err != nil {
		return nil, storageErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncrementElectionsCreated()
	}
	s.emitAudit(ctx, audit.EventElectionCreated, election.ID, params.CreatedBy, election.Name)

	return s.view(ctx, election), nil
}

// Get returns one election with its parties and, when a voter is
// authenticated, whether that voter has already cast a ballot.
func (s *Service) Get(ctx context.Context, electionID id.ElectionID) (*View, error) {
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

	view := s.view(ctx, election)
	view.Parties = parties

	if voterID := requestcontext.VoterID(ctx); !voterID.IsNil() {
		voted, err := s.ledger.Exists(ctx, voterID, electionID)
		if err != nil {
			return nil, storageErr(err)
		}
		view.HasVoted = voted
	}

	return view, nil
}

// List returns all elections newest-first with derived status attached.
func (s *Service) List(ctx context.Context) ([]*View, error) {
	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	views := make([]*View, len(elections))
	voterID := requestcontext.VoterID(ctx)
	for i, e := range elections {
		views[i] = s.view(ctx, e)
		if !voterID.IsNil() {
			voted, err := s.ledger.Exists(ctx, voterID, e.ID)
			if err != nil {
				return nil, storageErr(err)
			}
			views[i].HasVoted = voted
		}
	}
	return views, nil
}

// Delete removes an election and everything hanging off it: parties,
// ballots, and tallies go in the same transaction so a failure part way
// leaves the election fully intact.
func (s *Service) Delete(ctx context.Context, electionID id.ElectionID) error {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return storageErr(err)
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ledger.DeleteByElection(txCtx, electionID); err != nil {
			return err
		}
		if err := s.tally.DeleteByElection(txCtx, electionID); err != nil {
			return err
		}
		if err := s.parties.DeleteByElection(txCtx, electionID); err != nil {
			return err
		}
		return s.elections.Delete(txCtx, electionID)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return storageErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncrementElectionsDeleted()
	}
	s.emitAudit(ctx, audit.EventElectionDeleted, electionID, "", "")

	return nil
}

// PartyParams carries the inputs for AddParty.
type PartyParams struct {
	Name        string
	Description string
	LogoRef     string
}

// AddParty registers a candidate party on an election.
func (s *Service) AddParty(ctx context.Context, electionID id.ElectionID, params PartyParams) (*models.Party, error) {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, storageErr(err)
	}

	now := requestcontext.Now(ctx)
	party, err := models.NewParty(id.PartyID(uuid.New()), electionID, params.Name, params.Description, params.LogoRef, now)
	if err != nil {
		return nil, err
	}

	if err := s.parties.Create(ctx, party); err != nil {
		return nil, storageErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncrementPartiesCreated()
	}
	s.emitAudit(ctx, audit.EventPartyAdded, electionID, "", party.Name)

	return party, nil
}

// DeleteParty removes a party that has not received any votes. A party with
// recorded ballots stays: deleting it would orphan ballots and silently
// shrink the published totals.
func (s *Service) DeleteParty(ctx context.Context, partyID id.PartyID) error {
	party, err := s.parties.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "party not found")
		}
		return storageErr(err)
	}

	count, err := s.tally.Get(ctx, partyID)
	if err != nil {
		return storageErr(err)
	}
	if count > 0 {
		return dErrors.New(dErrors.CodeInvalidState, "party has recorded votes and cannot be deleted")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tally.DeleteByParty(txCtx, partyID); err != nil {
			return err
		}
		return s.parties.Delete(txCtx, partyID)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			// The Postgres FK rejects the delete when a ballot slipped in
			// between the count check and the transaction.
			return dErrors.New(dErrors.CodeInvalidState, "party has recorded votes and cannot be deleted")
		}
		return storageErr(err)
	}

	s.emitAudit(ctx, audit.EventPartyDeleted, party.ElectionID, "", party.Name)

	return nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, electionID id.ElectionID, subject, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:  requestcontext.Now(ctx),
		Action:     string(action),
		ElectionID: electionID.String(),
		Subject:    subject,
		RequestID:  requestcontext.RequestID(ctx),
		Detail:     detail,
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}

func storageErr(err error) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "storage unavailable")
}

// passthroughTx serves the in-memory stores, which need no transactional
// bracketing.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

var _ StoreTx = passthroughTx{}
