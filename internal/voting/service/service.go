// Package service orchestrates a single cast-vote request: it gates on the
// election window, delegates the uniqueness decision to the ledger's
// constrained write, and applies the ledger write and tally increment as one
// logical unit.
package service

import (
	"context"
	"errors"
	"log/slog"

	electionmodels "ballotbox/internal/election/models"
	votingmetrics "ballotbox/internal/voting/metrics"
	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"

	"github.com/google/uuid"
)

// ElectionStore supplies election lookups for the vote gate.
type ElectionStore interface {
	FindByID(ctx context.Context, electionID id.ElectionID) (*electionmodels.Election, error)
}

// PartyStore supplies party lookups and the creation-ordered listing that
// results projections tie-break on.
type PartyStore interface {
	FindByID(ctx context.Context, partyID id.PartyID) (*electionmodels.Party, error)
	ListByElection(ctx context.Context, electionID id.ElectionID) ([]*electionmodels.Party, error)
}

// Ledger is the append-only ballot record. Record must enforce the
// (voter, election) uniqueness constraint atomically at write time.
type Ledger interface {
	Record(ctx context.Context, ballot *models.Ballot) error
	Exists(ctx context.Context, voterID id.VoterID, electionID id.ElectionID) (bool, error)
}

// Tally is the denormalized per-party counter store.
type Tally interface {
	Increment(ctx context.Context, electionID id.ElectionID, partyID id.PartyID) (int64, error)
	GetMany(ctx context.Context, partyIDs []id.PartyID) (map[id.PartyID]int64, error)
}

// StoreTx runs fn atomically with respect to the ledger and tally stores:
// both writes inside fn apply, or neither does.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// ResultsCache is an optional read-through cache for live-results polling.
type ResultsCache interface {
	Get(ctx context.Context, electionID id.ElectionID) (*models.Results, bool)
	Set(ctx context.Context, results *models.Results)
}

// AuditPublisher records domain actions; emission failures never fail votes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service coordinates vote casting and results projection.
type Service struct {
	elections ElectionStore
	parties   PartyStore
	ledger    Ledger
	tally     Tally
	tx        StoreTx
	cache     ResultsCache
	auditor   AuditPublisher
	metrics   *votingmetrics.Metrics
	logger    *slog.Logger
}

type Option func(*Service)

func WithTx(tx StoreTx) Option {
	return func(s *Service) { s.tx = tx }
}

func WithResultsCache(cache ResultsCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *votingmetrics.Metrics) Option {
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

// CastVote records one ballot for the voter in the given election.
//
// Checks run in order and the first failure short-circuits:
//  1. election exists        -> CodeNotFound
//  2. window is active       -> CodeInvalidState
//  3. party belongs here     -> CodeInvalidInput
//  4. ledger accepts write   -> CodeConflict on duplicate (the ledger
//     constraint is the authoritative duplicate check, not a prior read)
//  5. tally increments in the same transaction as the ledger write
//
// Failures are surfaced to the caller, never retried with different content.
func (s *Service) CastVote(ctx context.Context, voterID id.VoterID, electionID id.ElectionID, partyID id.PartyID) (*models.Ballot, error) {
	now := requestcontext.Now(ctx)

	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.reject(ctx, voterID, electionID, dErrors.New(dErrors.CodeNotFound, "election not found"))
		}
		return nil, s.reject(ctx, voterID, electionID, storageErr(err))
	}

	if !election.IsActive(now) {
		return nil, s.reject(ctx, voterID, electionID, dErrors.New(dErrors.CodeInvalidState, "election is not currently active"))
	}

	party, err := s.parties.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.reject(ctx, voterID, electionID, dErrors.New(dErrors.CodeInvalidInput, "invalid party selection"))
		}
		return nil, s.reject(ctx, voterID, electionID, storageErr(err))
	}
	if party.ElectionID != electionID {
		return nil, s.reject(ctx, voterID, electionID, dErrors.New(dErrors.CodeInvalidInput, "invalid party selection"))
	}

	ballot := &models.Ballot{
		ID:         id.BallotID(uuid.New()),
		VoterID:    voterID,
		ElectionID: electionID,
		PartyID:    partyID,
		VotedAt:    now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ledger.Record(txCtx, ballot); err != nil {
			return err
		}
		_, err := s.tally.Increment(txCtx, electionID, partyID)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return nil, s.reject(ctx, voterID, electionID, dErrors.New(dErrors.CodeConflict, "you have already voted in this election"))
		}
		return nil, s.reject(ctx, voterID, electionID, storageErr(err))
	}

	if s.metrics != nil {
		s.metrics.IncrementVotesCast()
	}
	s.emitAudit(ctx, audit.EventVoteCast, electionID, voterID.String(), "")

	return ballot, nil
}

// HasVoted reports whether the voter already holds a ballot in the election.
// Dashboard convenience only; CastVote never consults it.
func (s *Service) HasVoted(ctx context.Context, voterID id.VoterID, electionID id.ElectionID) (bool, error) {
	exists, err := s.ledger.Exists(ctx, voterID, electionID)
	if err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

func (s *Service) reject(ctx context.Context, voterID id.VoterID, electionID id.ElectionID, err error) error {
	code := string(dErrors.CodeOf(err))
	if s.metrics != nil {
		s.metrics.IncrementVotesRejected(code)
	}
	// The rejection event names the voter and reason but never a party.
	s.emitAudit(ctx, audit.EventVoteRejected, electionID, voterID.String(), code)
	return err
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

// storageErr classifies unexpected store failures as transient storage
// problems. Callers may retry safely: the ledger constraint makes a retried
// write succeed once or fail as a duplicate, never double-count.
func storageErr(err error) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "storage unavailable")
}

// passthroughTx runs fn without transactional bracketing. It serves the
// in-memory stores, where the ledger write is the only fallible step: the
// memory tally increment cannot fail after a successful ledger insert, so
// the pair is still logically atomic.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

var _ StoreTx = passthroughTx{}
