// Package handler exposes vote casting and results over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/platform/middleware"
	"ballotbox/internal/voting/models"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
)

// Service defines the interface for vote operations.
type Service interface {
	CastVote(ctx context.Context, voterID id.VoterID, electionID id.ElectionID, partyID id.PartyID) (*models.Ballot, error)
	HasVoted(ctx context.Context, voterID id.VoterID, electionID id.ElectionID) (bool, error)
	Project(ctx context.Context, electionID id.ElectionID) (*models.Results, error)
	ProjectLive(ctx context.Context, electionID id.ElectionID) (*models.Results, error)
}

// Handler handles vote-related endpoints.
type Handler struct {
	logger       *slog.Logger
	voting       Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new voting Handler.
func New(voting Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		voting:       voting,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the voting routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(votingRouter chi.Router) {
		votingRouter.Use(middleware.Recovery(h.logger))
		votingRouter.Use(middleware.RequestID)
		votingRouter.Use(middleware.RequestTime)
		votingRouter.Use(middleware.Logger(h.logger))
		votingRouter.Use(middleware.Timeout(30 * time.Second))
		votingRouter.Use(middleware.ContentTypeJSON)
		votingRouter.Use(middleware.Latency(h.metrics))

		// Results are public; casting requires an authenticated voter.
		votingRouter.Get("/elections/{electionID}/results", h.handleResults)
		votingRouter.Get("/api/elections/{electionID}/results", h.handleLiveResults)

		votingRouter.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			authed.Post("/elections/{electionID}/vote", h.handleCastVote)
		})
	})
}

type castVoteRequest struct {
	PartyID string `json:"party_id"`
}

type castVoteResponse struct {
	BallotID   id.BallotID   `json:"ballot_id"`
	ElectionID id.ElectionID `json:"election_id"`
	VotedAt    time.Time     `json:"voted_at"`
	Message    string        `json:"message"`
}

// handleCastVote records one ballot for the authenticated voter.
func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	voterID := middleware.GetVoterID(ctx)
	if voterID.IsNil() {
		// This should never happen if RequireAuth middleware is configured correctly
		h.logger.ErrorContext(ctx, "voterID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid cast vote request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	partyID, err := id.ParsePartyID(req.PartyID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid party selection"))
		return
	}

	ballot, err := h.voting.CastVote(ctx, voterID, electionID, partyID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnavailable) || dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to cast vote",
				"request_id", requestID,
				"election_id", electionID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, castVoteResponse{
		BallotID:   ballot.ID,
		ElectionID: ballot.ElectionID,
		VotedAt:    ballot.VotedAt,
		Message:    "your vote has been recorded",
	})
}

// handleResults serves the authoritative results projection.
func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	h.serveResults(w, r, h.voting.Project)
}

// handleLiveResults serves the polling projection, cached when a results
// cache is configured.
func (h *Handler) handleLiveResults(w http.ResponseWriter, r *http.Request) {
	h.serveResults(w, r, h.voting.ProjectLive)
}

func (h *Handler) serveResults(w http.ResponseWriter, r *http.Request, project func(context.Context, id.ElectionID) (*models.Results, error)) {
	ctx := r.Context()

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	results, err := project(ctx, electionID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnavailable) || dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to project results",
				"request_id", middleware.GetRequestID(ctx),
				"election_id", electionID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, results)
}
