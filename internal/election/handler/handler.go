// Package handler exposes election administration and dashboards over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/election/models"
	"ballotbox/internal/election/service"
	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/platform/middleware"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
)

// Service defines the interface for election administration operations.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*service.View, error)
	Get(ctx context.Context, electionID id.ElectionID) (*service.View, error)
	List(ctx context.Context) ([]*service.View, error)
	Delete(ctx context.Context, electionID id.ElectionID) error
	AddParty(ctx context.Context, electionID id.ElectionID, params service.PartyParams) (*models.Party, error)
	DeleteParty(ctx context.Context, partyID id.PartyID) error
}

// Handler handles election administration endpoints.
type Handler struct {
	logger       *slog.Logger
	elections    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	adminToken   string
}

// New creates a new election Handler.
func New(elections Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator, adminToken string) *Handler {
	return &Handler{
		logger:       logger,
		elections:    elections,
		metrics:      metrics,
		jwtValidator: jwtValidator,
		adminToken:   adminToken,
	}
}

// Register registers the election routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(electionRouter chi.Router) {
		electionRouter.Use(middleware.Recovery(h.logger))
		electionRouter.Use(middleware.RequestID)
		electionRouter.Use(middleware.RequestTime)
		electionRouter.Use(middleware.Logger(h.logger))
		electionRouter.Use(middleware.Timeout(30 * time.Second))
		electionRouter.Use(middleware.ContentTypeJSON)
		electionRouter.Use(middleware.Latency(h.metrics))

		// Dashboards are public; a Bearer token personalizes has_voted.
		electionRouter.Group(func(public chi.Router) {
			public.Use(middleware.OptionalAuth(h.jwtValidator))
			public.Get("/elections", h.handleList)
			public.Get("/elections/{electionID}", h.handleGet)
		})

		electionRouter.Group(func(admin chi.Router) {
			admin.Use(middleware.OptionalAuth(h.jwtValidator))
			admin.Use(middleware.RequireAdmin(h.adminToken, h.logger))
			admin.Post("/elections", h.handleCreate)
			admin.Delete("/elections/{electionID}", h.handleDelete)
			admin.Post("/elections/{electionID}/parties", h.handleAddParty)
			admin.Delete("/parties/{partyID}", h.handleDeleteParty)
		})
	})
}

type createElectionRequest struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type addPartyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoRef     string `json:"logo_ref"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create election request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	view, err := h.elections.Create(ctx, service.CreateParams{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		CreatedBy: middleware.GetVoterID(ctx).String(),
	})
	if err != nil {
		h.writeServiceError(w, r, "create election", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.elections.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "list elections", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"elections": views})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.elections.Get(r.Context(), electionID)
	if err != nil {
		h.writeServiceError(w, r, "get election", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.elections.Delete(r.Context(), electionID); err != nil {
		h.writeServiceError(w, r, "delete election", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req addPartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid add party request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	party, err := h.elections.AddParty(ctx, electionID, service.PartyParams{
		Name:        req.Name,
		Description: req.Description,
		LogoRef:     req.LogoRef,
	})
	if err != nil {
		h.writeServiceError(w, r, "add party", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, party)
}

func (h *Handler) handleDeleteParty(w http.ResponseWriter, r *http.Request) {
	partyID, err := id.ParsePartyID(chi.URLParam(r, "partyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.elections.DeleteParty(r.Context(), partyID); err != nil {
		h.writeServiceError(w, r, "delete party", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.Is(err, dErrors.CodeUnavailable) || dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
