// Package handler exposes voter registration over HTTP.
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
	"ballotbox/internal/voter/models"
	"ballotbox/internal/voter/service"
	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
)

// Service defines the interface for voter registry operations.
type Service interface {
	Register(ctx context.Context, params service.RegisterParams) (*models.Voter, error)
	Get(ctx context.Context, voterID id.VoterID) (*models.Voter, error)
}

// Handler handles voter registry endpoints.
type Handler struct {
	logger       *slog.Logger
	voters       Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new voter Handler.
func New(voters Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		voters:       voters,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the voter routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(voterRouter chi.Router) {
		voterRouter.Use(middleware.Recovery(h.logger))
		voterRouter.Use(middleware.RequestID)
		voterRouter.Use(middleware.RequestTime)
		voterRouter.Use(middleware.Logger(h.logger))
		voterRouter.Use(middleware.Timeout(30 * time.Second))
		voterRouter.Use(middleware.ContentTypeJSON)
		voterRouter.Use(middleware.Latency(h.metrics))

		voterRouter.Post("/voters", h.handleRegister)

		voterRouter.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			authed.Get("/voters/me", h.handleMe)
		})
	})
}

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"student_id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	voter, err := h.voters.Register(ctx, service.RegisterParams{
		Name:      req.Name,
		Email:     req.Email,
		StudentID: req.StudentID,
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnavailable) || dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to register voter",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, voter)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	voterID := middleware.GetVoterID(ctx)
	if voterID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	voter, err := h.voters.Get(ctx, voterID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, voter)
}
