package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/requestcontext"
)

// JWTValidator defines the interface for validating voter access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	VoterID string
	Email   string
	IsAdmin bool
}

// GetVoterID retrieves the authenticated voter ID from the context.
func GetVoterID(ctx context.Context) id.VoterID {
	return requestcontext.VoterID(ctx)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireAuth rejects requests lacking a valid Bearer token and stows the
// voter identity in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			after, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(after)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			voterID, err := id.ParseVoterID(claims.VoterID)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := requestcontext.WithVoterID(r.Context(), voterID)
			if claims.IsAdmin {
				ctx = requestcontext.WithAdmin(ctx, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches voter identity when a valid Bearer token is present
// and lets the request through anonymously otherwise. Read-only endpoints
// use it so dashboards can personalize without demanding login.
func OptionalAuth(validator JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(after)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			voterID, err := id.ParseVoterID(claims.VoterID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestcontext.WithVoterID(r.Context(), voterID)
			if claims.IsAdmin {
				ctx = requestcontext.WithAdmin(ctx, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates management endpoints. It accepts either an
// authenticated admin voter (set by RequireAuth) or the static X-Admin-Token
// used by operational tooling.
func RequireAdmin(adminToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.IsAdmin(ctx) {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Admin-Token")
			if adminToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) == 1 {
				next.ServeHTTP(w, r.WithContext(requestcontext.WithAdmin(ctx, true)))
				return
			}

			logger.WarnContext(ctx, "forbidden - admin required",
				"request_id", GetRequestID(ctx),
			)
			writeJSONError(w, http.StatusForbidden, "forbidden", "Administrator access required")
		})
	}
}
