package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/internal/platform/middleware"
	"ballotbox/internal/voter/service"
	voterstore "ballotbox/internal/voter/store/voter"
	dErrors "ballotbox/pkg/domain-errors"
)

type stubValidator struct {
	claims *middleware.JWTClaims
}

func (v stubValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	if v.claims == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return v.claims, nil
}

// The registration endpoint is exercised against the real service and
// in-memory store; there is no service behavior worth mocking here.
func newRouter(t *testing.T, claims *middleware.JWTClaims) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewService(voterstore.NewInMemory(), service.WithLogger(logger))
	handler := New(svc, logger, nil, stubValidator{claims: claims})
	r := chi.NewRouter()
	handler.Register(r)
	return r
}

func register(t *testing.T, r chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/voters", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterVoter(t *testing.T) {
	r := newRouter(t, nil)

	w := register(t, r, `{"name":"Ada Lovelace","email":"ada@example.edu","student_id":"S-100"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ada@example.edu", resp["email"])
	assert.NotEmpty(t, resp["id"])
}

func TestRegisterVoterDuplicate(t *testing.T) {
	r := newRouter(t, nil)

	w := register(t, r, `{"name":"Ada","email":"ada@example.edu"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = register(t, r, `{"name":"Imposter","email":"ADA@example.edu"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conflict", resp["error"])
}

func TestRegisterVoterValidation(t *testing.T) {
	r := newRouter(t, nil)

	w := register(t, r, `{"name":"","email":"ada@example.edu"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = register(t, r, `{"name":"Ada","email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/voters/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	// Register first so the authenticated lookup finds a record.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := voterstore.NewInMemory()
	svc := service.NewService(store, service.WithLogger(logger))

	voter, err := svc.Register(httptest.NewRequest(http.MethodGet, "/", nil).Context(), service.RegisterParams{
		Name:  "Ada",
		Email: "ada@example.edu",
	})
	require.NoError(t, err)

	handler := New(svc, logger, nil, stubValidator{claims: &middleware.JWTClaims{VoterID: voter.ID.String()}})
	r := chi.NewRouter()
	handler.Register(r)

	req := httptest.NewRequest(http.MethodGet, "/voters/me", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, voter.ID.String(), resp["id"])
}
