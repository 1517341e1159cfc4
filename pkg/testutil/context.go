// Package testutil provides helpers for simulating authenticated requests
// and pinned clocks in tests.
package testutil

import (
	"net/http"
	"time"

	id "ballotbox/pkg/domain"
	"ballotbox/pkg/requestcontext"
)

// WithVoter adds a voter ID to the request context, simulating what the auth
// middleware does for authenticated requests. Invalid IDs are silently
// ignored.
func WithVoter(req *http.Request, voterID string) *http.Request {
	parsed, err := id.ParseVoterID(voterID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithVoterID(req.Context(), parsed))
}

// WithAdmin marks the request context as administrative.
func WithAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithAdmin(req.Context(), true))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
