// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping this package
// free of net/http lets services consume request metadata without pulling
// in transport code.
//
// Usage in services (read values):
//
//	voterID := requestcontext.VoterID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithVoterID(ctx, voterID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "ballotbox/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	voterIDKey     struct{}
	adminKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// VoterID returns the authenticated voter bound to ctx, or the zero value
// when no voter is authenticated.
func VoterID(ctx context.Context) id.VoterID {
	if v, ok := ctx.Value(voterIDKey{}).(id.VoterID); ok {
		return v
	}
	return id.VoterID{}
}

func WithVoterID(ctx context.Context, voterID id.VoterID) context.Context {
	return context.WithValue(ctx, voterIDKey{}, voterID)
}

// IsAdmin reports whether the authenticated principal carries the admin role.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(adminKey{}).(bool)
	return admin
}

func WithAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminKey{}, admin)
}

// RequestID returns the correlation id assigned by middleware, or "".
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request-pinned time when one was set, falling back to the
// wall clock. Pinning the time once per request keeps every status check in
// a request consistent and makes window-boundary behavior testable.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
