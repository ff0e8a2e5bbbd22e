// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by transport middleware and consumed by services. Keeping
// this package free of net/http lets the engine read request metadata and a
// request-scoped clock without pulling transport code into domain packages.
//
// Usage in services:
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "turbofcl/pkg/domain"
)

type (
	assessorIDKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// AssessorID retrieves the authenticated assessor ID from the context.
// Returns the zero value (nil UUID) if not set.
func AssessorID(ctx context.Context) id.AssessorID {
	if assessorID, ok := ctx.Value(assessorIDKey{}).(id.AssessorID); ok {
		return assessorID
	}
	return id.AssessorID{}
}

// WithAssessorID injects an assessor ID into the context.
func WithAssessorID(ctx context.Context, assessorID id.AssessorID) context.Context {
	return context.WithValue(ctx, assessorIDKey{}, assessorID)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests that
// don't pin a clock).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for keeping one consistent "as of" date across a traversal.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
