package testutil

import (
	"net/http"
	"time"

	id "turbofcl/pkg/domain"
	"turbofcl/pkg/requestcontext"
)

// WithAssessorID adds an assessor identity to the request context, simulating
// the assessor middleware. Invalid IDs are silently ignored.
func WithAssessorID(req *http.Request, assessorID string) *http.Request {
	parsed, err := id.ParseAssessorID(assessorID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithAssessorID(req.Context(), parsed))
}

// WithRequestID adds a correlation ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithTime pins the request-scoped clock, simulating the requesttime
// middleware with a deterministic timestamp.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
