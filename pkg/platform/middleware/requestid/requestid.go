// Package requestid assigns each request a correlation ID and propagates it
// through the context and the X-Request-ID response header.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"turbofcl/pkg/requestcontext"
)

const header = "X-Request-ID"

// Middleware reuses an inbound X-Request-ID when present, otherwise
// generates one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
