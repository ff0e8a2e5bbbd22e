// Package assessor propagates the authenticated assessor identity from the
// gateway into the request context. Authentication itself happens upstream;
// this layer trusts the X-Assessor-ID header the gateway sets.
package assessor

import (
	"net/http"

	id "turbofcl/pkg/domain"
	"turbofcl/pkg/requestcontext"
)

const header = "X-Assessor-ID"

// Middleware parses the assessor header when present. Requests without one
// proceed anonymously; endpoints that require an assessor enforce it
// themselves.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(header)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		assessorID, err := id.ParseAssessorID(raw)
		if err != nil {
			http.Error(w, "invalid assessor id", http.StatusBadRequest)
			return
		}
		ctx := requestcontext.WithAssessorID(r.Context(), assessorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
