// Package httptransport assembles the HTTP surface: API routes, health, and
// metrics. Transport concerns only; business logic stays in the services.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	focihandler "turbofcl/internal/foci/handler"
	"turbofcl/pkg/platform/middleware/assessor"
	"turbofcl/pkg/platform/middleware/requestid"
	"turbofcl/pkg/platform/middleware/requesttime"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func() error

// NewRouter wires the assessment endpoints under /api/v1 plus the
// operational endpoints.
func NewRouter(foci *focihandler.Handler, health HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(assessor.Middleware)

	r.Route("/api/v1", func(api chi.Router) {
		foci.Register(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
