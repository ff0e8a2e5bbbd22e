package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the FOCI assessment engine.
type Metrics struct {
	// Completed assessments by type and resulting risk level
	AssessmentOutcome *prometheus.CounterVec

	// Failed assessments by error code
	AssessmentFailure *prometheus.CounterVec

	// Recency cache hits by assessment type
	CacheHit *prometheus.CounterVec

	// Full pipeline latency
	AssessLatency prometheus.Histogram

	// Ownership traversal latency
	TraversalLatency prometheus.Histogram

	// Relations fetched per traversal
	TraversalFetches prometheus.Histogram
}

// New creates a new Metrics instance with all assessment metrics registered.
func New() *Metrics {
	return &Metrics{
		AssessmentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "turbofcl_foci_assessments_total",
			Help: "Total completed FOCI assessments by type and risk level",
		}, []string{"type", "risk_level"}),

		AssessmentFailure: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "turbofcl_foci_assessment_failures_total",
			Help: "Total failed FOCI assessments by error code",
		}, []string{"code"}),

		CacheHit: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "turbofcl_foci_assessment_cache_hits_total",
			Help: "Total recency cache hits by assessment type",
		}, []string{"type"}),

		AssessLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "turbofcl_foci_assess_duration_seconds",
			Help:    "Duration of the full assessment pipeline",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		TraversalLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "turbofcl_foci_traversal_duration_seconds",
			Help:    "Duration of ownership graph traversal",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		TraversalFetches: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "turbofcl_foci_traversal_fetches",
			Help:    "Relation fetches performed per traversal",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 256},
		}),
	}
}

// IncrementOutcome records a completed assessment.
func (m *Metrics) IncrementOutcome(assessmentType, riskLevel string) {
	if m != nil {
		m.AssessmentOutcome.WithLabelValues(assessmentType, riskLevel).Inc()
	}
}

// IncrementFailure records a failed assessment.
func (m *Metrics) IncrementFailure(code string) {
	if m != nil {
		m.AssessmentFailure.WithLabelValues(code).Inc()
	}
}

// IncrementCacheHit records a recency cache hit.
func (m *Metrics) IncrementCacheHit(assessmentType string) {
	if m != nil {
		m.CacheHit.WithLabelValues(assessmentType).Inc()
	}
}

// ObserveAssessLatency records the total pipeline duration.
func (m *Metrics) ObserveAssessLatency(d time.Duration) {
	if m != nil {
		m.AssessLatency.Observe(d.Seconds())
	}
}

// ObserveTraversalLatency records the traversal duration.
func (m *Metrics) ObserveTraversalLatency(d time.Duration) {
	if m != nil {
		m.TraversalLatency.Observe(d.Seconds())
	}
}

// ObserveTraversalFetches records relation fetches for one traversal.
func (m *Metrics) ObserveTraversalFetches(n int) {
	if m != nil {
		m.TraversalFetches.Observe(float64(n))
	}
}
