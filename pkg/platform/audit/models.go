package audit

import (
	"time"

	id "turbofcl/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: completed assessments, regulatory submission determinations.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: failed assessments, unauthorized assessor attempts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and visibility.
	// These can be sampled or aggregated with shorter retention.
	// Examples: cache hits, traversal statistics.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category     EventCategory
	Timestamp    time.Time
	EntityID     id.EntityID
	AssessmentID id.AssessmentID
	Action       string
	RiskLevel    string
	// Reason carries the failure class or decision rationale.
	Reason    string
	RequestID string
	// ActorID tracks who triggered the action (usually the assessor).
	ActorID string
	// Metadata holds structured detail (indicator counts, scores, urgency).
	// Values are strings so the payload serializes the same everywhere.
	Metadata map[string]string
}

type AuditEvent string

const (
	EventAssessmentCompleted AuditEvent = "foci_assessment_completed"
	EventAssessmentFailed    AuditEvent = "foci_assessment_failed"
	EventSubmissionRequired  AuditEvent = "foci_submission_required"
	EventAssessmentCacheHit  AuditEvent = "foci_assessment_cache_hit"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - require tamper-proof storage
	EventAssessmentCompleted: CategoryCompliance,
	EventSubmissionRequired:  CategoryCompliance,

	// Security events - feed into SIEM and alerting
	EventAssessmentFailed: CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventAssessmentCacheHit: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
