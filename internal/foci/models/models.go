// Package models defines the records produced by the FOCI assessment engine.
//
// FOCI (Foreign Ownership, Control, or Influence) is the condition under
// which foreign interests might affect an entity's eligibility for a
// facility security clearance. One assessment run produces one immutable
// FOCIAssessment owning its indicators and mitigation measures; later runs
// supersede it, they never mutate it.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	ownershipModels "turbofcl/internal/ownership/models"
	id "turbofcl/pkg/domain"
)

// IndicatorCategory groups risk indicators by the kind of foreign interest
// they evidence.
type IndicatorCategory string

const (
	CategoryForeignOwnership       IndicatorCategory = "FOREIGN_OWNERSHIP"
	CategoryForeignControl         IndicatorCategory = "FOREIGN_CONTROL"
	CategoryForeignInfluence       IndicatorCategory = "FOREIGN_INFLUENCE"
	CategoryTechnologyTransfer     IndicatorCategory = "TECHNOLOGY_TRANSFER"
	CategoryExportControl          IndicatorCategory = "EXPORT_CONTROL"
	CategoryInternationalAgreement IndicatorCategory = "INTERNATIONAL_AGREEMENT"
)

// Severity ranks how serious an indicator is.
type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityModerate Severity = "MODERATE"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

// RiskLevel is the categorical outcome of scoring.
type RiskLevel string

const (
	RiskNone     RiskLevel = "NONE"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ConfidenceLevel expresses how complete the evidence behind an assessment is.
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceMedium   ConfidenceLevel = "MEDIUM"
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceVeryHigh ConfidenceLevel = "VERY_HIGH"
)

// AssessmentType distinguishes why an assessment was run. It drives the
// recency window for cache hits and the next-review interval.
type AssessmentType string

const (
	AssessmentInitial           AssessmentType = "INITIAL"
	AssessmentAnnual            AssessmentType = "ANNUAL"
	AssessmentTriggered         AssessmentType = "TRIGGERED"
	AssessmentChangeInOwnership AssessmentType = "CHANGE_IN_OWNERSHIP"
)

// Valid reports whether the type is one of the four known assessment types.
func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentInitial, AssessmentAnnual, AssessmentTriggered, AssessmentChangeInOwnership:
		return true
	}
	return false
}

// MeasureType identifies a standard mitigation instrument.
type MeasureType string

const (
	MeasureBoardResolution          MeasureType = "BOARD_RESOLUTION"
	MeasureProxyAgreement           MeasureType = "PROXY_AGREEMENT"
	MeasureSpecialSecurityAgreement MeasureType = "SPECIAL_SECURITY_AGREEMENT"
	MeasureTechnologyControlPlan    MeasureType = "TECHNOLOGY_CONTROL_PLAN"
)

// SubmissionUrgency ranks how fast a regulatory submission must move.
type SubmissionUrgency string

const (
	UrgencyStandard  SubmissionUrgency = "STANDARD"
	UrgencyPriority  SubmissionUrgency = "PRIORITY"
	UrgencyExpedited SubmissionUrgency = "EXPEDITED"
)

// ValidationStatus marks whether an assessment passed engine validation.
type ValidationStatus string

const (
	ValidationPassed ValidationStatus = "PASSED"
	ValidationFailed ValidationStatus = "FAILED"
)

// ControlType records how a foreign owner exerts control.
type ControlType string

const (
	ControlVoting    ControlType = "VOTING_CONTROL"
	ControlOwnership ControlType = "OWNERSHIP_CONTROL"
)

// RelationDetail is one flattened ownership relation with its computed
// effective percentage and traversal depth.
type RelationDetail struct {
	OwnerID             string                    `json:"owner_id"`
	OwnerName           string                    `json:"owner_name"`
	OwnerType           ownershipModels.OwnerType `json:"owner_type"`
	DirectPercentage    decimal.Decimal           `json:"direct_percentage"`
	EffectivePercentage decimal.Decimal           `json:"effective_percentage"`
	VotingPercentage    *decimal.Decimal          `json:"voting_percentage,omitempty"`
	IsForeign           bool                      `json:"is_foreign"`
	IsControlling       bool                      `json:"is_controlling"`
	RelationshipType    string                    `json:"relationship_type"`
	Citizenship         []string                  `json:"citizenship,omitempty"`
	Depth               int                       `json:"depth"`
}

// ControlCandidate is a foreign relation flagged during traversal as a
// potential control indicator; the control evaluator turns these into typed
// indicators.
type ControlCandidate struct {
	Owner             RelationDetail  `json:"owner"`
	ControlType       ControlType     `json:"control_type"`
	ControlPercentage decimal.Decimal `json:"control_percentage"`
}

// OwnershipAnalysis is the derived output of a full ownership graph
// traversal. Built fresh per assessment and never persisted on its own.
type OwnershipAnalysis struct {
	EntityID              id.EntityID        `json:"entity_id"`
	TotalRelations        int                `json:"total_relations"`
	OwnershipTiers        int                `json:"ownership_tiers"`
	TotalForeignOwnership decimal.Decimal    `json:"total_foreign_ownership"` // capped at 100
	ControlCandidates     []ControlCandidate `json:"control_candidates"`
	ComplexityScore       int                `json:"complexity_score"` // capped at 100
	Relations             []RelationDetail   `json:"relations"`
	AnalyzedAt            time.Time          `json:"analyzed_at"`
}

// ForeignRelations returns the subset of relation details marked foreign.
func (a *OwnershipAnalysis) ForeignRelations() []RelationDetail {
	var foreign []RelationDetail
	for _, rel := range a.Relations {
		if rel.IsForeign {
			foreign = append(foreign, rel)
		}
	}
	return foreign
}

// FOCIIndicator is a single typed risk indicator. Immutable; owned by the
// parent assessment.
type FOCIIndicator struct {
	Category            IndicatorCategory `json:"category"`
	Severity            Severity          `json:"severity"`
	Description         string            `json:"description"`
	Evidence            []string          `json:"evidence"`
	MitigationRequired  bool              `json:"mitigation_required"`
	RegulatoryReference string            `json:"regulatory_reference,omitempty"`
}

// MitigationMeasure is a recommended governance remedy. Owned by the parent
// assessment.
type MitigationMeasure struct {
	Type                   MeasureType `json:"type"`
	Description            string      `json:"description"`
	ImplementationTimeline string      `json:"implementation_timeline"`
	ResponsibleParty       string      `json:"responsible_party"`
	MonitoringRequirements string      `json:"monitoring_requirements"`
	Effectiveness          string      `json:"effectiveness"`
}

// RiskAssessment is the scorer's output.
type RiskAssessment struct {
	RiskScore               int             `json:"risk_score"` // 0-100
	RiskLevel               RiskLevel       `json:"risk_level"`
	BaseScore               int             `json:"base_score"`
	IndicatorContribution   int             `json:"indicator_contribution"`
	MitigationReduction     int             `json:"mitigation_reduction"`
	MitigationRequired      bool            `json:"mitigation_required"`
	ClearanceRecommendation string          `json:"clearance_recommendation"`
	ConfidenceLevel         ConfidenceLevel `json:"confidence_level"`
}

// SubmissionRequirements captures whether and how urgently the assessment
// must go to the reviewing authority.
type SubmissionRequirements struct {
	Required            bool              `json:"required"`
	Urgency             SubmissionUrgency `json:"urgency"`
	RequiredDocuments   []string          `json:"required_documents,omitempty"`
	EstimatedReviewTime string            `json:"estimated_review_time"`
	AuthorityContact    bool              `json:"authority_contact"`
}

// FOCIAssessment is the persisted result of one engine run.
//
// Lifecycle: created by the orchestrator on successful completion; read by
// downstream reviewers; superseded (not deleted) by the next assessment.
// Persistence is all-or-nothing with the owned indicator and mitigation
// collections.
type FOCIAssessment struct {
	ID                 id.AssessmentID     `json:"id"`
	EntityID           id.EntityID         `json:"entity_id"`
	Type               AssessmentType      `json:"assessment_type"`
	RiskScore          int                 `json:"risk_score"`
	RiskLevel          RiskLevel           `json:"risk_level"`
	ConfidenceLevel    ConfidenceLevel     `json:"confidence_level"`
	SubmissionRequired bool                `json:"submission_required"`
	SubmissionUrgency  SubmissionUrgency   `json:"submission_urgency,omitempty"`
	AssessmentDate     time.Time           `json:"assessment_date"`
	AssessorID         id.AssessorID       `json:"assessor_id"`
	NextReviewDate     time.Time           `json:"next_review_date"`
	ValidationStatus   ValidationStatus    `json:"validation_status"`
	Indicators         []FOCIIndicator     `json:"indicators"`
	Mitigations        []MitigationMeasure `json:"mitigations"`
}
