// Package submission decides whether an assessment must be packaged and sent
// to the reviewing authority, and how urgently.
package submission

import (
	"turbofcl/internal/foci/models"
)

// reviewTimes maps urgency to the authority's published estimate.
var reviewTimes = map[models.SubmissionUrgency]string{
	models.UrgencyStandard:  "60-90 business days",
	models.UrgencyPriority:  "30-45 business days",
	models.UrgencyExpedited: "15-30 business days",
}

// Calculator derives submission requirements from a finished risk
// assessment. Stateless.
type Calculator struct{}

func New() *Calculator {
	return &Calculator{}
}

// Requirements applies the submission policy. High and critical risk always
// require an expedited submission with the full document package; medium
// risk requires a standard submission. Any critical indicator forces a
// submission at priority urgency or better, even when the aggregate risk
// came out lower.
func (c *Calculator) Requirements(risk models.RiskAssessment, indicators []models.FOCIIndicator) models.SubmissionRequirements {
	var req models.SubmissionRequirements

	switch risk.RiskLevel {
	case models.RiskCritical, models.RiskHigh:
		req.Required = true
		req.Urgency = models.UrgencyExpedited
		req.RequiredDocuments = []string{
			"SF-328 Certificate Pertaining to Foreign Interests",
			"Complete ownership structure documentation",
			"Proposed FOCI mitigation plan",
			"Key management personnel listing",
		}
		req.AuthorityContact = true
	case models.RiskMedium:
		req.Required = true
		req.Urgency = models.UrgencyStandard
		req.RequiredDocuments = []string{
			"SF-328 Certificate Pertaining to Foreign Interests",
			"Ownership structure documentation",
			"Proposed FOCI mitigation plan",
		}
	default:
		req.Urgency = models.UrgencyStandard
	}

	if hasCritical(indicators) {
		req.Required = true
		if req.Urgency != models.UrgencyExpedited {
			req.Urgency = models.UrgencyPriority
		}
	}

	req.EstimatedReviewTime = reviewTimes[req.Urgency]
	return req
}

func hasCritical(indicators []models.FOCIIndicator) bool {
	for _, ind := range indicators {
		if ind.Severity == models.SeverityCritical {
			return true
		}
	}
	return false
}
