// Package scoring turns an ownership analysis, its indicators, and the
// recommended mitigations into a bounded 0-100 risk score with a categorical
// risk level and a confidence rating.
package scoring

import (
	"log/slog"

	"turbofcl/internal/foci/models"
)

// Scorer computes risk assessments. Pure: same inputs, same output.
type Scorer struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the logger used for unknown weight lookups.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scorer) { s.logger = l }
}

func New(cfg Config, opts ...Option) *Scorer {
	s := &Scorer{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score runs the additive model:
//
//	score = base(ownership) + complexity/divisor (capped)
//	      + sum(indicator weights) (capped)
//	      - sum(mitigation reductions)
//
// clamped to [0, 100]. Mitigation reductions are deliberately uncapped so a
// well-mitigated entity can score below a poorly-mitigated one with less
// foreign ownership.
func (s *Scorer) Score(analysis *models.OwnershipAnalysis, indicators []models.FOCIIndicator, measures []models.MitigationMeasure) models.RiskAssessment {
	base := s.baseScore(analysis)
	indicatorPart := s.indicatorScore(indicators)
	reduction := s.mitigationReduction(measures)

	score := base + indicatorPart - reduction
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	level := s.riskLevel(score)

	return models.RiskAssessment{
		RiskScore:               score,
		RiskLevel:               level,
		BaseScore:               base,
		IndicatorContribution:   indicatorPart,
		MitigationReduction:     reduction,
		MitigationRequired:      score >= s.cfg.MitigationRequiredThreshold,
		ClearanceRecommendation: recommendations[level],
		ConfidenceLevel:         s.confidence(analysis, indicators),
	}
}

// baseScore is the ownership band plus a capped complexity contribution.
func (s *Scorer) baseScore(analysis *models.OwnershipAnalysis) int {
	var base int
	pct := analysis.TotalForeignOwnership
	switch {
	case pct.GreaterThanOrEqual(s.cfg.OwnershipBandHigh):
		base = s.cfg.BaseHigh
	case pct.GreaterThanOrEqual(s.cfg.OwnershipBandMedium):
		base = s.cfg.BaseMedium
	case pct.GreaterThanOrEqual(s.cfg.OwnershipBandLow):
		base = s.cfg.BaseLow
	}

	complexity := analysis.ComplexityScore / s.cfg.ComplexityDivisor
	if complexity > s.cfg.ComplexityCap {
		complexity = s.cfg.ComplexityCap
	}
	return base + complexity
}

func (s *Scorer) indicatorScore(indicators []models.FOCIIndicator) int {
	var total int
	for _, ind := range indicators {
		total += s.weight(ind)
	}
	if total > s.cfg.IndicatorCap {
		total = s.cfg.IndicatorCap
	}
	return total
}

// weight looks up the category/severity weight. Unknown pairs contribute
// zero; custom evaluator categories outside the table are legitimate, so this
// logs rather than errors.
func (s *Scorer) weight(ind models.FOCIIndicator) int {
	bySeverity, ok := s.cfg.IndicatorWeights[ind.Category]
	if !ok {
		s.logger.Warn("no weight table for indicator category",
			"category", string(ind.Category))
		return 0
	}
	w, ok := bySeverity[ind.Severity]
	if !ok {
		s.logger.Warn("no weight for indicator severity",
			"category", string(ind.Category),
			"severity", string(ind.Severity))
		return 0
	}
	return w
}

func (s *Scorer) mitigationReduction(measures []models.MitigationMeasure) int {
	var total int
	for _, m := range measures {
		total += s.cfg.MitigationReductions[m.Type]
	}
	return total
}

func (s *Scorer) riskLevel(score int) models.RiskLevel {
	switch {
	case score >= s.cfg.CriticalThreshold:
		return models.RiskCritical
	case score >= s.cfg.HighThreshold:
		return models.RiskHigh
	case score >= s.cfg.MediumThreshold:
		return models.RiskMedium
	case score >= s.cfg.LowThreshold:
		return models.RiskLow
	}
	return models.RiskNone
}

// confidence starts at 100 and subtracts penalties for deep ownership chains
// and thin indicator evidence.
func (s *Scorer) confidence(analysis *models.OwnershipAnalysis, indicators []models.FOCIIndicator) models.ConfidenceLevel {
	score := 100

	if analysis.OwnershipTiers > s.cfg.TierPenaltyDepth {
		score -= s.cfg.TierPenalty
	}

	if len(indicators) > 0 {
		var thin int
		for _, ind := range indicators {
			if len(ind.Evidence) < s.cfg.ThinEvidenceMinItems {
				thin++
			}
		}
		if thin*2 > len(indicators) {
			score -= s.cfg.ThinEvidencePenalty
		}
	}

	switch {
	case score >= s.cfg.ConfidenceVeryHigh:
		return models.ConfidenceVeryHigh
	case score >= s.cfg.ConfidenceHigh:
		return models.ConfidenceHigh
	case score >= s.cfg.ConfidenceMedium:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

var recommendations = map[models.RiskLevel]string{
	models.RiskNone:     "APPROVE - No significant FOCI concerns identified",
	models.RiskLow:      "APPROVE WITH MONITORING - Enhanced monitoring recommended",
	models.RiskMedium:   "APPROVE WITH MITIGATION - Standard mitigation measures required",
	models.RiskHigh:     "CONDITIONAL APPROVAL - Comprehensive mitigation required",
	models.RiskCritical: "DENY - Critical FOCI conditions present",
}
