package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"turbofcl/internal/foci/models"
)

type ScorerSuite struct {
	suite.Suite
	scorer *Scorer
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func (s *ScorerSuite) SetupTest() {
	s.scorer = New(DefaultConfig())
}

func analysis(foreignPct int64, tiers, complexity int) *models.OwnershipAnalysis {
	return &models.OwnershipAnalysis{
		TotalForeignOwnership: decimal.NewFromInt(foreignPct),
		OwnershipTiers:        tiers,
		ComplexityScore:       complexity,
	}
}

func indicator(category models.IndicatorCategory, severity models.Severity, evidence ...string) models.FOCIIndicator {
	return models.FOCIIndicator{
		Category:           category,
		Severity:           severity,
		Evidence:           evidence,
		MitigationRequired: severity == models.SeverityCritical || severity == models.SeverityMajor,
	}
}

func measure(t models.MeasureType) models.MitigationMeasure {
	return models.MitigationMeasure{Type: t}
}

func (s *ScorerSuite) TestScore() {
	s.Run("thirty percent foreign ownership with its critical indicator is critical risk", func() {
		risk := s.scorer.Score(
			analysis(30, 1, 0),
			[]models.FOCIIndicator{
				indicator(models.CategoryForeignOwnership, models.SeverityCritical, "a", "b"),
			},
			nil,
		)
		s.Equal(50, risk.BaseScore)
		s.Equal(50, risk.IndicatorContribution) // 100 weight capped at 50
		s.Equal(100, risk.RiskScore)
		s.Equal(models.RiskCritical, risk.RiskLevel)
		s.True(risk.MitigationRequired)
		s.Equal("DENY - Critical FOCI conditions present", risk.ClearanceRecommendation)
	})

	s.Run("no foreign ownership and no indicators is zero risk", func() {
		risk := s.scorer.Score(analysis(0, 1, 0), nil, nil)
		s.Equal(0, risk.RiskScore)
		s.Equal(models.RiskNone, risk.RiskLevel)
		s.False(risk.MitigationRequired)
		s.Equal(models.ConfidenceVeryHigh, risk.ConfidenceLevel)
	})

	s.Run("score at the mitigation threshold requires mitigation without any indicator", func() {
		// 10% foreign ownership alone scores 30, the threshold.
		risk := s.scorer.Score(analysis(10, 1, 0), nil, nil)
		s.Equal(30, risk.RiskScore)
		s.True(risk.MitigationRequired)
		s.Equal(models.RiskMedium, risk.RiskLevel)
		s.Equal("APPROVE WITH MITIGATION - Standard mitigation measures required", risk.ClearanceRecommendation)
	})

	s.Run("heavily mitigated score below the threshold requires no mitigation despite a critical indicator", func() {
		risk := s.scorer.Score(
			analysis(5, 1, 0),
			[]models.FOCIIndicator{
				indicator(models.CategoryForeignInfluence, models.SeverityCritical, "a", "b"),
			},
			[]models.MitigationMeasure{
				measure(models.MeasureSpecialSecurityAgreement),
				measure(models.MeasureProxyAgreement),
				measure(models.MeasureBoardResolution),
				measure(models.MeasureTechnologyControlPlan),
			},
		)
		s.Equal(0, risk.RiskScore)
		s.False(risk.MitigationRequired)
	})

	s.Run("ownership bands set the base score", func() {
		s.Equal(15, s.scorer.Score(analysis(5, 1, 0), nil, nil).BaseScore)
		s.Equal(30, s.scorer.Score(analysis(10, 1, 0), nil, nil).BaseScore)
		s.Equal(50, s.scorer.Score(analysis(25, 1, 0), nil, nil).BaseScore)
	})

	s.Run("complexity contribution is capped", func() {
		risk := s.scorer.Score(analysis(0, 1, 100), nil, nil)
		s.Equal(25, risk.BaseScore) // 100/4 = 25, at the cap
	})

	s.Run("special security agreement reduces the score by exactly thirty", func() {
		without := s.scorer.Score(analysis(25, 1, 0), nil, nil)
		with := s.scorer.Score(analysis(25, 1, 0), nil, []models.MitigationMeasure{
			measure(models.MeasureSpecialSecurityAgreement),
		})
		s.Equal(30, with.MitigationReduction)
		s.Equal(without.RiskScore-30, with.RiskScore)
	})

	s.Run("mitigation reductions stack uncapped and clamp at zero", func() {
		risk := s.scorer.Score(
			analysis(10, 1, 0),
			nil,
			[]models.MitigationMeasure{
				measure(models.MeasureSpecialSecurityAgreement),
				measure(models.MeasureProxyAgreement),
				measure(models.MeasureBoardResolution),
				measure(models.MeasureTechnologyControlPlan),
			},
		)
		s.Equal(75, risk.MitigationReduction)
		s.Equal(0, risk.RiskScore)
		s.Equal(models.RiskNone, risk.RiskLevel)
	})

	s.Run("adding an indicator never lowers the score", func() {
		base := s.scorer.Score(analysis(10, 1, 0), nil, nil)
		more := s.scorer.Score(analysis(10, 1, 0), []models.FOCIIndicator{
			indicator(models.CategoryForeignInfluence, models.SeverityMinor, "x", "y"),
		}, nil)
		s.GreaterOrEqual(more.RiskScore, base.RiskScore)
	})

	s.Run("indicator contribution is capped at fifty", func() {
		risk := s.scorer.Score(analysis(0, 1, 0), []models.FOCIIndicator{
			indicator(models.CategoryForeignControl, models.SeverityCritical, "a", "b"),
			indicator(models.CategoryTechnologyTransfer, models.SeverityCritical, "a", "b"),
		}, nil)
		s.Equal(50, risk.IndicatorContribution)
	})

	s.Run("unknown category contributes zero", func() {
		with := s.scorer.Score(analysis(10, 1, 0), []models.FOCIIndicator{
			indicator(models.IndicatorCategory("EXPORT_CONTROL"), models.SeverityCritical, "a", "b"),
		}, nil)
		without := s.scorer.Score(analysis(10, 1, 0), nil, nil)
		s.Equal(without.RiskScore, with.RiskScore)
	})
}

func (s *ScorerSuite) TestRiskLevels() {
	s.Run("boundaries are inclusive lower bounds", func() {
		cases := []struct {
			score int
			level models.RiskLevel
		}{
			{score: 100, level: models.RiskCritical},
			{score: 80, level: models.RiskCritical},
			{score: 79, level: models.RiskHigh},
			{score: 60, level: models.RiskHigh},
			{score: 59, level: models.RiskMedium},
			{score: 30, level: models.RiskMedium},
			{score: 29, level: models.RiskLow},
			{score: 10, level: models.RiskLow},
			{score: 9, level: models.RiskNone},
			{score: 0, level: models.RiskNone},
		}
		for _, tc := range cases {
			s.Equal(tc.level, s.scorer.riskLevel(tc.score), "score %d", tc.score)
		}
	})
}

func (s *ScorerSuite) TestConfidence() {
	twoEvidence := []string{"a", "b"}

	s.Run("full evidence and shallow structure is very high", func() {
		risk := s.scorer.Score(analysis(10, 2, 0), []models.FOCIIndicator{
			indicator(models.CategoryForeignOwnership, models.SeverityMajor, twoEvidence...),
		}, nil)
		s.Equal(models.ConfidenceVeryHigh, risk.ConfidenceLevel)
	})

	s.Run("deep ownership chains reduce confidence", func() {
		risk := s.scorer.Score(analysis(10, 4, 0), []models.FOCIIndicator{
			indicator(models.CategoryForeignOwnership, models.SeverityMajor, twoEvidence...),
		}, nil)
		s.Equal(models.ConfidenceVeryHigh, risk.ConfidenceLevel) // 90 is still the very-high floor
	})

	s.Run("mostly thin evidence reduces confidence", func() {
		risk := s.scorer.Score(analysis(10, 2, 0), []models.FOCIIndicator{
			indicator(models.CategoryForeignOwnership, models.SeverityMajor, "only one item"),
		}, nil)
		s.Equal(models.ConfidenceHigh, risk.ConfidenceLevel) // 80
	})

	s.Run("deep chains with thin evidence drop to medium", func() {
		risk := s.scorer.Score(analysis(10, 5, 0), []models.FOCIIndicator{
			indicator(models.CategoryForeignOwnership, models.SeverityMajor, "only one item"),
		}, nil)
		s.Equal(models.ConfidenceMedium, risk.ConfidenceLevel) // 70
	})
}
