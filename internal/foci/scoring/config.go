package scoring

import (
	"github.com/shopspring/decimal"

	"turbofcl/internal/foci/models"
)

// Config holds every constant the scorer uses. Built once at startup and
// treated as immutable afterwards.
type Config struct {
	// Base score bands keyed off total foreign ownership.
	OwnershipBandHigh   decimal.Decimal // >= this: base 50
	OwnershipBandMedium decimal.Decimal // >= this: base 30
	OwnershipBandLow    decimal.Decimal // >= this: base 15

	BaseHigh   int
	BaseMedium int
	BaseLow    int

	// Complexity contribution: complexity score divided by this, then capped.
	ComplexityDivisor int
	ComplexityCap     int

	// Indicator weights by category and severity. Unknown pairs score zero.
	IndicatorWeights map[models.IndicatorCategory]map[models.Severity]int
	IndicatorCap     int

	// Score reduction per recommended mitigation measure.
	MitigationReductions map[models.MeasureType]int

	// Risk level cutoffs, inclusive lower bounds.
	CriticalThreshold int
	HighThreshold     int
	MediumThreshold   int
	LowThreshold      int

	// Final scores at or above this require mitigation.
	MitigationRequiredThreshold int

	// Confidence scoring.
	TierPenalty          int // applied when ownership tiers exceed TierPenaltyDepth
	TierPenaltyDepth     int
	ThinEvidencePenalty  int // applied when over half of indicators have sparse evidence
	ThinEvidenceMinItems int
	ConfidenceVeryHigh   int
	ConfidenceHigh       int
	ConfidenceMedium     int
}

// DefaultConfig returns the standard scoring table.
func DefaultConfig() Config {
	return Config{
		OwnershipBandHigh:   decimal.NewFromInt(25),
		OwnershipBandMedium: decimal.NewFromInt(10),
		OwnershipBandLow:    decimal.NewFromInt(5),

		BaseHigh:   50,
		BaseMedium: 30,
		BaseLow:    15,

		ComplexityDivisor: 4,
		ComplexityCap:     25,

		IndicatorWeights: map[models.IndicatorCategory]map[models.Severity]int{
			models.CategoryForeignOwnership: {
				models.SeverityMinor:    10,
				models.SeverityModerate: 25,
				models.SeverityMajor:    50,
				models.SeverityCritical: 100,
			},
			models.CategoryForeignControl: {
				models.SeverityMinor:    15,
				models.SeverityModerate: 35,
				models.SeverityMajor:    70,
				models.SeverityCritical: 100,
			},
			models.CategoryForeignInfluence: {
				models.SeverityMinor:    5,
				models.SeverityModerate: 15,
				models.SeverityMajor:    40,
				models.SeverityCritical: 80,
			},
			models.CategoryTechnologyTransfer: {
				models.SeverityMinor:    20,
				models.SeverityModerate: 40,
				models.SeverityMajor:    80,
				models.SeverityCritical: 100,
			},
		},
		IndicatorCap: 50,

		MitigationReductions: map[models.MeasureType]int{
			models.MeasureSpecialSecurityAgreement: 30,
			models.MeasureProxyAgreement:           20,
			models.MeasureBoardResolution:          15,
			models.MeasureTechnologyControlPlan:    10,
		},

		CriticalThreshold: 80,
		HighThreshold:     60,
		MediumThreshold:   30,
		LowThreshold:      10,

		MitigationRequiredThreshold: 30,

		TierPenalty:          10,
		TierPenaltyDepth:     3,
		ThinEvidencePenalty:  20,
		ThinEvidenceMinItems: 2,
		ConfidenceVeryHigh:   90,
		ConfidenceHigh:       75,
		ConfidenceMedium:     60,
	}
}
