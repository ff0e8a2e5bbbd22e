// Package mitigation maps assessed indicators and ownership levels to the
// standard mitigation instruments.
package mitigation

import (
	"github.com/shopspring/decimal"

	"turbofcl/internal/foci/models"
)

// profile carries the fixed rollout attributes of one measure type.
type profile struct {
	description   string
	timeline      string
	responsible   string
	monitoring    string
	effectiveness string
}

// profiles is the static lookup table keyed by measure type.
var profiles = map[models.MeasureType]profile{
	models.MeasureSpecialSecurityAgreement: {
		description:   "Special Security Agreement required due to significant FOCI conditions",
		timeline:      "Within 90 days of clearance approval",
		responsible:   "Facility Security Officer",
		monitoring:    "Annual compliance review by the reviewing authority",
		effectiveness: "High - addresses most FOCI concerns",
	},
	models.MeasureProxyAgreement: {
		description:   "Proxy Agreement to mitigate foreign control concerns",
		timeline:      "Prior to clearance approval",
		responsible:   "Board of Directors",
		monitoring:    "Semi-annual compliance certification",
		effectiveness: "Medium - addresses control concerns",
	},
	models.MeasureBoardResolution: {
		description:   "Board Resolution excluding foreign interests from classified activities",
		timeline:      "Within 30 days of clearance approval",
		responsible:   "Board of Directors",
		monitoring:    "Annual board certification",
		effectiveness: "Medium - suitable for ownership without control",
	},
	models.MeasureTechnologyControlPlan: {
		description:   "Technology Control Plan to prevent unauthorized technology transfer",
		timeline:      "Prior to classified contract award",
		responsible:   "Chief Technology Officer / FSO",
		monitoring:    "Quarterly technology transfer reviews",
		effectiveness: "High - specific to technology concerns",
	},
}

// Config holds the ownership thresholds the recommender applies.
type Config struct {
	SSAOwnershipThreshold   decimal.Decimal
	ProxyOwnershipThreshold decimal.Decimal
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		SSAOwnershipThreshold:   decimal.NewFromInt(25),
		ProxyOwnershipThreshold: decimal.NewFromInt(10),
	}
}

// Recommender selects mitigation measures. Stateless and pure.
type Recommender struct {
	cfg Config
}

func New(cfg Config) *Recommender {
	return &Recommender{cfg: cfg}
}

// Recommend applies the decision policy once per assessment:
//
//  1. Any critical indicator, or foreign ownership at/above the SSA
//     threshold, requires a Special Security Agreement.
//  2. Otherwise any major indicator, or foreign ownership at/above the proxy
//     threshold, requires a Proxy Agreement when control indicators exist,
//     else a Board Resolution.
//  3. Independently, any technology-transfer indicator adds a Technology
//     Control Plan.
func (r *Recommender) Recommend(analysis *models.OwnershipAnalysis, indicators []models.FOCIIndicator) []models.MitigationMeasure {
	var (
		hasCritical bool
		hasMajor    bool
		hasControl  bool
		hasTech     bool
	)
	for _, ind := range indicators {
		switch ind.Severity {
		case models.SeverityCritical:
			hasCritical = true
		case models.SeverityMajor:
			hasMajor = true
		}
		switch ind.Category {
		case models.CategoryForeignControl:
			hasControl = true
		case models.CategoryTechnologyTransfer:
			hasTech = true
		}
	}

	foreignPct := analysis.TotalForeignOwnership

	var measures []models.MitigationMeasure
	switch {
	case hasCritical || foreignPct.GreaterThanOrEqual(r.cfg.SSAOwnershipThreshold):
		measures = append(measures, newMeasure(models.MeasureSpecialSecurityAgreement))
	case hasMajor || foreignPct.GreaterThanOrEqual(r.cfg.ProxyOwnershipThreshold):
		if hasControl {
			measures = append(measures, newMeasure(models.MeasureProxyAgreement))
		} else {
			measures = append(measures, newMeasure(models.MeasureBoardResolution))
		}
	}

	if hasTech {
		measures = append(measures, newMeasure(models.MeasureTechnologyControlPlan))
	}

	return measures
}

func newMeasure(t models.MeasureType) models.MitigationMeasure {
	p := profiles[t]
	return models.MitigationMeasure{
		Type:                   t,
		Description:            p.description,
		ImplementationTimeline: p.timeline,
		ResponsibleParty:       p.responsible,
		MonitoringRequirements: p.monitoring,
		Effectiveness:          p.effectiveness,
	}
}
