package indicators

import (
	"context"
	"fmt"

	entitymodels "turbofcl/internal/entity/models"
	"turbofcl/internal/foci/models"
)

// OwnershipEvaluator rates aggregate and concentrated foreign ownership.
type OwnershipEvaluator struct {
	cfg Config
}

func (e *OwnershipEvaluator) Category() models.IndicatorCategory {
	return models.CategoryForeignOwnership
}

func (e *OwnershipEvaluator) Evaluate(_ context.Context, _ *entitymodels.Entity, analysis *models.OwnershipAnalysis) ([]models.FOCIIndicator, error) {
	var indicators []models.FOCIIndicator
	pct := analysis.TotalForeignOwnership

	switch {
	case pct.GreaterThanOrEqual(e.cfg.OwnershipCritical):
		indicators = append(indicators, models.FOCIIndicator{
			Category:            models.CategoryForeignOwnership,
			Severity:            models.SeverityCritical,
			Description:         fmt.Sprintf("Foreign ownership of %s%% exceeds critical threshold", pct.StringFixed(2)),
			Evidence:            []string{fmt.Sprintf("Total foreign ownership: %s%%", pct.StringFixed(2))},
			MitigationRequired:  true,
			RegulatoryReference: "NISPOM 2-202a",
		})
	case pct.GreaterThanOrEqual(e.cfg.OwnershipMajor):
		indicators = append(indicators, models.FOCIIndicator{
			Category:            models.CategoryForeignOwnership,
			Severity:            models.SeverityMajor,
			Description:         fmt.Sprintf("Foreign ownership of %s%% requires mitigation", pct.StringFixed(2)),
			Evidence:            []string{fmt.Sprintf("Total foreign ownership: %s%%", pct.StringFixed(2))},
			MitigationRequired:  true,
			RegulatoryReference: "NISPOM 2-202b",
		})
	case pct.GreaterThanOrEqual(e.cfg.OwnershipModerate):
		indicators = append(indicators, models.FOCIIndicator{
			Category:            models.CategoryForeignOwnership,
			Severity:            models.SeverityModerate,
			Description:         fmt.Sprintf("Foreign ownership of %s%% requires monitoring", pct.StringFixed(2)),
			Evidence:            []string{fmt.Sprintf("Total foreign ownership: %s%%", pct.StringFixed(2))},
			MitigationRequired:  false,
			RegulatoryReference: "NISPOM 2-202c",
		})
	}

	// Any single foreign owner with a concentrated direct stake is flagged
	// even when the aggregate stays under threshold.
	for _, rel := range analysis.ForeignRelations() {
		if rel.DirectPercentage.GreaterThanOrEqual(e.cfg.ConcentratedOwnership) {
			indicators = append(indicators, models.FOCIIndicator{
				Category:    models.CategoryForeignOwnership,
				Severity:    models.SeverityModerate,
				Description: fmt.Sprintf("Concentrated foreign ownership by %s", rel.OwnerName),
				Evidence: []string{
					fmt.Sprintf("Single foreign owner with %s%% direct ownership", rel.DirectPercentage.StringFixed(2)),
				},
				MitigationRequired:  rel.DirectPercentage.GreaterThanOrEqual(e.cfg.ConcentratedCritical),
				RegulatoryReference: "NISPOM 2-203",
			})
		}
	}

	return indicators, nil
}
