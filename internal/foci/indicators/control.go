package indicators

import (
	"context"
	"fmt"
	"strings"

	entitymodels "turbofcl/internal/entity/models"
	"turbofcl/internal/foci/models"
)

// ControlEvaluator turns traversal control candidates into typed indicators.
// Control indicators always require mitigation.
type ControlEvaluator struct {
	cfg Config
}

func (e *ControlEvaluator) Category() models.IndicatorCategory {
	return models.CategoryForeignControl
}

func (e *ControlEvaluator) Evaluate(_ context.Context, _ *entitymodels.Entity, analysis *models.OwnershipAnalysis) ([]models.FOCIIndicator, error) {
	var indicators []models.FOCIIndicator

	for _, cand := range analysis.ControlCandidates {
		severity := models.SeverityModerate
		switch {
		case cand.ControlPercentage.GreaterThanOrEqual(e.cfg.ControlCritical):
			severity = models.SeverityCritical
		case cand.ControlPercentage.GreaterThanOrEqual(e.cfg.ControlMajor):
			severity = models.SeverityMajor
		}

		indicators = append(indicators, models.FOCIIndicator{
			Category: models.CategoryForeignControl,
			Severity: severity,
			Description: fmt.Sprintf("Foreign %s by %s",
				strings.ToLower(string(cand.ControlType)), cand.Owner.OwnerName),
			Evidence: []string{
				fmt.Sprintf("Foreign owner holds %s%% %s",
					cand.ControlPercentage.StringFixed(2), strings.ToLower(string(cand.ControlType))),
				fmt.Sprintf("Owner type: %s", cand.Owner.OwnerType),
				fmt.Sprintf("Citizenship: %s", strings.Join(cand.Owner.Citizenship, ", ")),
			},
			MitigationRequired:  true,
			RegulatoryReference: "NISPOM 2-204",
		})
	}

	return indicators, nil
}
