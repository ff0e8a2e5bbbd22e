package indicators

import (
	"context"
	"fmt"

	entitymodels "turbofcl/internal/entity/models"
	"turbofcl/internal/foci/models"
	ownershipmodels "turbofcl/internal/ownership/models"
	platformstrings "turbofcl/pkg/platform/strings"
)

// InfluenceEvaluator looks for ownership patterns that suggest foreign
// influence short of outright control.
type InfluenceEvaluator struct {
	cfg Config
}

func (e *InfluenceEvaluator) Category() models.IndicatorCategory {
	return models.CategoryForeignInfluence
}

func (e *InfluenceEvaluator) Evaluate(_ context.Context, _ *entitymodels.Entity, analysis *models.OwnershipAnalysis) ([]models.FOCIIndicator, error) {
	var indicators []models.FOCIIndicator
	foreign := analysis.ForeignRelations()

	if len(foreign) >= e.cfg.CoordinatedInfluenceCount {
		indicators = append(indicators, models.FOCIIndicator{
			Category:    models.CategoryForeignInfluence,
			Severity:    models.SeverityModerate,
			Description: "Multiple foreign ownership relationships may indicate coordinated influence",
			Evidence: []string{
				fmt.Sprintf("Number of foreign ownership relationships: %d", len(foreign)),
			},
			MitigationRequired:  false,
			RegulatoryReference: "NISPOM 2-205",
		})
	}

	// Foreign government ownership is critical at any percentage; the stake
	// size does not gate this rule.
	var governmentOwners []string
	for _, rel := range foreign {
		if rel.OwnerType == ownershipmodels.OwnerTypeGovernment {
			governmentOwners = append(governmentOwners, rel.OwnerName)
		}
	}
	if len(governmentOwners) > 0 {
		evidence := []string{"Foreign government entity in ownership structure"}
		// The same sovereign owner can appear through several relations.
		for _, name := range platformstrings.DedupeAndTrim(governmentOwners) {
			evidence = append(evidence, fmt.Sprintf("Government owner: %s", name))
		}
		indicators = append(indicators, models.FOCIIndicator{
			Category:            models.CategoryForeignInfluence,
			Severity:            models.SeverityCritical,
			Description:         "Foreign government ownership detected",
			Evidence:            evidence,
			MitigationRequired:  true,
			RegulatoryReference: "NISPOM 2-206",
		})
	}

	return indicators, nil
}
