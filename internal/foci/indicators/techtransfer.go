package indicators

import (
	"context"
	"fmt"
	"strings"

	entitymodels "turbofcl/internal/entity/models"
	"turbofcl/internal/foci/models"
)

// TechnologyTransferEvaluator flags high-technology industry classifications
// that warrant a technology transfer review.
type TechnologyTransferEvaluator struct {
	cfg Config
}

func (e *TechnologyTransferEvaluator) Category() models.IndicatorCategory {
	return models.CategoryTechnologyTransfer
}

func (e *TechnologyTransferEvaluator) Evaluate(_ context.Context, entity *entitymodels.Entity, _ *models.OwnershipAnalysis) ([]models.FOCIIndicator, error) {
	var indicators []models.FOCIIndicator

	for _, code := range entity.ClassificationCodes {
		for _, prefix := range e.cfg.HighTechCodePrefixes {
			if strings.HasPrefix(code.Code, prefix) {
				indicators = append(indicators, models.FOCIIndicator{
					Category:    models.CategoryTechnologyTransfer,
					Severity:    models.SeverityMinor,
					Description: "High-technology industry classification requires technology transfer review",
					Evidence: []string{
						fmt.Sprintf("Classification code: %s - %s", code.Code, code.Description),
					},
					MitigationRequired:  false,
					RegulatoryReference: "NISPOM 2-207",
				})
				break
			}
		}
	}

	return indicators, nil
}
