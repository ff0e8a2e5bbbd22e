// Package indicators evaluates ownership analyses against the FOCI risk
// indicator taxonomy.
//
// Each category (ownership, control, influence, technology transfer, ...) is
// an independent Evaluator behind one interface, collected in a Registry.
// New categories — export control, international agreements — plug in by
// registration without touching the scorer or orchestrator.
package indicators

import (
	"context"
	"fmt"

	entitymodels "turbofcl/internal/entity/models"
	"turbofcl/internal/foci/models"
	dErrors "turbofcl/pkg/domain-errors"
)

// Evaluator produces indicators for one category. Implementations must be
// pure: same entity and analysis in, same indicators out.
type Evaluator interface {
	Category() models.IndicatorCategory
	Evaluate(ctx context.Context, entity *entitymodels.Entity, analysis *models.OwnershipAnalysis) ([]models.FOCIIndicator, error)
}

// Registry runs evaluators in registration order, which makes the combined
// indicator list deterministic for a given input.
type Registry struct {
	evaluators []Evaluator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry registers the four built-in categories with the given
// thresholds.
func NewDefaultRegistry(cfg Config) *Registry {
	r := NewRegistry()
	r.Register(&OwnershipEvaluator{cfg: cfg})
	r.Register(&ControlEvaluator{cfg: cfg})
	r.Register(&InfluenceEvaluator{cfg: cfg})
	r.Register(&TechnologyTransferEvaluator{cfg: cfg})
	return r
}

// Register appends an evaluator. Later registrations evaluate after earlier
// ones; registering the same category twice is allowed (both run).
func (r *Registry) Register(e Evaluator) {
	r.evaluators = append(r.evaluators, e)
}

// Evaluate runs every registered evaluator and concatenates the results.
func (r *Registry) Evaluate(ctx context.Context, entity *entitymodels.Entity, analysis *models.OwnershipAnalysis) ([]models.FOCIIndicator, error) {
	if entity == nil || analysis == nil {
		return nil, dErrors.New(dErrors.CodeComputation, "entity and analysis are required")
	}

	var all []models.FOCIIndicator
	for _, e := range r.evaluators {
		found, err := e.Evaluate(ctx, entity, analysis)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeComputation,
				fmt.Sprintf("evaluate %s indicators", e.Category()))
		}
		all = append(all, found...)
	}
	return all, nil
}
