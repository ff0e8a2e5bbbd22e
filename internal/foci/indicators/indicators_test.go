package indicators

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	entitymodels "turbofcl/internal/entity/models"
	"turbofcl/internal/foci/models"
	ownershipmodels "turbofcl/internal/ownership/models"
	id "turbofcl/pkg/domain"
	dErrors "turbofcl/pkg/domain-errors"
)

type IndicatorsSuite struct {
	suite.Suite
	registry *Registry
	entity   *entitymodels.Entity
	ctx      context.Context
}

func TestIndicatorsSuite(t *testing.T) {
	suite.Run(t, new(IndicatorsSuite))
}

func (s *IndicatorsSuite) SetupTest() {
	s.registry = NewDefaultRegistry(DefaultConfig())
	s.entity = &entitymodels.Entity{
		ID:   id.NewEntityID(),
		Name: "Test Contractor",
	}
	s.ctx = context.Background()
}

func analysisWithForeign(pct int64, relations ...models.RelationDetail) *models.OwnershipAnalysis {
	return &models.OwnershipAnalysis{
		EntityID:              id.NewEntityID(),
		TotalRelations:        len(relations),
		OwnershipTiers:        1,
		TotalForeignOwnership: decimal.NewFromInt(pct),
		Relations:             relations,
	}
}

func foreignRelation(name string, direct int64, ownerType ownershipmodels.OwnerType) models.RelationDetail {
	return models.RelationDetail{
		OwnerID:             "INDIVIDUAL",
		OwnerName:           name,
		OwnerType:           ownerType,
		DirectPercentage:    decimal.NewFromInt(direct),
		EffectivePercentage: decimal.NewFromInt(direct),
		IsForeign:           true,
	}
}

func bySeverity(indicators []models.FOCIIndicator, category models.IndicatorCategory) map[models.Severity]int {
	out := make(map[models.Severity]int)
	for _, ind := range indicators {
		if ind.Category == category {
			out[ind.Severity]++
		}
	}
	return out
}

func (s *IndicatorsSuite) TestOwnershipThresholds() {
	s.Run("below the monitoring threshold yields no ownership indicator", func() {
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysisWithForeign(4))
		s.Require().NoError(err)
		s.Empty(bySeverity(indicators, models.CategoryForeignOwnership))
	})

	s.Run("five percent yields a moderate monitoring indicator", func() {
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysisWithForeign(5))
		s.Require().NoError(err)
		counts := bySeverity(indicators, models.CategoryForeignOwnership)
		s.Equal(1, counts[models.SeverityModerate])
	})

	s.Run("ten percent yields a major mitigation indicator", func() {
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysisWithForeign(10))
		s.Require().NoError(err)
		counts := bySeverity(indicators, models.CategoryForeignOwnership)
		s.Equal(1, counts[models.SeverityMajor])

		for _, ind := range indicators {
			if ind.Severity == models.SeverityMajor {
				s.True(ind.MitigationRequired)
			}
		}
	})

	s.Run("twenty-five percent yields a critical indicator", func() {
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysisWithForeign(25))
		s.Require().NoError(err)
		counts := bySeverity(indicators, models.CategoryForeignOwnership)
		s.Equal(1, counts[models.SeverityCritical])
	})

	s.Run("concentrated single owner is flagged below the aggregate threshold", func() {
		// One 12% owner in an otherwise small aggregate: the aggregate rule
		// fires at major, and the concentration rule adds a moderate flag.
		rel := foreignRelation("Overseas Holding", 12, ownershipmodels.OwnerTypeCorporation)
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysisWithForeign(12, rel))
		s.Require().NoError(err)

		counts := bySeverity(indicators, models.CategoryForeignOwnership)
		s.Equal(1, counts[models.SeverityMajor])
		s.Equal(1, counts[models.SeverityModerate])
	})
}

func (s *IndicatorsSuite) TestControlSeverity() {
	candidate := func(pct int64) *models.OwnershipAnalysis {
		a := analysisWithForeign(pct)
		a.ControlCandidates = []models.ControlCandidate{{
			Owner:             foreignRelation("Controller", pct, ownershipmodels.OwnerTypeCorporation),
			ControlType:       models.ControlOwnership,
			ControlPercentage: decimal.NewFromInt(pct),
		}}
		return a
	}

	s.Run("majority control is critical", func() {
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, candidate(55))
		s.Require().NoError(err)
		counts := bySeverity(indicators, models.CategoryForeignControl)
		s.Equal(1, counts[models.SeverityCritical])
	})

	s.Run("blocking stake is major", func() {
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, candidate(30))
		s.Require().NoError(err)
		counts := bySeverity(indicators, models.CategoryForeignControl)
		s.Equal(1, counts[models.SeverityMajor])
	})

	s.Run("control indicators always require mitigation", func() {
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, candidate(15))
		s.Require().NoError(err)
		for _, ind := range indicators {
			if ind.Category == models.CategoryForeignControl {
				s.True(ind.MitigationRequired)
			}
		}
	})
}

func (s *IndicatorsSuite) TestInfluence() {
	s.Run("three foreign relationships suggest coordinated influence", func() {
		analysis := analysisWithForeign(9,
			foreignRelation("A", 3, ownershipmodels.OwnerTypeIndividual),
			foreignRelation("B", 3, ownershipmodels.OwnerTypeIndividual),
			foreignRelation("C", 3, ownershipmodels.OwnerTypeIndividual),
		)
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysis)
		s.Require().NoError(err)
		counts := bySeverity(indicators, models.CategoryForeignInfluence)
		s.Equal(1, counts[models.SeverityModerate])
	})

	s.Run("foreign government owner is critical at any stake size", func() {
		analysis := analysisWithForeign(1,
			foreignRelation("Sovereign Wealth Authority", 1, ownershipmodels.OwnerTypeGovernment),
		)
		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysis)
		s.Require().NoError(err)

		var found bool
		for _, ind := range indicators {
			if ind.Category == models.CategoryForeignInfluence && ind.Severity == models.SeverityCritical {
				found = true
				s.True(ind.MitigationRequired)
			}
		}
		s.True(found, "expected a critical government ownership indicator")
	})

	s.Run("domestic government owner is not flagged", func() {
		rel := foreignRelation("State Pension Board", 2, ownershipmodels.OwnerTypeGovernment)
		rel.IsForeign = false
		analysis := analysisWithForeign(0, rel)

		indicators, err := s.registry.Evaluate(s.ctx, s.entity, analysis)
		s.Require().NoError(err)
		s.Empty(bySeverity(indicators, models.CategoryForeignInfluence))
	})
}

func (s *IndicatorsSuite) TestTechnologyTransfer() {
	s.Run("high-technology classification codes are flagged", func() {
		entity := &entitymodels.Entity{
			ID:   id.NewEntityID(),
			Name: "Avionics Shop",
			ClassificationCodes: []entitymodels.ClassificationCode{
				{Code: "334511", Description: "Navigation instruments"},
				{Code: "541330", Description: "Engineering services"},
				{Code: "722511", Description: "Restaurants"},
			},
		}

		indicators, err := s.registry.Evaluate(s.ctx, entity, analysisWithForeign(0))
		s.Require().NoError(err)
		counts := bySeverity(indicators, models.CategoryTechnologyTransfer)
		s.Equal(2, counts[models.SeverityMinor])
	})
}

func (s *IndicatorsSuite) TestRegistry() {
	s.Run("nil inputs are rejected", func() {
		_, err := s.registry.Evaluate(s.ctx, nil, analysisWithForeign(0))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeComputation))
	})

	s.Run("custom evaluator runs after the built-ins", func() {
		registry := NewDefaultRegistry(DefaultConfig())
		registry.Register(stubEvaluator{category: "EXPORT_CONTROL"})

		indicators, err := registry.Evaluate(s.ctx, s.entity, analysisWithForeign(0))
		s.Require().NoError(err)
		s.Require().NotEmpty(indicators)
		s.Equal(models.IndicatorCategory("EXPORT_CONTROL"), indicators[len(indicators)-1].Category)
	})

	s.Run("evaluator failure surfaces as computation failure", func() {
		registry := NewRegistry()
		registry.Register(stubEvaluator{err: errors.New("boom")})

		_, err := registry.Evaluate(s.ctx, s.entity, analysisWithForeign(0))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeComputation))
	})
}

type stubEvaluator struct {
	category models.IndicatorCategory
	err      error
}

func (e stubEvaluator) Category() models.IndicatorCategory { return e.category }

func (e stubEvaluator) Evaluate(context.Context, *entitymodels.Entity, *models.OwnershipAnalysis) ([]models.FOCIIndicator, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []models.FOCIIndicator{{
		Category: e.category,
		Severity: models.SeverityMinor,
	}}, nil
}
