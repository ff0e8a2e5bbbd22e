package mitigation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"turbofcl/internal/foci/models"
)

type RecommenderSuite struct {
	suite.Suite
	recommender *Recommender
}

func TestRecommenderSuite(t *testing.T) {
	suite.Run(t, new(RecommenderSuite))
}

func (s *RecommenderSuite) SetupTest() {
	s.recommender = New(DefaultConfig())
}

func analysisWith(pct int64) *models.OwnershipAnalysis {
	return &models.OwnershipAnalysis{TotalForeignOwnership: decimal.NewFromInt(pct)}
}

func indicator(category models.IndicatorCategory, severity models.Severity) models.FOCIIndicator {
	return models.FOCIIndicator{Category: category, Severity: severity}
}

func measureTypes(measures []models.MitigationMeasure) []models.MeasureType {
	var types []models.MeasureType
	for _, m := range measures {
		types = append(types, m.Type)
	}
	return types
}

func (s *RecommenderSuite) TestRecommend() {
	s.Run("no concerns yields no measures", func() {
		measures := s.recommender.Recommend(analysisWith(3), nil)
		s.Empty(measures)
	})

	s.Run("critical indicator requires a special security agreement", func() {
		measures := s.recommender.Recommend(analysisWith(3), []models.FOCIIndicator{
			indicator(models.CategoryForeignInfluence, models.SeverityCritical),
		})
		s.Equal([]models.MeasureType{models.MeasureSpecialSecurityAgreement}, measureTypes(measures))
	})

	s.Run("foreign ownership at twenty-five percent requires an SSA", func() {
		measures := s.recommender.Recommend(analysisWith(25), nil)
		s.Equal([]models.MeasureType{models.MeasureSpecialSecurityAgreement}, measureTypes(measures))
	})

	s.Run("major indicator with control concerns yields a proxy agreement", func() {
		measures := s.recommender.Recommend(analysisWith(12), []models.FOCIIndicator{
			indicator(models.CategoryForeignControl, models.SeverityMajor),
		})
		s.Equal([]models.MeasureType{models.MeasureProxyAgreement}, measureTypes(measures))
	})

	s.Run("major indicator without control concerns yields a board resolution", func() {
		measures := s.recommender.Recommend(analysisWith(12), []models.FOCIIndicator{
			indicator(models.CategoryForeignOwnership, models.SeverityMajor),
		})
		s.Equal([]models.MeasureType{models.MeasureBoardResolution}, measureTypes(measures))
	})

	s.Run("SSA supersedes the lesser instruments", func() {
		measures := s.recommender.Recommend(analysisWith(40), []models.FOCIIndicator{
			indicator(models.CategoryForeignControl, models.SeverityMajor),
		})
		s.Equal([]models.MeasureType{models.MeasureSpecialSecurityAgreement}, measureTypes(measures))
	})

	s.Run("technology transfer adds a TCP independently", func() {
		measures := s.recommender.Recommend(analysisWith(30), []models.FOCIIndicator{
			indicator(models.CategoryTechnologyTransfer, models.SeverityMinor),
		})
		s.Equal([]models.MeasureType{
			models.MeasureSpecialSecurityAgreement,
			models.MeasureTechnologyControlPlan,
		}, measureTypes(measures))
	})

	s.Run("technology transfer alone yields only a TCP", func() {
		measures := s.recommender.Recommend(analysisWith(2), []models.FOCIIndicator{
			indicator(models.CategoryTechnologyTransfer, models.SeverityMinor),
		})
		s.Equal([]models.MeasureType{models.MeasureTechnologyControlPlan}, measureTypes(measures))
	})

	s.Run("every measure carries its rollout profile", func() {
		measures := s.recommender.Recommend(analysisWith(30), []models.FOCIIndicator{
			indicator(models.CategoryTechnologyTransfer, models.SeverityMinor),
		})
		for _, m := range measures {
			s.NotEmpty(m.Description)
			s.NotEmpty(m.ImplementationTimeline)
			s.NotEmpty(m.ResponsibleParty)
			s.NotEmpty(m.MonitoringRequirements)
			s.NotEmpty(m.Effectiveness)
		}
	})
}
