package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	entitymodels "turbofcl/internal/entity/models"
	entitystore "turbofcl/internal/entity/store"
	"turbofcl/internal/foci/indicators"
	"turbofcl/internal/foci/mitigation"
	"turbofcl/internal/foci/models"
	"turbofcl/internal/foci/scoring"
	focistore "turbofcl/internal/foci/store"
	"turbofcl/internal/foci/submission"
	"turbofcl/internal/foci/traversal"
	ownershipmodels "turbofcl/internal/ownership/models"
	ownershipstore "turbofcl/internal/ownership/store"
	id "turbofcl/pkg/domain"
	dErrors "turbofcl/pkg/domain-errors"
	"turbofcl/pkg/platform/audit"
	auditmemory "turbofcl/pkg/platform/audit/store/memory"
	"turbofcl/pkg/platform/tx"
	"turbofcl/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	entities    *entitystore.InMemory
	owners      *ownershipstore.InMemory
	assessments *focistore.InMemoryStore
	auditStore  *auditmemory.InMemoryStore
	service     *Service
	ctx         context.Context
	now         time.Time
	assessorID  id.AssessorID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.entities = entitystore.NewInMemory()
	s.owners = ownershipstore.NewInMemory()
	s.assessments = focistore.NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.assessorID = id.NewAssessorID()

	ctx := requestcontext.WithTime(context.Background(), s.now)
	ctx = requestcontext.WithAssessorID(ctx, s.assessorID)
	ctx = requestcontext.WithRequestID(ctx, "req-test-1")
	s.ctx = ctx

	s.service = s.buildService(s.assessments)
}

func (s *ServiceSuite) buildService(assessments focistore.Store) *Service {
	traverser, err := traversal.New(s.owners)
	s.Require().NoError(err)

	svc, err := New(
		s.entities,
		traverser,
		indicators.NewDefaultRegistry(indicators.DefaultConfig()),
		mitigation.New(mitigation.DefaultConfig()),
		scoring.New(scoring.DefaultConfig()),
		submission.New(),
		assessments,
		tx.NopRunner{},
		audit.NewPublisher(s.auditStore),
	)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) seedEntity(foreignPct int64) id.EntityID {
	entity := &entitymodels.Entity{
		ID:        id.NewEntityID(),
		Name:      "Test Contractor",
		CreatedAt: s.now.AddDate(-1, 0, 0),
	}
	s.entities.Put(context.Background(), entity)

	if foreignPct > 0 {
		s.owners.Add(context.Background(), ownershipmodels.OwnershipRelation{
			ID:                  id.NewRelationID(),
			OwnedEntityID:       entity.ID,
			OwnerName:           "Foreign Owner",
			OwnerType:           ownershipmodels.OwnerTypeCorporation,
			Citizenship:         []string{"DE"},
			OwnershipPercentage: decimal.NewFromInt(foreignPct),
			EffectiveDate:       s.now.AddDate(-1, 0, 0),
			IsForeign:           true,
			RelationshipType:    "equity",
		})
	}
	return entity.ID
}

func (s *ServiceSuite) auditActions(entityID id.EntityID) []string {
	events, err := s.auditStore.ListByEntity(context.Background(), entityID)
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

func (s *ServiceSuite) TestAssess() {
	s.Run("clean entity completes with no risk", func() {
		entityID := s.seedEntity(0)

		result, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentInitial})
		s.Require().NoError(err)
		s.Equal(models.RiskNone, result.RiskLevel)
		s.Equal(0, result.RiskScore)
		s.False(result.SubmissionRequired)
		s.Equal(models.ValidationPassed, result.ValidationStatus)
		s.Equal(s.assessorID, result.AssessorID)
		s.Equal(s.now, result.AssessmentDate)
		s.Equal(s.now.AddDate(0, 0, 365), result.NextReviewDate)

		stored, err := s.assessments.GetByID(s.ctx, result.ID)
		s.Require().NoError(err)
		s.Equal(result.ID, stored.ID)

		s.Contains(s.auditActions(entityID), string(audit.EventAssessmentCompleted))

		events, err := s.auditStore.ListByEntity(context.Background(), entityID)
		s.Require().NoError(err)
		for _, e := range events {
			if e.Action != string(audit.EventAssessmentCompleted) {
				continue
			}
			s.Equal("false", e.Metadata["submission_required"])
			s.Equal(string(models.UrgencyStandard), e.Metadata["submission_urgency"])
		}
	})

	s.Run("heavily foreign-owned entity is critical and needs submission", func() {
		entityID := s.seedEntity(60)

		result, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentInitial})
		s.Require().NoError(err)
		s.Equal(models.RiskCritical, result.RiskLevel)
		s.True(result.SubmissionRequired)
		s.Equal(models.UrgencyExpedited, result.SubmissionUrgency)
		s.NotEmpty(result.Indicators)
		s.NotEmpty(result.Mitigations)

		actions := s.auditActions(entityID)
		s.Contains(actions, string(audit.EventAssessmentCompleted))
		s.Contains(actions, string(audit.EventSubmissionRequired))

		events, err := s.auditStore.ListByEntity(context.Background(), entityID)
		s.Require().NoError(err)
		for _, e := range events {
			if e.Action != string(audit.EventAssessmentCompleted) {
				continue
			}
			s.Equal("true", e.Metadata["submission_required"])
			s.Equal(string(models.UrgencyExpedited), e.Metadata["submission_urgency"])
		}
	})

	s.Run("unknown assessment type is rejected", func() {
		entityID := s.seedEntity(0)
		_, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: "QUARTERLY"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown entity fails validation and records the failure", func() {
		missing := id.NewEntityID()
		_, err := s.service.Assess(s.ctx, AssessRequest{EntityID: missing, Type: models.AssessmentInitial})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(s.auditActions(missing), string(audit.EventAssessmentFailed))
	})

	s.Run("soft-deleted entity fails validation", func() {
		entityID := s.seedEntity(0)
		s.entities.SoftDelete(context.Background(), entityID, s.now)

		_, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentInitial})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("circular ownership fails structurally and persists nothing", func() {
		a := s.seedEntity(0)
		b := s.seedEntity(0)
		addCycle := func(owned, owner id.EntityID) {
			s.owners.Add(context.Background(), ownershipmodels.OwnershipRelation{
				ID:                  id.NewRelationID(),
				OwnedEntityID:       owned,
				OwnerEntityID:       &owner,
				OwnerName:           "Cycle Corp",
				OwnerType:           ownershipmodels.OwnerTypeCorporation,
				OwnershipPercentage: decimal.NewFromInt(50),
				EffectiveDate:       s.now.AddDate(-1, 0, 0),
				IsForeign:           true,
			})
		}
		addCycle(a, b)
		addCycle(b, a)

		_, err := s.service.Assess(s.ctx, AssessRequest{EntityID: a, Type: models.AssessmentInitial})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStructural))

		list, err := s.assessments.ListByEntity(s.ctx, a)
		s.Require().NoError(err)
		s.Empty(list)

		s.Contains(s.auditActions(a), string(audit.EventAssessmentFailed))
	})
}

func (s *ServiceSuite) TestRecencyCache() {
	s.Run("recent passed assessment of the same type is returned without recomputation", func() {
		entityID := s.seedEntity(60)

		first, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentAnnual})
		s.Require().NoError(err)

		// Remove the ownership data; a recomputation would now produce a
		// different result, so getting the same ID proves the cache hit.
		s.owners.Clear()

		laterCtx := requestcontext.WithTime(s.ctx, s.now.AddDate(0, 0, 10))
		second, err := s.service.Assess(laterCtx, AssessRequest{EntityID: entityID, Type: models.AssessmentAnnual})
		s.Require().NoError(err)
		s.Equal(first.ID, second.ID)

		s.Contains(s.auditActions(entityID), string(audit.EventAssessmentCacheHit))
	})

	s.Run("a different assessment type never reuses the cached record", func() {
		entityID := s.seedEntity(10)

		first, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentAnnual})
		s.Require().NoError(err)

		second, err := s.service.Assess(requestcontext.WithTime(s.ctx, s.now.AddDate(0, 0, 1)),
			AssessRequest{EntityID: entityID, Type: models.AssessmentTriggered})
		s.Require().NoError(err)
		s.NotEqual(first.ID, second.ID)
	})

	s.Run("force refresh bypasses the recency window", func() {
		entityID := s.seedEntity(60)

		first, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentAnnual})
		s.Require().NoError(err)

		laterCtx := requestcontext.WithTime(s.ctx, s.now.AddDate(0, 0, 10))
		second, err := s.service.Assess(laterCtx, AssessRequest{
			EntityID:     entityID,
			Type:         models.AssessmentAnnual,
			ForceRefresh: true,
		})
		s.Require().NoError(err)
		s.NotEqual(first.ID, second.ID)
	})

	s.Run("assessment outside the recency window is recomputed", func() {
		entityID := s.seedEntity(10)

		first, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentTriggered})
		s.Require().NoError(err)

		// Triggered window is 30 days.
		laterCtx := requestcontext.WithTime(s.ctx, s.now.AddDate(0, 0, 45))
		second, err := s.service.Assess(laterCtx, AssessRequest{EntityID: entityID, Type: models.AssessmentTriggered})
		s.Require().NoError(err)
		s.NotEqual(first.ID, second.ID)
	})
}

func (s *ServiceSuite) TestPersistenceFailure() {
	s.Run("store failure surfaces as storage failure with a failure event", func() {
		entityID := s.seedEntity(10)

		failing := s.buildService(failingAssessmentStore{})
		_, err := failing.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: models.AssessmentInitial})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStorage))
		s.Contains(s.auditActions(entityID), string(audit.EventAssessmentFailed))
	})
}

func (s *ServiceSuite) TestConcurrency() {
	s.Run("concurrent requests for one entity produce one persisted assessment", func() {
		entityID := s.seedEntity(30)

		const goroutines = 16
		var wg sync.WaitGroup
		results := make([]*models.FOCIAssessment, goroutines)
		errs := make([]error, goroutines)

		for i := range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = s.service.Assess(s.ctx, AssessRequest{
					EntityID: entityID,
					Type:     models.AssessmentInitial,
				})
			}()
		}
		wg.Wait()

		for i := range goroutines {
			s.Require().NoError(errs[i])
			s.Equal(results[0].ID, results[i].ID)
		}

		list, err := s.assessments.ListByEntity(s.ctx, entityID)
		s.Require().NoError(err)
		s.Len(list, 1)
	})
}

func (s *ServiceSuite) TestReviewIntervals() {
	cases := []struct {
		assessmentType models.AssessmentType
		days           int
	}{
		{models.AssessmentInitial, 365},
		{models.AssessmentAnnual, 365},
		{models.AssessmentTriggered, 180},
		{models.AssessmentChangeInOwnership, 90},
	}
	for _, tc := range cases {
		s.Run(string(tc.assessmentType), func() {
			entityID := s.seedEntity(0)
			result, err := s.service.Assess(s.ctx, AssessRequest{EntityID: entityID, Type: tc.assessmentType})
			s.Require().NoError(err)
			s.Equal(s.now.AddDate(0, 0, tc.days), result.NextReviewDate)
		})
	}
}

// failingAssessmentStore simulates an unavailable assessment store.
type failingAssessmentStore struct{}

func (failingAssessmentStore) Create(context.Context, *models.FOCIAssessment) error {
	return dErrors.New(dErrors.CodeStorage, "assessment store unavailable")
}

func (failingAssessmentStore) GetByID(context.Context, id.AssessmentID) (*models.FOCIAssessment, error) {
	return nil, dErrors.New(dErrors.CodeStorage, "assessment store unavailable")
}

func (failingAssessmentStore) FindRecentPassed(context.Context, id.EntityID, models.AssessmentType, time.Time) (*models.FOCIAssessment, error) {
	return nil, dErrors.New(dErrors.CodeStorage, "assessment store unavailable")
}

func (failingAssessmentStore) ListByEntity(context.Context, id.EntityID) ([]models.FOCIAssessment, error) {
	return nil, dErrors.New(dErrors.CodeStorage, "assessment store unavailable")
}
