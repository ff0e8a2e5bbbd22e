package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"turbofcl/internal/foci/models"
	id "turbofcl/pkg/domain"
	"turbofcl/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests and local development.
type InMemoryStore struct {
	mu          sync.RWMutex
	assessments map[id.AssessmentID]models.FOCIAssessment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{assessments: make(map[id.AssessmentID]models.FOCIAssessment)}
}

func (s *InMemoryStore) Create(_ context.Context, assessment *models.FOCIAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[assessment.ID]; ok {
		return sentinel.ErrConflict
	}
	s.assessments[assessment.ID] = *assessment
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, assessmentID id.AssessmentID) (*models.FOCIAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assessment, ok := s.assessments[assessmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &assessment, nil
}

func (s *InMemoryStore) FindRecentPassed(_ context.Context, entityID id.EntityID, assessmentType models.AssessmentType, since time.Time) (*models.FOCIAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *models.FOCIAssessment
	for _, assessment := range s.assessments {
		if assessment.EntityID != entityID ||
			assessment.Type != assessmentType ||
			assessment.ValidationStatus != models.ValidationPassed ||
			assessment.AssessmentDate.Before(since) {
			continue
		}
		candidate := assessment
		if newest == nil || candidate.AssessmentDate.After(newest.AssessmentDate) {
			newest = &candidate
		}
	}
	if newest == nil {
		return nil, sentinel.ErrNotFound
	}
	return newest, nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entityID id.EntityID) ([]models.FOCIAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.FOCIAssessment
	for _, assessment := range s.assessments {
		if assessment.EntityID == entityID {
			out = append(out, assessment)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AssessmentDate.After(out[j].AssessmentDate)
	})
	return out, nil
}

// Clear removes all assessments. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments = make(map[id.AssessmentID]models.FOCIAssessment)
}
