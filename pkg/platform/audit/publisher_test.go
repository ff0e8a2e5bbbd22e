package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "turbofcl/pkg/domain"
	"turbofcl/pkg/platform/audit"
	"turbofcl/pkg/platform/audit/store/memory"
)

type PublisherSuite struct {
	suite.Suite
	store     *memory.InMemoryStore
	publisher *audit.Publisher
	ctx       context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = memory.NewInMemoryStore()
	s.publisher = audit.NewPublisher(s.store)
	s.ctx = context.Background()
}

func (s *PublisherSuite) TestEmit() {
	s.Run("event is persisted with its derived category", func() {
		entityID := id.NewEntityID()
		err := s.publisher.Emit(s.ctx, audit.Event{
			EntityID:  entityID,
			Action:    string(audit.EventAssessmentCompleted),
			Timestamp: time.Now(),
			RiskLevel: "LOW",
		})
		s.Require().NoError(err)

		events, err := s.store.ListByEntity(s.ctx, entityID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.CategoryCompliance, events[0].Category)
	})

	s.Run("failure events are security category", func() {
		entityID := id.NewEntityID()
		err := s.publisher.Emit(s.ctx, audit.Event{
			EntityID: entityID,
			Action:   string(audit.EventAssessmentFailed),
		})
		s.Require().NoError(err)

		events, _ := s.store.ListByEntity(s.ctx, entityID)
		s.Require().Len(events, 1)
		s.Equal(audit.CategorySecurity, events[0].Category)
	})

	s.Run("unknown actions default to operations", func() {
		entityID := id.NewEntityID()
		err := s.publisher.Emit(s.ctx, audit.Event{
			EntityID: entityID,
			Action:   "something_new",
		})
		s.Require().NoError(err)

		events, _ := s.store.ListByEntity(s.ctx, entityID)
		s.Require().Len(events, 1)
		s.Equal(audit.CategoryOperations, events[0].Category)
	})

	s.Run("missing action is rejected", func() {
		err := s.publisher.Emit(s.ctx, audit.Event{EntityID: id.NewEntityID()})
		s.Error(err)
	})

	s.Run("missing entity is rejected", func() {
		err := s.publisher.Emit(s.ctx, audit.Event{Action: "x"})
		s.Error(err)
	})

	s.Run("store failure fails closed", func() {
		failing := audit.NewPublisher(failingStore{})
		err := failing.Emit(s.ctx, audit.Event{
			EntityID: id.NewEntityID(),
			Action:   string(audit.EventAssessmentCompleted),
		})
		s.Error(err)
	})
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("audit store unavailable")
}

func (failingStore) ListByEntity(context.Context, id.EntityID) ([]audit.Event, error) {
	return nil, errors.New("audit store unavailable")
}
