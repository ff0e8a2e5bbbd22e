// Package service orchestrates the FOCI assessment pipeline: ownership
// traversal, indicator evaluation, mitigation recommendation, risk scoring,
// and submission requirements, persisted atomically with the audit trail.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	entitymodels "turbofcl/internal/entity/models"
	entitystore "turbofcl/internal/entity/store"
	"turbofcl/internal/foci/indicators"
	"turbofcl/internal/foci/locks"
	"turbofcl/internal/foci/metrics"
	"turbofcl/internal/foci/mitigation"
	"turbofcl/internal/foci/models"
	"turbofcl/internal/foci/scoring"
	"turbofcl/internal/foci/store"
	"turbofcl/internal/foci/submission"
	"turbofcl/internal/foci/traversal"
	id "turbofcl/pkg/domain"
	dErrors "turbofcl/pkg/domain-errors"
	"turbofcl/pkg/platform/audit"
	"turbofcl/pkg/platform/sentinel"
	"turbofcl/pkg/platform/tx"
	"turbofcl/pkg/requestcontext"
)

// recencyWindows maps each assessment type to how long a prior PASSED
// assessment of the same type stays reusable.
var recencyWindows = map[models.AssessmentType]time.Duration{
	models.AssessmentInitial:           90 * 24 * time.Hour,
	models.AssessmentAnnual:            330 * 24 * time.Hour,
	models.AssessmentTriggered:         30 * 24 * time.Hour,
	models.AssessmentChangeInOwnership: 60 * 24 * time.Hour,
}

// reviewIntervals maps each assessment type to the next scheduled review.
var reviewIntervals = map[models.AssessmentType]time.Duration{
	models.AssessmentInitial:           365 * 24 * time.Hour,
	models.AssessmentAnnual:            365 * 24 * time.Hour,
	models.AssessmentTriggered:         180 * 24 * time.Hour,
	models.AssessmentChangeInOwnership: 90 * 24 * time.Hour,
}

// AuthorityChecker decides whether an assessor may assess an entity.
type AuthorityChecker interface {
	CanAssess(ctx context.Context, assessorID id.AssessorID, entityID id.EntityID) error
}

// PermitAll allows every assessor. Default until an authorization backend is
// wired in.
type PermitAll struct{}

func (PermitAll) CanAssess(context.Context, id.AssessorID, id.EntityID) error { return nil }

// AssessRequest is the input to one assessment run. ForceRefresh bypasses the
// recency window and always runs the pipeline.
type AssessRequest struct {
	EntityID     id.EntityID
	Type         models.AssessmentType
	ForceRefresh bool
}

// Service runs FOCI assessments.
type Service struct {
	entities    entitystore.Store
	traverser   *traversal.Traverser
	registry    *indicators.Registry
	recommender *mitigation.Recommender
	scorer      *scoring.Scorer
	submissions *submission.Calculator
	assessments store.Store
	runner      tx.Runner
	audit       *audit.Publisher

	authority AuthorityChecker
	locker    locks.Locker
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	// group deduplicates concurrent requests for the same entity within
	// this process; the locker covers other instances.
	group singleflight.Group
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuthorityChecker(checker AuthorityChecker) Option {
	return func(s *Service) { s.authority = checker }
}

func WithLocker(locker locks.Locker) Option {
	return func(s *Service) { s.locker = locker }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(
	entities entitystore.Store,
	traverser *traversal.Traverser,
	registry *indicators.Registry,
	recommender *mitigation.Recommender,
	scorer *scoring.Scorer,
	submissions *submission.Calculator,
	assessments store.Store,
	runner tx.Runner,
	auditPublisher *audit.Publisher,
	opts ...Option,
) (*Service, error) {
	if entities == nil {
		return nil, fmt.Errorf("entity store is required")
	}
	if traverser == nil {
		return nil, fmt.Errorf("traverser is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("indicator registry is required")
	}
	if recommender == nil {
		return nil, fmt.Errorf("mitigation recommender is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if submissions == nil {
		return nil, fmt.Errorf("submission calculator is required")
	}
	if assessments == nil {
		return nil, fmt.Errorf("assessment store is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if auditPublisher == nil {
		return nil, fmt.Errorf("audit publisher is required")
	}

	svc := &Service{
		entities:    entities,
		traverser:   traverser,
		registry:    registry,
		recommender: recommender,
		scorer:      scorer,
		submissions: submissions,
		assessments: assessments,
		runner:      runner,
		audit:       auditPublisher,
		authority:   PermitAll{},
		locker:      locks.NewInMemoryLocker(),
		logger:      slog.Default(),
		tracer:      otel.Tracer("turbofcl/foci"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Assess runs the full pipeline for one entity. Concurrent calls for the
// same entity collapse onto a single run; a run already in flight elsewhere
// surfaces as a conflict.
func (s *Service) Assess(ctx context.Context, req AssessRequest) (*models.FOCIAssessment, error) {
	if !req.Type.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unsupported assessment type %q", req.Type)
	}
	if req.EntityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "entity id is required")
	}

	result, err, _ := s.group.Do(req.EntityID.String(), func() (any, error) {
		return s.assess(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.FOCIAssessment), nil
}

func (s *Service) assess(ctx context.Context, req AssessRequest) (*models.FOCIAssessment, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "foci.assess",
		trace.WithAttributes(
			attribute.String("foci.entity_id", req.EntityID.String()),
			attribute.String("foci.assessment_type", string(req.Type)),
		))
	defer span.End()

	assessorID := requestcontext.AssessorID(ctx)
	now := requestcontext.Now(ctx)

	entity, err := s.entities.Get(ctx, req.EntityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.failed(ctx, req, dErrors.New(dErrors.CodeValidation, "business entity not found"))
		}
		return nil, s.failed(ctx, req, dErrors.Wrap(err, dErrors.CodeStorage, "load business entity"))
	}

	if err := s.authority.CanAssess(ctx, assessorID, req.EntityID); err != nil {
		return nil, s.failed(ctx, req, dErrors.Wrap(err, dErrors.CodeValidation, "assessor not authorized for entity"))
	}

	if !req.ForceRefresh {
		if cached, ok := s.recentAssessment(ctx, req, now); ok {
			return cached, nil
		}
	}

	if err := s.locker.Acquire(ctx, req.EntityID); err != nil {
		if errors.Is(err, sentinel.ErrLocked) {
			return nil, dErrors.New(dErrors.CodeConflict, "assessment already in progress for entity")
		}
		return nil, s.failed(ctx, req, dErrors.Wrap(err, dErrors.CodeStorage, "acquire assessment lock"))
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), req.EntityID); err != nil {
			s.logger.Warn("failed to release assessment lock",
				"entity_id", req.EntityID.String(), "error", err)
		}
	}()

	assessment, err := s.runPipeline(ctx, req, entity, assessorID, now)
	if err != nil {
		return nil, s.failed(ctx, req, err)
	}

	s.metrics.IncrementOutcome(string(assessment.Type), string(assessment.RiskLevel))
	s.metrics.ObserveAssessLatency(time.Since(started))

	s.logger.Info("FOCI assessment completed",
		"entity_id", req.EntityID.String(),
		"assessment_id", assessment.ID.String(),
		"risk_level", string(assessment.RiskLevel),
		"risk_score", assessment.RiskScore,
		"submission_required", assessment.SubmissionRequired,
	)
	return assessment, nil
}

func (s *Service) runPipeline(ctx context.Context, req AssessRequest, entity *entitymodels.Entity, assessorID id.AssessorID, now time.Time) (*models.FOCIAssessment, error) {
	traverseStart := time.Now()
	ctx, traverseSpan := s.tracer.Start(ctx, "foci.traverse")
	analysis, err := s.traverser.Traverse(ctx, req.EntityID)
	traverseSpan.End()
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTraversalLatency(time.Since(traverseStart))
	s.metrics.ObserveTraversalFetches(analysis.TotalRelations)

	ctx, evalSpan := s.tracer.Start(ctx, "foci.evaluate_indicators")
	indicatorList, err := s.registry.Evaluate(ctx, entity, analysis)
	evalSpan.End()
	if err != nil {
		return nil, err
	}

	measures := s.recommender.Recommend(analysis, indicatorList)
	risk := s.scorer.Score(analysis, indicatorList, measures)
	requirements := s.submissions.Requirements(risk, indicatorList)

	assessment := &models.FOCIAssessment{
		ID:                 id.NewAssessmentID(),
		EntityID:           req.EntityID,
		Type:               req.Type,
		RiskScore:          risk.RiskScore,
		RiskLevel:          risk.RiskLevel,
		ConfidenceLevel:    risk.ConfidenceLevel,
		SubmissionRequired: requirements.Required,
		SubmissionUrgency:  requirements.Urgency,
		AssessmentDate:     now,
		AssessorID:         assessorID,
		NextReviewDate:     now.Add(reviewIntervals[req.Type]),
		ValidationStatus:   models.ValidationPassed,
		Indicators:         indicatorList,
		Mitigations:        measures,
	}

	ctx, persistSpan := s.tracer.Start(ctx, "foci.persist")
	defer persistSpan.End()
	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.assessments.Create(txCtx, assessment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorage, "persist assessment")
		}
		event := audit.Event{
			Timestamp:    now,
			EntityID:     req.EntityID,
			AssessmentID: assessment.ID,
			Action:       string(audit.EventAssessmentCompleted),
			RiskLevel:    string(risk.RiskLevel),
			RequestID:    requestcontext.RequestID(txCtx),
			ActorID:      assessorID.String(),
			Metadata: map[string]string{
				"assessment_type":     string(req.Type),
				"risk_score":          fmt.Sprintf("%d", risk.RiskScore),
				"indicators":          fmt.Sprintf("%d", len(indicatorList)),
				"mitigations":         fmt.Sprintf("%d", len(measures)),
				"submission_required": fmt.Sprintf("%t", requirements.Required),
				"submission_urgency":  string(requirements.Urgency),
			},
		}
		if err := s.audit.Emit(txCtx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorage, "record completion audit event")
		}
		if requirements.Required {
			submissionEvent := audit.Event{
				Timestamp:    now,
				EntityID:     req.EntityID,
				AssessmentID: assessment.ID,
				Action:       string(audit.EventSubmissionRequired),
				RiskLevel:    string(risk.RiskLevel),
				RequestID:    requestcontext.RequestID(txCtx),
				ActorID:      assessorID.String(),
				Metadata: map[string]string{
					"urgency":               string(requirements.Urgency),
					"estimated_review_time": requirements.EstimatedReviewTime,
				},
			}
			if err := s.audit.Emit(txCtx, submissionEvent); err != nil {
				return dErrors.Wrap(err, dErrors.CodeStorage, "record submission audit event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

// recentAssessment returns a prior PASSED assessment of the same type inside
// the recency window, recording the cache hit when one is found.
func (s *Service) recentAssessment(ctx context.Context, req AssessRequest, now time.Time) (*models.FOCIAssessment, bool) {
	cutoff := now.Add(-recencyWindows[req.Type])
	cached, err := s.assessments.FindRecentPassed(ctx, req.EntityID, req.Type, cutoff)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.Warn("recency lookup failed, running fresh assessment",
				"entity_id", req.EntityID.String(), "error", err)
		}
		return nil, false
	}

	s.metrics.IncrementCacheHit(string(req.Type))
	event := audit.Event{
		Timestamp:    now,
		EntityID:     req.EntityID,
		AssessmentID: cached.ID,
		Action:       string(audit.EventAssessmentCacheHit),
		RiskLevel:    string(cached.RiskLevel),
		RequestID:    requestcontext.RequestID(ctx),
		ActorID:      requestcontext.AssessorID(ctx).String(),
		Metadata: map[string]string{
			"assessment_type": string(req.Type),
		},
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		// Operational event only; the cached result is still authoritative.
		s.logger.Warn("failed to record cache hit audit event",
			"entity_id", req.EntityID.String(), "error", err)
	}

	s.logger.Info("returning recent FOCI assessment",
		"entity_id", req.EntityID.String(),
		"assessment_id", cached.ID.String(),
		"assessed_at", cached.AssessmentDate,
	)
	return cached, true
}

// failed records the failure audit event and metrics, then returns the error
// unchanged so callers see the original code.
func (s *Service) failed(ctx context.Context, req AssessRequest, cause error) error {
	code := dErrors.CodeOf(cause)
	s.metrics.IncrementFailure(string(code))

	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		EntityID:  req.EntityID,
		Action:    string(audit.EventAssessmentFailed),
		Reason:    string(code),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   requestcontext.AssessorID(ctx).String(),
		Metadata: map[string]string{
			"assessment_type": string(req.Type),
			"error":           cause.Error(),
		},
	}
	if err := s.audit.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to record assessment failure audit event",
			"entity_id", req.EntityID.String(), "error", err)
	}

	s.logger.Error("FOCI assessment failed",
		"entity_id", req.EntityID.String(),
		"assessment_type", string(req.Type),
		"code", string(code),
		"error", cause,
	)
	return cause
}

// GetByID returns one assessment with its indicators and mitigations.
func (s *Service) GetByID(ctx context.Context, assessmentID id.AssessmentID) (*models.FOCIAssessment, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "assessment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "load assessment")
	}
	return assessment, nil
}

// LatestByEntity returns the newest assessment for an entity.
func (s *Service) LatestByEntity(ctx context.Context, entityID id.EntityID) (*models.FOCIAssessment, error) {
	list, err := s.assessments.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "list assessments")
	}
	if len(list) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no assessments for entity")
	}
	return &list[0], nil
}
