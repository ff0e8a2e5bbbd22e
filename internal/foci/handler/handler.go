// Package handler wires the FOCI assessment endpoints to the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"turbofcl/internal/foci/models"
	"turbofcl/internal/foci/service"
	id "turbofcl/pkg/domain"
	dErrors "turbofcl/pkg/domain-errors"
	"turbofcl/pkg/platform/httputil"
	"turbofcl/pkg/requestcontext"
)

// Service defines the assessment operations the handler needs.
type Service interface {
	Assess(ctx context.Context, req service.AssessRequest) (*models.FOCIAssessment, error)
	GetByID(ctx context.Context, assessmentID id.AssessmentID) (*models.FOCIAssessment, error)
	LatestByEntity(ctx context.Context, entityID id.EntityID) (*models.FOCIAssessment, error)
}

// Handler exposes FOCI assessment endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a FOCI handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts assessment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/foci-assessments", h.HandleAssess)
	r.Get("/foci-assessments/{assessmentID}", h.HandleGet)
	r.Get("/business-entities/{entityID}/foci-assessments/latest", h.HandleLatest)
}

// AssessRequest is the JSON body for POST /foci-assessments.
type AssessRequest struct {
	EntityID       string `json:"entity_id"`
	AssessmentType string `json:"assessment_type"`
	ForceRefresh   bool   `json:"force_refresh,omitempty"`
}

// HandleAssess handles POST /foci-assessments requests.
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[AssessRequest](w, r)
	if !ok {
		return
	}

	entityID, err := id.ParseEntityID(req.EntityID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entity_id"))
		return
	}

	result, err := h.service.Assess(ctx, service.AssessRequest{
		EntityID:     entityID,
		Type:         models.AssessmentType(req.AssessmentType),
		ForceRefresh: req.ForceRefresh,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "assessment request failed",
			"request_id", requestID,
			"entity_id", req.EntityID,
			"assessment_type", req.AssessmentType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assessment request completed",
		"request_id", requestID,
		"entity_id", req.EntityID,
		"assessment_id", result.ID.String(),
		"risk_level", string(result.RiskLevel),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleGet handles GET /foci-assessments/{assessmentID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	assessmentID, err := id.ParseAssessmentID(chi.URLParam(r, "assessmentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid assessment id"))
		return
	}

	assessment, err := h.service.GetByID(ctx, assessmentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assessment)
}

// HandleLatest handles GET /business-entities/{entityID}/foci-assessments/latest.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entity id"))
		return
	}

	assessment, err := h.service.LatestByEntity(ctx, entityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assessment)
}
