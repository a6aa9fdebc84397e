package handlers

import (
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type FeatureHandler struct {
	featureService FeatureServiceInterface
	logger         *zap.Logger
}

func NewFeatureHandler(featureService FeatureServiceInterface, logger *zap.Logger) *FeatureHandler {
	return &FeatureHandler{
		featureService: featureService,
		logger:         logger,
	}
}

func (h *FeatureHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var filter services.FeatureFilter
	if filter.Status, ok = queryEnum(c, "status", models.WorkStatus.Valid); !ok {
		return
	}
	if filter.ProjectID, ok = queryUUID(c, "project"); !ok {
		return
	}

	features, err := h.featureService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.logger, err, "feature", "list features")
		return
	}

	_ = c.JSON(200, features)
}

func (h *FeatureHandler) Get(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "feature")
	if !ok {
		return
	}

	feature, err := h.featureService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "feature", "get feature")
		return
	}

	_ = c.JSON(200, feature)
}

func (h *FeatureHandler) Create(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateFeatureRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	feature, err := h.featureService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "feature", "create feature")
		return
	}

	_ = c.JSON(201, feature)
}

func (h *FeatureHandler) Update(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "feature")
	if !ok {
		return
	}

	var req dto.UpdateFeatureRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	feature, err := h.featureService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, h.logger, err, "feature", "update feature")
		return
	}

	_ = c.JSON(200, feature)
}

func (h *FeatureHandler) Delete(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "feature")
	if !ok {
		return
	}

	if err := h.featureService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "feature", "delete feature")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "feature deleted"})
}
