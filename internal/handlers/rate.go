package handlers

import (
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type RateHandler struct {
	rateService RateServiceInterface
	logger      *zap.Logger
}

func NewRateHandler(rateService RateServiceInterface, logger *zap.Logger) *RateHandler {
	return &RateHandler{
		rateService: rateService,
		logger:      logger,
	}
}

func (h *RateHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	projectID, ok := queryUUID(c, "project")
	if !ok {
		return
	}

	rates, err := h.rateService.List(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, h.logger, err, "project rate", "list project rates")
		return
	}

	_ = c.JSON(200, rates)
}

func (h *RateHandler) Get(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "project rate")
	if !ok {
		return
	}

	rate, err := h.rateService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "project rate", "get project rate")
		return
	}

	_ = c.JSON(200, rate)
}

func (h *RateHandler) Create(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRateRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	rate, err := h.rateService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "project rate", "create project rate")
		return
	}

	_ = c.JSON(201, rate)
}

func (h *RateHandler) Update(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "project rate")
	if !ok {
		return
	}

	var req dto.UpdateProjectRateRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	rate, err := h.rateService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, h.logger, err, "project rate", "update project rate")
		return
	}

	_ = c.JSON(200, rate)
}

func (h *RateHandler) Delete(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "project rate")
	if !ok {
		return
	}

	if err := h.rateService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "project rate", "delete project rate")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "project rate deleted"})
}
