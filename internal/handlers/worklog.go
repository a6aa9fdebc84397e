package handlers

import (
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type WorkLogHandler struct {
	workLogService WorkLogServiceInterface
	logger         *zap.Logger
}

func NewWorkLogHandler(workLogService WorkLogServiceInterface, logger *zap.Logger) *WorkLogHandler {
	return &WorkLogHandler{
		workLogService: workLogService,
		logger:         logger,
	}
}

func (h *WorkLogHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var filter services.WorkLogFilter
	if filter.ProjectID, ok = queryUUID(c, "project"); !ok {
		return
	}
	if filter.FunctionID, ok = queryUUID(c, "function"); !ok {
		return
	}
	if filter.DeveloperID, ok = queryUUID(c, "developer"); !ok {
		return
	}
	if filter.Status, ok = queryEnum(c, "status", models.WorkLogStatus.Valid); !ok {
		return
	}
	if filter.BilledStatus, ok = queryEnum(c, "billed_status", models.BilledStatus.Valid); !ok {
		return
	}

	logs, err := h.workLogService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.logger, err, "work log", "list work logs")
		return
	}

	_ = c.JSON(200, logs)
}

func (h *WorkLogHandler) Get(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "work log")
	if !ok {
		return
	}

	log, err := h.workLogService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "work log", "get work log")
		return
	}

	_ = c.JSON(200, log)
}

func (h *WorkLogHandler) Create(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateWorkLogRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	log, err := h.workLogService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "work log", "create work log")
		return
	}

	_ = c.JSON(201, log)
}

func (h *WorkLogHandler) Update(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "work log")
	if !ok {
		return
	}

	var req dto.UpdateWorkLogRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	log, err := h.workLogService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, h.logger, err, "work log", "update work log")
		return
	}

	_ = c.JSON(200, log)
}

// Delete always ends in 403. Work logs are never removed.
func (h *WorkLogHandler) Delete(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "work log")
	if !ok {
		return
	}

	if err := h.workLogService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "work log", "delete work log")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "work log deleted"})
}
