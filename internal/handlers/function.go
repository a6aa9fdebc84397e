package handlers

import (
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type FunctionHandler struct {
	functionService FunctionServiceInterface
	logger          *zap.Logger
}

func NewFunctionHandler(functionService FunctionServiceInterface, logger *zap.Logger) *FunctionHandler {
	return &FunctionHandler{
		functionService: functionService,
		logger:          logger,
	}
}

func (h *FunctionHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	featureID, ok := queryUUID(c, "feature")
	if !ok {
		return
	}

	functions, err := h.functionService.List(c.Request.Context(), actor, featureID)
	if err != nil {
		respondError(c, h.logger, err, "function", "list functions")
		return
	}

	_ = c.JSON(200, functions)
}

func (h *FunctionHandler) Get(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "function")
	if !ok {
		return
	}

	fn, err := h.functionService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "function", "get function")
		return
	}

	_ = c.JSON(200, fn)
}

func (h *FunctionHandler) Create(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateFunctionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	fn, err := h.functionService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "function", "create function")
		return
	}

	_ = c.JSON(201, fn)
}

// Update re-prices the function whenever its developer or estimate changes.
func (h *FunctionHandler) Update(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "function")
	if !ok {
		return
	}

	var req dto.UpdateFunctionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	fn, err := h.functionService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, h.logger, err, "function", "update function")
		return
	}

	_ = c.JSON(200, fn)
}

func (h *FunctionHandler) Delete(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "function")
	if !ok {
		return
	}

	if err := h.functionService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "function", "delete function")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "function deleted"})
}
