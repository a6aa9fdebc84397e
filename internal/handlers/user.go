package handlers

import (
	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService UserServiceInterface
	logger      *zap.Logger
}

func NewUserHandler(userService UserServiceInterface, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err, "user", "get user")
		return
	}

	_ = c.JSON(200, user)
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, actor.ID, req)
	if err != nil {
		respondError(c, h.logger, err, "user", "update user")
		return
	}

	_ = c.JSON(200, user)
}

func (h *UserHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !access.IsAdmin(actor) {
		c.Forbidden("not allowed to list users")
		return
	}
	role, ok := queryEnum(c, "role", models.Role.Valid)
	if !ok {
		return
	}

	users, err := h.userService.List(c.Request.Context(), actor, role)
	if err != nil {
		respondError(c, h.logger, err, "user", "list users")
		return
	}

	_ = c.JSON(200, users)
}

func (h *UserHandler) Create(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "user", "create user")
		return
	}

	_ = c.JSON(201, user)
}
