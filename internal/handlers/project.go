package handlers

import (
	"strconv"

	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService ProjectServiceInterface
	logger         *zap.Logger
}

func NewProjectHandler(projectService ProjectServiceInterface, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

func (h *ProjectHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var filter services.ProjectFilter
	if filter.Status, ok = queryEnum(c, "status", models.ProjectStatus.Valid); !ok {
		return
	}
	if filter.ClientID, ok = queryUUID(c, "client"); !ok {
		return
	}
	if raw := c.QueryParam("priority"); raw != "" {
		n, err := strconv.Atoi(raw)
		priority := models.Priority(n)
		if err != nil || !priority.Valid() {
			c.BadRequest("invalid priority filter")
			return
		}
		filter.Priority = &priority
	}
	filter.Search = c.QueryParam("search")

	projects, err := h.projectService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.logger, err, "project", "list projects")
		return
	}

	_ = c.JSON(200, projects)
}

func (h *ProjectHandler) Get(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "project", "get project")
		return
	}

	_ = c.JSON(200, project)
}

func (h *ProjectHandler) Create(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "project", "create project")
		return
	}

	_ = c.JSON(201, project)
}

func (h *ProjectHandler) Update(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, h.logger, err, "project", "update project")
		return
	}

	_ = c.JSON(200, project)
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "project", "delete project")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "project deleted"})
}
