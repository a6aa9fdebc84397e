package dto

import (
	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProjectRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Status       models.ProjectStatus `json:"status"`
	Priority     *models.Priority     `json:"priority"`
	StartDate    *Date                `json:"start_date"`
	EndDate      *Date                `json:"end_date"`
	ClientID     *uuid.UUID           `json:"client"`
	DeveloperIDs []uuid.UUID          `json:"developers"`
}

type UpdateProjectRequest struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	Status       *models.ProjectStatus `json:"status"`
	Priority     *models.Priority      `json:"priority"`
	StartDate    *Date                 `json:"start_date"`
	EndDate      *Date                 `json:"end_date"`
	ClientID     *uuid.UUID            `json:"client"`
	DeveloperIDs *[]uuid.UUID          `json:"developers"`
}

// Fields lists the fields present in the request.
func (r UpdateProjectRequest) Fields() []string {
	return present(map[string]bool{
		access.FieldTitle:       r.Title != nil,
		access.FieldDescription: r.Description != nil,
		access.FieldStatus:      r.Status != nil,
		access.FieldPriority:    r.Priority != nil,
		access.FieldStartDate:   r.StartDate != nil,
		access.FieldEndDate:     r.EndDate != nil,
		access.FieldClient:      r.ClientID != nil,
		access.FieldDevelopers:  r.DeveloperIDs != nil,
	})
}

type CreateProjectRateRequest struct {
	ProjectID   uuid.UUID       `json:"project"`
	DeveloperID uuid.UUID       `json:"developer"`
	Rate        decimal.Decimal `json:"rate"`
}

type UpdateProjectRateRequest struct {
	Rate *decimal.Decimal `json:"rate"`
}

func (r UpdateProjectRateRequest) Fields() []string {
	return present(map[string]bool{access.FieldRate: r.Rate != nil})
}
