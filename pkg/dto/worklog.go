package dto

import (
	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateWorkLogRequest never needs a developer; the author is the caller.
type CreateWorkLogRequest struct {
	FunctionID  uuid.UUID             `json:"function"`
	DeveloperID *uuid.UUID            `json:"developer"`
	DateLogged  *Date                 `json:"date_logged"`
	HoursWorked decimal.Decimal       `json:"hours_worked"`
	Description string                `json:"description"`
	Status      *models.WorkLogStatus `json:"status"`
	Reason      *string               `json:"reason"`
}

func (r CreateWorkLogRequest) Fields() []string {
	return present(map[string]bool{
		access.FieldDeveloper: r.DeveloperID != nil,
		access.FieldStatus:    r.Status != nil,
		access.FieldReason:    r.Reason != nil,
	})
}

type UpdateWorkLogRequest struct {
	FunctionID  *uuid.UUID            `json:"function"`
	DeveloperID *uuid.UUID            `json:"developer"`
	DateLogged  *Date                 `json:"date_logged"`
	HoursWorked *decimal.Decimal      `json:"hours_worked"`
	Description *string               `json:"description"`
	Status      *models.WorkLogStatus `json:"status"`
	Reason      *string               `json:"reason"`
}

func (r UpdateWorkLogRequest) Fields() []string {
	return present(map[string]bool{
		access.FieldFunction:    r.FunctionID != nil,
		access.FieldDeveloper:   r.DeveloperID != nil,
		"date_logged":           r.DateLogged != nil,
		access.FieldHoursWorked: r.HoursWorked != nil,
		access.FieldDescription: r.Description != nil,
		access.FieldStatus:      r.Status != nil,
		access.FieldReason:      r.Reason != nil,
	})
}
