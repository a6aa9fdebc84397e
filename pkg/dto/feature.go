package dto

import (
	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateFeatureRequest struct {
	ProjectID   uuid.UUID         `json:"project"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.WorkStatus `json:"status"`
}

// UpdateFeatureRequest accepts the derived figures only so that a request
// carrying them can be rejected.
type UpdateFeatureRequest struct {
	ProjectID     *uuid.UUID         `json:"project"`
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Status        *models.WorkStatus `json:"status"`
	EstimatedTime *decimal.Decimal   `json:"estimated_time"`
	Cost          *decimal.Decimal   `json:"cost"`
}

func (r UpdateFeatureRequest) Fields() []string {
	return present(map[string]bool{
		access.FieldProject:       r.ProjectID != nil,
		access.FieldTitle:         r.Title != nil,
		access.FieldDescription:   r.Description != nil,
		access.FieldStatus:        r.Status != nil,
		access.FieldEstimatedTime: r.EstimatedTime != nil,
		access.FieldCost:          r.Cost != nil,
	})
}

type CreateFunctionRequest struct {
	FeatureID     uuid.UUID         `json:"feature"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Status        models.WorkStatus `json:"status"`
	DeveloperID   *uuid.UUID        `json:"developer"`
	EstimatedTime *decimal.Decimal  `json:"estimated_time"`
}

type UpdateFunctionRequest struct {
	FeatureID     *uuid.UUID         `json:"feature"`
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Status        *models.WorkStatus `json:"status"`
	DeveloperID   NullableUUID       `json:"developer"`
	EstimatedTime *decimal.Decimal   `json:"estimated_time"`
	Cost          *decimal.Decimal   `json:"cost"`
}

func (r UpdateFunctionRequest) Fields() []string {
	return present(map[string]bool{
		access.FieldFeature:       r.FeatureID != nil,
		access.FieldTitle:         r.Title != nil,
		access.FieldDescription:   r.Description != nil,
		access.FieldStatus:        r.Status != nil,
		access.FieldDeveloper:     r.DeveloperID.Set,
		access.FieldEstimatedTime: r.EstimatedTime != nil,
		access.FieldCost:          r.Cost != nil,
	})
}
