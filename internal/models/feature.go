package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkStatus is shared by features and functions.
type WorkStatus string

const (
	WorkStatusBacklog    WorkStatus = "backlog"
	WorkStatusSpecs      WorkStatus = "specs"
	WorkStatusInProgress WorkStatus = "in_progress"
	WorkStatusCompleted  WorkStatus = "completed"
	WorkStatusBlocked    WorkStatus = "blocked"
)

func (s WorkStatus) Valid() bool {
	switch s {
	case WorkStatusBacklog, WorkStatusSpecs, WorkStatusInProgress, WorkStatusCompleted, WorkStatusBlocked:
		return true
	}
	return false
}

// Feature cost and estimated time are sums over its functions and are
// computed on every read.
type Feature struct {
	ID            uuid.UUID       `json:"id"`
	ProjectID     uuid.UUID       `json:"project_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Status        WorkStatus      `json:"status"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedTime decimal.Decimal `json:"estimated_time"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Function cost is nil until it has both an estimate and a developer.
type Function struct {
	ID            uuid.UUID        `json:"id"`
	FeatureID     uuid.UUID        `json:"feature_id"`
	ProjectID     uuid.UUID        `json:"project_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Status        WorkStatus       `json:"status"`
	DeveloperID   *uuid.UUID       `json:"developer_id,omitempty"`
	EstimatedTime *decimal.Decimal `json:"estimated_time,omitempty"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
