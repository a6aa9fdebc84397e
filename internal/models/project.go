package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectStatusNegotiating ProjectStatus = "negotiating"
	ProjectStatusSecured     ProjectStatus = "secured"
	ProjectStatusInProgress  ProjectStatus = "in_progress"
	ProjectStatusCompleted   ProjectStatus = "completed"
	ProjectStatusOnHold      ProjectStatus = "on_hold"
	ProjectStatusCancelled   ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusNegotiating, ProjectStatusSecured, ProjectStatusInProgress,
		ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

// Priority runs from P0 (most urgent) to P3.
type Priority int16

const (
	PriorityP0 Priority = 0
	PriorityP1 Priority = 1
	PriorityP2 Priority = 2
	PriorityP3 Priority = 3
)

func (p Priority) Valid() bool {
	return p >= PriorityP0 && p <= PriorityP3
}

type Project struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       ProjectStatus `json:"status"`
	Priority     Priority      `json:"priority"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      *time.Time    `json:"end_date,omitempty"`
	ClientID     *uuid.UUID    `json:"client_id,omitempty"`
	DeveloperIDs []uuid.UUID   `json:"developer_ids"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ProjectRate is the hourly rate of one developer on one project.
type ProjectRate struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	DeveloperID uuid.UUID       `json:"developer_id"`
	Rate        decimal.Decimal `json:"rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
