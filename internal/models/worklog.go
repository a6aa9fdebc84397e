package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WorkLogStatus string

const (
	WorkLogStatusReview   WorkLogStatus = "review"
	WorkLogStatusApproved WorkLogStatus = "approved"
	WorkLogStatusRejected WorkLogStatus = "rejected"
)

func (s WorkLogStatus) Valid() bool {
	switch s {
	case WorkLogStatusReview, WorkLogStatusApproved, WorkLogStatusRejected:
		return true
	}
	return false
}

type BilledStatus string

const (
	BilledStatusUnbilled  BilledStatus = "unbilled"
	BilledStatusProcessed BilledStatus = "processed"
	BilledStatusBilled    BilledStatus = "billed"
)

func (s BilledStatus) Valid() bool {
	switch s {
	case BilledStatusUnbilled, BilledStatusProcessed, BilledStatusBilled:
		return true
	}
	return false
}

type WorkLog struct {
	ID            uuid.UUID       `json:"id"`
	FunctionID    uuid.UUID       `json:"function_id"`
	DeveloperID   uuid.UUID       `json:"developer_id"`
	ProjectID     uuid.UUID       `json:"project_id"`
	DateLogged    time.Time       `json:"date_logged"`
	HoursWorked   decimal.Decimal `json:"hours_worked"`
	Description   string          `json:"description"`
	Status        WorkLogStatus   `json:"status"`
	Reason        *string         `json:"reason,omitempty"`
	BilledStatus  BilledStatus    `json:"billed_status"`
	ProcessedDate *time.Time      `json:"processed_date,omitempty"`
	BilledDate    *time.Time      `json:"billed_date,omitempty"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
