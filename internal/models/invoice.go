package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusDisputed InvoiceStatus = "disputed"
)

type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      *uuid.UUID      `json:"client_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        InvoiceStatus   `json:"status"`
	FromDate      *time.Time      `json:"from_date,omitempty"`
	ToDate        *time.Time      `json:"to_date,omitempty"`
	GeneratedDate time.Time       `json:"generated_date"`
	DocumentRef   *string         `json:"document_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	LineItems     []LineItem      `json:"line_items,omitempty"`
}

// LineItem is one priced work log on an invoice.
type LineItem struct {
	ID           uuid.UUID       `json:"id"`
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	WorkLogID    *uuid.UUID      `json:"work_log_id,omitempty"`
	ProjectID    *uuid.UUID      `json:"project_id,omitempty"`
	ProjectTitle string          `json:"project_title"`
	Description  string          `json:"description"`
	Hours        decimal.Decimal `json:"hours"`
	Rate         decimal.Decimal `json:"rate"`
	Cost         decimal.Decimal `json:"cost"`
	Position     int             `json:"position"`
}
