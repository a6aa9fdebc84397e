package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RoutingKeyGenerateInvoice = "billing.generate_invoice"

	// Billing outcomes are published under billing.event.* for listeners.
	RoutingKeyBillingEvents    = "billing.event.*"
	RoutingKeyInvoiceGenerated = "billing.event.invoice_generated"
	RoutingKeyBillingFailed    = "billing.event.failed"

	DedupScopeBilling = "billing"
)

const dateLayout = "2006-01-02"

// GenerateInvoiceJob asks the worker to bill one client for a date range.
type GenerateInvoiceJob struct {
	JobID       uuid.UUID `json:"job_id"`
	ClientID    uuid.UUID `json:"client_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	RequestedBy uuid.UUID `json:"requested_by"`
}

func NewGenerateInvoiceJob(clientID uuid.UUID, start, end time.Time, requestedBy uuid.UUID) GenerateInvoiceJob {
	return GenerateInvoiceJob{
		JobID:       uuid.New(),
		ClientID:    clientID,
		StartDate:   start.Format(dateLayout),
		EndDate:     end.Format(dateLayout),
		RequestedBy: requestedBy,
	}
}

// Range parses the job's inclusive date range.
func (j GenerateInvoiceJob) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, j.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", j.StartDate, err)
	}
	end, err := time.Parse(dateLayout, j.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", j.EndDate, err)
	}
	return start, end, nil
}

func (j GenerateInvoiceJob) Validate() error {
	if j.JobID == uuid.Nil {
		return fmt.Errorf("job_id is required")
	}
	if j.ClientID == uuid.Nil {
		return fmt.Errorf("client_id is required")
	}
	if j.RequestedBy == uuid.Nil {
		return fmt.Errorf("requested_by is required")
	}
	_, _, err := j.Range()
	return err
}

// BillingEvent reports the outcome of one job.
type BillingEvent struct {
	JobID     uuid.UUID  `json:"job_id"`
	ClientID  uuid.UUID  `json:"client_id"`
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`
	Amount    string     `json:"amount,omitempty"`
	LineItems int        `json:"line_items"`
	Error     string     `json:"error,omitempty"`
}
