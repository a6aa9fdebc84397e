package dto

import "github.com/google/uuid"

type GenerateInvoiceRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Client    string `json:"client"`
}

// GenerateInvoiceResponse echoes the accepted request. The invoice itself
// shows up in the invoice list once the job has run.
type GenerateInvoiceResponse struct {
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Client    string    `json:"client"`
	JobID     uuid.UUID `json:"job_id"`
}
