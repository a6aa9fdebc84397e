package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InvoiceService is read-only. Invoices are written by BillingService.
type InvoiceService struct {
	db    *database.DB
	store storage.Store
}

func NewInvoiceService(db *database.DB, store storage.Store) *InvoiceService {
	return &InvoiceService{db: db, store: store}
}

type InvoiceFilter struct {
	ClientID *uuid.UUID
	Status   *models.InvoiceStatus
}

const invoiceSelect = `
	SELECT i.id, i.client_id, i.amount, i.status, i.from_date, i.to_date, i.generated_date,
		i.document_ref, i.created_at
	FROM invoices i`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID, &inv.ClientID, &inv.Amount, &inv.Status, &inv.FromDate, &inv.ToDate,
		&inv.GeneratedDate, &inv.DocumentRef, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceService) List(ctx context.Context, actor access.Actor, inf InvoiceFilter) ([]models.Invoice, error) {
	var f filter
	if inf.ClientID != nil {
		f.add("i.client_id = ?", *inf.ClientID)
	}
	if inf.Status != nil {
		f.add("i.status = ?", *inf.Status)
	}
	f.scope(access.ScopeFor(actor, access.ResourceInvoice))

	rows, err := s.db.Pool.Query(ctx, invoiceSelect+f.where()+` ORDER BY i.created_at DESC`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// Get returns the invoice with its line items.
func (s *InvoiceService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Invoice, error) {
	var f filter
	f.add("i.id = ?", id)
	f.scope(access.ScopeFor(actor, access.ResourceInvoice))

	inv, err := scanInvoice(s.db.Pool.QueryRow(ctx, invoiceSelect+f.where(), f.args...))
	if err != nil {
		return nil, notFound(err, "get invoice")
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT li.id, li.invoice_id, li.work_log_id, li.project_id, li.project_title,
			li.description, li.hours, li.rate, li.cost, li.position
		FROM invoice_line_items li
		WHERE li.invoice_id = $1
		ORDER BY li.position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	inv.LineItems = []models.LineItem{}
	for rows.Next() {
		var li models.LineItem
		err := rows.Scan(
			&li.ID, &li.InvoiceID, &li.WorkLogID, &li.ProjectID, &li.ProjectTitle,
			&li.Description, &li.Hours, &li.Rate, &li.Cost, &li.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		inv.LineItems = append(inv.LineItems, li)
	}
	return inv, rows.Err()
}

// Document opens the rendered file of a visible invoice.
func (s *InvoiceService) Document(ctx context.Context, actor access.Actor, id uuid.UUID) (io.ReadCloser, *models.Invoice, error) {
	inv, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if inv.DocumentRef == nil || s.store == nil {
		return nil, nil, ErrNotFound
	}
	body, err := s.store.Get(ctx, *inv.DocumentRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("invoice document %s: %w", *inv.DocumentRef, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to open invoice document: %w", err)
	}
	return body, inv, nil
}
