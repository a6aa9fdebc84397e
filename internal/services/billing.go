package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/render"
	"github.com/dimitrije/internal-ops/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BillingService struct {
	db          *database.DB
	renderer    render.Renderer
	store       storage.Store
	companyName string
}

func NewBillingService(db *database.DB, renderer render.Renderer, store storage.Store, companyName string) *BillingService {
	return &BillingService{
		db:          db,
		renderer:    renderer,
		store:       store,
		companyName: companyName,
	}
}

// claimQuery moves the client's approved, unbilled logs in the range to
// processed and returns what is needed to price them. Rows locked by a
// concurrent run are skipped, so each log is claimed at most once.
const claimQuery = `
	WITH claimable AS (
		SELECT w.id
		FROM work_logs w
		JOIN functions fn ON fn.id = w.function_id
		JOIN features f ON f.id = fn.feature_id
		JOIN projects p ON p.id = f.project_id
		WHERE p.client_id = $1
			AND w.billed_status = 'unbilled'
			AND w.status = 'approved'
			AND w.date_logged BETWEEN $2 AND $3
		FOR UPDATE OF w SKIP LOCKED
	)
	UPDATE work_logs w
	SET billed_status = 'processed', processed_date = CURRENT_DATE, updated_at = NOW()
	FROM functions fn
	JOIN features f ON f.id = fn.feature_id
	JOIN projects p ON p.id = f.project_id
	WHERE fn.id = w.function_id AND w.id IN (SELECT id FROM claimable)
	RETURNING w.id, w.developer_id, w.date_logged, w.hours_worked,
		COALESCE(NULLIF(w.description, ''), fn.title), p.id, p.title`

type claimedLog struct {
	id           uuid.UUID
	developerID  uuid.UUID
	dateLogged   time.Time
	hours        decimal.Decimal
	description  string
	projectID    uuid.UUID
	projectTitle string
}

// ValidateRequest checks a billing request before it is queued.
func (s *BillingService) ValidateRequest(ctx context.Context, clientID uuid.UUID, start, end time.Time) error {
	if end.Before(start) {
		return invalid("end_date", "must not be before start_date")
	}
	_, err := s.loadClient(ctx, s.db.Pool, clientID)
	return err
}

func (s *BillingService) loadClient(ctx context.Context, q database.Querier, clientID uuid.UUID) (*models.User, error) {
	client, err := scanUser(q.QueryRow(ctx, userSelect+` WHERE u.id = $1`, clientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, invalid("client", "does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client.Role != models.RoleClient {
		return nil, invalid("client", "must reference a client user")
	}
	return client, nil
}

// GenerateInvoice bills a client's approved work logged between start and
// end inclusive. The whole run is one transaction: either exactly one
// invoice exists afterwards and every claimed log is billed, or nothing
// changed. A range with nothing left to bill yields an invoice of zero.
func (s *BillingService) GenerateInvoice(ctx context.Context, actor access.Actor, clientID uuid.UUID, start, end time.Time) (*models.Invoice, error) {
	if err := access.Authorize(actor, access.ActionGenerate, access.Target{Resource: access.ResourceInvoice, ClientID: clientID}).Permit(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, invalid("end_date", "must not be before start_date")
	}

	inv := &models.Invoice{
		ID:       uuid.New(),
		ClientID: &clientID,
		Status:   models.InvoiceStatusPending,
		FromDate: &start,
		ToDate:   &end,
	}
	var documentKey string

	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		client, err := s.loadClient(ctx, tx, clientID)
		if err != nil {
			return err
		}

		claimed, err := s.claim(ctx, tx, clientID, start, end)
		if err != nil {
			return err
		}

		inv.LineItems = make([]models.LineItem, 0, len(claimed))
		inv.Amount = decimal.Zero
		for i, log := range claimed {
			rate, err := resolveRate(ctx, tx, log.projectID, log.developerID)
			if err != nil {
				return fmt.Errorf("work log %s: %w", log.id, err)
			}
			cost := log.hours.Mul(rate).Round(2)
			workLogID, projectID := log.id, log.projectID
			inv.LineItems = append(inv.LineItems, models.LineItem{
				ID:           uuid.New(),
				InvoiceID:    inv.ID,
				WorkLogID:    &workLogID,
				ProjectID:    &projectID,
				ProjectTitle: log.projectTitle,
				Description:  log.description,
				Hours:        log.hours,
				Rate:         rate,
				Cost:         cost,
				Position:     i + 1,
			})
			inv.Amount = inv.Amount.Add(cost)
		}

		inv.GeneratedDate = today()
		documentKey, err = s.publish(ctx, inv, client)
		if err != nil {
			return err
		}
		inv.DocumentRef = &documentKey

		err = tx.QueryRow(ctx, `
			INSERT INTO invoices (id, client_id, amount, status, from_date, to_date, generated_date, document_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at
		`, inv.ID, clientID, inv.Amount, inv.Status, start, end, inv.GeneratedDate, documentKey).Scan(&inv.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		for _, li := range inv.LineItems {
			_, err := tx.Exec(ctx, `
				INSERT INTO invoice_line_items (id, invoice_id, work_log_id, project_id, project_title, description, hours, rate, cost, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, li.ID, li.InvoiceID, li.WorkLogID, li.ProjectID, li.ProjectTitle, li.Description, li.Hours, li.Rate, li.Cost, li.Position)
			if err != nil {
				return fmt.Errorf("failed to create line item: %w", err)
			}
		}
		if err := recordHistory(ctx, tx, access.ResourceInvoice, inv.ID, models.HistoryCreate, actor.ID); err != nil {
			return err
		}

		if len(claimed) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(claimed))
		for i, log := range claimed {
			ids[i] = log.id
		}
		_, err = tx.Exec(ctx, `
			UPDATE work_logs SET billed_status = 'billed', billed_date = CURRENT_DATE, invoice_id = $1, updated_at = NOW()
			WHERE id = ANY($2)
		`, inv.ID, ids)
		if err != nil {
			return fmt.Errorf("failed to mark work logs billed: %w", err)
		}
		return recordBilledHistory(ctx, tx, inv.ID, actor.ID)
	})
	if err != nil {
		if documentKey != "" {
			_ = s.store.Delete(context.WithoutCancel(ctx), documentKey)
		}
		return nil, err
	}
	return inv, nil
}

func (s *BillingService) claim(ctx context.Context, tx pgx.Tx, clientID uuid.UUID, start, end time.Time) ([]claimedLog, error) {
	rows, err := tx.Query(ctx, claimQuery, clientID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to claim work logs: %w", err)
	}
	defer rows.Close()

	var claimed []claimedLog
	for rows.Next() {
		var c claimedLog
		if err := rows.Scan(&c.id, &c.developerID, &c.dateLogged, &c.hours, &c.description, &c.projectID, &c.projectTitle); err != nil {
			return nil, fmt.Errorf("failed to scan claimed work log: %w", err)
		}
		claimed = append(claimed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to claim work logs: %w", err)
	}

	sort.SliceStable(claimed, func(i, j int) bool {
		a, b := claimed[i], claimed[j]
		if a.projectTitle != b.projectTitle {
			return a.projectTitle < b.projectTitle
		}
		if !a.dateLogged.Equal(b.dateLogged) {
			return a.dateLogged.Before(b.dateLogged)
		}
		return a.id.String() < b.id.String()
	})
	return claimed, nil
}

// publish renders the invoice and stores the document, returning its key.
func (s *BillingService) publish(ctx context.Context, inv *models.Invoice, client *models.User) (string, error) {
	doc := render.Invoice{
		ID:            inv.ID,
		CompanyName:   s.companyName,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		FromDate:      *inv.FromDate,
		ToDate:        *inv.ToDate,
		GeneratedDate: inv.GeneratedDate,
		Total:         inv.Amount,
	}
	for _, li := range inv.LineItems {
		doc.Lines = append(doc.Lines, render.Line{
			ProjectTitle: li.ProjectTitle,
			Description:  li.Description,
			Hours:        li.Hours,
			Rate:         li.Rate,
			Cost:         li.Cost,
		})
	}

	rendered, err := s.renderer.Render(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	key := fmt.Sprintf("invoices/%s%s", inv.ID, rendered.Extension)
	if err := s.store.Put(ctx, key, rendered.Body, rendered.ContentType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return key, nil
}
