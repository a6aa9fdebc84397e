package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/google/uuid"
)

var historyTables = map[access.Resource]string{
	access.ResourceProject:     "projects",
	access.ResourceProjectRate: "project_rates",
	access.ResourceFeature:     "features",
	access.ResourceFunction:    "functions",
	access.ResourceWorkLog:     "work_logs",
	access.ResourceInvoice:     "invoices",
}

// recordHistory snapshots the current row of entity id. It runs in the
// transaction of the change, and before the DELETE for deletes.
func recordHistory(ctx context.Context, q database.Querier, entity access.Resource, id uuid.UUID, action models.HistoryAction, changedBy uuid.UUID) error {
	table, ok := historyTables[entity]
	if !ok {
		return fmt.Errorf("no history kept for %s", entity)
	}
	_, err := q.Exec(ctx, `
		INSERT INTO history (entity, entity_id, action, changed_by, snapshot)
		SELECT $1, t.id, $2, $3, to_jsonb(t) FROM `+table+` t WHERE t.id = $4
	`, entity, action, changedBy, id)
	if err != nil {
		return fmt.Errorf("failed to record %s history: %w", entity, err)
	}
	return nil
}

// recordBilledHistory snapshots every work log billed on invoiceID.
func recordBilledHistory(ctx context.Context, q database.Querier, invoiceID, changedBy uuid.UUID) error {
	_, err := q.Exec(ctx, `
		INSERT INTO history (entity, entity_id, action, changed_by, snapshot)
		SELECT $1, w.id, $2, $3, to_jsonb(w) FROM work_logs w WHERE w.invoice_id = $4
	`, access.ResourceWorkLog, models.HistoryUpdate, changedBy, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to record work log history: %w", err)
	}
	return nil
}

type HistoryService struct {
	db *database.DB
}

func NewHistoryService(db *database.DB) *HistoryService {
	return &HistoryService{db: db}
}

// List returns the change history of one record, newest first. Only admins
// may read history.
func (s *HistoryService) List(ctx context.Context, actor access.Actor, entity access.Resource, id uuid.UUID) ([]models.HistoryRecord, error) {
	if !access.IsAdmin(actor) {
		return nil, access.ErrForbidden
	}
	if _, ok := historyTables[entity]; !ok {
		return nil, invalid("entity", "no history is kept for %q", entity)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, entity, entity_id, action, changed_by, snapshot, changed_at
		FROM history
		WHERE entity = $1 AND entity_id = $2
		ORDER BY changed_at DESC, id DESC
	`, entity, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	records := []models.HistoryRecord{}
	for rows.Next() {
		var r models.HistoryRecord
		var snapshot []byte
		if err := rows.Scan(&r.ID, &r.Entity, &r.EntityID, &r.Action, &r.ChangedBy, &snapshot, &r.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		r.Snapshot = snapshot
		records = append(records, r)
	}
	return records, rows.Err()
}
