package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type WorkLogService struct {
	db *database.DB
}

func NewWorkLogService(db *database.DB) *WorkLogService {
	return &WorkLogService{db: db}
}

type WorkLogFilter struct {
	ProjectID    *uuid.UUID
	FunctionID   *uuid.UUID
	DeveloperID  *uuid.UUID
	Status       *models.WorkLogStatus
	BilledStatus *models.BilledStatus
}

const workLogSelect = `
	SELECT w.id, w.function_id, w.developer_id, f.project_id, w.date_logged, w.hours_worked,
		w.description, w.status, w.reason, w.billed_status, w.processed_date, w.billed_date,
		w.invoice_id, w.created_at, w.updated_at
	FROM work_logs w
	JOIN functions fn ON fn.id = w.function_id
	JOIN features f ON f.id = fn.feature_id
	JOIN projects p ON p.id = f.project_id`

func scanWorkLog(row pgx.Row) (*models.WorkLog, error) {
	var w models.WorkLog
	err := row.Scan(
		&w.ID, &w.FunctionID, &w.DeveloperID, &w.ProjectID, &w.DateLogged, &w.HoursWorked,
		&w.Description, &w.Status, &w.Reason, &w.BilledStatus, &w.ProcessedDate, &w.BilledDate,
		&w.InvoiceID, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WorkLogService) List(ctx context.Context, actor access.Actor, wf WorkLogFilter) ([]models.WorkLog, error) {
	var f filter
	if wf.ProjectID != nil {
		f.add("f.project_id = ?", *wf.ProjectID)
	}
	if wf.FunctionID != nil {
		f.add("w.function_id = ?", *wf.FunctionID)
	}
	if wf.DeveloperID != nil {
		f.add("w.developer_id = ?", *wf.DeveloperID)
	}
	if wf.Status != nil {
		f.add("w.status = ?", *wf.Status)
	}
	if wf.BilledStatus != nil {
		f.add("w.billed_status = ?", *wf.BilledStatus)
	}
	f.scope(access.ScopeFor(actor, access.ResourceWorkLog))

	rows, err := s.db.Pool.Query(ctx, workLogSelect+f.where()+` ORDER BY w.date_logged DESC, w.created_at DESC`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work logs: %w", err)
	}
	defer rows.Close()

	logs := []models.WorkLog{}
	for rows.Next() {
		w, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work log: %w", err)
		}
		logs = append(logs, *w)
	}
	return logs, rows.Err()
}

func (s *WorkLogService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.WorkLog, error) {
	var f filter
	f.add("w.id = ?", id)
	f.scope(access.ScopeFor(actor, access.ResourceWorkLog))

	w, err := scanWorkLog(s.db.Pool.QueryRow(ctx, workLogSelect+f.where(), f.args...))
	if err != nil {
		return nil, notFound(err, "get work log")
	}
	return w, nil
}

// Create logs time against a function on behalf of the calling developer.
// The function row is locked so concurrent logs cannot together exceed its
// estimate.
func (s *WorkLogService) Create(ctx context.Context, actor access.Actor, req dto.CreateWorkLogRequest) (*models.WorkLog, error) {
	if req.DeveloperID != nil && *req.DeveloperID == actor.ID {
		req.DeveloperID = nil
	}
	if !req.HoursWorked.IsPositive() {
		return nil, invalid("hours_worked", "must be greater than zero")
	}

	w := &models.WorkLog{
		FunctionID:  req.FunctionID,
		DeveloperID: actor.ID,
		DateLogged:  today(),
		HoursWorked: req.HoursWorked.Round(2),
		Description: req.Description,
		Status:      models.WorkLogStatusReview,
	}
	if req.DateLogged != nil {
		w.DateLogged = req.DateLogged.Time
	}

	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		var f filter
		f.add("fn.id = ?", req.FunctionID)
		f.scope(access.ScopeFor(actor, access.ResourceFunction))

		var estimated *decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT fn.estimated_time, f.project_id
			FROM functions fn
			JOIN features f ON f.id = fn.feature_id
			JOIN projects p ON p.id = f.project_id`+f.where()+`
			FOR UPDATE OF fn
		`, f.args...).Scan(&estimated, &w.ProjectID)
		if err != nil {
			return notFound(err, "load function")
		}

		target, err := projectTarget(ctx, tx, access.ResourceWorkLog, w.ProjectID)
		if err != nil {
			return err
		}
		target.OwnerID = actor.ID
		if err := access.Authorize(actor, access.ActionCreate, target).Permit(req.Fields()...); err != nil {
			return err
		}

		if estimated == nil {
			return invalid("function", "has no estimated time")
		}
		var logged decimal.Decimal
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(hours_worked), 0) FROM work_logs WHERE function_id = $1
		`, w.FunctionID).Scan(&logged)
		if err != nil {
			return fmt.Errorf("failed to sum logged hours: %w", err)
		}
		if logged.Add(w.HoursWorked).GreaterThan(*estimated) {
			remaining := decimal.Max(estimated.Sub(logged), decimal.Zero)
			return invalid("hours_worked", "exceeds the %s hours remaining on the function estimate", remaining.StringFixed(2))
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO work_logs (function_id, developer_id, date_logged, hours_worked, description, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, billed_status, created_at, updated_at
		`, w.FunctionID, w.DeveloperID, w.DateLogged, w.HoursWorked, w.Description, w.Status).
			Scan(&w.ID, &w.BilledStatus, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create work log: %w", err)
		}
		return recordHistory(ctx, tx, access.ResourceWorkLog, w.ID, models.HistoryCreate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Update edits a work log. The estimate is not rechecked. The row is locked
// for the whole edit, so a log claimed by a billing run is either skipped by
// that run or seen here as billed; billed logs keep their hours, date,
// function and developer.
func (s *WorkLogService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateWorkLogRequest) (*models.WorkLog, error) {
	if req.HoursWorked != nil && !req.HoursWorked.IsPositive() {
		return nil, invalid("hours_worked", "must be greater than zero")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, invalid("status", "unknown status %q", *req.Status)
	}

	var w *models.WorkLog
	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		var f filter
		f.add("w.id = ?", id)
		f.scope(access.ScopeFor(actor, access.ResourceWorkLog))

		var err error
		w, err = scanWorkLog(tx.QueryRow(ctx, workLogSelect+f.where()+` FOR UPDATE OF w`, f.args...))
		if err != nil {
			return notFound(err, "get work log")
		}
		target, err := projectTarget(ctx, tx, access.ResourceWorkLog, w.ProjectID)
		if err != nil {
			return err
		}
		target.OwnerID = w.DeveloperID
		if err := access.Authorize(actor, access.ActionUpdate, target).Permit(req.Fields()...); err != nil {
			return err
		}

		frozen := req.HoursWorked != nil || req.DateLogged != nil || req.FunctionID != nil || req.DeveloperID != nil
		if w.BilledStatus != models.BilledStatusUnbilled && frozen {
			return invalid("billed_status", "hours, date, function and developer of a %s work log cannot change", w.BilledStatus)
		}

		if req.FunctionID != nil && *req.FunctionID != w.FunctionID {
			err := tx.QueryRow(ctx, `
				SELECT f.project_id FROM functions fn JOIN features f ON f.id = fn.feature_id WHERE fn.id = $1
			`, *req.FunctionID).Scan(&w.ProjectID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return invalid("function", "does not exist")
				}
				return fmt.Errorf("failed to load function: %w", err)
			}
			w.FunctionID = *req.FunctionID
		}
		if req.DeveloperID != nil && *req.DeveloperID != w.DeveloperID {
			if err := requireRoles(ctx, tx, "developer", models.RoleDeveloper, *req.DeveloperID); err != nil {
				return err
			}
			w.DeveloperID = *req.DeveloperID
		}
		if req.DateLogged != nil {
			w.DateLogged = req.DateLogged.Time
		}
		if req.HoursWorked != nil {
			w.HoursWorked = req.HoursWorked.Round(2)
		}
		if req.Description != nil {
			w.Description = *req.Description
		}
		if req.Status != nil {
			w.Status = *req.Status
		}
		if req.Reason != nil {
			w.Reason = req.Reason
		}

		err = tx.QueryRow(ctx, `
			UPDATE work_logs SET function_id = $1, developer_id = $2, date_logged = $3, hours_worked = $4,
				description = $5, status = $6, reason = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`, w.FunctionID, w.DeveloperID, w.DateLogged, w.HoursWorked, w.Description, w.Status, w.Reason, w.ID).
			Scan(&w.UpdatedAt)
		if err != nil {
			return notFound(err, "update work log")
		}
		return recordHistory(ctx, tx, access.ResourceWorkLog, w.ID, models.HistoryUpdate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Delete never succeeds for a visible log: work logs are an audit trail.
func (s *WorkLogService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	w, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return access.Authorize(actor, access.ActionDelete, access.Target{Resource: access.ResourceWorkLog, OwnerID: w.DeveloperID}).Permit()
}
