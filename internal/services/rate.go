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

type RateService struct {
	db *database.DB
}

func NewRateService(db *database.DB) *RateService {
	return &RateService{db: db}
}

// resolveRate looks up the hourly rate of developer on project. Every caller
// resolves on its own so a rate changed in between is always observed.
func resolveRate(ctx context.Context, q database.Querier, projectID, developerID uuid.UUID) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT rate FROM project_rates WHERE project_id = $1 AND developer_id = $2
	`, projectID, developerID).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: project %s, developer %s", ErrRateNotFound, projectID, developerID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve rate: %w", err)
	}
	return rate, nil
}

func (s *RateService) Resolve(ctx context.Context, projectID, developerID uuid.UUID) (decimal.Decimal, error) {
	return resolveRate(ctx, s.db.Pool, projectID, developerID)
}

const rateSelect = `
	SELECT r.id, r.project_id, r.developer_id, r.rate, r.created_at, r.updated_at
	FROM project_rates r`

func scanRate(row pgx.Row) (*models.ProjectRate, error) {
	var r models.ProjectRate
	if err := row.Scan(&r.ID, &r.ProjectID, &r.DeveloperID, &r.Rate, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RateService) List(ctx context.Context, actor access.Actor, projectID *uuid.UUID) ([]models.ProjectRate, error) {
	var f filter
	if projectID != nil {
		f.add("r.project_id = ?", *projectID)
	}
	f.scope(access.ScopeFor(actor, access.ResourceProjectRate))

	rows, err := s.db.Pool.Query(ctx, rateSelect+f.where()+` ORDER BY r.created_at`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	defer rows.Close()

	rates := []models.ProjectRate{}
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		rates = append(rates, *r)
	}
	return rates, rows.Err()
}

func (s *RateService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.ProjectRate, error) {
	var f filter
	f.add("r.id = ?", id)
	f.scope(access.ScopeFor(actor, access.ResourceProjectRate))

	r, err := scanRate(s.db.Pool.QueryRow(ctx, rateSelect+f.where(), f.args...))
	if err != nil {
		return nil, notFound(err, "get rate")
	}
	return r, nil
}

func (s *RateService) Create(ctx context.Context, actor access.Actor, req dto.CreateProjectRateRequest) (*models.ProjectRate, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Target{Resource: access.ResourceProjectRate}).Permit(); err != nil {
		return nil, err
	}
	if req.Rate.IsNegative() {
		return nil, invalid("rate", "must not be negative")
	}
	if err := requireRoles(ctx, s.db.Pool, "developer", models.RoleDeveloper, req.DeveloperID); err != nil {
		return nil, err
	}

	var r *models.ProjectRate
	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		r, err = scanRate(tx.QueryRow(ctx, `
			INSERT INTO project_rates (project_id, developer_id, rate)
			VALUES ($1, $2, $3)
			RETURNING id, project_id, developer_id, rate, created_at, updated_at
		`, req.ProjectID, req.DeveloperID, req.Rate.Round(2)))
		if err != nil {
			return constraint(err, "developer", "create rate")
		}
		return recordHistory(ctx, tx, access.ResourceProjectRate, r.ID, models.HistoryCreate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes the rate going forward. Function costs saved earlier keep
// the rate they were priced with.
func (s *RateService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateProjectRateRequest) (*models.ProjectRate, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionUpdate, access.Target{Resource: access.ResourceProjectRate}).Permit(req.Fields()...); err != nil {
		return nil, err
	}
	if req.Rate == nil {
		return s.Get(ctx, actor, id)
	}
	if req.Rate.IsNegative() {
		return nil, invalid("rate", "must not be negative")
	}

	var r *models.ProjectRate
	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		r, err = scanRate(tx.QueryRow(ctx, `
			UPDATE project_rates SET rate = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, project_id, developer_id, rate, created_at, updated_at
		`, req.Rate.Round(2), id))
		if err != nil {
			return notFound(err, "update rate")
		}
		return recordHistory(ctx, tx, access.ResourceProjectRate, id, models.HistoryUpdate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RateService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := access.Authorize(actor, access.ActionDelete, access.Target{Resource: access.ResourceProjectRate}).Permit(); err != nil {
		return err
	}
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := recordHistory(ctx, tx, access.ResourceProjectRate, id, models.HistoryDelete, actor.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM project_rates WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete rate: %w", err)
		}
		return nil
	})
}
