package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var maxEstimate = decimal.RequireFromString("999.99")

type FunctionService struct {
	db *database.DB
}

func NewFunctionService(db *database.DB) *FunctionService {
	return &FunctionService{db: db}
}

const functionSelect = `
	SELECT fn.id, fn.feature_id, f.project_id, fn.title, fn.description, fn.status,
		fn.developer_id, fn.estimated_time, fn.cost, fn.created_at, fn.updated_at
	FROM functions fn
	JOIN features f ON f.id = fn.feature_id
	JOIN projects p ON p.id = f.project_id`

func scanFunction(row pgx.Row) (*models.Function, error) {
	var fn models.Function
	err := row.Scan(
		&fn.ID, &fn.FeatureID, &fn.ProjectID, &fn.Title, &fn.Description, &fn.Status,
		&fn.DeveloperID, &fn.EstimatedTime, &fn.Cost, &fn.CreatedAt, &fn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fn, nil
}

func (s *FunctionService) List(ctx context.Context, actor access.Actor, featureID *uuid.UUID) ([]models.Function, error) {
	var f filter
	if featureID != nil {
		f.add("fn.feature_id = ?", *featureID)
	}
	f.scope(access.ScopeFor(actor, access.ResourceFunction))

	rows, err := s.db.Pool.Query(ctx, functionSelect+f.where()+` ORDER BY fn.created_at`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}
	defer rows.Close()

	functions := []models.Function{}
	for rows.Next() {
		fn, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan function: %w", err)
		}
		functions = append(functions, *fn)
	}
	return functions, rows.Err()
}

func (s *FunctionService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Function, error) {
	var f filter
	f.add("fn.id = ?", id)
	f.scope(access.ScopeFor(actor, access.ResourceFunction))

	fn, err := scanFunction(s.db.Pool.QueryRow(ctx, functionSelect+f.where(), f.args...))
	if err != nil {
		return nil, notFound(err, "get function")
	}
	return fn, nil
}

func (s *FunctionService) target(ctx context.Context, fn *models.Function) (access.Target, error) {
	t, err := projectTarget(ctx, s.db.Pool, access.ResourceFunction, fn.ProjectID)
	if err != nil {
		return t, err
	}
	if fn.DeveloperID != nil {
		t.OwnerID = *fn.DeveloperID
	}
	return t, nil
}

func (s *FunctionService) Create(ctx context.Context, actor access.Actor, req dto.CreateFunctionRequest) (*models.Function, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Target{Resource: access.ResourceFunction}).Permit(); err != nil {
		return nil, err
	}

	fn := &models.Function{
		FeatureID:     req.FeatureID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Status:        req.Status,
		DeveloperID:   req.DeveloperID,
		EstimatedTime: req.EstimatedTime,
	}
	if fn.Status == "" {
		fn.Status = models.WorkStatusBacklog
	}
	if err := validateFunction(fn); err != nil {
		return nil, err
	}

	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT project_id FROM features WHERE id = $1`, fn.FeatureID).Scan(&fn.ProjectID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return invalid("feature", "does not exist")
			}
			return fmt.Errorf("failed to load feature: %w", err)
		}
		if err := s.price(ctx, tx, fn); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO functions (feature_id, title, description, status, developer_id, estimated_time, cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, fn.FeatureID, fn.Title, fn.Description, fn.Status, fn.DeveloperID, fn.EstimatedTime, fn.Cost).
			Scan(&fn.ID, &fn.CreatedAt, &fn.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create function: %w", err)
		}
		return recordHistory(ctx, tx, access.ResourceFunction, fn.ID, models.HistoryCreate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (s *FunctionService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateFunctionRequest) (*models.Function, error) {
	fn, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	target, err := s.target(ctx, fn)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionUpdate, target).Permit(req.Fields()...); err != nil {
		return nil, err
	}

	if req.FeatureID != nil {
		fn.FeatureID = *req.FeatureID
	}
	if req.Title != nil {
		fn.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fn.Description = *req.Description
	}
	if req.Status != nil {
		fn.Status = *req.Status
	}
	if req.DeveloperID.Set {
		fn.DeveloperID = req.DeveloperID.Value
	}
	if req.EstimatedTime != nil {
		fn.EstimatedTime = req.EstimatedTime
	}
	if err := validateFunction(fn); err != nil {
		return nil, err
	}

	err = s.db.InTx(ctx, func(tx pgx.Tx) error {
		if req.FeatureID != nil {
			if err := tx.QueryRow(ctx, `SELECT project_id FROM features WHERE id = $1`, fn.FeatureID).Scan(&fn.ProjectID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return invalid("feature", "does not exist")
				}
				return fmt.Errorf("failed to load feature: %w", err)
			}
		}
		if err := s.price(ctx, tx, fn); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			UPDATE functions SET feature_id = $1, title = $2, description = $3, status = $4,
				developer_id = $5, estimated_time = $6, cost = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`, fn.FeatureID, fn.Title, fn.Description, fn.Status, fn.DeveloperID, fn.EstimatedTime, fn.Cost, fn.ID).
			Scan(&fn.UpdatedAt)
		if err != nil {
			return notFound(err, "update function")
		}
		return recordHistory(ctx, tx, access.ResourceFunction, fn.ID, models.HistoryUpdate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (s *FunctionService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	fn, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	target, err := s.target(ctx, fn)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.ActionDelete, target).Permit(); err != nil {
		return err
	}
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := recordHistory(ctx, tx, access.ResourceFunction, id, models.HistoryDelete, actor.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM functions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete function: %w", err)
		}
		return nil
	})
}

// price derives the function cost from its estimate and the assignee's rate
// on the project. An unestimated or unassigned function has no cost.
func (s *FunctionService) price(ctx context.Context, tx pgx.Tx, fn *models.Function) error {
	fn.Cost = nil
	if fn.DeveloperID == nil {
		return nil
	}

	var staffed bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM project_developers WHERE project_id = $1 AND developer_id = $2)
	`, fn.ProjectID, *fn.DeveloperID).Scan(&staffed)
	if err != nil {
		return fmt.Errorf("failed to check developer: %w", err)
	}
	if !staffed {
		return invalid("developer", "is not staffed on the project")
	}
	if fn.EstimatedTime == nil {
		return nil
	}

	rate, err := resolveRate(ctx, tx, fn.ProjectID, *fn.DeveloperID)
	if err != nil {
		return err
	}
	cost := fn.EstimatedTime.Mul(rate).Round(2)
	fn.Cost = &cost
	return nil
}

func validateFunction(fn *models.Function) error {
	if err := validateWorkItem(fn.Title, fn.Status); err != nil {
		return err
	}
	if fn.EstimatedTime != nil {
		if fn.EstimatedTime.IsNegative() {
			return invalid("estimated_time", "must not be negative")
		}
		if fn.EstimatedTime.GreaterThan(maxEstimate) {
			return invalid("estimated_time", "must be at most %s", maxEstimate)
		}
	}
	return nil
}
