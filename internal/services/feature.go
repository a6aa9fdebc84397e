package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FeatureService struct {
	db *database.DB
}

func NewFeatureService(db *database.DB) *FeatureService {
	return &FeatureService{db: db}
}

type FeatureFilter struct {
	Status    *models.WorkStatus
	ProjectID *uuid.UUID
}

// Cost and estimated time are summed over the feature's functions on every
// read.
const featureSelect = `
	SELECT f.id, f.project_id, f.title, f.description, f.status,
		COALESCE((SELECT SUM(fn.cost) FROM functions fn WHERE fn.feature_id = f.id), 0),
		COALESCE((SELECT SUM(fn.estimated_time) FROM functions fn WHERE fn.feature_id = f.id), 0),
		f.created_at, f.updated_at
	FROM features f
	JOIN projects p ON p.id = f.project_id`

func scanFeature(row pgx.Row) (*models.Feature, error) {
	var f models.Feature
	err := row.Scan(
		&f.ID, &f.ProjectID, &f.Title, &f.Description, &f.Status,
		&f.Cost, &f.EstimatedTime, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FeatureService) List(ctx context.Context, actor access.Actor, ff FeatureFilter) ([]models.Feature, error) {
	var f filter
	if ff.Status != nil {
		f.add("f.status = ?", *ff.Status)
	}
	if ff.ProjectID != nil {
		f.add("f.project_id = ?", *ff.ProjectID)
	}
	f.scope(access.ScopeFor(actor, access.ResourceFeature))

	rows, err := s.db.Pool.Query(ctx, featureSelect+f.where()+` ORDER BY f.created_at`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	features := []models.Feature{}
	for rows.Next() {
		feature, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, *feature)
	}
	return features, rows.Err()
}

func (s *FeatureService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Feature, error) {
	var f filter
	f.add("f.id = ?", id)
	f.scope(access.ScopeFor(actor, access.ResourceFeature))

	feature, err := scanFeature(s.db.Pool.QueryRow(ctx, featureSelect+f.where(), f.args...))
	if err != nil {
		return nil, notFound(err, "get feature")
	}
	return feature, nil
}

func (s *FeatureService) target(ctx context.Context, feature *models.Feature) (access.Target, error) {
	t, err := projectTarget(ctx, s.db.Pool, access.ResourceFeature, feature.ProjectID)
	if err != nil {
		return t, err
	}
	t.Status = string(feature.Status)
	return t, nil
}

func (s *FeatureService) Create(ctx context.Context, actor access.Actor, req dto.CreateFeatureRequest) (*models.Feature, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Target{Resource: access.ResourceFeature}).Permit(); err != nil {
		return nil, err
	}

	feature := &models.Feature{
		ProjectID:   req.ProjectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      req.Status,
	}
	if feature.Status == "" {
		feature.Status = models.WorkStatusBacklog
	}
	if err := validateWorkItem(feature.Title, feature.Status); err != nil {
		return nil, err
	}

	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO features (project_id, title, description, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, feature.ProjectID, feature.Title, feature.Description, feature.Status).
			Scan(&feature.ID, &feature.CreatedAt, &feature.UpdatedAt)
		if err != nil {
			return constraint(err, "project", "create feature")
		}
		return recordHistory(ctx, tx, access.ResourceFeature, feature.ID, models.HistoryCreate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return feature, nil
}

func (s *FeatureService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateFeatureRequest) (*models.Feature, error) {
	feature, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	target, err := s.target(ctx, feature)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionUpdate, target).Permit(req.Fields()...); err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		feature.ProjectID = *req.ProjectID
	}
	if req.Title != nil {
		feature.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		feature.Description = *req.Description
	}
	if req.Status != nil {
		feature.Status = *req.Status
	}
	if err := validateWorkItem(feature.Title, feature.Status); err != nil {
		return nil, err
	}

	err = s.db.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE features SET project_id = $1, title = $2, description = $3, status = $4, updated_at = NOW()
			WHERE id = $5
			RETURNING updated_at
		`, feature.ProjectID, feature.Title, feature.Description, feature.Status, feature.ID).Scan(&feature.UpdatedAt)
		if err != nil {
			return constraint(err, "project", "update feature")
		}
		return recordHistory(ctx, tx, access.ResourceFeature, feature.ID, models.HistoryUpdate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return feature, nil
}

func (s *FeatureService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	feature, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	target, err := s.target(ctx, feature)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.ActionDelete, target).Permit(); err != nil {
		return err
	}
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := recordHistory(ctx, tx, access.ResourceFeature, id, models.HistoryDelete, actor.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM features WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete feature: %w", err)
		}
		return nil
	})
}

func validateWorkItem(title string, status models.WorkStatus) error {
	if title == "" {
		return invalid("title", "is required")
	}
	if len(title) > 200 {
		return invalid("title", "must be at most 200 characters")
	}
	if !status.Valid() {
		return invalid("status", "unknown status %q", status)
	}
	return nil
}
