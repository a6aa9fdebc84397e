package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectFilter struct {
	Status   *models.ProjectStatus
	Priority *models.Priority
	ClientID *uuid.UUID
	Search   string
}

const projectSelect = `
	SELECT p.id, p.title, p.description, p.status, p.priority, p.start_date, p.end_date, p.client_id,
		ARRAY(SELECT pd.developer_id FROM project_developers pd WHERE pd.project_id = p.id ORDER BY pd.developer_id),
		p.created_at, p.updated_at
	FROM projects p`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Status, &p.Priority, &p.StartDate, &p.EndDate,
		&p.ClientID, &p.DeveloperIDs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func projectTargetOf(p *models.Project) access.Target {
	t := access.Target{Resource: access.ResourceProject, Developers: p.DeveloperIDs}
	if p.ClientID != nil {
		t.ClientID = *p.ClientID
	}
	return t
}

func (s *ProjectService) List(ctx context.Context, actor access.Actor, pf ProjectFilter) ([]models.Project, error) {
	var f filter
	if pf.Status != nil {
		f.add("p.status = ?", *pf.Status)
	}
	if pf.Priority != nil {
		f.add("p.priority = ?", *pf.Priority)
	}
	if pf.ClientID != nil {
		f.add("p.client_id = ?", *pf.ClientID)
	}
	if pf.Search != "" {
		f.add("(p.title ILIKE ? OR p.description ILIKE ?)", "%"+pf.Search+"%")
	}
	f.scope(access.ScopeFor(actor, access.ResourceProject))

	rows, err := s.db.Pool.Query(ctx, projectSelect+f.where()+` ORDER BY p.priority, p.start_date DESC`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Project, error) {
	var f filter
	f.add("p.id = ?", id)
	f.scope(access.ScopeFor(actor, access.ResourceProject))

	p, err := scanProject(s.db.Pool.QueryRow(ctx, projectSelect+f.where(), f.args...))
	if err != nil {
		return nil, notFound(err, "get project")
	}
	return p, nil
}

func (s *ProjectService) Create(ctx context.Context, actor access.Actor, req dto.CreateProjectRequest) (*models.Project, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Target{Resource: access.ResourceProject}).Permit(); err != nil {
		return nil, err
	}

	p := &models.Project{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       req.Status,
		Priority:     models.PriorityP3,
		ClientID:     req.ClientID,
		DeveloperIDs: unique(req.DeveloperIDs),
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate.Time
	}
	if req.EndDate != nil {
		end := req.EndDate.Time
		p.EndDate = &end
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}

	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := validateProjectMembers(ctx, tx, p); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO projects (title, description, status, priority, start_date, end_date, client_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, p.Title, p.Description, p.Status, p.Priority, p.StartDate, p.EndDate, p.ClientID).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		if err := setDevelopers(ctx, tx, p.ID, p.DeveloperIDs); err != nil {
			return err
		}
		return recordHistory(ctx, tx, access.ResourceProject, p.ID, models.HistoryCreate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateProjectRequest) (*models.Project, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionUpdate, projectTargetOf(p)).Permit(req.Fields()...); err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate.Time
	}
	if req.EndDate != nil {
		end := req.EndDate.Time
		p.EndDate = &end
	}
	if req.ClientID != nil {
		p.ClientID = req.ClientID
	}
	if req.DeveloperIDs != nil {
		p.DeveloperIDs = unique(*req.DeveloperIDs)
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}

	err = s.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := validateProjectMembers(ctx, tx, p); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			UPDATE projects SET title = $1, description = $2, status = $3, priority = $4,
				start_date = $5, end_date = $6, client_id = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`, p.Title, p.Description, p.Status, p.Priority, p.StartDate, p.EndDate, p.ClientID, p.ID).
			Scan(&p.UpdatedAt)
		if err != nil {
			return notFound(err, "update project")
		}
		if req.DeveloperIDs != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM project_developers WHERE project_id = $1`, p.ID); err != nil {
				return fmt.Errorf("failed to clear project developers: %w", err)
			}
			if err := setDevelopers(ctx, tx, p.ID, p.DeveloperIDs); err != nil {
				return err
			}
		}
		return recordHistory(ctx, tx, access.ResourceProject, p.ID, models.HistoryUpdate, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(actor, access.ActionDelete, projectTargetOf(p)).Permit(); err != nil {
		return err
	}
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := recordHistory(ctx, tx, access.ResourceProject, id, models.HistoryDelete, actor.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

func validateProject(p *models.Project) error {
	if p.Title == "" {
		return invalid("title", "is required")
	}
	if len(p.Title) > 200 {
		return invalid("title", "must be at most 200 characters")
	}
	if !p.Status.Valid() {
		return invalid("status", "unknown project status %q", p.Status)
	}
	if !p.Priority.Valid() {
		return invalid("priority", "must be between 0 and 3")
	}
	if p.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}
	return nil
}

func validateProjectMembers(ctx context.Context, q database.Querier, p *models.Project) error {
	if p.ClientID != nil {
		if err := requireRoles(ctx, q, "client", models.RoleClient, *p.ClientID); err != nil {
			return err
		}
	}
	return requireRoles(ctx, q, "developers", models.RoleDeveloper, p.DeveloperIDs...)
}

func setDevelopers(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, developers []uuid.UUID) error {
	for _, dev := range developers {
		_, err := tx.Exec(ctx, `
			INSERT INTO project_developers (project_id, developer_id) VALUES ($1, $2)
		`, projectID, dev)
		if err != nil {
			return fmt.Errorf("failed to add project developer: %w", err)
		}
	}
	return nil
}

// today truncates now to a calendar day in UTC.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
