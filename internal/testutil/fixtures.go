package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixtures inserts rows directly, bypassing service rules, so tests can set
// up any state.
type Fixtures struct {
	db      *database.DB
	counter int
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with the given role
func (f *Fixtures) CreateUser(t *testing.T, role models.Role, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:  fmt.Sprintf("user%d@example.com", f.counter),
		Name:   fmt.Sprintf("Test User %d", f.counter),
		Role:   role,
		Skills: []string{},
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, skills, time_zone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.Role, user.Skills, user.TimeZone).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

func WithSkills(skills ...string) UserOption {
	return func(u *models.User) {
		u.Skills = skills
	}
}

// CreateProject creates a project owned by client and staffed by developers
func (f *Fixtures) CreateProject(t *testing.T, client *models.User, developers ...*models.User) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		Title:     fmt.Sprintf("Test Project %d", f.counter),
		Status:    models.ProjectStatusInProgress,
		Priority:  models.PriorityP2,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ClientID:  &client.ID,
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO projects (title, status, priority, start_date, client_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, project.Title, project.Status, project.Priority, project.StartDate, project.ClientID).Scan(
		&project.ID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	for _, dev := range developers {
		_, err = tx.Exec(ctx, `
			INSERT INTO project_developers (project_id, developer_id) VALUES ($1, $2)
		`, project.ID, dev.ID)
		if err != nil {
			t.Fatalf("failed to staff project: %v", err)
		}
		project.DeveloperIDs = append(project.DeveloperIDs, dev.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return project
}

// SetRate stores the hourly rate of developer on project
func (f *Fixtures) SetRate(t *testing.T, project *models.Project, developer *models.User, rate string) *models.ProjectRate {
	t.Helper()

	pr := &models.ProjectRate{
		ProjectID:   project.ID,
		DeveloperID: developer.ID,
		Rate:        decimal.RequireFromString(rate),
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO project_rates (project_id, developer_id, rate)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, pr.ProjectID, pr.DeveloperID, pr.Rate).Scan(&pr.ID, &pr.CreatedAt, &pr.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create project rate: %v", err)
	}

	return pr
}

func (f *Fixtures) CreateFeature(t *testing.T, project *models.Project) *models.Feature {
	t.Helper()
	f.counter++

	feature := &models.Feature{
		ProjectID: project.ID,
		Title:     fmt.Sprintf("Test Feature %d", f.counter),
		Status:    models.WorkStatusBacklog,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO features (project_id, title, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, feature.ProjectID, feature.Title, feature.Status).Scan(&feature.ID, &feature.CreatedAt, &feature.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create feature: %v", err)
	}

	return feature
}

// CreateFunction creates a function assigned to developer with an estimate
// in hours. Cost is left empty.
func (f *Fixtures) CreateFunction(t *testing.T, feature *models.Feature, developer *models.User, estimate string) *models.Function {
	t.Helper()
	f.counter++

	est := decimal.RequireFromString(estimate)
	fn := &models.Function{
		FeatureID:     feature.ID,
		ProjectID:     feature.ProjectID,
		Title:         fmt.Sprintf("Test Function %d", f.counter),
		Status:        models.WorkStatusInProgress,
		DeveloperID:   &developer.ID,
		EstimatedTime: &est,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO functions (feature_id, title, status, developer_id, estimated_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, fn.FeatureID, fn.Title, fn.Status, fn.DeveloperID, fn.EstimatedTime).Scan(&fn.ID, &fn.CreatedAt, &fn.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create function: %v", err)
	}

	return fn
}

// CreateWorkLog records hours by the function's developer on day
func (f *Fixtures) CreateWorkLog(t *testing.T, fn *models.Function, day time.Time, hours string, status models.WorkLogStatus) *models.WorkLog {
	t.Helper()

	log := &models.WorkLog{
		FunctionID:   fn.ID,
		DeveloperID:  *fn.DeveloperID,
		ProjectID:    fn.ProjectID,
		DateLogged:   day,
		HoursWorked:  decimal.RequireFromString(hours),
		Description:  "worked on " + fn.Title,
		Status:       status,
		BilledStatus: models.BilledStatusUnbilled,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO work_logs (function_id, developer_id, date_logged, hours_worked, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, log.FunctionID, log.DeveloperID, log.DateLogged, log.HoursWorked, log.Description, log.Status).Scan(
		&log.ID, &log.CreatedAt, &log.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create work log: %v", err)
	}

	return log
}

// BilledStatusOf reads the current billing state of a work log
func (f *Fixtures) BilledStatusOf(t *testing.T, id uuid.UUID) (models.BilledStatus, *uuid.UUID) {
	t.Helper()

	var status models.BilledStatus
	var invoiceID *uuid.UUID
	err := f.db.Pool.QueryRow(context.Background(), `
		SELECT billed_status, invoice_id FROM work_logs WHERE id = $1
	`, id).Scan(&status, &invoiceID)
	if err != nil {
		t.Fatalf("failed to read work log: %v", err)
	}
	return status, invoiceID
}
