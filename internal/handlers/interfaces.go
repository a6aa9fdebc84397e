package handlers

import (
	"context"
	"io"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
)

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	List(ctx context.Context, actor access.Actor, pf services.ProjectFilter) ([]models.Project, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateProjectRequest) (*models.Project, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateProjectRequest) (*models.Project, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

// FeatureServiceInterface defines the methods used by handlers from FeatureService
type FeatureServiceInterface interface {
	List(ctx context.Context, actor access.Actor, ff services.FeatureFilter) ([]models.Feature, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Feature, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateFeatureRequest) (*models.Feature, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateFeatureRequest) (*models.Feature, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

// FunctionServiceInterface defines the methods used by handlers from FunctionService
type FunctionServiceInterface interface {
	List(ctx context.Context, actor access.Actor, featureID *uuid.UUID) ([]models.Function, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Function, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateFunctionRequest) (*models.Function, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateFunctionRequest) (*models.Function, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

// WorkLogServiceInterface defines the methods used by handlers from WorkLogService
type WorkLogServiceInterface interface {
	List(ctx context.Context, actor access.Actor, wf services.WorkLogFilter) ([]models.WorkLog, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.WorkLog, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateWorkLogRequest) (*models.WorkLog, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateWorkLogRequest) (*models.WorkLog, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

// RateServiceInterface defines the methods used by handlers from RateService
type RateServiceInterface interface {
	List(ctx context.Context, actor access.Actor, projectID *uuid.UUID) ([]models.ProjectRate, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.ProjectRate, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateProjectRateRequest) (*models.ProjectRate, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateProjectRateRequest) (*models.ProjectRate, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

// InvoiceServiceInterface defines the methods used by handlers from InvoiceService
type InvoiceServiceInterface interface {
	List(ctx context.Context, actor access.Actor, inf services.InvoiceFilter) ([]models.Invoice, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Invoice, error)
	Document(ctx context.Context, actor access.Actor, id uuid.UUID) (io.ReadCloser, *models.Invoice, error)
}

// BillingServiceInterface defines the methods used by handlers from BillingService
type BillingServiceInterface interface {
	ValidateRequest(ctx context.Context, clientID uuid.UUID, start, end time.Time) error
}

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, actor access.Actor, role *models.Role) ([]models.User, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateUserRequest) (*models.User, error)
}

// HistoryServiceInterface defines the methods used by handlers from HistoryService
type HistoryServiceInterface interface {
	List(ctx context.Context, actor access.Actor, entity access.Resource, id uuid.UUID) ([]models.HistoryRecord, error)
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email, role string) (*services.TokenPair, error)
	ValidateRefreshToken(tokenString string) (uuid.UUID, error)
}

// JobPublisher enqueues background jobs.
type JobPublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, payload any) error
}
