package testutil

import (
	"context"
	"io"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) List(ctx context.Context, actor access.Actor, pf services.ProjectFilter) ([]models.Project, error) {
	args := m.Called(ctx, actor, pf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, actor access.Actor, req dto.CreateProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockFeatureService mocks the FeatureService
type MockFeatureService struct {
	mock.Mock
}

func (m *MockFeatureService) List(ctx context.Context, actor access.Actor, ff services.FeatureFilter) ([]models.Feature, error) {
	args := m.Called(ctx, actor, ff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feature), args.Error(1)
}

func (m *MockFeatureService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Feature, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feature), args.Error(1)
}

func (m *MockFeatureService) Create(ctx context.Context, actor access.Actor, req dto.CreateFeatureRequest) (*models.Feature, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feature), args.Error(1)
}

func (m *MockFeatureService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateFeatureRequest) (*models.Feature, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feature), args.Error(1)
}

func (m *MockFeatureService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockFunctionService mocks the FunctionService
type MockFunctionService struct {
	mock.Mock
}

func (m *MockFunctionService) List(ctx context.Context, actor access.Actor, featureID *uuid.UUID) ([]models.Function, error) {
	args := m.Called(ctx, actor, featureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Function), args.Error(1)
}

func (m *MockFunctionService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Function, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Function), args.Error(1)
}

func (m *MockFunctionService) Create(ctx context.Context, actor access.Actor, req dto.CreateFunctionRequest) (*models.Function, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Function), args.Error(1)
}

func (m *MockFunctionService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateFunctionRequest) (*models.Function, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Function), args.Error(1)
}

func (m *MockFunctionService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockWorkLogService mocks the WorkLogService
type MockWorkLogService struct {
	mock.Mock
}

func (m *MockWorkLogService) List(ctx context.Context, actor access.Actor, wf services.WorkLogFilter) ([]models.WorkLog, error) {
	args := m.Called(ctx, actor, wf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WorkLog), args.Error(1)
}

func (m *MockWorkLogService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.WorkLog, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkLog), args.Error(1)
}

func (m *MockWorkLogService) Create(ctx context.Context, actor access.Actor, req dto.CreateWorkLogRequest) (*models.WorkLog, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkLog), args.Error(1)
}

func (m *MockWorkLogService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateWorkLogRequest) (*models.WorkLog, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkLog), args.Error(1)
}

func (m *MockWorkLogService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockHistoryService mocks the HistoryService
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context, actor access.Actor, entity access.Resource, id uuid.UUID) ([]models.HistoryRecord, error) {
	args := m.Called(ctx, actor, entity, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryRecord), args.Error(1)
}

// MockRateService mocks the RateService
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) List(ctx context.Context, actor access.Actor, projectID *uuid.UUID) ([]models.ProjectRate, error) {
	args := m.Called(ctx, actor, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectRate), args.Error(1)
}

func (m *MockRateService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.ProjectRate, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectRate), args.Error(1)
}

func (m *MockRateService) Create(ctx context.Context, actor access.Actor, req dto.CreateProjectRateRequest) (*models.ProjectRate, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectRate), args.Error(1)
}

func (m *MockRateService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateProjectRateRequest) (*models.ProjectRate, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectRate), args.Error(1)
}

func (m *MockRateService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockInvoiceService mocks the InvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) List(ctx context.Context, actor access.Actor, inf services.InvoiceFilter) ([]models.Invoice, error) {
	args := m.Called(ctx, actor, inf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Document(ctx context.Context, actor access.Actor, id uuid.UUID) (io.ReadCloser, *models.Invoice, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*models.Invoice), args.Error(2)
}

// MockBillingService mocks the BillingService
type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) ValidateRequest(ctx context.Context, clientID uuid.UUID, start, end time.Time) error {
	args := m.Called(ctx, clientID, start, end)
	return args.Error(0)
}

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, actor access.Actor, role *models.Role) ([]models.User, error) {
	args := m.Called(ctx, actor, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, actor access.Actor, req dto.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockPublisher mocks queue.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey, messageID string, payload any) error {
	args := m.Called(ctx, routingKey, messageID, payload)
	return args.Error(0)
}
