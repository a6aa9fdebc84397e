package handlers

import (
	"net/http"
	"testing"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/internal/testutil"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func userRoutes(h *UserHandler) []route {
	return []route{
		{http.MethodGet, "/users/me", h.GetMe},
		{http.MethodPatch, "/users/me", h.UpdateMe},
		{http.MethodGet, "/users", h.List},
		{http.MethodPost, "/users", h.Create},
	}
}

func TestUserHandler_GetMe_Success(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	client := newTestClient(t, userRoutes(NewUserHandler(mockUserService, testLogger))...)
	dev := newTestUser(t, access.Developer{})
	tz := "Europe/Belgrade"

	mockUserService.On("GetByID", mock.Anything, dev.actor.ID).Return(&models.User{
		ID:       dev.actor.ID,
		Email:    "dev@example.com",
		Name:     "Dev",
		Role:     models.RoleDeveloper,
		Skills:   []string{"go"},
		TimeZone: &tz,
	}, nil)

	rec := client.GET("/users/me", dev.headers)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var response models.User
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, dev.actor.ID, response.ID)
	assert.Equal(t, models.RoleDeveloper, response.Role)
	assert.Equal(t, []string{"go"}, response.Skills)
	mockUserService.AssertExpectations(t)
}

func TestUserHandler_GetMe_NotFound(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	client := newTestClient(t, userRoutes(NewUserHandler(mockUserService, testLogger))...)
	customer := newTestUser(t, access.Client{})

	mockUserService.On("GetByID", mock.Anything, customer.actor.ID).Return(nil, services.ErrNotFound)

	rec := client.GET("/users/me", customer.headers)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestUserHandler_UpdateMe_RoleChangeForbidden(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	client := newTestClient(t, userRoutes(NewUserHandler(mockUserService, testLogger))...)
	customer := newTestUser(t, access.Client{})

	mockUserService.On("Update", mock.Anything, customer.actor, customer.actor.ID, mock.MatchedBy(func(req dto.UpdateUserRequest) bool {
		return req.Role != nil && *req.Role == models.RoleAdmin
	})).Return(nil, access.ErrForbidden)

	rec := client.PATCH("/users/me", map[string]any{"role": "admin"}, customer.headers)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockUserService.AssertExpectations(t)
}

func TestUserHandler_UpdateMe_Success(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	client := newTestClient(t, userRoutes(NewUserHandler(mockUserService, testLogger))...)
	customer := newTestUser(t, access.Client{})

	mockUserService.On("Update", mock.Anything, customer.actor, customer.actor.ID, mock.MatchedBy(func(req dto.UpdateUserRequest) bool {
		return req.Name != nil && *req.Name == "Acme Ltd"
	})).Return(&models.User{ID: customer.actor.ID, Name: "Acme Ltd", Role: models.RoleClient}, nil)

	rec := client.PATCH("/users/me", map[string]any{"name": "Acme Ltd"}, customer.headers)

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "Acme Ltd")
	mockUserService.AssertExpectations(t)
}

func TestUserHandler_List_AdminOnly(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	client := newTestClient(t, userRoutes(NewUserHandler(mockUserService, testLogger))...)
	dev := newTestUser(t, access.Developer{})

	rec := client.GET("/users", dev.headers)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockUserService.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserHandler_List_ByRole(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	client := newTestClient(t, userRoutes(NewUserHandler(mockUserService, testLogger))...)
	admin := newTestUser(t, access.Admin{})
	role := models.RoleDeveloper

	mockUserService.On("List", mock.Anything, admin.actor, &role).Return([]models.User{
		{ID: uuid.New(), Name: "Ana", Role: role},
		{ID: uuid.New(), Name: "Marko", Role: role},
	}, nil)

	rec := client.GET("/users?role=developer", admin.headers)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var response []models.User
	testutil.ParseJSON(t, rec, &response)
	require.Len(t, response, 2)
	mockUserService.AssertExpectations(t)
}

func TestUserHandler_Create_DuplicateEmail(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	client := newTestClient(t, userRoutes(NewUserHandler(mockUserService, testLogger))...)
	admin := newTestUser(t, access.Admin{})

	req := dto.CreateUserRequest{Email: "ana@example.com", Name: "Ana", Role: models.RoleDeveloper}
	mockUserService.On("Create", mock.Anything, admin.actor, req).
		Return(nil, &services.ValidationError{Field: "email", Message: "already exists"})

	rec := client.POST("/users", req, admin.headers)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email: already exists")
	mockUserService.AssertExpectations(t)
}
