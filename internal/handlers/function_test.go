package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/internal/testutil"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func functionRoutes(h *FunctionHandler) []route {
	return []route{
		{http.MethodGet, "/functions", h.List},
		{http.MethodPost, "/functions", h.Create},
		{http.MethodGet, "/functions/:id", h.Get},
		{http.MethodPatch, "/functions/:id", h.Update},
		{http.MethodDelete, "/functions/:id", h.Delete},
	}
}

func TestFunctionHandler_List_ByFeature(t *testing.T) {
	mockFunctionService := new(testutil.MockFunctionService)
	client := newTestClient(t, functionRoutes(NewFunctionHandler(mockFunctionService, testLogger))...)
	dev := newTestUser(t, access.Developer{})
	featureID := uuid.New()

	mockFunctionService.On("List", mock.Anything, dev.actor, &featureID).Return([]models.Function{}, nil)

	rec := client.GET("/functions?feature="+featureID.String(), dev.headers)

	testutil.AssertStatus(t, rec, http.StatusOK)
	mockFunctionService.AssertExpectations(t)
}

func TestFunctionHandler_Update_Repriced(t *testing.T) {
	mockFunctionService := new(testutil.MockFunctionService)
	client := newTestClient(t, functionRoutes(NewFunctionHandler(mockFunctionService, testLogger))...)
	admin := newTestUser(t, access.Admin{})
	functionID := uuid.New()
	estimate := decimal.RequireFromString("10")
	cost := decimal.RequireFromString("200")

	mockFunctionService.On("Update", mock.Anything, admin.actor, functionID, mock.MatchedBy(func(req dto.UpdateFunctionRequest) bool {
		return req.EstimatedTime != nil && req.EstimatedTime.Equal(estimate)
	})).Return(&models.Function{ID: functionID, EstimatedTime: &estimate, Cost: &cost}, nil)

	rec := client.PATCH("/functions/"+functionID.String(), map[string]any{"estimated_time": "10"}, admin.headers)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var response models.Function
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "200", response.Cost.String())
	mockFunctionService.AssertExpectations(t)
}

func TestFunctionHandler_Update_NullDeveloper(t *testing.T) {
	mockFunctionService := new(testutil.MockFunctionService)
	client := newTestClient(t, functionRoutes(NewFunctionHandler(mockFunctionService, testLogger))...)
	admin := newTestUser(t, access.Admin{})
	functionID := uuid.New()

	mockFunctionService.On("Update", mock.Anything, admin.actor, functionID, mock.MatchedBy(func(req dto.UpdateFunctionRequest) bool {
		return req.DeveloperID.Set && req.DeveloperID.Value == nil
	})).Return(&models.Function{ID: functionID}, nil)

	rec := client.PATCH("/functions/"+functionID.String(), map[string]any{"developer": nil}, admin.headers)

	testutil.AssertStatus(t, rec, http.StatusOK)
	mockFunctionService.AssertExpectations(t)
}

func TestFunctionHandler_Update_MissingRate(t *testing.T) {
	mockFunctionService := new(testutil.MockFunctionService)
	client := newTestClient(t, functionRoutes(NewFunctionHandler(mockFunctionService, testLogger))...)
	admin := newTestUser(t, access.Admin{})
	functionID := uuid.New()

	mockFunctionService.On("Update", mock.Anything, admin.actor, functionID, mock.Anything).
		Return(nil, fmt.Errorf("price function: %w", services.ErrRateNotFound))

	rec := client.PATCH("/functions/"+functionID.String(), map[string]any{"developer": uuid.NewString()}, admin.headers)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no rate on file")
	mockFunctionService.AssertExpectations(t)
}
