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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func workLogRoutes(h *WorkLogHandler) []route {
	return []route{
		{http.MethodGet, "/worklogs", h.List},
		{http.MethodPost, "/worklogs", h.Create},
		{http.MethodGet, "/worklogs/:id", h.Get},
		{http.MethodPatch, "/worklogs/:id", h.Update},
		{http.MethodDelete, "/worklogs/:id", h.Delete},
	}
}

func TestWorkLogHandler_List_Filters(t *testing.T) {
	mockWorkLogService := new(testutil.MockWorkLogService)
	client := newTestClient(t, workLogRoutes(NewWorkLogHandler(mockWorkLogService, testLogger))...)
	admin := newTestUser(t, access.Admin{})

	projectID := uuid.New()
	developerID := uuid.New()
	status := models.WorkLogStatusApproved
	billed := models.BilledStatusUnbilled

	mockWorkLogService.On("List", mock.Anything, admin.actor, services.WorkLogFilter{
		ProjectID:    &projectID,
		DeveloperID:  &developerID,
		Status:       &status,
		BilledStatus: &billed,
	}).Return([]models.WorkLog{}, nil)

	rec := client.GET("/worklogs?project="+projectID.String()+"&developer="+developerID.String()+
		"&status=approved&billed_status=unbilled", admin.headers)

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `[]`, rec.Body.String())
	mockWorkLogService.AssertExpectations(t)
}

func TestWorkLogHandler_List_InvalidBilledStatus(t *testing.T) {
	mockWorkLogService := new(testutil.MockWorkLogService)
	client := newTestClient(t, workLogRoutes(NewWorkLogHandler(mockWorkLogService, testLogger))...)
	admin := newTestUser(t, access.Admin{})

	rec := client.GET("/worklogs?billed_status=invoiced", admin.headers)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid billed_status filter")
}

func TestWorkLogHandler_Create_OverEstimate(t *testing.T) {
	mockWorkLogService := new(testutil.MockWorkLogService)
	client := newTestClient(t, workLogRoutes(NewWorkLogHandler(mockWorkLogService, testLogger))...)
	dev := newTestUser(t, access.Developer{})
	functionID := uuid.New()

	mockWorkLogService.On("Create", mock.Anything, dev.actor, mock.MatchedBy(func(req dto.CreateWorkLogRequest) bool {
		return req.FunctionID == functionID && req.HoursWorked.Equal(decimal.NewFromInt(6))
	})).Return(nil, &services.ValidationError{Field: "hours_worked", Message: "exceeds the remaining estimate of 2.00 hours"})

	rec := client.POST("/worklogs", map[string]any{
		"function":     functionID.String(),
		"hours_worked": "6",
		"description":  "pairing",
	}, dev.headers)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "remaining estimate of 2.00 hours")
	mockWorkLogService.AssertExpectations(t)
}

func TestWorkLogHandler_Delete_AlwaysForbidden(t *testing.T) {
	for _, role := range []access.Role{access.Admin{}, access.Developer{}, access.Client{}} {
		t.Run(role.String(), func(t *testing.T) {
			mockWorkLogService := new(testutil.MockWorkLogService)
			client := newTestClient(t, workLogRoutes(NewWorkLogHandler(mockWorkLogService, testLogger))...)
			user := newTestUser(t, role)
			logID := uuid.New()

			mockWorkLogService.On("Delete", mock.Anything, user.actor, logID).Return(access.ErrForbidden)

			rec := client.DELETE("/worklogs/"+logID.String(), user.headers)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			mockWorkLogService.AssertExpectations(t)
		})
	}
}
