package services

import (
	"testing"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) (*database.DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return &database.DB{Pool: mock}, mock
}

func adminActor() access.Actor     { return access.NewActor(uuid.New(), access.Admin{}) }
func clientActor() access.Actor    { return access.NewActor(uuid.New(), access.Client{}) }
func developerActor() access.Actor { return access.NewActor(uuid.New(), access.Developer{}) }
func salesActor() access.Actor     { return access.NewActor(uuid.New(), access.SalesManager{}) }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func ptr[T any](v T) *T {
	return &v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	userColumns       = []string{"id", "email", "name", "role", "skills", "time_zone", "created_at", "updated_at"}
	projectTargetCols = []string{"client_id", "developers"}
	functionColumns   = []string{"id", "feature_id", "project_id", "title", "description", "status", "developer_id", "estimated_time", "cost", "created_at", "updated_at"}
	featureColumns    = []string{"id", "project_id", "title", "description", "status", "cost", "estimated_time", "created_at", "updated_at"}
	projectColumns    = []string{"id", "title", "description", "status", "priority", "start_date", "end_date", "client_id", "developers", "created_at", "updated_at"}
	workLogColumns    = []string{"id", "function_id", "developer_id", "project_id", "date_logged", "hours_worked", "description", "status", "reason", "billed_status", "processed_date", "billed_date", "invoice_id", "created_at", "updated_at"}
	invoiceColumns    = []string{"id", "client_id", "amount", "status", "from_date", "to_date", "generated_date", "document_ref", "created_at"}
	claimColumns      = []string{"id", "developer_id", "date_logged", "hours_worked", "description", "project_id", "title"}
	rateColumns       = []string{"id", "project_id", "developer_id", "rate", "created_at", "updated_at"}
	lineItemColumns   = []string{"id", "invoice_id", "work_log_id", "project_id", "project_title", "description", "hours", "rate", "cost", "position"}
)

func userRow(id uuid.UUID, role models.Role) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userColumns).
		AddRow(id, string(role)+"@example.com", "Test "+string(role), role, []string{}, nil, now, now)
}

func projectTargetRow(clientID uuid.UUID, developers ...uuid.UUID) *pgxmock.Rows {
	if developers == nil {
		developers = []uuid.UUID{}
	}
	return pgxmock.NewRows(projectTargetCols).AddRow(&clientID, developers)
}

func expectHistory(mock pgxmock.PgxPoolIface, entity access.Resource, action models.HistoryAction) {
	mock.ExpectExec(`INSERT INTO history`).
		WithArgs(entity, action, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}
