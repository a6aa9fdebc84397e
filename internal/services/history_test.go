package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyColumns = []string{"id", "entity", "entity_id", "action", "changed_by", "snapshot", "changed_at"}

func TestHistoryService_List(t *testing.T) {
	db, mock := setupDB(t)
	svc := NewHistoryService(db)
	logID, adminID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM history WHERE entity = \$1 AND entity_id = \$2 ORDER BY changed_at DESC`).
		WithArgs(access.ResourceWorkLog, logID).
		WillReturnRows(pgxmock.NewRows(historyColumns).
			AddRow(int64(2), "work_log", logID, models.HistoryUpdate, &adminID, []byte(`{"hours_worked":3}`), now).
			AddRow(int64(1), "work_log", logID, models.HistoryCreate, &adminID, []byte(`{"hours_worked":4}`), now.Add(-time.Hour)))

	records, err := svc.List(context.Background(), adminActor(), access.ResourceWorkLog, logID)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.HistoryUpdate, records[0].Action)
	assert.JSONEq(t, `{"hours_worked":3}`, string(records[0].Snapshot))
	assert.Equal(t, adminID, *records[1].ChangedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryService_List_AdminOnly(t *testing.T) {
	for _, actor := range []access.Actor{clientActor(), developerActor(), salesActor()} {
		t.Run(actor.Role.String(), func(t *testing.T) {
			db, mock := setupDB(t)
			svc := NewHistoryService(db)

			_, err := svc.List(context.Background(), actor, access.ResourceFunction, uuid.New())

			assert.ErrorIs(t, err, access.ErrForbidden)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHistoryService_List_UnknownEntity(t *testing.T) {
	db, mock := setupDB(t)
	svc := NewHistoryService(db)

	_, err := svc.List(context.Background(), adminActor(), access.ResourceUser, uuid.New())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "entity", verr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordHistory_UnknownEntity(t *testing.T) {
	_, mock := setupDB(t)

	err := recordHistory(context.Background(), mock, access.ResourceUser, uuid.New(), models.HistoryUpdate, uuid.New())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
