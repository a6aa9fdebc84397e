package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type HistoryAction string

const (
	HistoryCreate HistoryAction = "create"
	HistoryUpdate HistoryAction = "update"
	HistoryDelete HistoryAction = "delete"
)

// HistoryRecord is a snapshot of one row taken in the transaction that
// changed it. Deletes snapshot the row as it was before removal.
type HistoryRecord struct {
	ID        int64           `json:"id"`
	Entity    string          `json:"entity"`
	EntityID  uuid.UUID       `json:"entity_id"`
	Action    HistoryAction   `json:"action"`
	ChangedBy *uuid.UUID      `json:"changed_by,omitempty"`
	Snapshot  json.RawMessage `json:"snapshot"`
	ChangedAt time.Time       `json:"changed_at"`
}
