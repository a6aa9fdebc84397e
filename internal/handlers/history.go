package handlers

import (
	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	historyService HistoryServiceInterface
	logger         *zap.Logger
}

func NewHistoryHandler(historyService HistoryServiceInterface, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		logger:         logger,
	}
}

// List serves GET /history/:entity/:id, newest change first.
func (h *HistoryHandler) List(c *drift.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "record")
	if !ok {
		return
	}

	records, err := h.historyService.List(c.Request.Context(), actor, access.Resource(c.Param("entity")), id)
	if err != nil {
		respondError(c, h.logger, err, "record", "read history")
		return
	}

	_ = c.JSON(200, records)
}
