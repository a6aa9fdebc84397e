package handlers

import (
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

func Health(c *drift.Context) {
	_ = c.JSON(200, dto.HealthResponse{
		Status:  "ok",
		Message: "Service is up and running.",
	})
}
