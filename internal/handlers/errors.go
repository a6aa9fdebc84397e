package handlers

import (
	"errors"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/middleware"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// respondError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a 500 naming op.
func respondError(c *drift.Context, logger *zap.Logger, err error, resource, op string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.BadRequest(verr.Error())
	case errors.Is(err, access.ErrForbidden):
		c.Forbidden("not allowed to " + op)
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(resource + " not found")
	case errors.Is(err, services.ErrRateNotFound):
		c.BadRequest(err.Error())
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("op", op),
			zap.Error(err),
		)
		c.InternalServerError("failed to " + op)
	}
}

func requireActor(c *drift.Context) (access.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.Unauthorized("not authenticated")
	}
	return actor, ok
}

func pathID(c *drift.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid " + resource + " id")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID reads an optional id filter. ok is false once a 400 is written.
func queryUUID(c *drift.Context, name string) (*uuid.UUID, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.BadRequest("invalid " + name + " filter")
		return nil, false
	}
	return &id, true
}

// queryEnum reads an optional enumerated filter.
func queryEnum[T ~string](c *drift.Context, name string, valid func(T) bool) (*T, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	v := T(raw)
	if !valid(v) {
		c.BadRequest("invalid " + name + " filter")
		return nil, false
	}
	return &v, true
}
