package middleware

import (
	"strings"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	ActorKey     = "actor"
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*services.Claims, error)
}

func Auth(jwtService TokenValidator) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		role, err := access.ParseRole(claims.Role)
		if err != nil {
			c.Unauthorized("unknown role")
			return
		}

		c.Set(ActorKey, access.NewActor(claims.UserID, role))
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)

		c.Next()
	}
}

// GetActor returns the authenticated actor. ok is false on routes without
// Auth.
func GetActor(c *drift.Context) (access.Actor, bool) {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(access.Actor); ok {
			return actor, true
		}
	}
	return access.Actor{}, false
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
