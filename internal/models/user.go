package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient       Role = "client"
	RoleAdmin        Role = "admin"
	RoleDeveloper    Role = "developer"
	RoleSalesManager Role = "sales_manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAdmin, RoleDeveloper, RoleSalesManager:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Skills    []string  `json:"skills"`
	TimeZone  *string   `json:"time_zone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
