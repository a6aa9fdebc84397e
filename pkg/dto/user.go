package dto

import (
	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
)

type CreateUserRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	Skills   []string    `json:"skills"`
	TimeZone *string     `json:"time_zone"`
}

type UpdateUserRequest struct {
	Email    *string      `json:"email"`
	Name     *string      `json:"name"`
	Role     *models.Role `json:"role"`
	Skills   *[]string    `json:"skills"`
	TimeZone *string      `json:"time_zone"`
}

func (r UpdateUserRequest) Fields() []string {
	return present(map[string]bool{
		access.FieldEmail: r.Email != nil,
		"name":            r.Name != nil,
		access.FieldRole:  r.Role != nil,
		"skills":          r.Skills != nil,
		"time_zone":       r.TimeZone != nil,
	})
}
