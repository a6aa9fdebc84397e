package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

const userSelect = `
	SELECT u.id, u.email, u.name, u.role, u.skills, u.time_zone, u.created_at, u.updated_at
	FROM users u`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Role,
		&user.Skills, &user.TimeZone, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID loads a user without scoping. It backs authentication and the
// billing worker, which act on behalf of an already known identity.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := scanUser(s.db.Pool.QueryRow(ctx, userSelect+` WHERE u.email = $1`, email))
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.User, error) {
	var f filter
	f.add("u.id = ?", id)
	f.scope(access.ScopeFor(actor, access.ResourceUser))

	user, err := scanUser(s.db.Pool.QueryRow(ctx, userSelect+f.where(), f.args...))
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, actor access.Actor, role *models.Role) ([]models.User, error) {
	var f filter
	if role != nil {
		f.add("u.role = ?", *role)
	}
	f.scope(access.ScopeFor(actor, access.ResourceUser))

	rows, err := s.db.Pool.Query(ctx, userSelect+f.where()+` ORDER BY u.name`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *UserService) Create(ctx context.Context, actor access.Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Target{Resource: access.ResourceUser}).Permit(); err != nil {
		return nil, err
	}
	return s.Register(ctx, req)
}

// Register inserts a user. Callers are responsible for authorization.
func (s *UserService) Register(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, invalid("email", "must be a valid address")
	}
	if req.Name == "" {
		return nil, invalid("name", "is required")
	}
	if !req.Role.Valid() {
		return nil, invalid("role", "must be one of client, admin, developer, sales_manager")
	}
	if err := validateProfile(req.Role, len(req.Skills) > 0, req.TimeZone); err != nil {
		return nil, err
	}

	skills := req.Skills
	if skills == nil {
		skills = []string{}
	}

	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, skills, time_zone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, role, skills, time_zone, created_at, updated_at
	`, req.Email, req.Name, req.Role, skills, req.TimeZone))
	if err != nil {
		return nil, constraint(err, "email", "create user")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req dto.UpdateUserRequest) (*models.User, error) {
	existing, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	target := access.Target{Resource: access.ResourceUser, OwnerID: existing.ID}
	if err := access.Authorize(actor, access.ActionUpdate, target).Permit(req.Fields()...); err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("name", "cannot be empty")
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, invalid("email", "must be a valid address")
		}
		req.Email = &email
	}
	if err := validateProfile(existing.Role, req.Skills != nil && len(*req.Skills) > 0, req.TimeZone); err != nil {
		return nil, err
	}

	var skills any
	if req.Skills != nil {
		skills = *req.Skills
	}

	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET
			email = COALESCE($1, email),
			name = COALESCE($2, name),
			skills = COALESCE($3, skills),
			time_zone = COALESCE($4, time_zone),
			updated_at = NOW()
		WHERE id = $5
		RETURNING id, email, name, role, skills, time_zone, created_at, updated_at
	`, req.Email, req.Name, skills, req.TimeZone, id))
	if err != nil {
		return nil, constraint(err, "email", "update user")
	}
	return user, nil
}

// validateProfile enforces that only developers carry skills and a time zone.
func validateProfile(role models.Role, hasSkills bool, timeZone *string) error {
	if role != models.RoleDeveloper {
		if hasSkills {
			return invalid("skills", "only developers have skills")
		}
		if timeZone != nil {
			return invalid("time_zone", "only developers have a time zone")
		}
		return nil
	}
	if timeZone != nil {
		if _, err := time.LoadLocation(*timeZone); err != nil || *timeZone == "" {
			return invalid("time_zone", "unknown time zone %q", *timeZone)
		}
	}
	return nil
}

// requireRoles checks that every id names a user with the given role.
func requireRoles(ctx context.Context, q database.Querier, field string, role models.Role, ids ...uuid.UUID) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil
	}
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE id = ANY($1) AND role = $2
	`, ids, role).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", field, err)
	}
	if count != len(ids) {
		return invalid(field, "must reference %s users", role)
	}
	return nil
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
