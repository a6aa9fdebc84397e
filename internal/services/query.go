package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/google/uuid"
)

// filter collects WHERE conditions. Every "?" in a condition refers to that
// condition's single argument.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(f.args))))
}

func (f *filter) scope(s access.Scope) {
	sql, args := s.SQL(len(f.args) + 1)
	f.conds = append(f.conds, sql)
	f.args = append(f.args, args...)
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

const projectTargetQuery = `
	SELECT p.client_id,
		COALESCE(ARRAY(SELECT pd.developer_id FROM project_developers pd WHERE pd.project_id = p.id), '{}')
	FROM projects p WHERE p.id = $1
`

// projectTarget loads the ownership facts of a project.
func projectTarget(ctx context.Context, q database.Querier, resource access.Resource, projectID uuid.UUID) (access.Target, error) {
	var clientID *uuid.UUID
	var developers []uuid.UUID
	if err := q.QueryRow(ctx, projectTargetQuery, projectID).Scan(&clientID, &developers); err != nil {
		return access.Target{}, notFound(err, "load project")
	}
	t := access.Target{Resource: resource, Developers: developers}
	if clientID != nil {
		t.ClientID = *clientID
	}
	return t, nil
}
