// Package access decides what an actor may see and change.
//
// Visibility and mutability are separate questions. Visibility is answered by
// ScopeFor, which yields a SQL predicate that every read path appends to its
// WHERE clause; rows outside the scope simply do not exist for the actor.
// Mutability is answered by Authorize, which returns a Decision carrying the
// fields the actor may not write.
package access

import (
	"errors"

	"github.com/google/uuid"
)

// ErrForbidden is returned for denied create, update, delete and generate
// actions, and for admin-only listings. Scoped reads never produce it; hidden
// rows are reported as absent.
var ErrForbidden = errors.New("forbidden")

type Action string

const (
	ActionList     Action = "list"
	ActionRead     Action = "read"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionGenerate Action = "generate"
)

type Resource string

const (
	ResourceProject     Resource = "project"
	ResourceFeature     Resource = "feature"
	ResourceFunction    Resource = "function"
	ResourceWorkLog     Resource = "work_log"
	ResourceInvoice     Resource = "invoice"
	ResourceProjectRate Resource = "project_rate"
	ResourceUser        Resource = "user"
)

// Actor is the authenticated identity behind one request or job.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func NewActor(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

// Target holds the ownership facts of a single record, or of the parent a
// new record is being created under.
type Target struct {
	Resource Resource
	// ClientID is the client owning the project tree the record belongs to.
	ClientID uuid.UUID
	// Developers staff the project the record belongs to.
	Developers []uuid.UUID
	// OwnerID is the assignee of a function, the author of a work log, or
	// the user itself.
	OwnerID uuid.UUID
	// Status is the feature status for feature targets.
	Status string
}

func (t Target) staffedBy(id uuid.UUID) bool {
	for _, dev := range t.Developers {
		if dev == id {
			return true
		}
	}
	return false
}

func (t Target) ownedByClient(id uuid.UUID) bool {
	return t.ClientID != uuid.Nil && t.ClientID == id
}

// Authorize evaluates action on target for actor. Actors without a role are
// always denied.
func Authorize(a Actor, action Action, t Target) Decision {
	if a.Role == nil || a.ID == uuid.Nil {
		return Deny()
	}
	return a.Role.authorize(a, action, t)
}

// ScopeFor returns the visibility predicate of resource for actor.
func ScopeFor(a Actor, r Resource) Scope {
	if a.Role == nil || a.ID == uuid.Nil {
		return None()
	}
	return a.Role.scope(a, r)
}

// Can is shorthand for Authorize(...).Allowed().
func Can(a Actor, action Action, t Target) bool {
	return Authorize(a, action, t).Allowed()
}
