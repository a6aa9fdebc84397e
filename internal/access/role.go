package access

import "fmt"

// Role is a closed set: Admin, Client, Developer and SalesManager are its
// only implementations.
type Role interface {
	fmt.Stringer
	authorize(a Actor, action Action, t Target) Decision
	scope(a Actor, r Resource) Scope
}

const (
	roleClient       = "client"
	roleAdmin        = "admin"
	roleDeveloper    = "developer"
	roleSalesManager = "sales_manager"
)

// ParseRole decodes the stored role name.
func ParseRole(name string) (Role, error) {
	switch name {
	case roleAdmin:
		return Admin{}, nil
	case roleClient:
		return Client{}, nil
	case roleDeveloper:
		return Developer{}, nil
	case roleSalesManager:
		return SalesManager{}, nil
	}
	return nil, fmt.Errorf("unknown role %q", name)
}

func IsAdmin(a Actor) bool {
	_, ok := a.Role.(Admin)
	return ok
}

func IsClient(a Actor) bool {
	_, ok := a.Role.(Client)
	return ok
}

func IsDeveloper(a Actor) bool {
	_, ok := a.Role.(Developer)
	return ok
}
