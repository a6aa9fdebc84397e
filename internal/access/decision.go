package access

import (
	"fmt"
	"slices"
)

// Field names used in masks. They match the JSON names of the request bodies.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldStatus        = "status"
	FieldPriority      = "priority"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldClient        = "client"
	FieldDevelopers    = "developers"
	FieldProject       = "project"
	FieldFeature       = "feature"
	FieldDeveloper     = "developer"
	FieldFunction      = "function"
	FieldEstimatedTime = "estimated_time"
	FieldCost          = "cost"
	FieldHoursWorked   = "hours_worked"
	FieldReason        = "reason"
	FieldRate          = "rate"
	FieldRole          = "role"
	FieldEmail         = "email"
)

type Decision struct {
	allowed bool
	mask    []string
}

func Allow(masked ...string) Decision {
	return Decision{allowed: true, mask: masked}
}

func Deny() Decision {
	return Decision{}
}

func (d Decision) Allowed() bool {
	return d.allowed
}

func (d Decision) Masked(field string) bool {
	return slices.Contains(d.mask, field)
}

// Mask returns the read-only fields of an allowed update.
func (d Decision) Mask() []string {
	return slices.Clone(d.mask)
}

// Permit returns ErrForbidden if the decision denies, or if any of the
// requested fields is masked.
func (d Decision) Permit(fields ...string) error {
	if !d.allowed {
		return ErrForbidden
	}
	for _, f := range fields {
		if d.Masked(f) {
			return fmt.Errorf("%w: field %q is read-only", ErrForbidden, f)
		}
	}
	return nil
}
