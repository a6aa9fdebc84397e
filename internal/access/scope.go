package access

import (
	"fmt"
	"strings"
)

// Read queries alias their tables as follows so scope predicates can be
// shared: projects p, work_logs w, invoices i, users u.
const (
	clientOwnsProject      = "p.client_id = ?"
	developerStaffsProject = "EXISTS (SELECT 1 FROM project_developers pd WHERE pd.project_id = p.id AND pd.developer_id = ?)"
	developerAuthoredLog   = "w.developer_id = ?"
	clientOwnsInvoice      = "i.client_id = ?"
	developerOnInvoice     = "EXISTS (SELECT 1 FROM invoice_line_items li JOIN project_developers pd ON pd.project_id = li.project_id WHERE li.invoice_id = i.id AND pd.developer_id = ?)"
	selfUser               = "u.id = ?"
)

// Scope is a storage-level visibility predicate.
type Scope struct {
	all    bool
	clause string
	arg    any
}

func All() Scope {
	return Scope{all: true}
}

func None() Scope {
	return Scope{}
}

func where(clause string, arg any) Scope {
	return Scope{clause: clause, arg: arg}
}

func (s Scope) IsAll() bool {
	return s.all
}

func (s Scope) IsNone() bool {
	return !s.all && s.clause == ""
}

// SQL renders the predicate with its placeholder numbered from next.
func (s Scope) SQL(next int) (string, []any) {
	switch {
	case s.all:
		return "TRUE", nil
	case s.clause == "":
		return "FALSE", nil
	}
	return strings.Replace(s.clause, "?", fmt.Sprintf("$%d", next), 1), []any{s.arg}
}
