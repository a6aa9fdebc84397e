package access

// SalesManager may read rate cards and its own profile. Nothing else is
// visible to it.
type SalesManager struct{}

func (SalesManager) String() string { return roleSalesManager }

func (SalesManager) authorize(a Actor, action Action, t Target) Decision {
	switch t.Resource {
	case ResourceProjectRate:
		if isRead(action) {
			return Allow()
		}
	case ResourceUser:
		return self(a, action, t)
	}
	return Deny()
}

func (SalesManager) scope(a Actor, r Resource) Scope {
	switch r {
	case ResourceProjectRate:
		return All()
	case ResourceUser:
		return where(selfUser, a.ID)
	}
	return None()
}
