package access

// Admin sees everything and edits everything except invoices after
// generation and derived figures. Admins may not author work logs but may
// reassign them.
type Admin struct{}

func (Admin) String() string { return roleAdmin }

func (Admin) authorize(_ Actor, action Action, t Target) Decision {
	switch t.Resource {
	case ResourceWorkLog:
		switch action {
		case ActionCreate, ActionDelete:
			return Deny()
		}
		return Allow()
	case ResourceInvoice:
		switch action {
		case ActionList, ActionRead, ActionGenerate:
			return Allow()
		}
		return Deny()
	case ResourceFeature:
		if action == ActionUpdate {
			return Allow(FieldEstimatedTime, FieldCost)
		}
	case ResourceFunction:
		if action == ActionUpdate {
			return Allow(FieldCost)
		}
	case ResourceUser:
		switch action {
		case ActionDelete:
			return Deny()
		case ActionUpdate:
			return Allow(FieldRole)
		}
	}
	if action == ActionGenerate {
		return Deny()
	}
	return Allow()
}

func (Admin) scope(Actor, Resource) Scope {
	return All()
}
