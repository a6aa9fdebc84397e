package access

// Developer sees the projects it is staffed on and the work logs it wrote.
// It may edit feature text on those projects, functions assigned to it, and
// its own work logs.
type Developer struct{}

func (Developer) String() string { return roleDeveloper }

func (Developer) authorize(a Actor, action Action, t Target) Decision {
	switch t.Resource {
	case ResourceProject:
		if isRead(action) && t.staffedBy(a.ID) {
			return Allow()
		}
	case ResourceFeature:
		if !t.staffedBy(a.ID) {
			return Deny()
		}
		switch action {
		case ActionList, ActionRead:
			return Allow()
		case ActionUpdate:
			return Allow(FieldStatus, FieldProject, FieldEstimatedTime, FieldCost)
		}
	case ResourceFunction:
		if isRead(action) && t.staffedBy(a.ID) {
			return Allow()
		}
		if action == ActionUpdate && t.OwnerID == a.ID {
			return Allow(FieldFeature, FieldDeveloper, FieldEstimatedTime, FieldCost)
		}
	case ResourceWorkLog:
		switch action {
		case ActionList, ActionRead:
			if t.OwnerID == a.ID {
				return Allow()
			}
		case ActionCreate:
			if t.staffedBy(a.ID) {
				return Allow(FieldDeveloper, FieldStatus, FieldReason)
			}
		case ActionUpdate:
			if t.OwnerID == a.ID {
				return Allow(FieldFunction, FieldDeveloper, FieldStatus, FieldReason)
			}
		}
	case ResourceInvoice:
		if isRead(action) && t.staffedBy(a.ID) {
			return Allow()
		}
	case ResourceProjectRate:
		if isRead(action) {
			return Allow()
		}
	case ResourceUser:
		return self(a, action, t)
	}
	return Deny()
}

func (Developer) scope(a Actor, r Resource) Scope {
	switch r {
	case ResourceProject, ResourceFeature, ResourceFunction:
		return where(developerStaffsProject, a.ID)
	case ResourceWorkLog:
		return where(developerAuthoredLog, a.ID)
	case ResourceInvoice:
		return where(developerOnInvoice, a.ID)
	case ResourceProjectRate:
		return All()
	case ResourceUser:
		return where(selfUser, a.ID)
	}
	return None()
}
